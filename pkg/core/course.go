// pkg/core/course.go
package core

import "time"

// Course is an immutable snapshot of a completed calibration.
// It is what gets persisted and what the gameplay layer may consume.
type Course struct {
	ID               uint         `json:"id"`
	SessionID        string       `json:"sessionId"`
	CreatedAt        time.Time    `json:"createdAt"`
	Complexity       int          `json:"complexity"`
	Waypoints        []Position3D `json:"waypoints"`
	BallSpawn        Position3D   `json:"ballSpawn"`
	Hole             Position3D   `json:"hole"`
	Elevation        float64      `json:"elevation"`
	ElevationLatched bool         `json:"elevationLatched"`
	Area             float64      `json:"area"`
}
