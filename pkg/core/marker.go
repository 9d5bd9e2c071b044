// pkg/core/marker.go
package core

import "fmt"

// Role is the part a marker plays in the course.
type Role uint8

const (
	RoleUnknown Role = iota
	RoleWaypoint
	RoleBallSpawn
	RoleHole
)

func (r Role) String() string {
	switch r {
	case RoleWaypoint:
		return "waypoint"
	case RoleBallSpawn:
		return "ball_spawn"
	case RoleHole:
		return "hole"
	default:
		return "unknown"
	}
}

// Feed names for the fixed markers. Waypoints are WaypointPrefix followed by
// their 1-based ordinal.
const (
	WaypointPrefix = "number_"
	BallSpawnName  = "ball_spawn"
	HoleName       = "hole"
)

// MarkerID is the typed identity of a recognized marker. Index is the
// 0-based waypoint slot and is only meaningful for RoleWaypoint.
type MarkerID struct {
	Role  Role
	Index int
}

// WaypointID returns the identity of the waypoint in slot index (0-based).
func WaypointID(index int) MarkerID {
	return MarkerID{Role: RoleWaypoint, Index: index}
}

var (
	BallSpawnID = MarkerID{Role: RoleBallSpawn}
	HoleID      = MarkerID{Role: RoleHole}
)

// Name returns the feed name of the marker.
func (id MarkerID) Name() string {
	switch id.Role {
	case RoleWaypoint:
		return fmt.Sprintf("%s%d", WaypointPrefix, id.Index+1)
	case RoleBallSpawn:
		return BallSpawnName
	case RoleHole:
		return HoleName
	default:
		return ""
	}
}

func (id MarkerID) String() string {
	return id.Name()
}

// TrackingState is the binary state reported by the pose estimator.
type TrackingState uint8

const (
	NotTracked TrackingState = iota
	Tracking
)

func (s TrackingState) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "none"
}

// MarshalText encodes the state as "tracking" or "none".
func (s TrackingState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts "tracking" (case-sensitive); anything else is NotTracked.
func (s *TrackingState) UnmarshalText(b []byte) error {
	if string(b) == "tracking" {
		*s = Tracking
	} else {
		*s = NotTracked
	}
	return nil
}
