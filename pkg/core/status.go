// pkg/core/status.go
package core

// Phase is the coarse calibration state.
type Phase uint8

const (
	PhaseAwaitingWaypoint Phase = iota
	PhaseAwaitingBallSpawn
	PhaseAwaitingHole
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingWaypoint:
		return "awaiting_waypoint"
	case PhaseAwaitingBallSpawn:
		return "awaiting_ball_spawn"
	case PhaseAwaitingHole:
		return "awaiting_hole"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// MarkerStatus is the display view of a single configured marker.
type MarkerStatus struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	Sighted   bool   `json:"sighted"`
	Tracked   bool   `json:"tracked"`
	Confirmed bool   `json:"confirmed"`
}

// Status is the pull-based display snapshot, polled once per frame.
type Status struct {
	SessionID          string         `json:"sessionId"`
	Phase              Phase          `json:"phase"`
	ActiveTarget       string         `json:"activeTarget"`
	CanConfirm         bool           `json:"canConfirm"`
	ConfirmedWaypoints int            `json:"confirmedWaypoints"`
	TotalWaypoints     int            `json:"totalWaypoints"`
	Markers            []MarkerStatus `json:"markers"`
	Segments           int            `json:"segments"`
	MeshValid          bool           `json:"meshValid"`
	SelfIntersecting   bool           `json:"selfIntersecting"`
	Area               float64        `json:"area"`
	CanStart           bool           `json:"canStart"`
}
