// Package calibration sequences which marker the operator is confirming.
//
// Confirmation order is fixed: waypoints 1..N, then the ball spawn, then the
// hole. The machine only ever moves forward.
package calibration

import "github.com/holeinone/coursecal/pkg/core"

// Machine is the calibration state machine. The zero value is not usable;
// create one with NewMachine.
type Machine struct {
	complexity int
	phase      core.Phase
	next       int // next unconfirmed waypoint slot, 0-based
	confirmed  map[core.MarkerID]bool
}

// NewMachine creates a machine for a course of n waypoints, awaiting waypoint 1.
func NewMachine(n int) *Machine {
	m := &Machine{complexity: n}
	m.Reset()
	return m
}

// Reset returns the machine to its initial state.
func (m *Machine) Reset() {
	m.phase = core.PhaseAwaitingWaypoint
	m.next = 0
	m.confirmed = make(map[core.MarkerID]bool, m.complexity+2)
	if m.complexity == 0 {
		m.phase = core.PhaseAwaitingBallSpawn
	}
}

// Phase returns the current coarse state.
func (m *Machine) Phase() core.Phase {
	return m.phase
}

// Active returns the marker currently awaiting confirmation.
// It returns false once the machine is Complete.
func (m *Machine) Active() (core.MarkerID, bool) {
	switch m.phase {
	case core.PhaseAwaitingWaypoint:
		return core.WaypointID(m.next), true
	case core.PhaseAwaitingBallSpawn:
		return core.BallSpawnID, true
	case core.PhaseAwaitingHole:
		return core.HoleID, true
	default:
		return core.MarkerID{}, false
	}
}

// Accepts reports whether pose updates for id may be applied right now.
// Only the active target is accepted.
func (m *Machine) Accepts(id core.MarkerID) bool {
	active, ok := m.Active()
	return ok && active == id
}

// Advance marks the active target confirmed and steps exactly once.
// It returns the marker that was confirmed, or false in the Complete state.
func (m *Machine) Advance() (core.MarkerID, bool) {
	active, ok := m.Active()
	if !ok {
		return core.MarkerID{}, false
	}
	m.confirmed[active] = true

	switch m.phase {
	case core.PhaseAwaitingWaypoint:
		m.next++
		if m.next >= m.complexity {
			m.phase = core.PhaseAwaitingBallSpawn
		}
	case core.PhaseAwaitingBallSpawn:
		m.phase = core.PhaseAwaitingHole
	case core.PhaseAwaitingHole:
		m.phase = core.PhaseComplete
	}
	return active, true
}

// IsConfirmed reports whether id has been confirmed.
func (m *Machine) IsConfirmed(id core.MarkerID) bool {
	return m.confirmed[id]
}

// ConfirmedWaypoints returns how many waypoints are confirmed.
func (m *Machine) ConfirmedWaypoints() int {
	if m.phase == core.PhaseAwaitingWaypoint {
		return m.next
	}
	return m.complexity
}

// Complexity returns the number of waypoints on the course.
func (m *Machine) Complexity() int {
	return m.complexity
}

// AllConfirmed reports whether every waypoint, the ball spawn and the hole
// are confirmed.
func (m *Machine) AllConfirmed() bool {
	for i := 0; i < m.complexity; i++ {
		if !m.confirmed[core.WaypointID(i)] {
			return false
		}
	}
	return m.confirmed[core.BallSpawnID] && m.confirmed[core.HoleID]
}

// Complete reports whether the terminal state has been reached.
func (m *Machine) Complete() bool {
	return m.phase == core.PhaseComplete
}
