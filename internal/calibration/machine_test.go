package calibration

import (
	"testing"

	"github.com/holeinone/coursecal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMachine_InitialState(t *testing.T) {
	m := NewMachine(4)

	assert.Equal(t, core.PhaseAwaitingWaypoint, m.Phase())
	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, core.WaypointID(0), active)
	assert.Equal(t, 0, m.ConfirmedWaypoints())
	assert.False(t, m.AllConfirmed())
	assert.False(t, m.Complete())
}

func TestAdvance_StrictOrder(t *testing.T) {
	m := NewMachine(3)

	want := []string{"number_1", "number_2", "number_3", "ball_spawn", "hole"}
	for i, name := range want {
		confirmed, ok := m.Advance()
		require.True(t, ok, "step %d", i)
		assert.Equal(t, name, confirmed.Name())
		assert.True(t, m.IsConfirmed(confirmed))
	}

	assert.True(t, m.Complete())
	assert.True(t, m.AllConfirmed())
	assert.Equal(t, 3, m.ConfirmedWaypoints())
}

func TestAdvance_NeverPastComplete(t *testing.T) {
	n := 4
	m := NewMachine(n)

	// far more confirmations than markers
	for i := 0; i < 3*(n+2); i++ {
		m.Advance()
	}

	assert.Equal(t, core.PhaseComplete, m.Phase())
	_, ok := m.Active()
	assert.False(t, ok)
	_, ok = m.Advance()
	assert.False(t, ok)
}

func TestAccepts_OnlyActiveTarget(t *testing.T) {
	m := NewMachine(2)

	assert.True(t, m.Accepts(core.WaypointID(0)))
	assert.False(t, m.Accepts(core.WaypointID(1)))
	assert.False(t, m.Accepts(core.BallSpawnID))
	assert.False(t, m.Accepts(core.HoleID))

	m.Advance()
	m.Advance()

	assert.False(t, m.Accepts(core.WaypointID(0)), "confirmed markers are no longer accepted")
	assert.True(t, m.Accepts(core.BallSpawnID))

	m.Advance()
	m.Advance()
	assert.False(t, m.Accepts(core.HoleID), "complete accepts nothing")
}

func TestPhases(t *testing.T) {
	m := NewMachine(1)

	assert.Equal(t, core.PhaseAwaitingWaypoint, m.Phase())
	m.Advance()
	assert.Equal(t, core.PhaseAwaitingBallSpawn, m.Phase())
	m.Advance()
	assert.Equal(t, core.PhaseAwaitingHole, m.Phase())
	m.Advance()
	assert.Equal(t, core.PhaseComplete, m.Phase())
}

func TestReset(t *testing.T) {
	m := NewMachine(2)
	for i := 0; i < 4; i++ {
		m.Advance()
	}
	require.True(t, m.Complete())

	m.Reset()

	assert.Equal(t, core.PhaseAwaitingWaypoint, m.Phase())
	assert.False(t, m.IsConfirmed(core.WaypointID(0)))
	assert.Equal(t, 2, m.Complexity())
}

func TestAllConfirmed_RequiresEveryMarker(t *testing.T) {
	m := NewMachine(2)
	m.Advance()
	m.Advance()
	m.Advance()

	assert.False(t, m.AllConfirmed(), "hole still pending")
	assert.Equal(t, 2, m.ConfirmedWaypoints())
}
