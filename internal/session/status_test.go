package session

import (
	"testing"

	"github.com/holeinone/coursecal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Initial(t *testing.T) {
	s, _ := newSession(t, 3)

	st := s.Status()

	assert.Equal(t, s.ID(), st.SessionID)
	assert.Equal(t, core.PhaseAwaitingWaypoint, st.Phase)
	assert.Equal(t, "number_1", st.ActiveTarget)
	assert.False(t, st.CanConfirm)
	assert.Equal(t, 0, st.ConfirmedWaypoints)
	assert.Equal(t, 3, st.TotalWaypoints)
	assert.False(t, st.MeshValid)
	assert.False(t, st.CanStart)

	require.Len(t, st.Markers, 5)
	names := make([]string, len(st.Markers))
	for i, m := range st.Markers {
		names[i] = m.Name
		assert.False(t, m.Sighted)
	}
	assert.Equal(t, []string{"number_1", "number_2", "number_3", "ball_spawn", "hole"}, names)
	assert.Equal(t, "ball_spawn", st.Markers[3].Role)
}

func TestStatus_Progress(t *testing.T) {
	s, _ := squareCourse(t)

	st := s.Status()

	assert.Equal(t, core.PhaseAwaitingBallSpawn, st.Phase)
	assert.Equal(t, "ball_spawn", st.ActiveTarget)
	assert.Equal(t, 4, st.ConfirmedWaypoints)
	assert.Equal(t, 4, st.Segments)
	assert.True(t, st.MeshValid)
	assert.False(t, st.SelfIntersecting)
	assert.InDelta(t, 4.0, st.Area, 1e-9)
	for _, m := range st.Markers[:4] {
		assert.True(t, m.Confirmed, m.Name)
	}
}

func TestStatus_FlagsOutOfOrderWaypoints(t *testing.T) {
	s, _ := newSession(t, 4)
	place(t, s, "number_1", at(0, 0))
	place(t, s, "number_2", at(2, 2))
	place(t, s, "number_3", at(2, 0))
	place(t, s, "number_4", at(0, 2))

	st := s.Status()
	assert.True(t, st.MeshValid)
	assert.True(t, st.SelfIntersecting)

	// containment stays deterministic on a bow tie
	first := s.IsInsideCourse(at(1, 0.5))
	assert.Equal(t, first, s.IsInsideCourse(at(1, 0.5)))
}
