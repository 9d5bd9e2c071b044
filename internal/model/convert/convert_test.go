package convert

import (
	"testing"
	"time"

	"github.com/holeinone/coursecal/internal/model"
	"github.com/holeinone/coursecal/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func squareCourse() core.Course {
	return core.Course{
		ID:         3,
		SessionID:  "0b7e4f0e-3b65-4a39-9d44-3d8c1f2b7c11",
		CreatedAt:  time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		Complexity: 4,
		Waypoints: []core.Position3D{
			{X: 0, Y: 0.1, Z: 0}, {X: 2, Y: 0.1, Z: 0}, {X: 2, Y: 0.1, Z: 2}, {X: 0, Y: 0.1, Z: 2},
		},
		BallSpawn:        core.Position3D{X: 1, Y: 0.1, Z: 1},
		Hole:             core.Position3D{X: 1.5, Y: 0.1, Z: 1.5},
		Elevation:        0.1,
		ElevationLatched: true,
		Area:             4,
	}
}

func TestPosition3DToPoint(t *testing.T) {
	pos := core.Position3D{X: 1.5, Y: 0.25, Z: -2.0}
	pt, err := position3DToPoint(pos)
	require.NoError(t, err)

	coord, ok := pt.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 1.5, coord.XY.X)
	assert.Equal(t, -2.0, coord.XY.Y)
	assert.Equal(t, 0.25, coord.Z)
	assert.Equal(t, pos, pointToPosition3D(pt))
}

func TestPointToPosition3D_Empty(t *testing.T) {
	assert.Equal(t, core.Position3D{}, pointToPosition3D(geom.Point{}))
}

func TestCoreToCourse(t *testing.T) {
	c := squareCourse()

	m, err := CoreToCourse(c)
	require.NoError(t, err)

	assert.Equal(t, uint(3), m.ID)
	assert.Equal(t, c.SessionID, m.SessionID)
	assert.JSONEq(t,
		`[{"x":0,"y":0.1,"z":0},{"x":2,"y":0.1,"z":0},{"x":2,"y":0.1,"z":2},{"x":0,"y":0.1,"z":2}]`,
		string(m.Waypoints))
	assert.False(t, m.Footprint.IsEmpty())
	assert.InDelta(t, 4.0, m.Footprint.Area(), 1e-9)
	assert.True(t, m.ElevationLatched)
}

func TestCoreToCourse_NoWaypoints(t *testing.T) {
	m, err := CoreToCourse(core.Course{Complexity: 3})
	require.NoError(t, err)

	assert.Equal(t, datatypes.JSON("[]"), m.Waypoints)
	assert.True(t, m.Footprint.IsEmpty())
}

func TestCourseRoundTrip(t *testing.T) {
	c := squareCourse()

	m, err := CoreToCourse(c)
	require.NoError(t, err)
	back, err := CourseToCore(m)
	require.NoError(t, err)

	assert.Equal(t, c, back)
}

func TestCoreToCourse_PointsShareFootprintPlane(t *testing.T) {
	c := squareCourse()
	c.Hole = core.Position3D{X: 1.5, Y: 3, Z: 0.5}

	m, err := CoreToCourse(c)
	require.NoError(t, err)

	hole, ok := m.Hole.XY()
	require.True(t, ok)
	assert.Equal(t, geom.XY{X: 1.5, Y: 0.5}, hole)
	assert.True(t, m.Footprint.Envelope().Contains(hole))
}

func TestCoreToCourse_OutOfOrderWaypoints(t *testing.T) {
	c := squareCourse()
	c.Waypoints = []core.Position3D{
		{X: 0, Y: 0.1, Z: 0}, {X: 2, Y: 0.1, Z: 2}, {X: 2, Y: 0.1, Z: 0}, {X: 0, Y: 0.1, Z: 2},
	}

	m, err := CoreToCourse(c)
	require.NoError(t, err)
	assert.True(t, m.Footprint.IsEmpty())

	var scanned geom.Polygon
	require.NoError(t, scanned.Scan(m.Footprint.AsBinary()))

	back, err := CourseToCore(m)
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestCourseToCore_BadWaypoints(t *testing.T) {
	_, err := CourseToCore(model.Course{ID: 9, Waypoints: datatypes.JSON(`{"not":"a list"}`)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "course 9")
}
