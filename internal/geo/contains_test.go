package geo

import (
	"math"
	"testing"

	"github.com/holeinone/coursecal/pkg/core"
	"github.com/stretchr/testify/assert"
)

// regularPolygon returns n vertices on a circle of radius r around c.
func regularPolygon(n int, r float64, c core.Position2D, phase float64) []core.Position2D {
	pts := make([]core.Position2D, n)
	for i := range pts {
		a := phase + 2*math.Pi*float64(i)/float64(n)
		pts[i] = core.Position2D{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return pts
}

func TestPointInPolygon_ConvexCentroidAndFarPoints(t *testing.T) {
	centers := []core.Position2D{{X: 0, Y: 0}, {X: 3.5, Y: -2}, {X: -10, Y: 7}}

	for n := 3; n <= 12; n++ {
		for _, c := range centers {
			for _, reverse := range []bool{false, true} {
				poly := regularPolygon(n, 1.5, c, 0.3)
				if reverse {
					for i, j := 0, len(poly)-1; i < j; i, j = i+1, j-1 {
						poly[i], poly[j] = poly[j], poly[i]
					}
				}

				assert.True(t, PointInPolygon(c, poly), "centroid n=%d c=%v", n, c)

				for k := 0; k < 16; k++ {
					a := 2 * math.Pi * float64(k) / 16
					far := core.Position2D{X: c.X + 1.6*math.Cos(a), Y: c.Y + 1.6*math.Sin(a)}
					assert.False(t, PointInPolygon(far, poly), "far point n=%d angle=%f", n, a)
				}
			}
		}
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape opening towards +Y
	poly := []core.Position2D{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 3}, {X: 0, Y: 3}}

	assert.True(t, PointInPolygon(core.Position2D{X: 0.5, Y: 2}, poly))
	assert.True(t, PointInPolygon(core.Position2D{X: 1.5, Y: 0.5}, poly))
	assert.False(t, PointInPolygon(core.Position2D{X: 1.5, Y: 2}, poly), "inside the notch")
}

func TestPointInPolygon_DegenerateInputs(t *testing.T) {
	assert.False(t, PointInPolygon(core.Position2D{}, nil))
	assert.False(t, PointInPolygon(core.Position2D{}, []core.Position2D{{X: 1, Y: 1}}))

	// horizontal edges never divide by zero: the straddle check excludes them
	flat := []core.Position2D{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	assert.False(t, PointInPolygon(core.Position2D{X: 0.5, Y: 0}, flat))
}

func TestPointInPolygon_SelfIntersectingIsDeterministic(t *testing.T) {
	// bow tie: waypoints walked out of order
	bowTie := []core.Position2D{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2}}
	p := core.Position2D{X: 1, Y: 0.5}

	first := PointInPolygon(p, bowTie)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, PointInPolygon(p, bowTie))
	}
}
