package geo

import "github.com/holeinone/coursecal/pkg/core"

// PointInPolygon is the even-odd crossing-number test. For every edge (j, i)
// it toggles when the point's Y lies between the edge endpoints and the
// point is left of the edge at that height. Self-intersecting polygons give
// a deterministic, if meaningless, answer.
func PointInPolygon(p core.Position2D, polygon []core.Position2D) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		a, b := polygon[i], polygon[j]
		if (a.Y > p.Y) != (b.Y > p.Y) &&
			p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}
