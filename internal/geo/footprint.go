package geo

import (
	"fmt"

	"github.com/holeinone/coursecal/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
)

// Footprint is the course outline as a simple-features polygon on the X/Z
// plane, with the derived figures the display shows.
type Footprint struct {
	Polygon  geom.Polygon
	Area     float64
	Centroid core.Position2D
	Simple   bool // false when the operator placed waypoints out of order
}

// NewFootprint builds the footprint of an ordered outline. The ring is
// closed automatically.
func NewFootprint(outline []core.Position2D) (Footprint, error) {
	if len(outline) < 3 {
		return Footprint{}, fmt.Errorf("footprint needs at least 3 points, got %d", len(outline))
	}

	flat := make([]float64, 0, (len(outline)+1)*2)
	for _, p := range outline {
		flat = append(flat, p.X, p.Y)
	}
	flat = append(flat, outline[0].X, outline[0].Y)

	// Validation is off so an out-of-order outline still yields a polygon
	// whose Simple flag can be reported.
	ring, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY), geom.DisableAllValidations)
	if err != nil {
		return Footprint{}, fmt.Errorf("building footprint ring: %w", err)
	}
	poly, err := geom.NewPolygon([]geom.LineString{ring}, geom.DisableAllValidations)
	if err != nil {
		return Footprint{}, fmt.Errorf("building footprint polygon: %w", err)
	}

	fp := Footprint{
		Polygon: poly,
		Area:    poly.Area(),
		Simple:  ring.IsSimple(),
	}
	if xy, ok := poly.Centroid().XY(); ok {
		fp.Centroid = core.Position2D{X: xy.X, Y: xy.Y}
	}
	return fp, nil
}

// Outline returns the polygon's exterior ring without the closing point.
func (f Footprint) Outline() []core.Position2D {
	seq := f.Polygon.ExteriorRing().Coordinates()
	n := seq.Length()
	if n == 0 {
		return nil
	}
	out := make([]core.Position2D, 0, n-1)
	for i := 0; i < n-1; i++ {
		xy := seq.GetXY(i)
		out = append(out, core.Position2D{X: xy.X, Y: xy.Y})
	}
	return out
}
