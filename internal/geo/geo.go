// Package geo builds the derived course geometry: boundary segments, the
// playable-area mesh, the containment test and the footprint polygon.
//
// All positions use the tracking frame: Y up, course plane X/Z.
package geo

import (
	"errors"
	"strconv"
	"strings"

	"github.com/holeinone/coursecal/pkg/core"
)

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// Position3DFromString parses "x,z" or "x,y,z" into a core.Position3D.
// The two-component form is a point on the ground plane (y = 0).
func Position3DFromString(coords string) (core.Position3D, error) {
	coords = strings.TrimSpace(coords)
	coords = strings.TrimPrefix(coords, "[")
	coords = strings.TrimSuffix(coords, "]")

	parts := strings.Split(coords, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return core.Position3D{}, ErrInvalidCoordinates
	}

	vals := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return core.Position3D{}, ErrInvalidCoordinates
		}
		vals[i] = v
	}

	if len(vals) == 2 {
		return core.Position3D{X: vals[0], Z: vals[1]}, nil
	}
	return core.Position3D{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

// Planar projects positions onto the course plane.
func Planar(points []core.Position3D) []core.Position2D {
	out := make([]core.Position2D, len(points))
	for i, p := range points {
		out[i] = p.Planar()
	}
	return out
}
