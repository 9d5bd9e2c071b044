// pkg/core/position.go
package core

import "gonum.org/v1/gonum/spatial/r3"

// Position3D is a world-space position reported by the tracking feed.
// Y is the vertical axis; the course plane is X/Z.
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Vec converts the position to a gonum vector for arithmetic.
func (p Position3D) Vec() r3.Vec {
	return r3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// PositionFromVec converts a gonum vector back to a Position3D.
func PositionFromVec(v r3.Vec) Position3D {
	return Position3D{X: v.X, Y: v.Y, Z: v.Z}
}

// Distance returns the Euclidean distance between two positions.
func (p Position3D) Distance(q Position3D) float64 {
	return r3.Norm(r3.Sub(p.Vec(), q.Vec()))
}

// Planar returns the horizontal-plane projection (X, Z).
func (p Position3D) Planar() Position2D {
	return Position2D{X: p.X, Y: p.Z}
}

// Position2D is a point on the horizontal course plane.
// Y holds the world Z coordinate.
type Position2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
