package geo

import (
	"math"

	"github.com/holeinone/coursecal/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// degenerateNormal is the squared-length threshold below which a triangle
// normal is treated as zero.
const degenerateNormal = 1e-18

// Collider describes how the mesh participates in physics. The playable
// area is static: it is only queried, never pushed.
type Collider struct {
	Kinematic  bool
	UseGravity bool
	Trigger    bool
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min core.Position3D
	Max core.Position3D
}

// Mesh is a fan triangulation of the waypoint polygon anchored at vertex 0.
// Vertices, Normals and UVs are parallel arrays; Triangles holds three
// vertex indices per triangle.
type Mesh struct {
	Vertices  []core.Position3D
	Triangles []uint32
	Normals   []core.Position3D
	UVs       []core.Position2D
	Normal    core.Position3D
	Bounds    Bounds
	Collider  Collider
}

// BuildMesh triangulates points in order. It returns false when there are
// fewer than three points or all of them are collinear.
func BuildMesh(points []core.Position3D) (*Mesh, bool) {
	if len(points) < 3 {
		return nil, false
	}

	normal, ok := fanNormal(points)
	if !ok {
		return nil, false
	}

	n := len(points)
	m := &Mesh{
		Vertices:  make([]core.Position3D, n),
		Triangles: make([]uint32, 0, (n-2)*3),
		Normals:   make([]core.Position3D, n),
		UVs:       make([]core.Position2D, n),
		Normal:    normal,
		Collider:  Collider{Kinematic: true},
	}
	copy(m.Vertices, points)

	for i := 0; i < n-2; i++ {
		m.Triangles = append(m.Triangles, 0, uint32(i+1), uint32(i+2))
	}
	for i, v := range m.Vertices {
		m.Normals[i] = normal
		m.UVs[i] = v.Planar()
	}
	m.Bounds = boundsOf(m.Vertices)

	return m, true
}

// fanNormal returns the unit face normal from the first two edges out of
// vertex 0, oriented so that it points up. If those edges are parallel the
// next fan triangle is tried.
func fanNormal(points []core.Position3D) (core.Position3D, bool) {
	origin := points[0].Vec()
	for i := 1; i+1 < len(points); i++ {
		c := r3.Cross(r3.Sub(points[i].Vec(), origin), r3.Sub(points[i+1].Vec(), origin))
		if r3.Dot(c, c) < degenerateNormal {
			continue
		}
		c = r3.Unit(c)
		if c.Y < 0 {
			c = r3.Scale(-1, c)
		}
		return core.PositionFromVec(c), true
	}
	return core.Position3D{}, false
}

func boundsOf(points []core.Position3D) Bounds {
	b := Bounds{
		Min: core.Position3D{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: core.Position3D{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
	for _, p := range points {
		b.Min.X = math.Min(b.Min.X, p.X)
		b.Min.Y = math.Min(b.Min.Y, p.Y)
		b.Min.Z = math.Min(b.Min.Z, p.Z)
		b.Max.X = math.Max(b.Max.X, p.X)
		b.Max.Y = math.Max(b.Max.Y, p.Y)
		b.Max.Z = math.Max(b.Max.Z, p.Z)
	}
	return b
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles) / 3
}

// Outline returns the mesh polygon projected onto the course plane.
func (m *Mesh) Outline() []core.Position2D {
	if m == nil {
		return nil
	}
	return m.UVs
}

// Contains reports whether p lies inside the mesh outline on the course
// plane. A nil mesh contains nothing.
func (m *Mesh) Contains(p core.Position3D) bool {
	if m == nil || len(m.Vertices) < 3 {
		return false
	}
	return PointInPolygon(p.Planar(), m.UVs)
}
