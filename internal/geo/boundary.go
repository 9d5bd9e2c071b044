package geo

import (
	"fmt"
	"math"

	"github.com/holeinone/coursecal/pkg/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// SegmentThickness is the cross-section of a boundary collider in metres.
const SegmentThickness = 0.01

// Segment is one solid wall of the course boundary.
type Segment struct {
	Name      string
	Start     core.Position3D
	End       core.Position3D
	Center    core.Position3D
	Direction core.Position3D // unit vector from Start to End, zero if degenerate
	Heading   float64         // rotation about Y in radians, 0 along +Z
	Length    float64
	Thickness float64
	Solid     bool
}

// NewSegment builds the wall between two waypoint positions.
func NewSegment(name string, start, end core.Position3D) Segment {
	a, b := start.Vec(), end.Vec()
	d := r3.Sub(b, a)
	length := r3.Norm(d)

	var dir r3.Vec
	if length > 0 {
		dir = r3.Scale(1/length, d)
	}

	return Segment{
		Name:      name,
		Start:     start,
		End:       end,
		Center:    core.PositionFromVec(r3.Scale(0.5, r3.Add(a, b))),
		Direction: core.PositionFromVec(dir),
		Heading:   math.Atan2(d.X, d.Z),
		Length:    length,
		Thickness: SegmentThickness,
		Solid:     true,
	}
}

// Boundary is the closed polyline of collision segments over the waypoint
// sequence. It is rebuilt wholesale; Generation counts rebuilds.
type Boundary struct {
	Segments   []Segment
	Generation uint64
}

// Rebuild discards every segment and rebuilds from seq. Segments exist only
// between populated neighbours; a partially calibrated course has gaps.
func (b *Boundary) Rebuild(seq *Sequence) {
	b.Segments = nil
	b.Generation++

	count := seq.Extent()
	for i := 0; i < count-1; i++ {
		start, okA := seq.Get(i)
		end, okB := seq.Get(i + 1)
		if okA && okB {
			b.Segments = append(b.Segments, NewSegment(fmt.Sprintf("Segment_%d_%d", i, i+1), start, end))
		}
	}

	if count > 1 {
		last, okA := seq.Get(count - 1)
		first, okB := seq.Get(0)
		if okA && okB {
			b.Segments = append(b.Segments, NewSegment(fmt.Sprintf("Segment_%d_0", count-1), last, first))
		}
	}
}

// Clear discards every segment.
func (b *Boundary) Clear() {
	b.Segments = nil
	b.Generation++
}

// Len returns the number of segments.
func (b Boundary) Len() int {
	return len(b.Segments)
}
