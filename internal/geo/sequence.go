package geo

import "github.com/holeinone/coursecal/pkg/core"

// Sequence is the ordered waypoint array. Slot i holds waypoint i+1 once it
// has a pose.
type Sequence struct {
	slots []core.Position3D
	set   []bool
}

// NewSequence creates an empty sequence of n slots.
func NewSequence(n int) *Sequence {
	return &Sequence{
		slots: make([]core.Position3D, n),
		set:   make([]bool, n),
	}
}

// Len returns the number of slots (the course complexity).
func (s *Sequence) Len() int {
	return len(s.slots)
}

// Set stores the position of slot i. Out-of-range indices are ignored.
func (s *Sequence) Set(i int, p core.Position3D) {
	if i < 0 || i >= len(s.slots) {
		return
	}
	s.slots[i] = p
	s.set[i] = true
}

// Clear empties slot i and reports whether it was populated.
func (s *Sequence) Clear(i int) bool {
	if i < 0 || i >= len(s.slots) || !s.set[i] {
		return false
	}
	s.slots[i] = core.Position3D{}
	s.set[i] = false
	return true
}

// Get returns the position in slot i.
func (s *Sequence) Get(i int) (core.Position3D, bool) {
	if i < 0 || i >= len(s.slots) || !s.set[i] {
		return core.Position3D{}, false
	}
	return s.slots[i], true
}

// Extent is one past the highest populated slot. The boundary closes its
// loop over this prefix, so a course calibrated up to waypoint k is a closed
// k-gon.
func (s *Sequence) Extent() int {
	for i := len(s.set) - 1; i >= 0; i-- {
		if s.set[i] {
			return i + 1
		}
	}
	return 0
}

// Populated returns the number of populated slots.
func (s *Sequence) Populated() int {
	n := 0
	for _, ok := range s.set {
		if ok {
			n++
		}
	}
	return n
}

// Complete reports whether every slot is populated.
func (s *Sequence) Complete() bool {
	return len(s.slots) > 0 && s.Populated() == len(s.slots)
}

// Points returns the populated positions in slot order, skipping gaps.
func (s *Sequence) Points() []core.Position3D {
	out := make([]core.Position3D, 0, len(s.slots))
	for i, p := range s.slots {
		if s.set[i] {
			out = append(out, p)
		}
	}
	return out
}

// Reset empties every slot.
func (s *Sequence) Reset() {
	for i := range s.slots {
		s.slots[i] = core.Position3D{}
		s.set[i] = false
	}
}
