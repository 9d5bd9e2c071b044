package calibration

import (
	"fmt"

	"github.com/holeinone/coursecal/pkg/core"
)

// Elevation is the course height latched from the first confirmed waypoint.
// Once latched it never changes until the session is reset.
type Elevation struct {
	value   float64
	latched bool
}

// Latch records y as the course elevation. Only the first call has effect;
// it returns whether this call latched.
func (e *Elevation) Latch(y float64) bool {
	if e.latched {
		return false
	}
	e.value = y
	e.latched = true
	return true
}

// Value returns the latched elevation and whether it has been set.
func (e Elevation) Value() (float64, bool) {
	return e.value, e.latched
}

// Project moves p onto the latched plane. Before latching it returns p.
func (e Elevation) Project(p core.Position3D) core.Position3D {
	if !e.latched {
		return p
	}
	p.Y = e.value
	return p
}

// ElevationPolicy decides how sightings relate to the latched elevation.
type ElevationPolicy interface {
	Name() string
	// Apply returns the position to store for an accepted sighting.
	Apply(p core.Position3D, e Elevation) core.Position3D
}

// Policy names accepted by PolicyByName.
const (
	PolicyFlatten = "flatten"
	PolicyManual  = "manual"
)

// FlattenPolicy projects every sighting accepted after the latch onto the
// course plane. Markers placed before the latch keep their height until an
// explicit realignment.
type FlattenPolicy struct{}

func (FlattenPolicy) Name() string { return PolicyFlatten }

func (FlattenPolicy) Apply(p core.Position3D, e Elevation) core.Position3D {
	return e.Project(p)
}

// ManualPolicy stores sightings as reported. Heights only change when the
// session is explicitly realigned.
type ManualPolicy struct{}

func (ManualPolicy) Name() string { return PolicyManual }

func (ManualPolicy) Apply(p core.Position3D, _ Elevation) core.Position3D {
	return p
}

// PolicyByName resolves a configured policy name.
func PolicyByName(name string) (ElevationPolicy, error) {
	switch name {
	case PolicyFlatten, "":
		return FlattenPolicy{}, nil
	case PolicyManual:
		return ManualPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown elevation policy: %s", name)
	}
}
