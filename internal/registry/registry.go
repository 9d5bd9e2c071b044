// Package registry owns the last-known pose and visual proxy of every
// marker the feed has reported.
package registry

import (
	"errors"
	"fmt"

	"github.com/holeinone/coursecal/pkg/core"
)

// ErrMissingProxy is returned when no proxy prefab is configured for a marker.
// It is a configuration error and is reported once, at session construction.
var ErrMissingProxy = errors.New("no proxy prefab configured for marker")

// Proxy is the visual stand-in spawned for a marker in the scene.
type Proxy interface {
	SetPosition(p core.Position3D)
	SetVisible(visible bool)
	Destroy()
}

// ProxyFactory spawns proxies. Validate is called once before any frame is
// processed so that a missing prefab fails fast.
type ProxyFactory interface {
	Validate(ids []core.MarkerID) error
	Spawn(id core.MarkerID, at core.Position3D) (Proxy, error)
}

// Entry is the registry's view of one marker.
type Entry struct {
	ID        core.MarkerID
	Position  core.Position3D
	HasPose   bool
	Tracked   bool
	Confirmed bool

	proxy Proxy
}

// Registry maps marker identities to entries. Not safe for concurrent use:
// it is driven from the frame callback only.
type Registry struct {
	factory ProxyFactory
	epsilon float64
	entries map[core.MarkerID]*Entry
}

// New creates a registry. Pose changes of epsilon metres or less are treated
// as tracking jitter and ignored.
func New(factory ProxyFactory, epsilon float64) *Registry {
	return &Registry{
		factory: factory,
		epsilon: epsilon,
		entries: make(map[core.MarkerID]*Entry),
	}
}

// Observe records a sighting and its tracked flag. The entry is created on
// first sighting. Tracked status is reflected even for confirmed markers,
// for display purposes only.
func (r *Registry) Observe(id core.MarkerID, tracked bool) *Entry {
	e, ok := r.entries[id]
	if !ok {
		e = &Entry{ID: id}
		r.entries[id] = e
	}
	e.Tracked = tracked
	if e.proxy != nil {
		e.proxy.SetVisible(tracked)
	}
	return e
}

// Update stores a new pose for an unconfirmed marker and reports whether the
// stored position changed: true on the first pose, or when the marker moved
// more than epsilon. Confirmed markers are frozen and always return false.
// The proxy is spawned with the first pose.
func (r *Registry) Update(id core.MarkerID, pos core.Position3D) (bool, error) {
	e, ok := r.entries[id]
	if !ok {
		e = &Entry{ID: id}
		r.entries[id] = e
	}
	if e.Confirmed {
		return false, nil
	}

	if !e.HasPose {
		proxy, err := r.factory.Spawn(id, pos)
		if err != nil {
			return false, fmt.Errorf("spawning proxy for %s: %w", id, err)
		}
		proxy.SetVisible(e.Tracked)
		e.proxy = proxy
		e.Position = pos
		e.HasPose = true
		return true, nil
	}

	if e.Position.Distance(pos) <= r.epsilon {
		return false, nil
	}
	e.Position = pos
	e.proxy.SetPosition(pos)
	return true, nil
}

// Place overwrites a marker's stored position regardless of its confirmed
// state. Only explicit realignment uses it; feed updates go through Update.
func (r *Registry) Place(id core.MarkerID, pos core.Position3D) bool {
	e, ok := r.entries[id]
	if !ok || !e.HasPose {
		return false
	}
	e.Position = pos
	e.proxy.SetPosition(pos)
	return true
}

// Confirm freezes a marker's pose. It fails if the marker has no pose yet.
func (r *Registry) Confirm(id core.MarkerID) bool {
	e, ok := r.entries[id]
	if !ok || !e.HasPose {
		return false
	}
	e.Confirmed = true
	return true
}

// Remove drops an unconfirmed marker and destroys its proxy.
// Confirmed markers are never removed.
func (r *Registry) Remove(id core.MarkerID) bool {
	e, ok := r.entries[id]
	if !ok || e.Confirmed {
		return false
	}
	if e.proxy != nil {
		e.proxy.Destroy()
	}
	delete(r.entries, id)
	return true
}

// Get returns the last-known position of a marker.
func (r *Registry) Get(id core.MarkerID) (core.Position3D, bool) {
	e, ok := r.entries[id]
	if !ok || !e.HasPose {
		return core.Position3D{}, false
	}
	return e.Position, true
}

// Entry returns a copy of the entry for id.
func (r *Registry) Entry(id core.MarkerID) (Entry, bool) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Len returns the number of registered markers.
func (r *Registry) Len() int {
	return len(r.entries)
}

// Reset destroys every proxy and clears all entries, confirmed or not.
// It is the registry teardown used when a session ends.
func (r *Registry) Reset() {
	for _, e := range r.entries {
		if e.proxy != nil {
			e.proxy.Destroy()
		}
	}
	r.entries = make(map[core.MarkerID]*Entry)
}
