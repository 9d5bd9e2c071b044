package registry

import (
	"fmt"

	"github.com/holeinone/coursecal/pkg/core"
)

// DefaultPrefabs returns the stock prefab name for each marker.
func DefaultPrefabs(ids []core.MarkerID) map[string]string {
	prefabs := make(map[string]string, len(ids))
	for _, id := range ids {
		switch id.Role {
		case core.RoleWaypoint:
			prefabs[id.Name()] = fmt.Sprintf("WaypointMarker_%d", id.Index+1)
		case core.RoleBallSpawn:
			prefabs[id.Name()] = "BallSpawnMarker"
		case core.RoleHole:
			prefabs[id.Name()] = "HoleMarker"
		}
	}
	return prefabs
}

// PrefabFactory spawns Handles from a marker-name to prefab-name table.
type PrefabFactory struct {
	prefabs map[string]string
	spawned int
}

// NewPrefabFactory creates a factory over the given prefab table.
func NewPrefabFactory(prefabs map[string]string) *PrefabFactory {
	return &PrefabFactory{prefabs: prefabs}
}

// Validate checks that every marker has a prefab.
func (f *PrefabFactory) Validate(ids []core.MarkerID) error {
	for _, id := range ids {
		if f.prefabs[id.Name()] == "" {
			return fmt.Errorf("%w: %s", ErrMissingProxy, id.Name())
		}
	}
	return nil
}

// Spawn creates a Handle for id at the given position.
func (f *PrefabFactory) Spawn(id core.MarkerID, at core.Position3D) (Proxy, error) {
	prefab := f.prefabs[id.Name()]
	if prefab == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingProxy, id.Name())
	}
	f.spawned++
	return &Handle{Prefab: prefab, Position: at}, nil
}

// Spawned returns how many proxies the factory has created.
func (f *PrefabFactory) Spawned() int {
	return f.spawned
}

// Handle is a headless proxy. It records what a renderer would be told so the
// display layer can read it back.
type Handle struct {
	Prefab    string
	Position  core.Position3D
	Visible   bool
	Destroyed bool
}

func (h *Handle) SetPosition(p core.Position3D) { h.Position = p }
func (h *Handle) SetVisible(visible bool)       { h.Visible = visible }
func (h *Handle) Destroy()                      { h.Destroyed = true }
