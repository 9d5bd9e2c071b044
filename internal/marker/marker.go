// Package marker turns feed image names into typed marker identities.
package marker

import (
	"strconv"
	"strings"

	"github.com/holeinone/coursecal/pkg/core"
)

// Classifier maps feed names onto core.MarkerID. Recognized names are parsed
// once and cached, so the per-frame path is a single map lookup. The feed can
// report any name, so unknown ones are re-parsed instead of cached.
// Not safe for concurrent use; a classifier belongs to one session.
type Classifier struct {
	complexity int
	aliases    map[string]string
	seen       map[string]core.MarkerID
}

// NewClassifier creates a classifier for a course of the given number of
// waypoints. aliases maps alternative image names onto canonical ones
// (e.g. a reference image library that names the hole differently). Alias
// names match regardless of case, as config keys arrive lowercased.
func NewClassifier(complexity int, aliases map[string]string) *Classifier {
	a := make(map[string]string, len(aliases))
	for k, v := range aliases {
		a[strings.ToLower(k)] = v
	}
	return &Classifier{
		complexity: complexity,
		aliases:    a,
		seen:       make(map[string]core.MarkerID),
	}
}

// Classify returns the identity for name, or false if the name does not
// match any configured role.
func (c *Classifier) Classify(name string) (core.MarkerID, bool) {
	if id, ok := c.seen[name]; ok {
		return id, true
	}
	id, ok := c.parse(name)
	if ok {
		c.seen[name] = id
	}
	return id, ok
}

// IDs returns every configured identity in confirmation order:
// waypoints 1..N, ball spawn, hole.
func (c *Classifier) IDs() []core.MarkerID {
	ids := make([]core.MarkerID, 0, c.complexity+2)
	for i := 0; i < c.complexity; i++ {
		ids = append(ids, core.WaypointID(i))
	}
	return append(ids, core.BallSpawnID, core.HoleID)
}

// Complexity returns the configured number of waypoints.
func (c *Classifier) Complexity() int {
	return c.complexity
}

func (c *Classifier) parse(name string) (core.MarkerID, bool) {
	if canonical, ok := c.aliases[strings.ToLower(name)]; ok {
		name = canonical
	}

	switch name {
	case core.BallSpawnName:
		return core.BallSpawnID, true
	case core.HoleName:
		return core.HoleID, true
	}

	numberPart, found := strings.CutPrefix(name, core.WaypointPrefix)
	if !found {
		return core.MarkerID{}, false
	}
	n, err := strconv.Atoi(numberPart)
	if err != nil || n < 1 || n > c.complexity {
		return core.MarkerID{}, false
	}
	return core.WaypointID(n - 1), true
}
