// Package session is the calibration session: it owns the marker registry,
// the state machine and the derived geometry for one course, and is driven
// one frame batch at a time by the frame loop.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/holeinone/coursecal/internal/calibration"
	"github.com/holeinone/coursecal/internal/geo"
	"github.com/holeinone/coursecal/internal/marker"
	"github.com/holeinone/coursecal/internal/registry"
	"github.com/holeinone/coursecal/pkg/core"
)

// ErrNotComplete is returned when a course snapshot is requested before every
// marker has been confirmed.
var ErrNotComplete = errors.New("calibration is not complete")

// Config holds the per-session calibration settings.
type Config struct {
	Complexity int
	Epsilon    float64
	Elevation  calibration.ElevationPolicy
	Aliases    map[string]string
}

// Session is a single calibration run. Not safe for concurrent use: all
// methods are called from the frame loop.
type Session struct {
	id        string
	createdAt time.Time
	logger    *slog.Logger

	classifier *marker.Classifier
	registry   *registry.Registry
	machine    *calibration.Machine
	policy     calibration.ElevationPolicy
	elevation  calibration.Elevation

	waypoints *geo.Sequence
	boundary  geo.Boundary
	mesh      *geo.Mesh
	footprint *geo.Footprint

	frame uint64
}

// New creates a session. The proxy factory is validated against every
// configured marker up front; a missing prefab is returned as
// registry.ErrMissingProxy and the session is not created.
func New(cfg Config, factory registry.ProxyFactory, logger *slog.Logger) (*Session, error) {
	if cfg.Complexity < 1 {
		return nil, fmt.Errorf("course complexity must be at least 1, got %d", cfg.Complexity)
	}
	if cfg.Epsilon < 0 {
		return nil, fmt.Errorf("position epsilon must not be negative, got %v", cfg.Epsilon)
	}
	if cfg.Elevation == nil {
		cfg.Elevation = calibration.FlattenPolicy{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	classifier := marker.NewClassifier(cfg.Complexity, cfg.Aliases)
	if err := factory.Validate(classifier.IDs()); err != nil {
		return nil, fmt.Errorf("validating marker proxies: %w", err)
	}

	s := &Session{
		id:         uuid.NewString(),
		createdAt:  time.Now().UTC(),
		logger:     logger,
		classifier: classifier,
		registry:   registry.New(factory, cfg.Epsilon),
		machine:    calibration.NewMachine(cfg.Complexity),
		policy:     cfg.Elevation,
		waypoints:  geo.NewSequence(cfg.Complexity),
	}
	s.logger.Info("Calibration session started",
		"session", s.id,
		"complexity", cfg.Complexity,
		"epsilon", cfg.Epsilon,
		"elevation", s.policy.Name())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Complexity returns the number of waypoints on the course.
func (s *Session) Complexity() int {
	return s.machine.Complexity()
}

// Frame returns the number of the last applied frame batch.
func (s *Session) Frame() uint64 {
	return s.frame
}

// ApplyFrame applies one frame's worth of pose events. Added and updated
// events are handled alike. It reports whether the boundary and mesh were
// rebuilt.
func (s *Session) ApplyFrame(batch core.FrameBatch) bool {
	s.frame = batch.Frame
	dirty := false

	for _, u := range batch.Added {
		if s.applyPose(u) {
			dirty = true
		}
	}
	for _, u := range batch.Updated {
		if s.applyPose(u) {
			dirty = true
		}
	}
	for _, name := range batch.Removed {
		if s.applyRemoved(name) {
			dirty = true
		}
	}

	if dirty {
		s.rebuild()
	}
	return dirty
}

// applyPose returns true when a waypoint slot changed.
func (s *Session) applyPose(u core.PoseUpdate) bool {
	id, ok := s.classifier.Classify(u.Name)
	if !ok {
		s.logger.Debug("Ignoring unrecognized marker", "name", u.Name, "frame", s.frame)
		return false
	}

	entry := s.registry.Observe(id, u.Tracked())
	if entry.Confirmed {
		return false
	}
	if !s.machine.Accepts(id) {
		s.logger.Debug("Dropping out-of-turn sighting", "marker", id.Name(), "frame", s.frame)
		return false
	}

	pos := s.policy.Apply(u.Position, s.elevation)
	moved, err := s.registry.Update(id, pos)
	if err != nil {
		s.logger.Error("Failed to update marker", "marker", id.Name(), "error", err)
		return false
	}
	if !moved || id.Role != core.RoleWaypoint {
		return false
	}

	s.waypoints.Set(id.Index, pos)
	return true
}

func (s *Session) applyRemoved(name string) bool {
	id, ok := s.classifier.Classify(name)
	if !ok {
		return false
	}
	if !s.registry.Remove(id) {
		return false
	}
	s.logger.Debug("Marker removed", "marker", id.Name(), "frame", s.frame)
	if id.Role != core.RoleWaypoint {
		return false
	}
	return s.waypoints.Clear(id.Index)
}

// rebuild replaces the boundary, mesh and footprint wholesale.
func (s *Session) rebuild() {
	s.boundary.Rebuild(s.waypoints)

	s.mesh, _ = geo.BuildMesh(s.waypoints.Points())
	s.footprint = nil
	if s.mesh != nil {
		if fp, err := geo.NewFootprint(s.mesh.Outline()); err == nil {
			s.footprint = &fp
		}
	}

	s.logger.Debug("Course geometry rebuilt",
		"segments", s.boundary.Len(),
		"triangles", s.mesh.TriangleCount(),
		"generation", s.boundary.Generation)
}

// CanConfirm reports whether Confirm would succeed: the active target is
// tracked and has a pose.
func (s *Session) CanConfirm() bool {
	active, ok := s.machine.Active()
	if !ok {
		return false
	}
	e, ok := s.registry.Entry(active)
	return ok && e.Tracked && e.HasPose
}

// Confirm freezes the active target and advances calibration by one step.
// It is a no-op returning false when the target is not currently tracked or
// calibration is already complete.
func (s *Session) Confirm() bool {
	if !s.CanConfirm() {
		s.logger.Debug("Confirm ignored, target not tracked", "target", s.activeName())
		return false
	}

	active, _ := s.machine.Active()
	e, _ := s.registry.Entry(active)
	s.registry.Confirm(active)

	if active.Role == core.RoleWaypoint && s.elevation.Latch(e.Position.Y) {
		s.logger.Info("Course elevation latched", "elevation", e.Position.Y, "marker", active.Name())
	}

	s.machine.Advance()
	s.logger.Info("Marker confirmed",
		"marker", active.Name(),
		"position", e.Position,
		"phase", s.machine.Phase().String())
	return true
}

// Realign projects every stored pose, confirmed or not, onto the latched
// course elevation and rebuilds the geometry. It returns how many markers
// were moved; nothing happens before the elevation is latched.
func (s *Session) Realign() int {
	if _, latched := s.elevation.Value(); !latched {
		return 0
	}

	moved := 0
	for _, id := range s.classifier.IDs() {
		pos, ok := s.registry.Get(id)
		if !ok {
			continue
		}
		flat := s.elevation.Project(pos)
		if flat == pos {
			continue
		}
		s.registry.Place(id, flat)
		if id.Role == core.RoleWaypoint {
			s.waypoints.Set(id.Index, flat)
		}
		moved++
	}

	if moved > 0 {
		s.rebuild()
	}
	s.logger.Info("Markers realigned to course elevation", "moved", moved)
	return moved
}

// Reset tears down every proxy and all geometry and starts a new calibration
// under a fresh session id.
func (s *Session) Reset() {
	s.registry.Reset()
	s.machine.Reset()
	s.elevation = calibration.Elevation{}
	s.waypoints.Reset()
	s.boundary.Clear()
	s.mesh = nil
	s.footprint = nil

	previous := s.id
	s.id = uuid.NewString()
	s.createdAt = time.Now().UTC()
	s.logger.Info("Calibration session reset", "previous", previous, "session", s.id)
}

// BallSpawnPosition returns the ball spawn marker's position.
func (s *Session) BallSpawnPosition() (core.Position3D, bool) {
	return s.registry.Get(core.BallSpawnID)
}

// HolePosition returns the hole marker's position.
func (s *Session) HolePosition() (core.Position3D, bool) {
	return s.registry.Get(core.HoleID)
}

// IsInsideCourse reports whether p lies within the course outline on the
// horizontal plane. It is false until every waypoint slot is populated and
// the outline forms a valid mesh.
func (s *Session) IsInsideCourse(p core.Position3D) bool {
	if !s.waypoints.Complete() {
		return false
	}
	return s.mesh.Contains(p)
}

// Boundary returns the current boundary segments.
func (s *Session) Boundary() geo.Boundary {
	return s.boundary
}

// Mesh returns the current playable-area mesh, or nil when fewer than three
// non-collinear waypoints are populated.
func (s *Session) Mesh() *geo.Mesh {
	return s.mesh
}

// Footprint returns the course footprint polygon, if a mesh exists.
func (s *Session) Footprint() (geo.Footprint, bool) {
	if s.footprint == nil {
		return geo.Footprint{}, false
	}
	return *s.footprint, true
}

// Elevation returns the latched course elevation.
func (s *Session) Elevation() (float64, bool) {
	return s.elevation.Value()
}

// Course returns an immutable snapshot of the completed calibration.
func (s *Session) Course() (*core.Course, error) {
	if !s.machine.Complete() {
		return nil, ErrNotComplete
	}

	ids := s.classifier.IDs()
	c := &core.Course{
		SessionID:  s.id,
		CreatedAt:  s.createdAt,
		Complexity: s.machine.Complexity(),
		Waypoints:  make([]core.Position3D, 0, s.machine.Complexity()),
	}
	for _, id := range ids {
		pos, _ := s.registry.Get(id)
		switch id.Role {
		case core.RoleWaypoint:
			c.Waypoints = append(c.Waypoints, pos)
		case core.RoleBallSpawn:
			c.BallSpawn = pos
		case core.RoleHole:
			c.Hole = pos
		}
	}
	c.Elevation, c.ElevationLatched = s.elevation.Value()
	if s.footprint != nil {
		c.Area = s.footprint.Area
	}
	return c, nil
}

// LogAttrs returns the attributes that identify what the operator is
// calibrating right now. It feeds logging.SessionHandler.
func (s *Session) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("session", s.id),
		slog.String("target", s.activeName()),
	}
}

func (s *Session) activeName() string {
	active, ok := s.machine.Active()
	if !ok {
		return ""
	}
	return active.Name()
}
