package session

// AllMarkersConfirmed reports whether every waypoint, the ball spawn and the
// hole have been confirmed.
func (s *Session) AllMarkersConfirmed() bool {
	return s.machine.AllConfirmed()
}

// CanStart is the readiness predicate gating gameplay: every marker is
// confirmed and both the ball spawn and the hole lie inside the course.
// It has no side effects and may be polled every frame.
func (s *Session) CanStart() bool {
	if !s.AllMarkersConfirmed() {
		return false
	}
	spawn, ok := s.BallSpawnPosition()
	if !ok || !s.IsInsideCourse(spawn) {
		return false
	}
	hole, ok := s.HolePosition()
	return ok && s.IsInsideCourse(hole)
}
