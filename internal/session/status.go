package session

import "github.com/holeinone/coursecal/pkg/core"

// Status returns the display snapshot for this frame.
func (s *Session) Status() core.Status {
	st := core.Status{
		SessionID:          s.id,
		Phase:              s.machine.Phase(),
		ActiveTarget:       s.activeName(),
		CanConfirm:         s.CanConfirm(),
		ConfirmedWaypoints: s.machine.ConfirmedWaypoints(),
		TotalWaypoints:     s.machine.Complexity(),
		Segments:           s.boundary.Len(),
		MeshValid:          s.mesh != nil,
		CanStart:           s.CanStart(),
	}

	ids := s.classifier.IDs()
	st.Markers = make([]core.MarkerStatus, 0, len(ids))
	for _, id := range ids {
		e, sighted := s.registry.Entry(id)
		st.Markers = append(st.Markers, core.MarkerStatus{
			Name:      id.Name(),
			Role:      id.Role.String(),
			Sighted:   sighted,
			Tracked:   sighted && e.Tracked,
			Confirmed: s.machine.IsConfirmed(id),
		})
	}

	if s.footprint != nil {
		st.Area = s.footprint.Area
		st.SelfIntersecting = !s.footprint.Simple
	}
	return st
}
