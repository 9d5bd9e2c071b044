package logging

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// AttrSource returns the attributes that describe the running calibration
// session, such as its id, the active target and the frame number.
type AttrSource func() []slog.Attr

// attrSlot holds the current source. Every handler derived from one
// SessionHandler shares the slot, so loggers handed out before a session
// starts still pick up its attributes.
type attrSlot struct {
	src atomic.Pointer[AttrSource]
}

func (s *attrSlot) set(src AttrSource) {
	if src == nil {
		s.src.Store(nil)
		return
	}
	s.src.Store(&src)
}

func (s *attrSlot) attrs() []slog.Attr {
	p := s.src.Load()
	if p == nil {
		return nil
	}
	return (*p)()
}

// SessionHandler stamps each record with the session attributes before it
// reaches next. A key the call site already set is left alone, so
// logger.Info("...", "target", name) keeps the caller's value. Outside a
// session records pass through untouched.
type SessionHandler struct {
	next slog.Handler
	slot *attrSlot
}

// NewSessionHandler wraps next with no session installed.
func NewSessionHandler(next slog.Handler) *SessionHandler {
	return &SessionHandler{next: next, slot: &attrSlot{}}
}

// SetSource installs src for this handler and every handler derived from it.
// A nil src ends the session.
func (h *SessionHandler) SetSource(src AttrSource) {
	h.slot.set(src)
}

func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	attrs := h.slot.attrs()
	if len(attrs) == 0 {
		return h.next.Handle(ctx, r)
	}

	set := make(map[string]struct{}, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		set[a.Key] = struct{}{}
		return true
	})
	for _, a := range attrs {
		if _, ok := set[a.Key]; !ok {
			r.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SessionHandler{next: h.next.WithAttrs(attrs), slot: h.slot}
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &SessionHandler{next: h.next.WithGroup(name), slot: h.slot}
}
