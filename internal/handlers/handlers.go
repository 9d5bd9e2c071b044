// Package handlers binds feed commands to the calibration session. Every
// handler runs on the frame loop goroutine via the dispatcher and answers
// with an ack carrying the display status.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/holeinone/coursecal/internal/dispatcher"
	"github.com/holeinone/coursecal/internal/session"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/pkg/core"
	"github.com/holeinone/coursecal/pkg/streaming"
)

// Telemetry receives one status snapshot per frame that carried events.
type Telemetry interface {
	WriteStatus(frame, rebuilds uint64, st core.Status, at time.Time) error
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Session   *session.Session
	Backend   storage.Backend // optional
	Telemetry Telemetry       // optional
	Logger    *slog.Logger
}

// Service provides handler methods for processing feed commands
type Service struct {
	deps Dependencies

	// session id of the last course handed to the backend
	savedSession string
}

// NewService creates a new handler service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Service{deps: deps}
}

// RegisterHandlers registers every feed command with the dispatcher.
func (s *Service) RegisterHandlers(d *dispatcher.Dispatcher) {
	d.Register(streaming.TypeFrame, s.handleFrame)
	d.Register(streaming.TypeConfirm, s.handleConfirm, dispatcher.Logged())
	d.Register(streaming.TypeReset, s.handleReset, dispatcher.Logged())
	d.Register(streaming.TypeRealign, s.handleRealign, dispatcher.Logged())
	d.Register(streaming.TypeStatus, s.handleStatus)
}

func (s *Service) ack(command string, result any) streaming.AckMessage {
	st := s.deps.Session.Status()
	return streaming.AckMessage{
		Type:   streaming.TypeAck,
		For:    command,
		Result: result,
		Status: &st,
	}
}

func (s *Service) handleFrame(e dispatcher.Event) (any, error) {
	var batch streaming.FramePayload
	if err := json.Unmarshal(e.Payload, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode frame: %w", err)
	}

	s.deps.Session.ApplyFrame(batch)
	ack := s.ack(e.Command, nil)

	// Idle frames change nothing, so they get no telemetry point.
	if s.deps.Telemetry != nil && !batch.Empty() {
		rebuilds := s.deps.Session.Boundary().Generation
		if err := s.deps.Telemetry.WriteStatus(batch.Frame, rebuilds, *ack.Status, e.Timestamp); err != nil {
			s.deps.Logger.Warn("Failed to write telemetry", "frame", batch.Frame, "error", err)
		}
	}
	return ack, nil
}

func (s *Service) handleConfirm(e dispatcher.Event) (any, error) {
	target := s.deps.Session.Status().ActiveTarget
	confirmed := s.deps.Session.Confirm()

	if confirmed && s.deps.Session.AllMarkersConfirmed() {
		if err := s.saveCourse(); err != nil {
			s.deps.Logger.Error("Failed to save course", "error", err)
		}
	}
	return s.ack(e.Command, streaming.ConfirmPayload{Confirmed: confirmed, Target: target}), nil
}

func (s *Service) handleReset(e dispatcher.Event) (any, error) {
	s.deps.Session.Reset()
	return s.ack(e.Command, nil), nil
}

func (s *Service) handleRealign(e dispatcher.Event) (any, error) {
	moved := s.deps.Session.Realign()
	return s.ack(e.Command, streaming.RealignPayload{Moved: moved}), nil
}

func (s *Service) handleStatus(e dispatcher.Event) (any, error) {
	return s.ack(e.Command, nil), nil
}

// saveCourse hands the completed course to the backend, once per session.
func (s *Service) saveCourse() error {
	if s.deps.Backend == nil {
		return nil
	}
	c, err := s.deps.Session.Course()
	if err != nil {
		return err
	}
	if c.SessionID == s.savedSession {
		return nil
	}

	if err := s.deps.Backend.SaveCourse(c); err != nil {
		return fmt.Errorf("saving course: %w", err)
	}
	s.savedSession = c.SessionID

	attrs := []any{"id", c.ID, "session", c.SessionID, "area", c.Area}
	if exp, ok := s.deps.Backend.(storage.Exportable); ok {
		attrs = append(attrs, "path", exp.GetExportedFilePath())
	}
	s.deps.Logger.Info("Course saved", attrs...)
	return nil
}
