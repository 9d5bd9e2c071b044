package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/holeinone/coursecal/internal/calibration"
	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/internal/dispatcher"
	"github.com/holeinone/coursecal/internal/feed"
	"github.com/holeinone/coursecal/internal/handlers"
	"github.com/holeinone/coursecal/internal/marker"
	"github.com/holeinone/coursecal/internal/registry"
	"github.com/holeinone/coursecal/internal/session"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/pkg/streaming"
)

// newSession builds a calibration session from the calibration config.
// Configured proxies override the stock prefab per marker name.
func newSession(cfg config.CalibrationConfig, logger *slog.Logger) (*session.Session, error) {
	policy, err := calibration.PolicyByName(cfg.Elevation)
	if err != nil {
		return nil, err
	}

	ids := marker.NewClassifier(cfg.Complexity, cfg.Aliases).IDs()
	prefabs := registry.DefaultPrefabs(ids)
	for name, prefab := range cfg.Proxies {
		prefabs[name] = prefab
	}

	return session.New(session.Config{
		Complexity: cfg.Complexity,
		Epsilon:    cfg.Epsilon,
		Elevation:  policy,
		Aliases:    cfg.Aliases,
	}, registry.NewPrefabFactory(prefabs), logger)
}

// frameLoop owns the session and feeds it from a single source.
type frameLoop struct {
	session    *session.Session
	dispatcher *dispatcher.Dispatcher
	logger     *slog.Logger

	// last session attributes, read by the log context handler from any goroutine
	attrs atomic.Pointer[[]slog.Attr]
}

func newFrameLoop(sess *session.Session, backend storage.Backend, telemetry handlers.Telemetry, logger *slog.Logger) (*frameLoop, error) {
	d, err := dispatcher.New(logger)
	if err != nil {
		return nil, fmt.Errorf("creating dispatcher: %w", err)
	}

	handlers.NewService(handlers.Dependencies{
		Session:   sess,
		Backend:   backend,
		Telemetry: telemetry,
		Logger:    logger,
	}).RegisterHandlers(d)

	l := &frameLoop{session: sess, dispatcher: d, logger: logger}
	l.snapshotAttrs()
	return l, nil
}

func (l *frameLoop) snapshotAttrs() {
	attrs := l.session.LogAttrs()
	l.attrs.Store(&attrs)
}

// LogAttrs is the logging.AttrSource for the loop's session.
func (l *frameLoop) LogAttrs() []slog.Attr {
	if p := l.attrs.Load(); p != nil {
		return *p
	}
	return nil
}

// run dispatches envelopes until the source ends or ctx is done. Handler
// errors are reported back to the feed and do not stop the loop.
func (l *frameLoop) run(ctx context.Context, src feed.Source) error {
	replier, _ := src.(feed.Replier)

	for {
		env, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		result, err := l.dispatcher.Dispatch(dispatcher.Event{Command: env.Type, Payload: env.Payload})
		l.snapshotAttrs()

		if err != nil {
			l.logger.Warn("Command failed", "command", env.Type, "error", err)
			result = streaming.ErrorMessage{Type: streaming.TypeError, For: env.Type, Error: err.Error()}
		}
		if replier != nil {
			if err := replier.Reply(result); err != nil {
				l.logger.Warn("Failed to reply to feed", "command", env.Type, "error", err)
			}
		}
	}
}
