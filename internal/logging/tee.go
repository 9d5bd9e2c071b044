package logging

import (
	"context"
	"errors"
	"log/slog"
)

// tee hands every record to each sink that accepts its level. The console
// or log file sink and the OTel bridge usually sit side by side here.
type tee []slog.Handler

// newTee drops nil sinks and skips the wrapper when one sink is left.
func newTee(sinks ...slog.Handler) slog.Handler {
	t := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	if len(t) == 1 {
		return t[0]
	}
	return t
}

func (t tee) Enabled(ctx context.Context, level slog.Level) bool {
	for _, s := range t {
		if s.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle writes to every sink even when one fails and reports the failures
// together.
func (t tee) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, s := range t {
		if !s.Enabled(ctx, r.Level) {
			continue
		}
		if err := s.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t tee) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(tee, len(t))
	for i, s := range t {
		out[i] = s.WithAttrs(attrs)
	}
	return out
}

func (t tee) WithGroup(name string) slog.Handler {
	if name == "" {
		return t
	}
	out := make(tee, len(t))
	for i, s := range t {
		out[i] = s.WithGroup(name)
	}
	return out
}
