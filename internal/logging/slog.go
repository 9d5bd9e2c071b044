package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// ServiceName identifies this service's records in the OTel pipeline.
const ServiceName = "coursecal"

// consoleOut receives records when no log file is given. It is stderr so
// commands that print results on stdout stay pipeable.
var consoleOut io.Writer = os.Stderr

// SlogManager owns the process logger: a text sink, an optional OTel sink,
// and the session handler that stamps calibration attributes on both.
type SlogManager struct {
	logger  *slog.Logger
	session *SessionHandler
}

// NewSlogManager creates a new slog-based logging manager.
func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup initializes the logging system. Records go to file when one is
// given and to stderr otherwise. If provider is nil, OTel logging is disabled.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider) {
	lvl := parseLevel(level)

	textOpts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339))
				}
			}
			return a
		},
	}

	out := consoleOut
	if file != nil {
		out = file
	}
	var otelSink slog.Handler
	if provider != nil {
		otelSink = otelslog.NewHandler(ServiceName, otelslog.WithLoggerProvider(provider))
	}

	m.session = NewSessionHandler(newTee(slog.NewTextHandler(out, textOpts), otelSink))
	m.logger = slog.New(m.session)
	m.logger.Info("Logging initialized", "level", level)
}

// SetSessionAttrs installs the source of per-record session attributes.
// Loggers handed out before the call pick it up too. nil clears it.
func (m *SlogManager) SetSessionAttrs(src AttrSource) {
	if m.session != nil {
		m.session.SetSource(src)
	}
}

// Logger returns the configured slog.Logger.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		// Return a default logger if Setup hasn't been called
		return slog.Default()
	}
	return m.logger
}
