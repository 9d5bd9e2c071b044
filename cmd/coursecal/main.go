// Command coursecal runs course calibration against a live pose feed or a
// recorded session, and answers containment queries for saved courses.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/internal/feed"
	"github.com/holeinone/coursecal/internal/influx"
	"github.com/holeinone/coursecal/internal/logging"
	intOtel "github.com/holeinone/coursecal/internal/otel"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildDate can be set at build time via ldflags
var (
	CurrentVersion string = "0.0.1"
	BuildDate      string = "unknown"
)

var (
	// SlogManager handles all slog-based logging
	SlogManager *logging.SlogManager

	// Logger is the slog logger (convenience reference)
	Logger *slog.Logger

	// OTelProvider handles OpenTelemetry
	OTelProvider *intOtel.Provider

	SessionStartTime time.Time = time.Now()

	logFile *os.File
)

const usage = `usage: coursecal [flags] <command> [args]

commands:
  stream           calibrate from the live pose feed (feed.url)
  replay <file>    calibrate from a recorded JSON-lines session (.gz allowed)
  inside <x,z>     test a point against the latest saved course

flags:
`

func main() {
	configDir := pflag.StringP("config", "c", ".", "directory containing "+config.FileName)
	logLevel := pflag.StringP("log-level", "l", "", "override logLevel from the config file")
	pflag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		pflag.PrintDefaults()
	}
	pflag.Parse()

	args := pflag.Args()
	if len(args) == 0 {
		pflag.Usage()
		os.Exit(2)
	}

	if err := config.Load(*configDir); err != nil {
		config.LoadDefaults()
		fmt.Fprintf(os.Stderr, "Failed to load config, using defaults: %v\n", err)
	}
	if *logLevel != "" {
		viper.Set("logLevel", *logLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := setupLogging(args[0] != "inside"); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogging()
	Logger.Info("Starting coursecal", "version", CurrentVersion, "buildDate", BuildDate, "command", args[0])

	var err error
	switch args[0] {
	case "stream":
		err = runStream(ctx)
	case "replay":
		if len(args) < 2 {
			err = errors.New("replay needs a recording file")
			break
		}
		err = runReplay(ctx, args[1], os.Stdout)
	case "inside":
		if len(args) < 2 {
			err = errors.New("inside needs a point as x,z or x,y,z")
			break
		}
		err = runInside(args[1], os.Stdout)
	default:
		pflag.Usage()
		os.Exit(2)
	}

	if err != nil {
		Logger.Error("Command failed", "command", args[0], "error", err)
		fmt.Fprintln(os.Stderr, err)
		shutdownLogging()
		os.Exit(1)
	}
}

// setupLogging writes to the session log file, or to stderr when toFile is
// false, with an optional OTel pipeline.
func setupLogging(toFile bool) error {
	SlogManager = logging.NewSlogManager()

	logsDir := viper.GetString("logsDir")
	if toFile {
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return fmt.Errorf("creating logs dir: %w", err)
		}
		path := logging.LogFilePath(logsDir, logging.ServiceName, SessionStartTime)
		f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		logFile = f
	}

	otelCfg := config.GetOTelConfig()
	var otelWriter io.Writer
	if otelCfg.Enabled && logFile != nil {
		otelWriter = logFile
	}

	provider, err := intOtel.New(intOtel.Config{
		Enabled:        otelCfg.Enabled,
		ServiceName:    otelCfg.ServiceName,
		ServiceVersion: CurrentVersion,
		BatchTimeout:   otelCfg.BatchTimeout,
		LogWriter:      otelWriter,
		Endpoint:       otelCfg.Endpoint,
		Insecure:       otelCfg.Insecure,
	})
	if err != nil {
		return fmt.Errorf("creating OTel provider: %w", err)
	}
	OTelProvider = provider

	var file io.Writer
	if logFile != nil {
		file = logFile
	}
	SlogManager.Setup(file, viper.GetString("logLevel"), OTelProvider.LoggerProvider())
	Logger = SlogManager.Logger()
	return nil
}

func shutdownLogging() {
	if OTelProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := OTelProvider.Shutdown(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "OTel shutdown: %v\n", err)
		}
		OTelProvider = nil
	}
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// calibrate wires session, storage and telemetry around src and runs the
// frame loop until the source ends.
func calibrate(ctx context.Context, src feed.Source) (*frameLoop, error) {
	calCfg, err := config.GetCalibrationConfig()
	if err != nil {
		return nil, err
	}

	sess, err := newSession(calCfg, Logger)
	if err != nil {
		return nil, err
	}

	backend, err := initStorage(viper.GetString("logsDir"), Logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			Logger.Error("Failed to close storage backend", "error", err)
		}
	}()

	telemetry := influx.NewManager(config.GetInfluxConfig(), Logger)
	if err := telemetry.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting telemetry: %w", err)
	}
	defer func() {
		if err := telemetry.Close(); err != nil {
			Logger.Error("Failed to close telemetry", "error", err)
		}
	}()

	loop, err := newFrameLoop(sess, backend, telemetry, Logger)
	if err != nil {
		return nil, err
	}
	SlogManager.SetSessionAttrs(loop.LogAttrs)
	defer SlogManager.SetSessionAttrs(nil)

	if err := loop.run(ctx, src); err != nil && !errors.Is(err, context.Canceled) {
		return loop, err
	}
	return loop, nil
}

func runStream(ctx context.Context) error {
	client, err := feed.Dial(ctx, config.GetFeedConfig(), Logger)
	if err != nil {
		return err
	}
	defer client.Close()

	_, err = calibrate(ctx, client)
	return err
}

func runReplay(ctx context.Context, path string, out io.Writer) error {
	src, err := feed.OpenReplayFile(path)
	if err != nil {
		return err
	}
	defer src.Close()

	loop, err := calibrate(ctx, src)
	if err != nil {
		return fmt.Errorf("replay stopped at line %d: %w", src.Line(), err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(loop.session.Status())
}
