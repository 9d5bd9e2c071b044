// Package influx writes calibration telemetry to InfluxDB. When the server
// is disabled or unreachable, points are appended as line protocol to a
// gzip backup file instead.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/influxdata/influxdb-client-go/v2/domain"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/pkg/core"
)

// MeasurementCalibration is the measurement name of per-frame status points.
const MeasurementCalibration = "calibration"

// ErrNotConnected is returned by WritePoint before Connect succeeded.
var ErrNotConnected = errors.New("influxDB client not initialized and backup writer not available")

// Manager handles InfluxDB connections and writes.
type Manager struct {
	mu sync.Mutex

	client       influxdb2.Client
	writer       influxdb2_api.WriteAPI
	backupFile   *os.File
	backupWriter *gzip.Writer
	isValid      bool

	cfg    config.InfluxConfig
	logger *slog.Logger
}

// NewManager creates a new InfluxDB manager.
func NewManager(cfg config.InfluxConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{cfg: cfg, logger: logger}
}

// Connect establishes a connection to InfluxDB, falling back to the
// backup file when telemetry is disabled or the server does not answer.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.Enabled {
		m.client = influxdb2.NewClientWithOptions(
			m.cfg.URL(),
			m.cfg.Token,
			influxdb2.DefaultOptions().
				SetBatchSize(500).
				SetFlushInterval(1000),
		)

		// validate client connection health
		running, err := m.client.Ping(ctx)
		m.isValid = err == nil && running
		if !m.isValid {
			m.logger.Warn("InfluxDB unreachable, using backup writer", "url", m.cfg.URL(), "error", err)
			m.client.Close()
			m.client = nil
		}
	}

	if m.isValid {
		if err := m.setupOrganizationAndBucket(ctx); err != nil {
			m.client.Close()
			m.client = nil
			m.isValid = false
			return err
		}
		m.createWriter()
		m.logger.Info("InfluxDB client initialized", "bucket", m.cfg.Bucket)
		return nil
	}

	return m.openBackup()
}

func (m *Manager) openBackup() error {
	if m.backupWriter != nil {
		return nil
	}
	if m.cfg.BackupPath == "" {
		return fmt.Errorf("no influx backup path configured")
	}
	if err := os.MkdirAll(filepath.Dir(m.cfg.BackupPath), 0755); err != nil {
		return fmt.Errorf("error creating backup directory: %w", err)
	}

	file, err := os.OpenFile(m.cfg.BackupPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.backupWriter = gzip.NewWriter(file)
	m.logger.Info("Writing telemetry to backup file", "backupPath", m.cfg.BackupPath)
	return nil
}

func (m *Manager) setupOrganizationAndBucket(ctx context.Context) error {
	orgs := m.client.OrganizationsAPI()

	// ensure org exists
	org, err := orgs.FindOrganizationByName(ctx, m.cfg.Org)
	if err != nil {
		m.logger.Info("Organization not found, creating", "org", m.cfg.Org)
		org, err = orgs.CreateOrganizationWithName(ctx, m.cfg.Org)
		if err != nil {
			return fmt.Errorf("error creating organization %q: %w", m.cfg.Org, err)
		}
	}

	// ensure bucket exists with 30 day retention
	if _, err := m.client.BucketsAPI().FindBucketByName(ctx, m.cfg.Bucket); err != nil {
		m.logger.Info("Bucket not found, creating", "bucket", m.cfg.Bucket)

		rule := domain.RetentionRuleTypeExpire
		_, err = m.client.BucketsAPI().CreateBucketWithName(ctx, org, m.cfg.Bucket, domain.RetentionRule{
			Type:         &rule,
			EverySeconds: 60 * 60 * 24 * 30,
		})
		if err != nil {
			return fmt.Errorf("error creating bucket %q: %w", m.cfg.Bucket, err)
		}
	}

	return nil
}

func (m *Manager) createWriter() {
	m.writer = m.client.WriteAPI(m.cfg.Org, m.cfg.Bucket)

	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.logger.Error("Error sending data to InfluxDB", "bucket", m.cfg.Bucket, "error", writeErr)
		}
	}(m.writer.Errors())
}

// Valid reports whether points go to a live server.
func (m *Manager) Valid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isValid
}

// WritePoint writes a point to InfluxDB or the backup file.
func (m *Manager) WritePoint(point *influxdb2_write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isValid {
		m.writer.WritePoint(point)
		return nil
	}
	if m.backupWriter == nil {
		return ErrNotConnected
	}

	lineProtocol := influxdb2_write.PointToLineProtocol(point, time.Nanosecond)
	if _, err := m.backupWriter.Write([]byte(lineProtocol)); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WriteStatus records one calibration status snapshot.
func (m *Manager) WriteStatus(frame, rebuilds uint64, st core.Status, at time.Time) error {
	return m.WritePoint(StatusPoint(frame, rebuilds, st, at))
}

// Close flushes pending points and releases the client and backup file.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.writer != nil {
		m.writer.Flush()
	}
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	m.isValid = false

	var err error
	if m.backupWriter != nil {
		err = errors.Join(m.backupWriter.Close(), m.backupFile.Close())
		m.backupWriter = nil
		m.backupFile = nil
	}
	return err
}

// StatusPoint builds the telemetry point for a status snapshot.
func StatusPoint(frame, rebuilds uint64, st core.Status, at time.Time) *influxdb2_write.Point {
	tracked, confirmed := 0, 0
	for _, ms := range st.Markers {
		if ms.Tracked {
			tracked++
		}
		if ms.Confirmed {
			confirmed++
		}
	}

	return influxdb2_write.NewPoint(
		MeasurementCalibration,
		map[string]string{
			"session": st.SessionID,
			"phase":   st.Phase.String(),
		},
		map[string]interface{}{
			"frame":              int64(frame),
			"tracked":            tracked,
			"confirmed":          confirmed,
			"confirmedWaypoints": st.ConfirmedWaypoints,
			"segments":           st.Segments,
			"rebuilds":           int64(rebuilds),
			"area":               st.Area,
			"meshValid":          st.MeshValid,
			"selfIntersecting":   st.SelfIntersecting,
			"canStart":           st.CanStart,
		},
		at,
	)
}
