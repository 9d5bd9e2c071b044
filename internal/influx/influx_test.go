package influx

import (
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/holeinone/coursecal/internal/config"
	"github.com/holeinone/coursecal/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatus() core.Status {
	return core.Status{
		SessionID:          "abc",
		Phase:              core.PhaseAwaitingBallSpawn,
		ConfirmedWaypoints: 4,
		TotalWaypoints:     4,
		Markers: []core.MarkerStatus{
			{Name: "number_1", Tracked: true, Confirmed: true},
			{Name: "number_2", Tracked: false, Confirmed: true},
			{Name: "ball_spawn", Tracked: true},
		},
		Segments:  4,
		MeshValid: true,
		Area:      4,
	}
}

func readBackup(t *testing.T, path string) string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	return string(data)
}

func TestStatusPoint(t *testing.T) {
	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	p := StatusPoint(42, 7, testStatus(), at)

	assert.Equal(t, MeasurementCalibration, p.Name())
	assert.Equal(t, at, p.Time())

	tags := map[string]string{}
	for _, tag := range p.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, map[string]string{"session": "abc", "phase": "awaiting_ball_spawn"}, tags)

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.EqualValues(t, 42, fields["frame"])
	assert.EqualValues(t, 2, fields["tracked"])
	assert.EqualValues(t, 2, fields["confirmed"])
	assert.EqualValues(t, 7, fields["rebuilds"])
	assert.Equal(t, true, fields["meshValid"])
	assert.Equal(t, false, fields["canStart"])
}

func TestWritePoint_NotConnected(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, nil)
	err := m.WriteStatus(1, 0, testStatus(), time.Now())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestDisabled_WritesBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{BackupPath: path}, nil)

	require.NoError(t, m.Connect(context.Background()))
	assert.False(t, m.Valid())

	at := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, m.WriteStatus(1, 1, testStatus(), at))
	require.NoError(t, m.WriteStatus(2, 1, testStatus(), at.Add(time.Second)))
	require.NoError(t, m.Close())

	backup := readBackup(t, path)
	var lines []string
	for _, l := range strings.Split(backup, "\n") {
		if l != "" {
			lines = append(lines, l)
		}
	}
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "calibration,"), lines[0])
	assert.Contains(t, lines[0], "session=abc")
	assert.Contains(t, lines[0], "frame=1i")
	assert.Contains(t, lines[1], "frame=2i")
}

func TestUnreachable_FallsBackToBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "influx_backup.log.gz")
	m := NewManager(config.InfluxConfig{
		Enabled:    true,
		Protocol:   "http",
		Host:       "127.0.0.1",
		Port:       "1",
		BackupPath: path,
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Connect(ctx))
	assert.False(t, m.Valid())

	require.NoError(t, m.WriteStatus(1, 0, testStatus(), time.Now()))
	require.NoError(t, m.Close())
	assert.Contains(t, readBackup(t, path), "calibration,")
}

func TestConnect_NoBackupPath(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, nil)
	assert.Error(t, m.Connect(context.Background()))
}

func TestConnect_SetupFailureReleasesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/ping" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"code":"internal error","message":"storage offline"}`))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	m := NewManager(config.InfluxConfig{
		Enabled:  true,
		Protocol: u.Scheme,
		Host:     u.Hostname(),
		Port:     u.Port(),
		Org:      "coursecal",
		Bucket:   "calibration",
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = m.Connect(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "organization")

	assert.False(t, m.Valid())
	assert.Nil(t, m.client)
	assert.ErrorIs(t, m.WriteStatus(1, 0, testStatus(), time.Now()), ErrNotConnected)
}
