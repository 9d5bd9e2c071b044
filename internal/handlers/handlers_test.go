package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/holeinone/coursecal/internal/dispatcher"
	"github.com/holeinone/coursecal/internal/registry"
	"github.com/holeinone/coursecal/internal/session"
	"github.com/holeinone/coursecal/internal/storage"
	"github.com/holeinone/coursecal/pkg/core"
	"github.com/holeinone/coursecal/pkg/streaming"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	saved   []*core.Course
	saveErr error
}

func (b *mockBackend) Init() error  { return nil }
func (b *mockBackend) Close() error { return nil }

func (b *mockBackend) SaveCourse(c *core.Course) error {
	if b.saveErr != nil {
		return b.saveErr
	}
	c.ID = uint(len(b.saved) + 1)
	b.saved = append(b.saved, c)
	return nil
}

func (b *mockBackend) LatestCourse() (*core.Course, error) {
	if len(b.saved) == 0 {
		return nil, storage.ErrNoCourse
	}
	return b.saved[len(b.saved)-1], nil
}

var _ storage.Backend = (*mockBackend)(nil)

type telemetryRecord struct {
	frame, rebuilds uint64
	status          core.Status
}

// mockTelemetry records every status point
type mockTelemetry struct {
	records []telemetryRecord
}

func (m *mockTelemetry) WriteStatus(frame, rebuilds uint64, st core.Status, _ time.Time) error {
	m.records = append(m.records, telemetryRecord{frame, rebuilds, st})
	return nil
}

type fixture struct {
	session   *session.Session
	backend   *mockBackend
	telemetry *mockTelemetry
	d         *dispatcher.Dispatcher
	logs      *bytes.Buffer
}

func newFixture(t *testing.T, complexity int) *fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ids := make([]core.MarkerID, 0, complexity+2)
	for i := 0; i < complexity; i++ {
		ids = append(ids, core.WaypointID(i))
	}
	ids = append(ids, core.BallSpawnID, core.HoleID)
	factory := registry.NewPrefabFactory(registry.DefaultPrefabs(ids))

	sess, err := session.New(session.Config{Complexity: complexity, Epsilon: 0.01}, factory, logger)
	require.NoError(t, err)

	d, err := dispatcher.New(logger)
	require.NoError(t, err)

	f := &fixture{
		session:   sess,
		backend:   &mockBackend{},
		telemetry: &mockTelemetry{},
		d:         d,
		logs:      logs,
	}
	NewService(Dependencies{
		Session:   sess,
		Backend:   f.backend,
		Telemetry: f.telemetry,
		Logger:    logger,
	}).RegisterHandlers(d)
	return f
}

func (f *fixture) send(t *testing.T, command string, payload any) streaming.AckMessage {
	t.Helper()
	env, err := streaming.NewEnvelope(command, payload)
	require.NoError(t, err)

	result, err := f.d.Dispatch(dispatcher.Event{Command: env.Type, Payload: env.Payload})
	require.NoError(t, err)
	ack, ok := result.(streaming.AckMessage)
	require.True(t, ok, "handler returned %T", result)
	require.NotNil(t, ack.Status)
	assert.Equal(t, streaming.TypeAck, ack.Type)
	assert.Equal(t, command, ack.For)
	return ack
}

var frameCounter uint64

func (f *fixture) sight(t *testing.T, name string, x, z float64) streaming.AckMessage {
	t.Helper()
	frameCounter++
	return f.send(t, streaming.TypeFrame, core.FrameBatch{
		Frame:   frameCounter,
		Updated: []core.PoseUpdate{{Name: name, Position: core.Position3D{X: x, Z: z}, State: core.Tracking}},
	})
}

func (f *fixture) confirm(t *testing.T) streaming.ConfirmPayload {
	t.Helper()
	ack := f.send(t, streaming.TypeConfirm, nil)
	res, ok := ack.Result.(streaming.ConfirmPayload)
	require.True(t, ok)
	return res
}

func (f *fixture) calibrateTriangle(t *testing.T) {
	t.Helper()
	for _, m := range []struct {
		name string
		x, z float64
	}{
		{"number_1", 0, 0},
		{"number_2", 4, 0},
		{"number_3", 0, 4},
		{"ball_spawn", 1, 1},
		{"hole", 2, 1},
	} {
		f.sight(t, m.name, m.x, m.z)
		res := f.confirm(t)
		require.True(t, res.Confirmed, "confirming %s", m.name)
		assert.Equal(t, m.name, res.Target)
	}
}

func TestRegisterHandlers(t *testing.T) {
	f := newFixture(t, 3)
	for _, cmd := range []string{
		streaming.TypeFrame,
		streaming.TypeConfirm,
		streaming.TypeReset,
		streaming.TypeRealign,
		streaming.TypeStatus,
	} {
		assert.True(t, f.d.HasHandler(cmd), cmd)
	}
}

func TestFrame_AcksWithStatusAndTelemetry(t *testing.T) {
	f := newFixture(t, 3)

	ack := f.sight(t, "number_1", 0, 0)
	assert.Equal(t, "number_1", ack.Status.ActiveTarget)
	assert.True(t, ack.Status.CanConfirm)

	require.Len(t, f.telemetry.records, 1)
	assert.Equal(t, frameCounter, f.telemetry.records[0].frame)
	assert.EqualValues(t, 1, f.telemetry.records[0].rebuilds)
	assert.True(t, f.telemetry.records[0].status.CanConfirm)
}

func TestFrame_IdleFrameSkipsTelemetry(t *testing.T) {
	f := newFixture(t, 3)

	ack := f.send(t, streaming.TypeFrame, streaming.FramePayload{Frame: 9})
	require.NotNil(t, ack.Status)
	assert.Equal(t, "number_1", ack.Status.ActiveTarget)
	assert.Empty(t, f.telemetry.records)
	assert.EqualValues(t, 9, f.session.Frame())
}

func TestFrame_BadPayload(t *testing.T) {
	f := newFixture(t, 3)

	_, err := f.d.Dispatch(dispatcher.Event{Command: streaming.TypeFrame, Payload: json.RawMessage(`{"frame":"x"}`)})
	assert.ErrorContains(t, err, "failed to decode frame")
}

func TestConfirm_NotTracked(t *testing.T) {
	f := newFixture(t, 3)

	res := f.confirm(t)
	assert.False(t, res.Confirmed)
	assert.Equal(t, "number_1", res.Target)
}

func TestConfirm_SavesCourseOnce(t *testing.T) {
	f := newFixture(t, 3)
	f.calibrateTriangle(t)

	require.Len(t, f.backend.saved, 1)
	saved := f.backend.saved[0]
	assert.Equal(t, f.session.ID(), saved.SessionID)
	assert.Len(t, saved.Waypoints, 3)
	assert.InDelta(t, 8.0, saved.Area, 1e-9)

	ack := f.send(t, streaming.TypeStatus, nil)
	assert.True(t, ack.Status.CanStart)

	// Confirming again after completion neither saves nor errors.
	res := f.confirm(t)
	assert.False(t, res.Confirmed)
	assert.Len(t, f.backend.saved, 1)
}

func TestConfirm_SaveFailureIsLogged(t *testing.T) {
	f := newFixture(t, 3)
	f.backend.saveErr = errors.New("disk full")

	f.calibrateTriangle(t)
	assert.Contains(t, f.logs.String(), "Failed to save course")
	assert.Contains(t, f.logs.String(), "disk full")
}

func TestReset_StartsNewSession(t *testing.T) {
	f := newFixture(t, 3)
	f.calibrateTriangle(t)
	before := f.session.ID()

	ack := f.send(t, streaming.TypeReset, nil)
	assert.NotEqual(t, before, ack.Status.SessionID)
	assert.Equal(t, core.PhaseAwaitingWaypoint, ack.Status.Phase)
	assert.Equal(t, "number_1", ack.Status.ActiveTarget)

	f.calibrateTriangle(t)
	assert.Len(t, f.backend.saved, 2, "a new session saves its own course")
}

func TestRealign_ReportsMoved(t *testing.T) {
	f := newFixture(t, 3)

	ack := f.send(t, streaming.TypeRealign, nil)
	assert.Equal(t, streaming.RealignPayload{Moved: 0}, ack.Result)
}
