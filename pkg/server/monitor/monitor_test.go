package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/clock"
	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/internal/mqtt"
	"github.com/KyleBrandon/irrigation-server/internal/sensor"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mu       sync.Mutex
	messages []string
	err      error
}

func (m *mockSender) Send(ctx context.Context, subject, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, message)
	return m.err
}

func (m *mockSender) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.messages...)
}

type testMonitor struct {
	mctx      *MonitorContext
	clock     *clock.Fake
	sensors   *sensor.MockSensors
	store     *database.MemoryStore
	publisher *mqtt.FakePublisher
	sender    *mockSender
}

func newTestMonitor(t *testing.T, moisture int) *testMonitor {
	t.Helper()

	settings := irrigation.DefaultSettings()
	settings.NumberOfSamples = 3
	store, err := irrigation.NewSettingsStore(settings)
	require.NoError(t, err)

	tm := &testMonitor{
		clock:     clock.NewFake(0),
		sensors:   sensor.NewMockSensors(sensor.SensorConfig{MockMoisture: moisture}),
		store:     database.NewMemoryStore(50),
		publisher: mqtt.NewFakePublisher(),
		sender:    &mockSender{},
	}

	tm.mctx = InitializeMonitorContext(MonitorConfig{
		Clock:             tm.clock,
		Settings:          store,
		Sensors:           tm.sensors,
		Store:             tm.store,
		Publisher:         tm.publisher,
		Notifier:          tm.sender,
		TickInterval:      5 * time.Millisecond,
		HeartbeatInterval: 20 * time.Millisecond,
	})

	return tm
}

func (tm *testMonitor) events(t *testing.T) []database.Event {
	events, err := tm.store.GetLatestEvents(context.Background(), 50)
	require.NoError(t, err)
	return events
}

func TestMonitorTicksController(t *testing.T) {
	// starts above the refill trigger so the first sample waters and notifies
	tm := newTestMonitor(t, 460)
	defer tm.mctx.CancelAndWait()

	tm.clock.Advance(time.Hour)

	require.Eventually(t, func() bool {
		return tm.mctx.Controller.State().PumpBusy
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return len(tm.sender.sent()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, irrigation.REFILL_WATER_MESSAGE, tm.sender.sent()[0])

	tm.clock.Advance(10 * time.Second)
	require.Eventually(t, func() bool {
		return !tm.mctx.Controller.State().PumpBusy
	}, time.Second, 5*time.Millisecond)

	on, err := tm.sensors.IsPumpOn()
	require.NoError(t, err)
	assert.False(t, on)
}

func TestMonitorPersistsAndPublishesEvents(t *testing.T) {
	tm := newTestMonitor(t, 300)
	defer tm.mctx.CancelAndWait()

	event := irrigation.Event{
		ID:        uuid.New(),
		Type:      irrigation.EVENTTYPE_SETTING_CHANGED,
		Message:   "watering-seconds changed from 5 to 7",
		CreatedAt: time.Now().UTC(),
	}
	tm.mctx.Record(event)

	require.Eventually(t, func() bool {
		return len(tm.events(t)) == 1 && tm.publisher.EventCount() == 1
	}, time.Second, 5*time.Millisecond)

	saved := tm.events(t)[0]
	assert.Equal(t, event.ID, saved.ID)
	assert.Equal(t, irrigation.EVENTTYPE_SETTING_CHANGED, saved.EventType)

	var decoded irrigation.Event
	require.NoError(t, json.Unmarshal(saved.EventData, &decoded))
	assert.Equal(t, event.Message, decoded.Message)
}

func TestMonitorHeartbeatPublishesStatus(t *testing.T) {
	tm := newTestMonitor(t, 300)
	defer tm.mctx.CancelAndWait()

	require.Eventually(t, func() bool {
		return tm.publisher.StatusCount() > 0
	}, time.Second, 5*time.Millisecond)
}

func TestMonitorSendErrorIsNotFatal(t *testing.T) {
	tm := newTestMonitor(t, 300)
	defer tm.mctx.CancelAndWait()

	tm.sender.mu.Lock()
	tm.sender.err = errors.New("twilio down")
	tm.sender.mu.Unlock()

	tm.mctx.Send("first")
	tm.mctx.Send("second")

	require.Eventually(t, func() bool {
		return len(tm.sender.sent()) == 2
	}, time.Second, 5*time.Millisecond)
}

func TestMonitorCancelStopsPump(t *testing.T) {
	tm := newTestMonitor(t, 300)

	_, err := tm.mctx.Controller.RunCycle()
	require.NoError(t, err)

	tm.mctx.CancelAndWait()

	on, err := tm.sensors.IsPumpOn()
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, tm.mctx.Controller.State().PumpBusy)

	// events queued by the shutdown are flushed
	var types []int32
	for _, e := range tm.events(t) {
		types = append(types, e.EventType)
	}
	assert.Contains(t, types, irrigation.EVENTTYPE_WATERING_FAILED)
}

func TestRecordDropsWhenQueueFull(t *testing.T) {
	mctx := &MonitorContext{
		EventCh:  make(chan irrigation.Event, 1),
		NotifyCh: make(chan NotificationTask, 1),
	}

	mctx.Record(irrigation.Event{})
	mctx.Record(irrigation.Event{})
	mctx.Send("a")
	mctx.Send("b")

	assert.Len(t, mctx.EventCh, 1)
	assert.Len(t, mctx.NotifyCh, 1)
}

// stalledPublisher holds PublishStatus until release is closed, like a broker
// that stops acknowledging.
type stalledPublisher struct {
	*mqtt.FakePublisher
	entered chan struct{}
	release chan struct{}
}

func (p *stalledPublisher) PublishStatus(status irrigation.Status, at time.Time) error {
	select {
	case p.entered <- struct{}{}:
	default:
	}

	<-p.release
	return p.FakePublisher.PublishStatus(status, at)
}

func TestStalledHeartbeatDoesNotHoldThePump(t *testing.T) {
	settings := irrigation.DefaultSettings()
	settings.WateringSeconds = 1
	store, err := irrigation.NewSettingsStore(settings)
	require.NoError(t, err)

	fakeClock := clock.NewFake(0)
	sensors := sensor.NewMockSensors(sensor.SensorConfig{MockMoisture: 300})
	publisher := &stalledPublisher{
		FakePublisher: mqtt.NewFakePublisher(),
		entered:       make(chan struct{}, 1),
		release:       make(chan struct{}),
	}

	mctx := InitializeMonitorContext(MonitorConfig{
		Clock:             fakeClock,
		Settings:          store,
		Sensors:           sensors,
		Publisher:         publisher,
		TickInterval:      5 * time.Millisecond,
		HeartbeatInterval: 5 * time.Millisecond,
	})
	defer mctx.CancelAndWait()
	defer close(publisher.release)

	select {
	case <-publisher.entered:
	case <-time.After(time.Second):
		t.Fatal("heartbeat never published")
	}

	_, err = mctx.Controller.RunCycle()
	require.NoError(t, err)

	fakeClock.Advance(time.Second)

	require.Eventually(t, func() bool {
		on, err := sensors.IsPumpOn()
		return err == nil && !on
	}, time.Second, 5*time.Millisecond, "pump must stop while the heartbeat is stalled")
	assert.False(t, mctx.Controller.State().PumpBusy)
}

// cancelledSender blocks the first message until the monitor is cancelled.
type cancelledSender struct {
	mockSender
	first sync.Once
}

func (s *cancelledSender) Send(ctx context.Context, subject, message string) error {
	blocked := false
	s.first.Do(func() { blocked = true })
	if blocked {
		<-ctx.Done()
		return ctx.Err()
	}

	return s.mockSender.Send(ctx, subject, message)
}

func TestCancelDeliversQueuedNotifications(t *testing.T) {
	store, err := irrigation.NewSettingsStore(irrigation.DefaultSettings())
	require.NoError(t, err)

	sender := &cancelledSender{}
	mctx := InitializeMonitorContext(MonitorConfig{
		Clock:        clock.NewFake(0),
		Settings:     store,
		Sensors:      sensor.NewMockSensors(sensor.SensorConfig{MockMoisture: 300}),
		Notifier:     sender,
		TickInterval: time.Hour,
	})

	mctx.Send("first")
	require.Eventually(t, func() bool {
		return len(mctx.NotifyCh) == 0
	}, time.Second, time.Millisecond)

	mctx.Send(irrigation.PUMP_STUCK_MESSAGE)
	mctx.CancelAndWait()

	assert.Equal(t, []string{irrigation.PUMP_STUCK_MESSAGE}, sender.sent())
}
