package monitor

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
)

// InitializeMonitorContext builds the controller and starts the monitor
// routines.
func InitializeMonitorContext(cfg MonitorConfig) *MonitorContext {
	slog.Debug(">>InitializeMonitorContext")
	defer slog.Debug("<<InitializeMonitorContext")

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	mctx := &MonitorContext{
		wg:                &wg,
		ctx:               ctx,
		monitorCancelFunc: cancel,
		store:             cfg.Store,
		publisher:         cfg.Publisher,
		notifier:          cfg.Notifier,
		tickInterval:      cfg.TickInterval,
		heartbeatInterval: cfg.HeartbeatInterval,
		NotifyCh:          make(chan NotificationTask, NOTIFY_QUEUE_SIZE),
		EventCh:           make(chan irrigation.Event, EVENT_QUEUE_SIZE),
	}

	if mctx.tickInterval <= 0 {
		mctx.tickInterval = DEFAULT_TICK_INTERVAL
	}

	if mctx.heartbeatInterval <= 0 {
		mctx.heartbeatInterval = DEFAULT_HEARTBEAT_INTERVAL
	}

	mctx.Controller = irrigation.NewController(irrigation.ControllerConfig{
		Clock:    cfg.Clock,
		Settings: cfg.Settings,
		Sensor:   cfg.Sensors,
		Pump:     cfg.Sensors,
		Notifier: mctx,
		Recorder: mctx,
		Options:  cfg.Options,
	})

	mctx.startMonitorRoutines()

	return mctx
}

// CancelAndWait stops the monitor routines, flushes queued events and
// notifications and leaves the pump and the sensor off.
func (mctx *MonitorContext) CancelAndWait() {
	mctx.monitorCancelFunc()
	mctx.wg.Wait()

	if err := mctx.Controller.Shutdown(); err != nil {
		slog.Error("failed to shut the controller down cleanly", "error", err)
	}

	mctx.drainEvents()
	mctx.drainNotifications()
}

// Send queues a notification without blocking the control loop.
func (mctx *MonitorContext) Send(message string) {
	select {
	case mctx.NotifyCh <- NotificationTask{Message: message}:
	default:
		slog.Warn("notification queue is full, dropping message", "message", message)
	}
}

// Record queues an event without blocking the control loop.
func (mctx *MonitorContext) Record(event irrigation.Event) {
	select {
	case mctx.EventCh <- event:
	default:
		slog.Warn("event queue is full, dropping event", "event_type", irrigation.EventTypeName(event.Type))
	}
}

func (mctx *MonitorContext) startMonitorRoutines() {
	mctx.wg.Add(1)
	go mctx.monitorNotifications()

	mctx.wg.Add(1)
	go mctx.monitorEvents()

	mctx.wg.Add(1)
	go mctx.monitorController()

	if mctx.publisher != nil {
		mctx.wg.Add(1)
		go mctx.monitorHeartbeat()
	}
}

func (mctx *MonitorContext) monitorController() {
	slog.Debug(">>monitorController")
	defer slog.Debug("<<monitorController")

	defer mctx.wg.Done()

	ticker := time.NewTicker(mctx.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorController: context done")
			return

		case <-ticker.C:
			mctx.Controller.Tick()
		}
	}
}

// monitorHeartbeat publishes the status snapshot. A slow broker only delays
// the heartbeat, never the controller tick.
func (mctx *MonitorContext) monitorHeartbeat() {
	slog.Debug(">>monitorHeartbeat")
	defer slog.Debug("<<monitorHeartbeat")

	defer mctx.wg.Done()

	heartbeat := time.NewTicker(mctx.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorHeartbeat: context done")
			return

		case <-heartbeat.C:
			if err := mctx.publisher.PublishStatus(mctx.Controller.Status(), time.Now()); err != nil {
				slog.Warn("failed to publish status", "error", err)
			}
		}
	}
}

func (mctx *MonitorContext) monitorNotifications() {
	slog.Debug(">>monitorNotifications")
	defer slog.Debug("<<monitorNotifications")

	defer mctx.wg.Done()
	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorNotifications: context done")
			return

		case task, ok := <-mctx.NotifyCh:
			if !ok {
				slog.Error("The notification channel was closed")
				return
			}

			mctx.sendNotification(mctx.ctx, task)
		}
	}
}

// sendNotification sends the SMS.
func (mctx *MonitorContext) sendNotification(ctx context.Context, task NotificationTask) {
	if mctx.notifier == nil {
		slog.Warn("Notifier is not registered for notifications", "message", task.Message)
		return
	}

	err := mctx.notifier.Send(
		ctx,
		NOTIFICATION_SUBJECT,
		task.Message,
	)
	if err != nil {
		slog.Error("failed to send message", "error", err, "message", task.Message)
	}
}

func (mctx *MonitorContext) monitorEvents() {
	slog.Debug(">>monitorEvents")
	defer slog.Debug("<<monitorEvents")

	defer mctx.wg.Done()
	for {
		select {
		case <-mctx.ctx.Done():
			slog.Debug("monitorEvents: context done")
			return

		case event, ok := <-mctx.EventCh:
			if !ok {
				slog.Error("The event channel was closed")
				return
			}

			mctx.processEvent(mctx.ctx, event)
		}
	}
}

// drainEvents delivers whatever is still queued after the routines exit.
func (mctx *MonitorContext) drainEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case event := <-mctx.EventCh:
			mctx.processEvent(ctx, event)
		default:
			return
		}
	}
}

// drainNotifications delivers messages still queued after the routines exit,
// such as a stuck pump reported by the last tick.
func (mctx *MonitorContext) drainNotifications() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case task := <-mctx.NotifyCh:
			mctx.sendNotification(ctx, task)
		default:
			return
		}
	}
}

func (mctx *MonitorContext) processEvent(ctx context.Context, event irrigation.Event) {
	if mctx.store != nil {
		if err := mctx.saveEvent(ctx, event); err != nil {
			slog.Error("failed to save event", "event_type", irrigation.EventTypeName(event.Type), "error", err)
		}
	}

	if mctx.publisher != nil {
		if err := mctx.publisher.PublishEvent(event); err != nil {
			slog.Warn("failed to publish event", "event_type", irrigation.EventTypeName(event.Type), "error", err)
		}
	}
}

func (mctx *MonitorContext) saveEvent(ctx context.Context, event irrigation.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	arg := database.CreateEventParams{
		ID:        event.ID,
		CreatedAt: event.CreatedAt,
		EventType: event.Type,
		EventData: data,
	}

	_, err = mctx.store.CreateEvent(ctx, arg)
	return err
}
