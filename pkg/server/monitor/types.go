package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/internal/mqtt"
	"github.com/KyleBrandon/irrigation-server/internal/sensor"
)

const (
	DEFAULT_TICK_INTERVAL      = time.Second
	DEFAULT_HEARTBEAT_INTERVAL = time.Minute

	NOTIFICATION_SUBJECT = "Irrigation Notification"

	NOTIFY_QUEUE_SIZE = 16
	EVENT_QUEUE_SIZE  = 128
)

type (
	NotificationTask struct {
		Message string
	}

	// Sender delivers a notification. *notify.Notify satisfies it.
	Sender interface {
		Send(ctx context.Context, subject, message string) error
	}

	MonitorStore interface {
		CreateEvent(ctx context.Context, arg database.CreateEventParams) (database.Event, error)
	}

	MonitorConfig struct {
		Clock     irrigation.Clock
		Settings  *irrigation.SettingsStore
		Sensors   sensor.Sensors
		Store     MonitorStore
		Publisher mqtt.Publisher
		Notifier  Sender
		Options   irrigation.Options

		TickInterval      time.Duration
		HeartbeatInterval time.Duration
	}

	// MonitorContext runs the control loop and the goroutines that deliver
	// its notifications and events.
	MonitorContext struct {
		wg                *sync.WaitGroup
		ctx               context.Context
		monitorCancelFunc context.CancelFunc
		store             MonitorStore
		publisher         mqtt.Publisher
		notifier          Sender

		tickInterval      time.Duration
		heartbeatInterval time.Duration

		Controller *irrigation.Controller
		NotifyCh   chan NotificationTask
		EventCh    chan irrigation.Event
	}
)
