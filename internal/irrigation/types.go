// Package irrigation holds the soil moisture control loop: sampling cadence,
// the watering decision, refill notification hysteresis and the overflow safe
// tick bookkeeping. Hardware, transport and persistence are reached through
// the small interfaces declared here.
package irrigation

import (
	"time"

	"github.com/google/uuid"
)

const (
	EVENTTYPE_SAMPLE             int32 = 1
	EVENTTYPE_SAMPLE_FAILED      int32 = 2
	EVENTTYPE_MANUAL_SAMPLE      int32 = 3
	EVENTTYPE_WATERING_STARTED   int32 = 4
	EVENTTYPE_WATERING_COMPLETED int32 = 5
	EVENTTYPE_WATERING_FAILED    int32 = 6
	EVENTTYPE_REFILL_NOTIFIED    int32 = 7
	EVENTTYPE_REFILL_CLEARED     int32 = 8
	EVENTTYPE_CLOCK_RESET        int32 = 9
	EVENTTYPE_SETTING_CHANGED    int32 = 10
	EVENTTYPE_AUTOMATION_TOGGLED int32 = 11
)

const (
	REFILL_WATER_MESSAGE = "Irrigation system: Refill water"
	PUMP_STUCK_MESSAGE   = "Irrigation system: failed to turn the water pump off"
)

var eventTypeNames = map[int32]string{
	EVENTTYPE_SAMPLE:             "sample",
	EVENTTYPE_SAMPLE_FAILED:      "sample_failed",
	EVENTTYPE_MANUAL_SAMPLE:      "manual_sample",
	EVENTTYPE_WATERING_STARTED:   "watering_started",
	EVENTTYPE_WATERING_COMPLETED: "watering_completed",
	EVENTTYPE_WATERING_FAILED:    "watering_failed",
	EVENTTYPE_REFILL_NOTIFIED:    "refill_notified",
	EVENTTYPE_REFILL_CLEARED:     "refill_cleared",
	EVENTTYPE_CLOCK_RESET:        "clock_reset",
	EVENTTYPE_SETTING_CHANGED:    "setting_changed",
	EVENTTYPE_AUTOMATION_TOGGLED: "automation_toggled",
}

// EventTypeName returns the wire name of an event type.
func EventTypeName(eventType int32) string {
	if name, ok := eventTypeNames[eventType]; ok {
		return name
	}

	return "unknown"
}

type (
	// Clock is a millisecond tick counter that wraps at 2^32.
	Clock interface {
		NowMillis() uint32
	}

	PumpActuator interface {
		TurnPumpOn() error
		TurnPumpOff() error
	}

	// Notifier delivers a human facing message. Send must not block the
	// control loop; delivery failures are the notifier's to log.
	Notifier interface {
		Send(message string)
	}

	// EventRecorder receives every state change of the controller. Record
	// must not block.
	EventRecorder interface {
		Record(event Event)
	}

	Event struct {
		ID        uuid.UUID `json:"id"`
		Type      int32     `json:"event_type"`
		Tick      uint32    `json:"tick"`
		Moisture  float64   `json:"moisture,omitempty"`
		CycleID   uuid.UUID `json:"cycle_id,omitempty"`
		Message   string    `json:"message,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}

	// Cycle is one timed pump run.
	Cycle struct {
		ID        uuid.UUID `json:"id"`
		StartTick uint32    `json:"start_tick"`
		Duration  uint32    `json:"duration_ms"`
		OnDemand  bool      `json:"on_demand"`
	}

	// SystemState is a copy of the controller's bookkeeping.
	SystemState struct {
		Now               uint32
		LastSampleTick    uint32
		LastWaterTick     uint32
		AverageMoisture   float64
		Refill            RefillState
		SamplerBusy       bool
		PumpBusy          bool
		AutomationEnabled bool
	}

	// Status is the read only view served to the control surface.
	Status struct {
		DrynessThreshold       int     `json:"dryness_threshold"`
		AverageMoisture        float64 `json:"last_average_moisture"`
		WateringSeconds        int     `json:"watering_seconds"`
		SampleFrequencyMinutes uint8   `json:"sample_frequency_minutes"`
		MinutesSinceLastSample float64 `json:"minutes_since_last_sample"`
		HoursSinceLastWatering float64 `json:"hours_since_last_watering"`
		AutomationEnabled      bool    `json:"automation_enabled"`
		RefillHysteresisRatio  float64 `json:"refill_hysteresis_ratio"`
		RefillNotified         bool    `json:"refill_notified"`
		RefillBaseline         float64 `json:"refill_baseline,omitempty"`
		SamplerBusy            bool    `json:"sampler_busy"`
		PumpRunning            bool    `json:"pump_running"`
		Cycle                  *Cycle  `json:"cycle,omitempty"`
		DaysBeforeReset        float64 `json:"days_before_reset"`
	}

	Options struct {
		// SuppressWateringWhileNotified skips watering while a refill
		// notification is outstanding. By default the pump runs whenever the
		// soil is dry and the notification is sent independently.
		SuppressWateringWhileNotified bool
	}

	discardNotifier struct{}
	discardRecorder struct{}
)

func (discardNotifier) Send(string)   {}
func (discardRecorder) Record(Event) {}
