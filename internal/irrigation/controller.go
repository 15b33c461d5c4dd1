package irrigation

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type (
	ControllerConfig struct {
		Clock    Clock
		Settings *SettingsStore
		Sensor   MoistureSensor
		Pump     PumpActuator
		Notifier Notifier
		Recorder EventRecorder
		Options  Options
	}

	// activeCycle is a cycle holding the pump. stopping is set when turning
	// the pump off failed and must be retried; pumpFault marks a cycle whose
	// pump never started.
	activeCycle struct {
		Cycle
		stopping  bool
		pumpFault bool
	}

	// Controller runs one decision pass per Tick. The pump is never waited
	// on: a started cycle records its start tick and a later Tick stops it.
	Controller struct {
		mu       sync.Mutex
		clock    Clock
		settings *SettingsStore
		sampler  *Sampler
		pump     PumpActuator
		notifier Notifier
		recorder EventRecorder
		options  Options

		// epoch is the raw clock value of tick 0.
		epoch             uint32
		now               uint32
		lastSampleTick    uint32
		lastWaterTick     uint32
		averageMoisture   float64
		refill            RefillState
		automationEnabled bool
		cycle             *activeCycle
	}
)

func NewController(cfg ControllerConfig) *Controller {
	c := &Controller{
		clock:             cfg.Clock,
		settings:          cfg.Settings,
		sampler:           NewSampler(cfg.Sensor),
		pump:              cfg.Pump,
		notifier:          cfg.Notifier,
		recorder:          cfg.Recorder,
		options:           cfg.Options,
		refill:            RefillNormal{},
		automationEnabled: true,
	}

	if c.notifier == nil {
		c.notifier = discardNotifier{}
	}

	if c.recorder == nil {
		c.recorder = discardRecorder{}
	}

	return c
}

// Tick performs one decision pass. It never fails; faults are logged and
// recorded, and the timers they would have advanced are left alone so the
// next tick retries.
func (c *Controller) Tick() {
	c.mu.Lock()

	c.now = c.currentTick()
	c.guardOverflow()
	c.pollCycle()

	// the pump run and the settle time after it belong to the cycle
	if !c.automationEnabled || c.cycle != nil {
		c.mu.Unlock()
		return
	}

	settings := c.settings.Settings()
	due := elapsed(c.now, c.lastSampleTick) >= minutesToMillis(settings.SampleFrequencyMinutes)
	if !due || c.sampler.Busy() {
		c.mu.Unlock()
		return
	}

	sampleTick := c.now
	c.mu.Unlock()

	// sampling runs without the lock so status reads and setting writes stay
	// responsive while the batch of reads is taken
	average, err := c.sampler.Sample(settings.NumberOfSamples)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrBusy) {
			slog.Debug("sample skipped, sampler busy")
			return
		}

		slog.Error("failed to sample soil moisture", "error", err)
		c.record(Event{Type: EVENTTYPE_SAMPLE_FAILED, Tick: sampleTick, Message: err.Error()})
		return
	}

	previousSampleTick := c.lastSampleTick
	c.lastSampleTick = sampleTick
	c.averageMoisture = average
	c.record(Event{Type: EVENTTYPE_SAMPLE, Tick: sampleTick, Moisture: average})
	slog.Info("soil moisture sampled", "average", average, "tick", sampleTick)

	// settings may have changed while sampling
	settings = c.settings.Settings()
	c.evaluateRefill(settings)

	if average <= float64(settings.DrynessThreshold) {
		return
	}

	if _, notified := c.refill.(RefillNotified); notified && c.options.SuppressWateringWhileNotified {
		slog.Info("soil is dry but watering is suppressed until the reservoir is refilled", "average", average)
		return
	}

	if _, err := c.startCycle(false); err != nil {
		slog.Warn("could not start a watering cycle", "error", err)

		// a pump that never started leaves the sample due so the next tick
		// tries again
		var fault *FaultError
		if errors.As(err, &fault) {
			c.lastSampleTick = previousSampleTick
		}
	}
}

// RunCycle starts a watering cycle now, independent of the automation flag.
func (c *Controller) RunCycle() (Cycle, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.startCycle(true)
}

// SampleNow takes an immediate sample. The reading is returned and recorded
// but does not feed the watering decision.
func (c *Controller) SampleNow() (float64, error) {
	settings := c.settings.Settings()

	average, err := c.sampler.Sample(settings.NumberOfSamples)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Event{Type: EVENTTYPE_MANUAL_SAMPLE, Tick: c.currentTick(), Moisture: average})

	return average, nil
}

// ToggleAutomation flips the automation flag and returns the new value.
func (c *Controller) ToggleAutomation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setAutomation(!c.automationEnabled)
}

func (c *Controller) SetAutomation(enabled bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.setAutomation(enabled)
}

func (c *Controller) setAutomation(enabled bool) bool {
	if c.automationEnabled == enabled {
		return enabled
	}

	c.automationEnabled = enabled
	message := "Watering system DISABLED"
	if enabled {
		message = "Watering system ENABLED"
	}

	slog.Info("watering automation changed", "enabled", enabled)
	c.record(Event{Type: EVENTTYPE_AUTOMATION_TOGGLED, Tick: c.currentTick(), Message: message})

	return enabled
}

// Settings returns the current configuration.
func (c *Controller) Settings() Settings {
	return c.settings.Settings()
}

// UpdateSetting validates and applies a setting and records the change.
func (c *Controller) UpdateSetting(setting string, raw string) (SettingChange, error) {
	change, err := c.settings.Apply(setting, raw)
	if err != nil {
		return change, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(Event{
		Type:    EVENTTYPE_SETTING_CHANGED,
		Tick:    c.currentTick(),
		Message: fmt.Sprintf("%s changed from %s to %s", change.Setting, change.OldValue, change.NewValue),
	})

	return change, nil
}

// State returns a copy of the controller bookkeeping.
func (c *Controller) State() SystemState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SystemState{
		Now:               c.now,
		LastSampleTick:    c.lastSampleTick,
		LastWaterTick:     c.lastWaterTick,
		AverageMoisture:   c.averageMoisture,
		Refill:            c.refill,
		SamplerBusy:       c.sampler.Busy(),
		PumpBusy:          c.cycle != nil,
		AutomationEnabled: c.automationEnabled,
	}
}

// Status builds the control surface view against a fresh clock reading.
func (c *Controller) Status() Status {
	settings := c.settings.Settings()

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.currentTick()
	status := Status{
		DrynessThreshold:       settings.DrynessThreshold,
		AverageMoisture:        c.averageMoisture,
		WateringSeconds:        settings.WateringSeconds,
		SampleFrequencyMinutes: settings.SampleFrequencyMinutes,
		MinutesSinceLastSample: millisToMinutes(elapsed(now, c.lastSampleTick)),
		HoursSinceLastWatering: millisToHours(elapsed(now, c.lastWaterTick)),
		AutomationEnabled:      c.automationEnabled,
		RefillHysteresisRatio:  settings.RefillHysteresisRatio,
		SamplerBusy:            c.sampler.Busy(),
		PumpRunning:            c.cycle != nil,
		DaysBeforeReset:        daysBeforeReset(now),
	}

	if notified, ok := c.refill.(RefillNotified); ok {
		status.RefillNotified = true
		status.RefillBaseline = notified.Baseline
	}

	if c.cycle != nil {
		cycle := c.cycle.Cycle
		status.Cycle = &cycle
	}

	return status
}

// Shutdown turns the pump and the sensor off regardless of state.
func (c *Controller) Shutdown() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if err := c.pump.TurnPumpOff(); err != nil {
		errs = append(errs, fmt.Errorf("turn pump off: %w", err))
	} else if c.cycle != nil {
		c.record(Event{Type: EVENTTYPE_WATERING_FAILED, Tick: c.currentTick(), CycleID: c.cycle.ID, Message: "stopped by shutdown"})
		c.cycle = nil
	}

	if err := c.sampler.sensor.DeactivateMoistureSensor(); err != nil {
		errs = append(errs, fmt.Errorf("deactivate moisture sensor: %w", err))
	}

	return errors.Join(errs...)
}

func (c *Controller) currentTick() uint32 {
	return c.clock.NowMillis() - c.epoch
}

// guardOverflow zeroes the tick counters before the clock wraps. The epoch
// moves to the current clock value so the reset happens once per wrap and an
// active cycle keeps its elapsed time.
func (c *Controller) guardOverflow() {
	if !nearWrap(c.now) {
		return
	}

	slog.Info("tick counter close to wrapping, resetting timers", "tick", c.now)

	if c.cycle != nil {
		c.cycle.StartTick -= c.now
	}

	c.epoch += c.now
	c.now = 0
	c.lastSampleTick = 0
	c.lastWaterTick = 0

	c.record(Event{Type: EVENTTYPE_CLOCK_RESET, Message: "tick counters reset before clock wrap"})
}

// pollCycle stops the pump once the cycle has run its duration, or retries a
// failed stop.
func (c *Controller) pollCycle() {
	if c.cycle == nil {
		return
	}

	if !c.cycle.stopping && elapsed(c.now, c.cycle.StartTick) < c.cycle.Duration {
		return
	}

	c.stopCycle()
}

func (c *Controller) startCycle(onDemand bool) (Cycle, error) {
	if c.cycle != nil {
		return Cycle{}, &BusyError{Resource: RESOURCE_PUMP}
	}

	settings := c.settings.Settings()
	c.cycle = &activeCycle{
		Cycle: Cycle{
			ID:        uuid.New(),
			StartTick: c.currentTick(),
			Duration:  secondsToMillis(settings.WateringSeconds),
			OnDemand:  onDemand,
		},
	}

	if err := c.pump.TurnPumpOn(); err != nil {
		fault := &FaultError{Device: RESOURCE_PUMP, Op: "turn on", Err: err}
		slog.Error("failed to turn the water pump on", "error", err)

		c.cycle.pumpFault = true
		c.record(Event{Type: EVENTTYPE_WATERING_FAILED, Tick: c.cycle.StartTick, CycleID: c.cycle.ID, Message: fault.Error()})
		c.stopCycle()

		return Cycle{}, fault
	}

	slog.Info("watering cycle started", "id", c.cycle.ID, "seconds", settings.WateringSeconds, "on_demand", onDemand)
	c.record(Event{Type: EVENTTYPE_WATERING_STARTED, Tick: c.cycle.StartTick, CycleID: c.cycle.ID, Moisture: c.averageMoisture})

	return c.cycle.Cycle, nil
}

// stopCycle turns the pump off. While that fails the cycle keeps the pump
// busy and the next tick tries again.
func (c *Controller) stopCycle() {
	cycle := c.cycle
	if err := c.pump.TurnPumpOff(); err != nil {
		slog.Error("failed to turn the water pump off", "id", cycle.ID, "error", err)
		if !cycle.stopping {
			cycle.stopping = true
			c.notifier.Send(PUMP_STUCK_MESSAGE)
			c.record(Event{Type: EVENTTYPE_WATERING_FAILED, Tick: c.now, CycleID: cycle.ID, Message: err.Error()})
		}
		return
	}

	c.cycle = nil
	if cycle.pumpFault {
		return
	}

	// readings wait a full sample period after the water went in
	completed := c.currentTick()
	c.lastWaterTick = completed
	c.lastSampleTick = completed

	slog.Info("watering cycle completed", "id", cycle.ID)
	c.record(Event{Type: EVENTTYPE_WATERING_COMPLETED, Tick: completed, CycleID: cycle.ID})
}

func (c *Controller) evaluateRefill(settings Settings) {
	trigger := float64(settings.DrynessThreshold) * settings.RefillHysteresisRatio

	next, transition := nextRefillState(c.refill, c.averageMoisture, trigger)
	c.refill = next

	switch transition {
	case refillRaised:
		slog.Warn("soil stays dry, refill notification sent", "average", c.averageMoisture, "trigger", trigger)
		c.notifier.Send(REFILL_WATER_MESSAGE)
		c.record(Event{Type: EVENTTYPE_REFILL_NOTIFIED, Tick: c.now, Moisture: c.averageMoisture, Message: REFILL_WATER_MESSAGE})

	case refillCleared:
		slog.Info("soil moisture recovered, refill notification cleared", "average", c.averageMoisture)
		c.record(Event{Type: EVENTTYPE_REFILL_CLEARED, Tick: c.now, Moisture: c.averageMoisture})
	}
}

func (c *Controller) record(event Event) {
	event.ID = uuid.New()
	event.CreatedAt = time.Now().UTC()
	c.recorder.Record(event)
}
