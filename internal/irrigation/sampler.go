package irrigation

import (
	"fmt"
	"log/slog"
	"sync/atomic"
)

// MoistureSensor is the raw sensor access the sampler needs.
type MoistureSensor interface {
	ActivateMoistureSensor() error
	DeactivateMoistureSensor() error
	ReadMoisture() (int, error)
}

// Sampler powers the moisture sensor, averages a batch of raw readings and
// powers it back down. Only one batch may be in flight at a time.
type Sampler struct {
	sensor MoistureSensor
	busy   atomic.Bool
}

func NewSampler(sensor MoistureSensor) *Sampler {
	return &Sampler{sensor: sensor}
}

// Busy reports whether a sample is in flight.
func (s *Sampler) Busy() bool {
	return s.busy.Load()
}

// Sample returns the mean of count raw readings. It returns a *BusyError
// without touching the sensor when another sample is running. The sensor is
// deactivated on every path once activation was attempted.
func (s *Sampler) Sample(count int) (average float64, err error) {
	if !s.busy.CompareAndSwap(false, true) {
		return 0, &BusyError{Resource: RESOURCE_SAMPLER}
	}
	defer s.busy.Store(false)

	if count <= 0 {
		return 0, fmt.Errorf("sample count must be positive, got %d", count)
	}

	defer func() {
		if derr := s.sensor.DeactivateMoistureSensor(); derr != nil {
			slog.Error("failed to deactivate the moisture sensor", "error", derr)
			if err == nil {
				err = &FaultError{Device: RESOURCE_SAMPLER, Op: "deactivate", Err: derr}
			}
		}
	}()

	if err := s.sensor.ActivateMoistureSensor(); err != nil {
		return 0, &FaultError{Device: RESOURCE_SAMPLER, Op: "activate", Err: err}
	}

	var total float64
	for i := 0; i < count; i++ {
		raw, err := s.sensor.ReadMoisture()
		if err != nil {
			return 0, &FaultError{Device: RESOURCE_SAMPLER, Op: "read", Err: err}
		}
		total += float64(raw)
	}

	return total / float64(count), nil
}
