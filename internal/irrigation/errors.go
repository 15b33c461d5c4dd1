package irrigation

import (
	"errors"
	"fmt"
)

const (
	RESOURCE_SAMPLER = "moisture sampler"
	RESOURCE_PUMP    = "water pump"
)

var (
	// ErrBusy matches every *BusyError with errors.Is.
	ErrBusy = errors.New("resource is busy")

	ErrUnknownSetting = errors.New("unknown setting")
)

// ValidationError is returned when a setting update is rejected. The prior
// value of the setting is left in place.
type ValidationError struct {
	Setting string
	Value   string
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Setting, e.Value, e.Reason)
}

// BusyError is returned when a sample or watering cycle is requested while
// one is already in progress.
type BusyError struct {
	Resource string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("%s is busy", e.Resource)
}

func (e *BusyError) Is(target error) bool {
	return target == ErrBusy
}

// FaultError wraps a failure reported by the sensor or the pump.
type FaultError struct {
	Device string
	Op     string
	Err    error
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Device, e.Op, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
