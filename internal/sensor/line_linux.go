//go:build linux

package sensor

import (
	"fmt"
	"strconv"

	"github.com/warthog618/go-gpiocdev"
)

const GPIO_CHIP = "gpiochip0"

// lineSwitch drives an output through the GPIO character device.
type lineSwitch struct {
	device DeviceConfig
	line   *gpiocdev.Line
}

func newLineSwitch(device DeviceConfig) (powerSwitch, error) {
	offset, err := strconv.Atoi(device.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid line for %s: %w", device.Name, err)
	}

	line, err := gpiocdev.RequestLine(GPIO_CHIP, offset, gpiocdev.AsOutput(lineValue(device, false)))
	if err != nil {
		return nil, fmt.Errorf("request line %d for %s: %w", offset, device.Name, err)
	}

	return &lineSwitch{device: device, line: line}, nil
}

func (l *lineSwitch) Set(on bool) error {
	if err := l.line.SetValue(lineValue(l.device, on)); err != nil {
		return fmt.Errorf("set %s: %w", l.device.Name, err)
	}

	return nil
}

func (l *lineSwitch) IsOn() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read %s: %w", l.device.Name, err)
	}

	return v == lineValue(l.device, true), nil
}

// Close returns the line to an input with pull-down, matching the Pi boot
// defaults.
func (l *lineSwitch) Close() error {
	if err := l.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
		l.line.Close()
		return fmt.Errorf("reconfigure %s: %w", l.device.Name, err)
	}

	return l.line.Close()
}
