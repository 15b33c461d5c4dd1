//go:build !linux

package sensor

import "errors"

func newLineSwitch(device DeviceConfig) (powerSwitch, error) {
	return nil, errors.New("sensor: GPIOCDEV driver requires Linux")
}
