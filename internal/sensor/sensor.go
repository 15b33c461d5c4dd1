package sensor

import (
	"errors"
	"fmt"
	"log/slog"
)

// NewSensorConfig groups the configured devices by role and returns the
// hardware or mock implementation.
func NewSensorConfig(devices []DeviceConfig, useMock bool, mockMoisture int) (Sensors, error) {
	slog.Debug(">>NewSensorConfig")
	defer slog.Debug("<<NewSensorConfig")

	sc := SensorConfig{
		Devices:      devices,
		MockMoisture: mockMoisture,
	}

	sc.TemperatureSensors = make(map[string]DeviceConfig)
	for _, d := range sc.Devices {
		switch d.SensorType {
		case SENSOR_TEMPERATURE:
			if d.DriverType == DRIVERTYPE_DS18B20 {
				sc.TemperatureSensors[d.Address] = d
			}

		case SENSOR_MOISTURE:
			sc.MoistureSensor = d

		case SENSOR_POWER:
			switch d.Name {
			case DEVICE_PUMP:
				sc.PumpDevice = d
			case DEVICE_MOISTURE_POWER:
				sc.MoisturePower = d
			default:
				slog.Warn("ignoring unknown power device", "name", d.Name)
			}
		}
	}

	if useMock {
		return NewMockSensors(sc), nil
	}

	if err := sc.validate(); err != nil {
		return nil, err
	}

	return NewHardwareSensors(sc)
}

func (sc *SensorConfig) validate() error {
	var errs []error

	if sc.PumpDevice.Address == "" {
		errs = append(errs, fmt.Errorf("no %s power device configured", DEVICE_PUMP))
	}

	if sc.MoisturePower.Address == "" {
		errs = append(errs, fmt.Errorf("no %s power device configured", DEVICE_MOISTURE_POWER))
	}

	if sc.MoistureSensor.DriverType != DRIVERTYPE_MCP3008 {
		errs = append(errs, fmt.Errorf("moisture sensor driver %q is not supported", sc.MoistureSensor.DriverType))
	}

	return errors.Join(errs...)
}

func celsiusToFahrenheit(c float64) float64 {
	return (c * 9 / 5) + 32
}
