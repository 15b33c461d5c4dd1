package sensor

import (
	"sync"
)

const (
	DRIVERTYPE_DS18B20  string = "DS18B20"
	DRIVERTYPE_GPIO     string = "GPIO"
	DRIVERTYPE_GPIOCDEV string = "GPIOCDEV"
	DRIVERTYPE_MCP3008  string = "MCP3008"

	SENSOR_TEMPERATURE string = "temperature"
	SENSOR_MOISTURE    string = "moisture"
	SENSOR_POWER       string = "power"

	DEVICE_PUMP           string = "Pump"
	DEVICE_MOISTURE_POWER string = "MoisturePower"

	DEFAULT_MOCK_MOISTURE = 380
)

type (
	SensorConfig struct {
		Devices []DeviceConfig

		TemperatureSensors map[string]DeviceConfig
		MoistureSensor     DeviceConfig
		MoisturePower      DeviceConfig
		PumpDevice         DeviceConfig

		MockMoisture int
	}

	DeviceConfig struct {
		DriverType               string  `json:"driver_type"`
		SensorType               string  `json:"sensor_type"`
		Address                  string  `json:"address"`
		Name                     string  `json:"name"`
		Description              string  `json:"description"`
		NormallyOn               bool    `json:"normally_on,omitempty"`
		CalibrationOffsetCelsius float64 `json:"calibration_offset_celsius"`
	}

	TemperatureReading struct {
		Name         string  `json:"name,omitempty"`
		Description  string  `json:"description,omitempty"`
		Address      string  `json:"address,omitempty"`
		TemperatureC float64 `json:"temperature_c,omitempty"`
		TemperatureF float64 `json:"temperature_f,omitempty"`
		Err          error   `json:"err,omitempty"`
	}

	// Sensors is every device the irrigation server drives: the powered
	// moisture probe, the pump relay and any soil temperature probes.
	Sensors interface {
		ActivateMoistureSensor() error
		DeactivateMoistureSensor() error
		ReadMoisture() (int, error)
		IsPumpOn() (bool, error)
		TurnPumpOn() error
		TurnPumpOff() error
		ReadTemperatures() []TemperatureReading
		Close() error
	}

	// powerSwitch drives a single on/off output.
	powerSwitch interface {
		Set(on bool) error
		IsOn() (bool, error)
		Close() error
	}

	HardwareSensors struct {
		mu            sync.Mutex
		config        SensorConfig
		rpioOpen      bool
		pump          powerSwitch
		moisturePower powerSwitch
		adcChannel    uint8
		spiActive     bool
	}

	MockSensors struct {
		mu              sync.Mutex
		config          SensorConfig
		moisture        int
		moisturePowered bool
		pumpOn          bool
	}
)
