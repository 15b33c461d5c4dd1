package sensor

import (
	"errors"
	"log/slog"
)

const (
	// each sample batch dries the mock soil a little and each watering wets it
	MOCK_DRYING_PER_SAMPLE    = 2
	MOCK_WETTING_PER_WATERING = 25
)

func NewMockSensors(config SensorConfig) *MockSensors {
	moisture := config.MockMoisture
	if moisture == 0 {
		moisture = DEFAULT_MOCK_MOISTURE
	}

	return &MockSensors{
		config:   config,
		moisture: moisture,
	}
}

func (m *MockSensors) ActivateMoistureSensor() error {
	slog.Debug(">>ActivateMoistureSensor")
	defer slog.Debug("<<ActivateMoistureSensor")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.moisturePowered = true
	m.moisture += MOCK_DRYING_PER_SAMPLE

	return nil
}

func (m *MockSensors) DeactivateMoistureSensor() error {
	slog.Debug(">>DeactivateMoistureSensor")
	defer slog.Debug("<<DeactivateMoistureSensor")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.moisturePowered = false

	return nil
}

func (m *MockSensors) ReadMoisture() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.moisturePowered {
		return 0, errors.New("moisture sensor is not active")
	}

	return m.moisture, nil
}

func (m *MockSensors) IsPumpOn() (bool, error) {
	slog.Debug(">>IsPumpOn")
	defer slog.Debug("<<IsPumpOn")

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.pumpOn, nil
}

func (m *MockSensors) TurnPumpOn() error {
	slog.Debug(">>TurnPumpOn")
	defer slog.Debug("<<TurnPumpOn")

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pumpOn = true

	return nil
}

func (m *MockSensors) TurnPumpOff() error {
	slog.Debug(">>TurnPumpOff")
	defer slog.Debug("<<TurnPumpOff")

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pumpOn {
		m.moisture -= MOCK_WETTING_PER_WATERING
	}
	m.pumpOn = false

	return nil
}

func (m *MockSensors) readTemperatureSensor(device *DeviceConfig) TemperatureReading {
	t := 12.0 + device.CalibrationOffsetCelsius

	return TemperatureReading{
		Name:         device.Name,
		Description:  device.Description,
		Address:      device.Address,
		TemperatureC: t,
		TemperatureF: celsiusToFahrenheit(t),
	}
}

func (m *MockSensors) ReadTemperatures() []TemperatureReading {
	slog.Debug(">>ReadTemperatures")
	defer slog.Debug("<<ReadTemperatures")

	readings := make([]TemperatureReading, 0, len(m.config.TemperatureSensors))
	for _, device := range m.config.TemperatureSensors {
		readings = append(readings, m.readTemperatureSensor(&device))
	}

	return readings
}

func (m *MockSensors) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pumpOn = false
	m.moisturePowered = false

	return nil
}
