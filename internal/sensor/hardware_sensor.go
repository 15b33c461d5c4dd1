package sensor

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/stianeikeland/go-rpio/v4"
	"github.com/yryz/ds18b20"
)

const (
	MCP3008_CHANNELS  = 8
	MCP3008_SPI_SPEED = 1_000_000
)

// NewHardwareSensors maps the GPIO memory once for the life of the server and
// leaves both outputs off.
func NewHardwareSensors(config SensorConfig) (*HardwareSensors, error) {
	slog.Debug(">>NewHardwareSensors")
	defer slog.Debug("<<NewHardwareSensors")

	channel, err := strconv.Atoi(config.MoistureSensor.Address)
	if err != nil || channel < 0 || channel >= MCP3008_CHANNELS {
		return nil, fmt.Errorf("invalid MCP3008 channel %q", config.MoistureSensor.Address)
	}

	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("open gpio memory: %w", err)
	}

	s := &HardwareSensors{
		config:     config,
		rpioOpen:   true,
		adcChannel: uint8(channel),
	}

	if s.pump, err = newPowerSwitch(config.PumpDevice); err != nil {
		s.Close()
		return nil, err
	}

	if s.moisturePower, err = newPowerSwitch(config.MoisturePower); err != nil {
		s.Close()
		return nil, err
	}

	if err := errors.Join(s.pump.Set(false), s.moisturePower.Set(false)); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func newPowerSwitch(device DeviceConfig) (powerSwitch, error) {
	switch device.DriverType {
	case DRIVERTYPE_GPIO:
		pinNumber, err := strconv.Atoi(device.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid pin for %s: %w", device.Name, err)
		}
		return &rpioSwitch{device: device, pin: rpio.Pin(pinNumber)}, nil

	case DRIVERTYPE_GPIOCDEV:
		return newLineSwitch(device)
	}

	return nil, fmt.Errorf("driver %q is not supported for %s", device.DriverType, device.Name)
}

func (s *HardwareSensors) ActivateMoistureSensor() error {
	slog.Debug(">>ActivateMoistureSensor")
	defer slog.Debug("<<ActivateMoistureSensor")

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.moisturePower.Set(true); err != nil {
		return err
	}

	if !s.spiActive {
		if err := rpio.SpiBegin(rpio.Spi0); err != nil {
			return fmt.Errorf("begin spi: %w", err)
		}
		rpio.SpiSpeed(MCP3008_SPI_SPEED)
		rpio.SpiChipSelect(0)
		s.spiActive = true
	}

	return nil
}

func (s *HardwareSensors) DeactivateMoistureSensor() error {
	slog.Debug(">>DeactivateMoistureSensor")
	defer slog.Debug("<<DeactivateMoistureSensor")

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spiActive {
		rpio.SpiEnd(rpio.Spi0)
		s.spiActive = false
	}

	return s.moisturePower.Set(false)
}

func (s *HardwareSensors) ReadMoisture() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.spiActive {
		return 0, errors.New("moisture sensor is not active")
	}

	buf := mcp3008Request(s.adcChannel)
	rpio.SpiExchange(buf)

	return mcp3008Value(buf), nil
}

func (s *HardwareSensors) IsPumpOn() (bool, error) {
	slog.Debug(">>IsPumpOn")
	defer slog.Debug("<<IsPumpOn")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pump.IsOn()
}

func (s *HardwareSensors) TurnPumpOn() error {
	slog.Debug(">>TurnPumpOn")
	defer slog.Debug("<<TurnPumpOn")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pump.Set(true)
}

func (s *HardwareSensors) TurnPumpOff() error {
	slog.Debug(">>TurnPumpOff")
	defer slog.Debug("<<TurnPumpOff")

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pump.Set(false)
}

func (s *HardwareSensors) readTemperatureSensor(device *DeviceConfig) TemperatureReading {
	tr := TemperatureReading{
		Name:        device.Name,
		Description: device.Description,
		Address:     device.Address,
	}

	t, err := ds18b20.Temperature(device.Address)
	if err != nil {
		slog.Error("failed to read sensor", "name", device.Name, "address", device.Address, "error", err)
		tr.Err = err
		return tr
	}

	t += device.CalibrationOffsetCelsius
	tr.TemperatureC = t
	tr.TemperatureF = celsiusToFahrenheit(t)

	return tr
}

func (s *HardwareSensors) ReadTemperatures() []TemperatureReading {
	slog.Debug(">>ReadTemperatures")
	defer slog.Debug("<<ReadTemperatures")

	readings := make([]TemperatureReading, 0, len(s.config.TemperatureSensors))
	for _, device := range s.config.TemperatureSensors {
		readings = append(readings, s.readTemperatureSensor(&device))
	}

	return readings
}

// Close turns both outputs off before releasing the hardware.
func (s *HardwareSensors) Close() error {
	slog.Debug(">>Close")
	defer slog.Debug("<<Close")

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, sw := range []powerSwitch{s.pump, s.moisturePower} {
		if sw == nil {
			continue
		}
		if err := sw.Set(false); err != nil {
			errs = append(errs, err)
		}
		if err := sw.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if s.spiActive {
		rpio.SpiEnd(rpio.Spi0)
		s.spiActive = false
	}

	if s.rpioOpen {
		if err := rpio.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close gpio memory: %w", err))
		}
		s.rpioOpen = false
	}

	return errors.Join(errs...)
}

// mcp3008Request builds a single ended conversion request for channel.
func mcp3008Request(channel uint8) []byte {
	return []byte{0x01, (0x08 | channel) << 4, 0x00}
}

// mcp3008Value extracts the 10 bit result from an exchanged request.
func mcp3008Value(buf []byte) int {
	return int(buf[1]&0x03)<<8 | int(buf[2])
}

type rpioSwitch struct {
	device DeviceConfig
	pin    rpio.Pin
}

func (r *rpioSwitch) Set(on bool) error {
	slog.Debug(">>rpioSwitch.Set", "name", r.device.Name, "on", on)
	defer slog.Debug("<<rpioSwitch.Set", "name", r.device.Name)

	r.pin.Output()

	// a normally on device is driven low to switch it on
	if on != r.device.NormallyOn {
		r.pin.High()
	} else {
		r.pin.Low()
	}

	return nil
}

func (r *rpioSwitch) IsOn() (bool, error) {
	var pinOnValue rpio.State = rpio.High
	if r.device.NormallyOn {
		pinOnValue = rpio.Low
	}

	return r.pin.Read() == pinOnValue, nil
}

func (r *rpioSwitch) Close() error {
	return nil
}
