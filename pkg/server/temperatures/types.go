package temperatures

import (
	"github.com/KyleBrandon/irrigation-server/internal/sensor"
)

type (
	TemperatureSensors interface {
		ReadTemperatures() []sensor.TemperatureReading
	}

	TemperatureReading struct {
		Name         string  `json:"name,omitempty"`
		Description  string  `json:"description,omitempty"`
		Address      string  `json:"address,omitempty"`
		TemperatureC float64 `json:"temperature_c,omitempty"`
		TemperatureF float64 `json:"temperature_f,omitempty"`
		Err          string  `json:"err,omitempty"`
	}

	Handler struct {
		sensors TemperatureSensors
	}
)
