package watering

import "github.com/KyleBrandon/irrigation-server/internal/irrigation"

type (
	Controller interface {
		RunCycle() (irrigation.Cycle, error)
		Status() irrigation.Status
	}

	PumpSensor interface {
		IsPumpOn() (bool, error)
	}

	Handler struct {
		controller Controller
		pump       PumpSensor
		apiKey     string
	}

	WateringResponse struct {
		PumpOn                 bool              `json:"pump_on"`
		PumpRunning            bool              `json:"pump_running"`
		Cycle                  *irrigation.Cycle `json:"cycle,omitempty"`
		WateringSeconds        int               `json:"watering_seconds"`
		HoursSinceLastWatering float64           `json:"hours_since_last_watering"`
	}
)
