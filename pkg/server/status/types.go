package status

import "github.com/KyleBrandon/irrigation-server/internal/irrigation"

const (
	STATUS_INTERVAL_SECONDS    = 1
	HEARTBEAT_INTERVAL_SECONDS = 30
)

type (
	Controller interface {
		Status() irrigation.Status
	}

	Handler struct {
		controller     Controller
		originPatterns []string
	}

	ResetResponse struct {
		DaysBeforeReset float64 `json:"days_before_reset"`
	}
)
