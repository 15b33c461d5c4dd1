package settings

import "github.com/KyleBrandon/irrigation-server/internal/irrigation"

type (
	Controller interface {
		Settings() irrigation.Settings
		UpdateSetting(setting string, raw string) (irrigation.SettingChange, error)
		ToggleAutomation() bool
	}

	Handler struct {
		controller Controller
		apiKey     string
	}

	SettingResponse struct {
		Setting  string `json:"setting"`
		OldValue string `json:"old_value"`
		Value    string `json:"value"`
	}

	AutomationResponse struct {
		AutomationEnabled bool   `json:"automation_enabled"`
		Message           string `json:"message"`
	}
)
