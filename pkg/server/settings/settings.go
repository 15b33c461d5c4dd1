package settings

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/internal/auth"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func NewHandler(controller Controller, apiKey string) *Handler {
	return &Handler{
		controller: controller,
		apiKey:     apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/settings", h.handlerSettingsGet)
	mux.HandleFunc("PUT /v1/settings/{name}", auth.RequireApiKey(h.apiKey, h.handlerSettingSet))
	mux.HandleFunc("PUT /v1/automation/toggle", auth.RequireApiKey(h.apiKey, h.handlerAutomationToggle))
}

func (h *Handler) handlerSettingsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerSettingsGet")

	utils.RespondWithJSON(w, http.StatusOK, h.controller.Settings())
}

// handlerSettingSet updates one setting from the value query parameter. The
// prior value is kept when the new one is rejected.
func (h *Handler) handlerSettingSet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	slog.Debug(">>handlerSettingSet", "setting", name)
	defer slog.Debug("<<handlerSettingSet")

	if !r.URL.Query().Has("value") {
		utils.RespondWithError(w, http.StatusBadRequest, "Missing value parameter", nil)
		return
	}

	change, err := h.controller.UpdateSetting(name, r.URL.Query().Get("value"))
	if err != nil {
		var verr *irrigation.ValidationError
		switch {
		case errors.As(err, &verr):
			utils.RespondWithError(w, http.StatusBadRequest, verr.Error(), err)
		case errors.Is(err, irrigation.ErrUnknownSetting):
			utils.RespondWithError(w, http.StatusNotFound, err.Error(), err)
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to update setting", err)
		}
		return
	}

	slog.Info("setting changed", "setting", change.Setting, "old", change.OldValue, "new", change.NewValue)

	utils.RespondWithJSON(w, http.StatusOK, SettingResponse{
		Setting:  change.Setting,
		OldValue: change.OldValue,
		Value:    change.NewValue,
	})
}

func (h *Handler) handlerAutomationToggle(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerAutomationToggle")

	enabled := h.controller.ToggleAutomation()

	message := "Watering system DISABLED"
	if enabled {
		message = "Watering system ENABLED"
	}

	utils.RespondWithJSON(w, http.StatusOK, AutomationResponse{
		AutomationEnabled: enabled,
		Message:           message,
	})
}
