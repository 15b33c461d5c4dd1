package watering

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/internal/auth"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func NewHandler(controller Controller, pump PumpSensor, apiKey string) *Handler {
	return &Handler{
		controller: controller,
		pump:       pump,
		apiKey:     apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/watering", h.handlerWateringGet)
	mux.HandleFunc("POST /v1/watering", auth.RequireApiKey(h.apiKey, h.handlerWateringStart))
}

func (h *Handler) handlerWateringGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerWateringGet")

	pumpOn, err := h.pump.IsPumpOn()
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read the pump state", err)
		return
	}

	status := h.controller.Status()

	utils.RespondWithJSON(w, http.StatusOK, WateringResponse{
		PumpOn:                 pumpOn,
		PumpRunning:            status.PumpRunning,
		Cycle:                  status.Cycle,
		WateringSeconds:        status.WateringSeconds,
		HoursSinceLastWatering: status.HoursSinceLastWatering,
	})
}

// handlerWateringStart runs a watering cycle regardless of the automation
// flag. The request returns once the pump is on; the cycle completes in the
// control loop.
func (h *Handler) handlerWateringStart(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerWateringStart")

	cycle, err := h.controller.RunCycle()
	if err != nil {
		if errors.Is(err, irrigation.ErrBusy) {
			utils.RespondWithError(w, http.StatusConflict, "a watering cycle is already running", err)
			return
		}

		utils.RespondWithError(w, http.StatusInternalServerError, "failed to turn on the pump", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusAccepted, cycle)
}
