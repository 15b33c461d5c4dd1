package moisture

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func NewHandler(controller Controller) *Handler {
	return &Handler{
		controller: controller,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/moisture", h.handlerMoistureGet)
}

// handlerMoistureGet takes a fresh sample. It blocks for the length of one
// sample batch.
func (h *Handler) handlerMoistureGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug(">>handlerMoistureGet")
	defer slog.Debug("<<handlerMoistureGet")

	moisture, err := h.controller.SampleNow()
	if err != nil {
		var fault *irrigation.FaultError
		switch {
		case errors.Is(err, irrigation.ErrBusy):
			utils.RespondWithError(w, http.StatusConflict, "a moisture sample is already in progress", err)
		case errors.As(err, &fault):
			utils.RespondWithError(w, http.StatusServiceUnavailable, "the moisture sensor could not be read", err)
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "failed to sample soil moisture", err)
		}
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, MoistureResponse{Moisture: moisture})
}
