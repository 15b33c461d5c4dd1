package health

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/KyleBrandon/irrigation-server/internal/auth"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func NewHandler(loggerLevel *slog.LevelVar, logger *slog.Logger, apiKey string) *Handler {
	return &Handler{
		loggerLevel: loggerLevel,
		logger:      logger,
		apiKey:      apiKey,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/health", h.handlerHealthGet)
	mux.HandleFunc("GET /v1/health/log-level", h.handlerLogLevelGet)
	mux.HandleFunc("PUT /v1/health/log-level", auth.RequireApiKey(h.apiKey, h.handlerLogLevelSet))
}

// handlerHealthGet succeeds for as long as the process is serving requests.
func (h *Handler) handlerHealthGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerHealthGet")

	response := struct {
		Status string `json:"status"`
	}{
		Status: "ok",
	}

	utils.RespondWithJSON(w, http.StatusOK, response)
}

func (h *Handler) handlerLogLevelGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerLogLevelGet")

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{LogLevel: h.loggerLevel.Level().String()})
}

func (h *Handler) handlerLogLevelSet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerLogLevelSet")

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for log level", err)
		return
	}

	defer r.Body.Close()

	var request LogLevelRequest
	if err := json.Unmarshal(body, &request); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid body for log level", err)
		return
	}

	level, err := utils.ParseLogLevel(request.LogLevel)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error(), err)
		return
	}

	h.loggerLevel.Set(level)
	h.logger.Info("log level changed", "level", level.String())

	utils.RespondWithJSON(w, http.StatusOK, LogLevelResponse{LogLevel: level.String()})
}
