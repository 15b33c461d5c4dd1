package events

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
	"github.com/KyleBrandon/irrigation-server/pkg/utils"
)

func NewHandler(store EventStore) *Handler {
	return &Handler{
		store: store,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/events", h.handlerEventsGet)
}

// handlerEventsGet returns the most recent controller events, newest first.
func (h *Handler) handlerEventsGet(w http.ResponseWriter, r *http.Request) {
	slog.Debug("handlerEventsGet")

	limit := DEFAULT_EVENT_LIMIT
	if raw := r.URL.Query().Get("limit"); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 1 || value > MAX_EVENT_LIMIT {
			utils.RespondWithError(w, http.StatusBadRequest, fmt.Sprintf("limit must be between 1 and %d", MAX_EVENT_LIMIT), err)
			return
		}
		limit = value
	}

	dbEvents, err := h.store.GetLatestEvents(r.Context(), int32(limit))
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "failed to read events", err)
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, databaseEventsToEvents(dbEvents))
}

func databaseEventsToEvents(dbEvents []database.Event) []EventResponse {
	results := make([]EventResponse, 0, len(dbEvents))
	for _, e := range dbEvents {
		results = append(results, EventResponse{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			EventType: e.EventType,
			EventName: irrigation.EventTypeName(e.EventType),
			EventData: e.EventData,
		})
	}

	return results
}
