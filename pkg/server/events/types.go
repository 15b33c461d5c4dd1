package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/KyleBrandon/irrigation-server/internal/database"
	"github.com/google/uuid"
)

const (
	DEFAULT_EVENT_LIMIT = 50
	MAX_EVENT_LIMIT     = 500
)

type (
	EventStore interface {
		GetLatestEvents(ctx context.Context, limit int32) ([]database.Event, error)
	}

	Handler struct {
		store EventStore
	}

	EventResponse struct {
		ID        uuid.UUID       `json:"id"`
		CreatedAt time.Time       `json:"created_at"`
		EventType int32           `json:"event_type"`
		EventName string          `json:"event_name"`
		EventData json.RawMessage `json:"event_data"`
	}
)
