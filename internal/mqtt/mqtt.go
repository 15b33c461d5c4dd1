// Package mqtt mirrors irrigation events and status snapshots to an MQTT
// broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/KyleBrandon/irrigation-server/internal/irrigation"
)

const (
	TOPIC_EVENTS       = "garden/irrigation/events"
	TOPIC_STATUS       = "garden/irrigation/status"
	TOPIC_AVAILABILITY = "garden/irrigation/availability"

	DEFAULT_CLIENT_ID = "irrigation-server"
)

// Publisher publishes controller output. Errors are reported to the caller
// and must never stop the control loop.
type Publisher interface {
	PublishEvent(event irrigation.Event) error
	PublishStatus(status irrigation.Status, at time.Time) error
	Close() error
}

type (
	EventPayload struct {
		Irrigation EventDetails `json:"irrigation"`
	}

	EventDetails struct {
		ID        string  `json:"id"`
		Timestamp string  `json:"timestamp"`
		Event     string  `json:"event"`
		Tick      uint32  `json:"tick"`
		Moisture  float64 `json:"moisture,omitempty"`
		CycleID   string  `json:"cycle_id,omitempty"`
		Message   string  `json:"message,omitempty"`
	}

	StatusPayload struct {
		Timestamp string            `json:"timestamp"`
		Status    irrigation.Status `json:"status"`
	}
)

func FormatEventPayload(event irrigation.Event) ([]byte, error) {
	details := EventDetails{
		ID:        event.ID.String(),
		Timestamp: event.CreatedAt.UTC().Format(time.RFC3339),
		Event:     irrigation.EventTypeName(event.Type),
		Tick:      event.Tick,
		Moisture:  event.Moisture,
		Message:   event.Message,
	}

	if event.CycleID != uuid.Nil {
		details.CycleID = event.CycleID.String()
	}

	return json.Marshal(EventPayload{Irrigation: details})
}

func FormatStatusPayload(status irrigation.Status, at time.Time) ([]byte, error) {
	return json.Marshal(StatusPayload{
		Timestamp: at.UTC().Format(time.RFC3339),
		Status:    status,
	})
}
