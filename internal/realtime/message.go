package realtime

import (
	"github.com/google/uuid"
)

type EventType string

const (
	EventNotificationCreated EventType = "notification.created"
	EventDraftDecided        EventType = "draft.decided"
	EventRiskUpdated         EventType = "risk.updated"
)

// Event is the payload fanned out to connected SSE clients. UserID scopes
// delivery; only that user's streams receive it.
type Event struct {
	UserID uuid.UUID      `json:"user_id"`
	Type   EventType      `json:"type"`
	Data   map[string]any `json:"data,omitempty"`
}
