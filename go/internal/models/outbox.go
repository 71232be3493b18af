package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxEvent is a domain event recorded in the same transaction as the state
// change it describes, waiting to be relayed to the message bus.
type OutboxEvent struct {
	ID        uuid.UUID       `json:"id"`
	PlayerID  uint64          `json:"player_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}
