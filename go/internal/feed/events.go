package feed

import (
	"encoding/json"
	"time"

	"github.com/mcdev12/rugbytransfers/go/internal/events"
)

// Event is the message pushed to websocket clients
type Event struct {
	ID        string          `json:"id"`        // Outbox event UUID
	Type      string          `json:"type"`      // Event type
	PlayerID  uint64          `json:"player_id"` // Player the event concerns
	Teams     []string        `json:"teams"`     // Teams named in the payload
	Timestamp time.Time       `json:"timestamp"` // Event creation time
	Data      json.RawMessage `json:"data"`      // Event-specific payload
}

// FromEnvelope converts a bus envelope to a feed event
func FromEnvelope(env events.Envelope) *Event {
	return &Event{
		ID:        env.EventID,
		Type:      env.EventType,
		PlayerID:  env.PlayerID,
		Teams:     events.TeamsOf(env.Payload),
		Timestamp: env.Timestamp,
		Data:      env.Payload,
	}
}

// concerns reports whether the event names team
func (e *Event) concerns(team string) bool {
	for _, t := range e.Teams {
		if t == team {
			return true
		}
	}
	return false
}

func knownEventType(eventType string) bool {
	switch eventType {
	case events.EventTypePlayerProfileCreated,
		events.EventTypePlayerTransferred,
		events.EventTypeTransferOfferCreated,
		events.EventTypeTransferOfferAccepted,
		events.EventTypeTransferOfferRejected:
		return true
	default:
		return false
	}
}
