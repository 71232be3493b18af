package events

import (
	"context"
	"encoding/json"
	"time"
)

// Event types recorded in the transfer outbox
const (
	EventTypePlayerProfileCreated  = "PlayerProfileCreated"
	EventTypePlayerTransferred     = "PlayerTransferred"
	EventTypeTransferOfferCreated  = "TransferOfferCreated"
	EventTypeTransferOfferAccepted = "TransferOfferAccepted"
	EventTypeTransferOfferRejected = "TransferOfferRejected"
)

// Event payload types that are shared between the lifecycle engine, the
// outbox relay and the feed gateway

// PlayerProfileCreatedPayload is the payload for a PlayerProfileCreated event
type PlayerProfileCreatedPayload struct {
	PlayerID    uint64 `json:"player_id"`
	Name        string `json:"name"`
	Position    string `json:"position"`
	CurrentTeam string `json:"current_team"`
	MarketValue uint64 `json:"market_value"`
}

// PlayerTransferredPayload is the payload for a PlayerTransferred event.
// OfferID is zero for direct transfers.
type PlayerTransferredPayload struct {
	TransferID    uint64 `json:"transfer_id"`
	OfferID       uint64 `json:"offer_id,omitempty"`
	PlayerID      uint64 `json:"player_id"`
	FromTeam      string `json:"from_team"`
	ToTeam        string `json:"to_team"`
	TransferFee   uint64 `json:"transfer_fee"`
	TransferDate  uint64 `json:"transfer_date"`
	ContractUntil uint64 `json:"contract_until"`
}

// TransferOfferCreatedPayload is the payload for a TransferOfferCreated event
type TransferOfferCreatedPayload struct {
	OfferID     uint64 `json:"offer_id"`
	PlayerID    uint64 `json:"player_id"`
	FromTeam    string `json:"from_team"`
	ToTeam      string `json:"to_team"`
	OfferAmount uint64 `json:"offer_amount"`
}

// TransferOfferResolvedPayload is the payload for TransferOfferAccepted and
// TransferOfferRejected events
type TransferOfferResolvedPayload struct {
	OfferID    uint64 `json:"offer_id"`
	PlayerID   uint64 `json:"player_id"`
	FromTeam   string `json:"from_team"`
	ToTeam     string `json:"to_team"`
	Status     string `json:"status"`
	TransferID uint64 `json:"transfer_id,omitempty"`
}

// Metadata travels alongside an event but is not part of the domain payload
type Metadata struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

type correlationKey struct{}

// WithCorrelationID attaches a request correlation ID that will be copied into
// the metadata of every event recorded while handling the request
func WithCorrelationID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation ID attached to ctx, if any
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// Teams returns the teams an event concerns, used for feed filtering
func Teams(from, to string) []string {
	teams := make([]string, 0, 2)
	if from != "" {
		teams = append(teams, from)
	}
	if to != "" && to != from {
		teams = append(teams, to)
	}
	return teams
}

// Envelope is the message published to the bus for every outbox event
type Envelope struct {
	EventID   string          `json:"eventId"`
	EventType string          `json:"eventType"`
	PlayerID  uint64          `json:"playerId"`
	Timestamp time.Time       `json:"timestamp"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// TeamsOf returns the teams named in an event payload
func TeamsOf(payload json.RawMessage) []string {
	var p struct {
		FromTeam    string `json:"from_team"`
		ToTeam      string `json:"to_team"`
		CurrentTeam string `json:"current_team"`
	}
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil
	}
	if p.CurrentTeam != "" {
		return Teams(p.CurrentTeam, "")
	}
	return Teams(p.FromTeam, p.ToTeam)
}
