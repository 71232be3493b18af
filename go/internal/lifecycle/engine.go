package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/events"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
)

// Config tunes engine behaviour
type Config struct {
	// StrictOfferAcceptance makes AcceptOffer apply the same eligibility checks
	// as a direct transfer.
	StrictOfferAcceptance bool `yaml:"strict_offer_acceptance"`
}

// Engine owns the player, transfer and offer lifecycle. Every write runs inside
// a single store transaction together with the outbox event describing it.
type Engine struct {
	store store.Store
	clock clockwork.Clock
	cfg   Config
}

// NewEngine creates a new lifecycle Engine
func NewEngine(s store.Store, clock clockwork.Clock, cfg Config) *Engine {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		store: s,
		clock: clock,
		cfg:   cfg,
	}
}

// now returns the engine clock as Unix nanoseconds
func (e *Engine) now() uint64 {
	return uint64(e.clock.Now().UnixNano())
}

// recordEvent appends an outbox event in the caller's transaction
func (e *Engine) recordEvent(ctx context.Context, tx store.Tx, playerID uint64, eventType string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}

	var metadata json.RawMessage
	if id := events.CorrelationID(ctx); id != "" {
		metadata, err = json.Marshal(events.Metadata{CorrelationID: id})
		if err != nil {
			return fmt.Errorf("failed to encode event metadata: %w", err)
		}
	}

	return tx.AppendEvent(ctx, models.OutboxEvent{
		ID:        uuid.New(),
		PlayerID:  playerID,
		EventType: eventType,
		Payload:   data,
		Metadata:  metadata,
		CreatedAt: e.clock.Now().UTC(),
	})
}

// loadProfile reads a profile and maps a missing record to a NotFound error
func loadProfile(ctx context.Context, r store.Reader, id uint64) (models.PlayerProfile, error) {
	p, err := r.GetProfile(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return p, notFound("player %d not found", id)
	}
	if err != nil {
		return p, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func loadOffer(ctx context.Context, r store.Reader, id uint64) (models.TransferOffer, error) {
	o, err := r.GetOffer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return o, notFound("offer %d not found", id)
	}
	if err != nil {
		return o, fmt.Errorf("failed to get offer: %w", err)
	}
	return o, nil
}

func loadTransfer(ctx context.Context, r store.Reader, id uint64) (models.PlayerTransfer, error) {
	t, err := r.GetTransfer(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return t, notFound("transfer %d not found", id)
	}
	if err != nil {
		return t, fmt.Errorf("failed to get transfer: %w", err)
	}
	return t, nil
}

// eligibleForTransfer is the direct-transfer precondition
func eligibleForTransfer(p models.PlayerProfile, fromTeam string) bool {
	return p.TransferStatus == models.TransferStatusAvailable && p.CurrentTeam == fromTeam
}
