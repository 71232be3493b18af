package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
)

// NotifyChannel is the Postgres channel that receives the ID of every
// appended outbox event
const NotifyChannel = "transfer_outbox_events"

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// Reader exposes read access to profiles, transfers and offers
type Reader interface {
	GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error)
	ListProfiles(ctx context.Context) ([]models.PlayerProfile, error)
	GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error)
	ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error)
	GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error)
	ListOffers(ctx context.Context) ([]models.TransferOffer, error)
}

// Tx is a read-write view that commits or rolls back as a unit
type Tx interface {
	Reader
	// NextID allocates a record ID. No two committed records share an ID; an
	// ID allocated by a rolled-back transaction may be handed out again.
	NextID(ctx context.Context) (uint64, error)
	PutProfile(ctx context.Context, profile models.PlayerProfile) error
	PutTransfer(ctx context.Context, transfer models.PlayerTransfer) error
	PutOffer(ctx context.Context, offer models.TransferOffer) error
	AppendEvent(ctx context.Context, event models.OutboxEvent) error
}

// Store is the persistence boundary for the transfer domain
type Store interface {
	View(ctx context.Context, fn func(Reader) error) error
	Update(ctx context.Context, fn func(Tx) error) error

	FetchUnsentEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error)
	GetEvent(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error)
	MarkEventSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error

	Close() error
}
