package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/rs/zerolog/log"
)

type Config struct {
	PollInterval time.Duration // How often to poll for unsent or missed events
	PingInterval time.Duration // How often to ping the notification connection
	BatchSize    int           // Max events to fetch per batch
	MaxRetries   int
	RetryDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		PingInterval: 90 * time.Second,
		BatchSize:    100,
		MaxRetries:   5,
		RetryDelay:   200 * time.Millisecond,
	}
}

// Notifier delivers the IDs of newly committed outbox events as they happen
type Notifier interface {
	Notifications() <-chan string
	Ping() error
	Close() error
}

// Relay moves committed outbox events to the publisher and marks them sent.
// Delivery is at least once; the publisher deduplicates by event ID.
type Relay struct {
	store     store.Store
	publisher Publisher
	notifier  Notifier
	clock     clockwork.Clock
	cfg       Config

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

// NewRelay creates a relay. notifier may be nil, in which case the relay only polls.
func NewRelay(s store.Store, publisher Publisher, notifier Notifier, clock clockwork.Clock, cfg Config) *Relay {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Relay{
		store:     s,
		publisher: publisher,
		notifier:  notifier,
		clock:     clock,
		cfg:       cfg,
	}
}

// Start runs the relay until ctx is cancelled
func (r *Relay) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return fmt.Errorf("outbox relay already running")
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	log.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Int("batch_size", r.cfg.BatchSize).
		Bool("notifications", r.notifier != nil).
		Msg("outbox relay started")

	pollTicker := r.clock.NewTicker(r.cfg.PollInterval)
	defer pollTicker.Stop()

	var notes <-chan string
	var pings <-chan time.Time
	if r.notifier != nil {
		notes = r.notifier.Notifications()
		pingTicker := r.clock.NewTicker(r.cfg.PingInterval)
		defer pingTicker.Stop()
		pings = pingTicker.Chan()
	}

	// Process immediately on start
	if _, err := r.ProcessUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent events")
	}

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay shutting down")
			return nil
		case extra, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			if extra == "" {
				// empty notification means the connection was re-established
				if _, err := r.ProcessUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events")
				}
				continue
			}
			if err := r.HandleNotification(ctx, extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-pollTicker.Chan():
			if _, err := r.ProcessUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pings:
			if err := r.notifier.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// HandleNotification publishes the event named by a notification payload
func (r *Relay) HandleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	event, err := r.store.GetEvent(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		log.Warn().Str("event_id", id.String()).Msg("notified outbox event not found")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	if event.SentAt != nil {
		return nil
	}

	return r.deliver(ctx, event)
}

// ProcessUnsent publishes one batch of unsent events in creation order and
// returns how many were delivered
func (r *Relay) ProcessUnsent(ctx context.Context) (int, error) {
	unsent, err := r.store.FetchUnsentEvents(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	// stop at the first failure so later events never overtake it
	delivered := 0
	errorCount := 0
	for _, event := range unsent {
		if err := r.deliver(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Int("remaining", len(unsent)-delivered-1).
				Msg("failed to deliver event, deferring rest of batch")
			errorCount++
			break
		}
		delivered++
	}

	if delivered > 0 || errorCount > 0 {
		log.Info().
			Int("processed", delivered).
			Int("errors", errorCount).
			Int("total", len(unsent)).
			Msg("processed unsent events batch")
	}
	return delivered, nil
}

func (r *Relay) deliver(ctx context.Context, event models.OutboxEvent) error {
	if err := r.publishWithRetry(ctx, event); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	now := r.clock.Now()
	if err := r.store.MarkEventSent(ctx, event.ID, now); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}

	r.mu.Lock()
	r.processed++
	r.lastEvent = now
	r.mu.Unlock()

	log.Debug().Str("event_id", event.ID.String()).Msg("published and marked event as sent")
	return nil
}

// publishWithRetry attempts to publish an event with a linear backoff between attempts
func (r *Relay) publishWithRetry(ctx context.Context, event models.OutboxEvent) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 && r.cfg.RetryDelay > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(delay):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Error().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

// Stats reports how many events were delivered and when the last one was
func (r *Relay) Stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed, r.lastEvent
}

// Running reports whether Start is active
func (r *Relay) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}
