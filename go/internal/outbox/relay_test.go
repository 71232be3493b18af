package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu       sync.Mutex
	failures int
	calls    int
	events   []models.OutboxEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event models.OutboxEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failures > 0 {
		p.failures--
		return errors.New("bus unavailable")
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) published() []models.OutboxEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.OutboxEvent(nil), p.events...)
}

type chanNotifier struct {
	ch    chan string
	pings int
}

func (n *chanNotifier) Notifications() <-chan string { return n.ch }
func (n *chanNotifier) Ping() error                  { n.pings++; return nil }
func (n *chanNotifier) Close() error                 { return nil }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RetryDelay = 0
	cfg.MaxRetries = 2
	return cfg
}

func appendEvent(t *testing.T, s store.Store, eventType string, at time.Time) models.OutboxEvent {
	t.Helper()
	ev := models.OutboxEvent{
		ID:        uuid.New(),
		PlayerID:  1,
		EventType: eventType,
		Payload:   json.RawMessage(`{"player_id":1}`),
		CreatedAt: at,
	}
	err := s.Update(context.Background(), func(tx store.Tx) error {
		return tx.AppendEvent(context.Background(), ev)
	})
	require.NoError(t, err)
	return ev
}

func TestProcessUnsent(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	pub := &recordingPublisher{}
	relay := NewRelay(s, pub, nil, clock, testConfig())

	first := appendEvent(t, s, "PlayerProfileCreated", clock.Now())
	second := appendEvent(t, s, "PlayerTransferred", clock.Now())

	n, err := relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	published := pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, first.ID, published[0].ID)
	assert.Equal(t, second.ID, published[1].ID)

	unsent, err := s.FetchUnsentEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, unsent)

	processed, last := relay.Stats()
	assert.Equal(t, uint64(2), processed)
	assert.True(t, last.Equal(clock.Now()))

	// nothing left to do
	n, err = relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPublishRetries(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClock()

	pub := &recordingPublisher{failures: 2}
	relay := NewRelay(s, pub, nil, clock, testConfig())
	appendEvent(t, s, "PlayerProfileCreated", clock.Now())

	n, err := relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, pub.calls)

	// retries exhausted leaves the event for the next pass
	pub = &recordingPublisher{failures: 10}
	relay = NewRelay(s, pub, nil, clock, testConfig())
	ev := appendEvent(t, s, "PlayerTransferred", clock.Now())

	n, err = relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, pub.calls)

	unsent, err := s.FetchUnsentEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unsent, 1)
	assert.Equal(t, ev.ID, unsent[0].ID)
}

func TestProcessUnsentKeepsOrderOnFailure(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClock()

	accepted := appendEvent(t, s, "TransferOfferAccepted", clock.Now())
	moved := appendEvent(t, s, "PlayerTransferred", clock.Now())

	pub := &recordingPublisher{failures: 3}
	relay := NewRelay(s, pub, nil, clock, testConfig())

	n, err := relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 3, pub.calls)
	assert.Empty(t, pub.published())

	n, err = relay.ProcessUnsent(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	published := pub.published()
	require.Len(t, published, 2)
	assert.Equal(t, accepted.ID, published[0].ID)
	assert.Equal(t, moved.ID, published[1].ID)
}

func TestHandleNotification(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClock()
	pub := &recordingPublisher{}
	relay := NewRelay(s, pub, nil, clock, testConfig())

	ev := appendEvent(t, s, "TransferOfferCreated", clock.Now())

	require.NoError(t, relay.HandleNotification(ctx, ev.ID.String()))
	require.Len(t, pub.published(), 1)

	// already sent events are not published again
	require.NoError(t, relay.HandleNotification(ctx, ev.ID.String()))
	assert.Len(t, pub.published(), 1)

	assert.NoError(t, relay.HandleNotification(ctx, uuid.NewString()))
	assert.Error(t, relay.HandleNotification(ctx, "not-a-uuid"))
}

func TestStartWithNotifier(t *testing.T) {
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClock()
	pub := &recordingPublisher{}
	notifier := &chanNotifier{ch: make(chan string, 1)}
	relay := NewRelay(s, pub, notifier, clock, testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	require.Eventually(t, relay.Running, time.Second, 5*time.Millisecond)
	assert.Error(t, relay.Start(ctx))

	ev := appendEvent(t, s, "PlayerTransferred", clock.Now())
	notifier.ch <- ev.ID.String()

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.False(t, relay.Running())
}

func TestStartPollsOnTicker(t *testing.T) {
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClock()
	pub := &recordingPublisher{}
	cfg := testConfig()
	relay := NewRelay(s, pub, nil, clock, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- relay.Start(ctx) }()

	require.NoError(t, clock.BlockUntilContext(ctx, 1))
	appendEvent(t, s, "PlayerProfileCreated", clock.Now())
	clock.Advance(cfg.PollInterval)

	require.Eventually(t, func() bool { return len(pub.published()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestHealthChecker(t *testing.T) {
	s := store.NewMemoryStore()
	clock := clockwork.NewFakeClockAt(time.Unix(1000, 0))
	relay := NewRelay(s, &recordingPublisher{}, nil, clock, testConfig())
	checker := NewHealthChecker(relay, s, nil, clock, time.Minute)

	status := checker.Check(context.Background())
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Errors, "relay not active")

	appendEvent(t, s, "PlayerProfileCreated", clock.Now())
	clock.Advance(2 * time.Minute)

	rec := httptest.NewRecorder()
	checker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/outbox", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.PendingEvents)
	assert.Len(t, body.Errors, 2)
}

func TestNewEnvelope(t *testing.T) {
	ev := models.OutboxEvent{
		ID:        uuid.New(),
		PlayerID:  4,
		EventType: "TransferOfferAccepted",
		Payload:   json.RawMessage(`{"offer_id":3}`),
		Metadata:  json.RawMessage(`{"correlation_id":"abc"}`),
		CreatedAt: time.Unix(0, 100),
	}
	env := NewEnvelope(ev)
	assert.Equal(t, ev.ID.String(), env.EventID)
	assert.Equal(t, uint64(4), env.PlayerID)

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"eventType":"TransferOfferAccepted"`)
	assert.Contains(t, string(data), `"payload":{"offer_id":3}`)

	cfg := DefaultJetStreamConfig()
	assert.Equal(t, "transfers.events.TransferOfferAccepted", cfg.Subject(ev.EventType))
	assert.Equal(t, []string{"transfers.events.>"}, cfg.StreamConfig().Subjects)
}
