package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
)

type memoryState struct {
	profiles  map[uint64]models.PlayerProfile
	transfers map[uint64]models.PlayerTransfer
	offers    map[uint64]models.TransferOffer
	outbox    []models.OutboxEvent
}

func newMemoryState() memoryState {
	return memoryState{
		profiles:  map[uint64]models.PlayerProfile{},
		transfers: map[uint64]models.PlayerTransfer{},
		offers:    map[uint64]models.TransferOffer{},
	}
}

// MemoryStore keeps all records in process memory. Update collects writes in
// a pending set that is merged into the live state only when fn succeeds.
type MemoryStore struct {
	mu     sync.RWMutex
	state  memoryState
	lastID atomic.Uint64

	// eventIndex maps an outbox event ID to its position in state.outbox.
	// Every event before unsentFrom has been sent.
	eventIndex map[uuid.UUID]int
	unsentFrom int
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		state:      newMemoryState(),
		eventIndex: map[uuid.UUID]int{},
	}
}

func (m *MemoryStore) View(ctx context.Context, fn func(Reader) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(&memoryTx{store: m, state: &m.state})
}

func (m *MemoryStore) Update(ctx context.Context, fn func(Tx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	pending := newMemoryState()
	if err := fn(&memoryTx{store: m, state: &m.state, pending: &pending, writable: true}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.commit(pending)
	return nil
}

func (m *MemoryStore) commit(pending memoryState) {
	for k, v := range pending.profiles {
		m.state.profiles[k] = v
	}
	for k, v := range pending.transfers {
		m.state.transfers[k] = v
	}
	for k, v := range pending.offers {
		m.state.offers[k] = v
	}
	for _, ev := range pending.outbox {
		m.eventIndex[ev.ID] = len(m.state.outbox)
		m.state.outbox = append(m.state.outbox, ev)
	}
}

func (m *MemoryStore) FetchUnsentEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var unsent []models.OutboxEvent
	for _, ev := range m.state.outbox[m.unsentFrom:] {
		if ev.SentAt != nil {
			continue
		}
		unsent = append(unsent, ev)
		if len(unsent) == limit {
			break
		}
	}
	return unsent, nil
}

func (m *MemoryStore) GetEvent(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.eventIndex[id]
	if !ok {
		return models.OutboxEvent{}, ErrNotFound
	}
	return m.state.outbox[i], nil
}

func (m *MemoryStore) MarkEventSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i, ok := m.eventIndex[id]
	if !ok {
		return ErrNotFound
	}
	if m.state.outbox[i].SentAt == nil {
		at := sentAt
		m.state.outbox[i].SentAt = &at
	}
	for m.unsentFrom < len(m.state.outbox) && m.state.outbox[m.unsentFrom].SentAt != nil {
		m.unsentFrom++
	}
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}

// memoryTx reads through pending to the live state. pending is nil for views.
type memoryTx struct {
	store    *MemoryStore
	state    *memoryState
	pending  *memoryState
	writable bool
}

func lookup[V any](pending, live map[uint64]V, id uint64) (V, error) {
	if v, ok := pending[id]; ok {
		return v, nil
	}
	if v, ok := live[id]; ok {
		return v, nil
	}
	var zero V
	return zero, ErrNotFound
}

func list[V any](pending, live map[uint64]V) []V {
	ids := make([]uint64, 0, len(live)+len(pending))
	for id := range live {
		ids = append(ids, id)
	}
	for id := range pending {
		if _, ok := live[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]V, 0, len(ids))
	for _, id := range ids {
		v, _ := lookup(pending, live, id)
		out = append(out, v)
	}
	return out
}

func (tx *memoryTx) GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error) {
	return lookup(tx.pendingProfiles(), tx.state.profiles, id)
}

func (tx *memoryTx) ListProfiles(ctx context.Context) ([]models.PlayerProfile, error) {
	return list(tx.pendingProfiles(), tx.state.profiles), nil
}

func (tx *memoryTx) GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error) {
	return lookup(tx.pendingTransfers(), tx.state.transfers, id)
}

func (tx *memoryTx) ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error) {
	return list(tx.pendingTransfers(), tx.state.transfers), nil
}

func (tx *memoryTx) GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error) {
	return lookup(tx.pendingOffers(), tx.state.offers, id)
}

func (tx *memoryTx) ListOffers(ctx context.Context) ([]models.TransferOffer, error) {
	return list(tx.pendingOffers(), tx.state.offers), nil
}

func (tx *memoryTx) pendingProfiles() map[uint64]models.PlayerProfile {
	if tx.pending == nil {
		return nil
	}
	return tx.pending.profiles
}

func (tx *memoryTx) pendingTransfers() map[uint64]models.PlayerTransfer {
	if tx.pending == nil {
		return nil
	}
	return tx.pending.transfers
}

func (tx *memoryTx) pendingOffers() map[uint64]models.TransferOffer {
	if tx.pending == nil {
		return nil
	}
	return tx.pending.offers
}

func (tx *memoryTx) NextID(ctx context.Context) (uint64, error) {
	if !tx.writable {
		return 0, fmt.Errorf("read-only transaction")
	}
	return tx.store.lastID.Add(1), nil
}

func (tx *memoryTx) PutProfile(ctx context.Context, profile models.PlayerProfile) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	tx.pending.profiles[profile.ID] = profile
	return nil
}

func (tx *memoryTx) PutTransfer(ctx context.Context, transfer models.PlayerTransfer) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	tx.pending.transfers[transfer.ID] = transfer
	return nil
}

func (tx *memoryTx) PutOffer(ctx context.Context, offer models.TransferOffer) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	tx.pending.offers[offer.ID] = offer
	return nil
}

func (tx *memoryTx) AppendEvent(ctx context.Context, event models.OutboxEvent) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	tx.pending.outbox = append(tx.pending.outbox, event)
	return nil
}
