package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/rugbytransfers/go/internal/models"
	"github.com/mcdev12/rugbytransfers/go/internal/sqlutil"
	"github.com/rs/zerolog/log"
	"github.com/sqlc-dev/pqtype"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLStore persists records as JSON documents keyed by ID, in Postgres or SQLite
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	writeMu sync.Mutex
}

// NewPostgresStore wraps an open lib/pq connection and ensures the schema exists
func NewPostgresStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	return newSQLStore(ctx, db, postgresDialect)
}

// NewSQLiteStore wraps an open go-sqlite3 connection and ensures the schema exists
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	// SQLite allows a single writer; in-memory databases also live per connection.
	db.SetMaxOpenConns(1)
	return newSQLStore(ctx, db, sqliteDialect)
}

func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	for _, stmt := range d.schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("failed to apply %s schema: %w", d.name, err)
		}
	}
	log.Info().Str("dialect", d.name).Msg("store schema ready")
	return &SQLStore{db: db, dialect: d}, nil
}

func (s *SQLStore) View(ctx context.Context, fn func(Reader) error) error {
	return fn(&sqlTx{q: s.db, dialect: s.dialect})
}

func (s *SQLStore) Update(ctx context.Context, fn func(Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return sqlutil.Run(ctx, s.db,
		func(tx *sql.Tx) *sqlTx {
			return &sqlTx{q: tx, dialect: s.dialect, writable: true}
		},
		func(q *sqlTx) error {
			return fn(q)
		},
	)
}

func (s *SQLStore) FetchUnsentEvents(ctx context.Context, limit int) ([]models.OutboxEvent, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT id, player_id, event_type, payload, metadata, created_at, sent_at
		FROM transfer_outbox WHERE sent_at IS NULL ORDER BY seq LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []models.OutboxEvent
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

func (s *SQLStore) GetEvent(ctx context.Context, id uuid.UUID) (models.OutboxEvent, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(
		`SELECT id, player_id, event_type, payload, metadata, created_at, sent_at
		FROM transfer_outbox WHERE id = ?`), id.String())
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.OutboxEvent{}, ErrNotFound
	}
	return ev, err
}

func (s *SQLStore) MarkEventSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`UPDATE transfer_outbox SET sent_at = COALESCE(sent_at, ?) WHERE id = ?`),
		sentAt.UnixNano(), id.String())
	if err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection pool
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.OutboxEvent, error) {
	var (
		id        string
		playerID  int64
		eventType string
		payload   []byte
		metadata  pqtype.NullRawMessage
		createdAt int64
		sentAt    sql.NullInt64
	)
	if err := row.Scan(&id, &playerID, &eventType, &payload, &metadata, &createdAt, &sentAt); err != nil {
		return models.OutboxEvent{}, err
	}
	eventID, err := uuid.Parse(id)
	if err != nil {
		return models.OutboxEvent{}, fmt.Errorf("invalid outbox event id %q: %w", id, err)
	}
	return models.OutboxEvent{
		ID:        eventID,
		PlayerID:  uint64(playerID),
		EventType: eventType,
		Payload:   json.RawMessage(payload),
		Metadata:  sqlutil.FromNullRawMessage(metadata),
		CreatedAt: sqlutil.FromUnixNano(createdAt),
		SentAt:    sqlutil.FromNullTime(sentAt),
	}, nil
}

type sqlTx struct {
	q        queryer
	dialect  dialect
	writable bool
}

func (tx *sqlTx) getDoc(ctx context.Context, table string, id uint64, dest any) error {
	query := `SELECT data FROM ` + table + ` WHERE id = ?`
	if tx.writable {
		query += tx.dialect.lockSuffix
	}
	var data string
	err := tx.q.QueryRowContext(ctx, tx.dialect.rebind(query), sqlutil.ToInt64(id)).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to read %s %d: %w", table, id, err)
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to decode %s %d: %w", table, id, err)
	}
	return nil
}

func listDocs[T any](ctx context.Context, tx *sqlTx, table string) ([]T, error) {
	rows, err := tx.q.QueryContext(ctx, `SELECT data FROM `+table+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(data), &v); err != nil {
			return nil, fmt.Errorf("failed to decode %s row: %w", table, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (tx *sqlTx) GetProfile(ctx context.Context, id uint64) (models.PlayerProfile, error) {
	var p models.PlayerProfile
	err := tx.getDoc(ctx, "player_profiles", id, &p)
	return p, err
}

func (tx *sqlTx) ListProfiles(ctx context.Context) ([]models.PlayerProfile, error) {
	return listDocs[models.PlayerProfile](ctx, tx, "player_profiles")
}

func (tx *sqlTx) GetTransfer(ctx context.Context, id uint64) (models.PlayerTransfer, error) {
	var t models.PlayerTransfer
	err := tx.getDoc(ctx, "player_transfers", id, &t)
	return t, err
}

func (tx *sqlTx) ListTransfers(ctx context.Context) ([]models.PlayerTransfer, error) {
	return listDocs[models.PlayerTransfer](ctx, tx, "player_transfers")
}

func (tx *sqlTx) GetOffer(ctx context.Context, id uint64) (models.TransferOffer, error) {
	var o models.TransferOffer
	err := tx.getDoc(ctx, "transfer_offers", id, &o)
	return o, err
}

func (tx *sqlTx) ListOffers(ctx context.Context) ([]models.TransferOffer, error) {
	return listDocs[models.TransferOffer](ctx, tx, "transfer_offers")
}

func (tx *sqlTx) NextID(ctx context.Context) (uint64, error) {
	if !tx.writable {
		return 0, fmt.Errorf("read-only transaction")
	}
	var id int64
	if err := tx.q.QueryRowContext(ctx, tx.dialect.nextID).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}
	return uint64(id), nil
}

func (tx *sqlTx) putDoc(ctx context.Context, table, keyColumn string, id uint64, key any, doc any) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s %d: %w", table, id, err)
	}
	query := `INSERT INTO ` + table + ` (id, ` + keyColumn + `, data) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET ` + keyColumn + ` = excluded.` + keyColumn + `, data = excluded.data`
	if _, err := tx.q.ExecContext(ctx, tx.dialect.rebind(query), sqlutil.ToInt64(id), key, string(data)); err != nil {
		return fmt.Errorf("failed to write %s %d: %w", table, id, err)
	}
	return nil
}

func (tx *sqlTx) PutProfile(ctx context.Context, profile models.PlayerProfile) error {
	return tx.putDoc(ctx, "player_profiles", "current_team", profile.ID, profile.CurrentTeam, profile)
}

func (tx *sqlTx) PutTransfer(ctx context.Context, transfer models.PlayerTransfer) error {
	return tx.putDoc(ctx, "player_transfers", "player_id", transfer.ID, sqlutil.ToInt64(transfer.PlayerID), transfer)
}

func (tx *sqlTx) PutOffer(ctx context.Context, offer models.TransferOffer) error {
	return tx.putDoc(ctx, "transfer_offers", "player_id", offer.ID, sqlutil.ToInt64(offer.PlayerID), offer)
}

func (tx *sqlTx) AppendEvent(ctx context.Context, event models.OutboxEvent) error {
	if !tx.writable {
		return fmt.Errorf("read-only transaction")
	}
	_, err := tx.q.ExecContext(ctx, tx.dialect.rebind(
		`INSERT INTO transfer_outbox (id, player_id, event_type, payload, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		event.ID.String(),
		sqlutil.ToInt64(event.PlayerID),
		event.EventType,
		string(event.Payload),
		sqlutil.ToNullRawMessage(event.Metadata),
		event.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to append outbox event: %w", err)
	}

	if tx.dialect.notify != "" {
		// Delivered to listeners only once the transaction commits.
		if _, err := tx.q.ExecContext(ctx, tx.dialect.rebind(tx.dialect.notify), NotifyChannel, event.ID.String()); err != nil {
			return fmt.Errorf("failed to notify outbox listeners: %w", err)
		}
	}
	return nil
}
