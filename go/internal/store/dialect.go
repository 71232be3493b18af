package store

import (
	"strconv"
	"strings"
)

// dialect captures the statements that differ between Postgres and SQLite.
// Queries are written with ? placeholders and rebound per dialect.
type dialect struct {
	name       string
	schema     []string
	nextID     string
	lockSuffix string
	notify     string
	numbered   bool
}

var postgresDialect = dialect{
	name: "postgres",
	schema: []string{
		`CREATE SEQUENCE IF NOT EXISTS record_id_seq START WITH 1`,
		`CREATE TABLE IF NOT EXISTS player_profiles (
			id BIGINT PRIMARY KEY,
			current_team TEXT NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS player_profiles_current_team_idx ON player_profiles (current_team)`,
		`CREATE TABLE IF NOT EXISTS player_transfers (
			id BIGINT PRIMARY KEY,
			player_id BIGINT NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfer_offers (
			id BIGINT PRIMARY KEY,
			player_id BIGINT NOT NULL,
			data JSONB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfer_outbox (
			seq BIGSERIAL PRIMARY KEY,
			id UUID NOT NULL UNIQUE,
			player_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload JSONB NOT NULL,
			metadata JSONB,
			created_at BIGINT NOT NULL,
			sent_at BIGINT
		)`,
		`CREATE INDEX IF NOT EXISTS transfer_outbox_unsent_idx ON transfer_outbox (seq) WHERE sent_at IS NULL`,
	},
	nextID:     `SELECT nextval('record_id_seq')`,
	lockSuffix: ` FOR UPDATE`,
	notify:     `SELECT pg_notify(?, ?)`,
	numbered:   true,
}

var sqliteDialect = dialect{
	name: "sqlite",
	schema: []string{
		`CREATE TABLE IF NOT EXISTS id_counter (
			name TEXT PRIMARY KEY,
			value INTEGER NOT NULL
		)`,
		`INSERT OR IGNORE INTO id_counter (name, value) VALUES ('record', 0)`,
		`CREATE TABLE IF NOT EXISTS player_profiles (
			id INTEGER PRIMARY KEY,
			current_team TEXT NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS player_profiles_current_team_idx ON player_profiles (current_team)`,
		`CREATE TABLE IF NOT EXISTS player_transfers (
			id INTEGER PRIMARY KEY,
			player_id INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfer_offers (
			id INTEGER PRIMARY KEY,
			player_id INTEGER NOT NULL,
			data TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transfer_outbox (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			player_id INTEGER NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT NOT NULL,
			metadata BLOB,
			created_at INTEGER NOT NULL,
			sent_at INTEGER
		)`,
	},
	nextID: `UPDATE id_counter SET value = value + 1 WHERE name = 'record' RETURNING value`,
}

// rebind rewrites ? placeholders into $n for dialects that number them
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
