package sqlutil

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	tx *sql.Tx
}

func (c counter) bump(ctx context.Context) error {
	_, err := c.tx.ExecContext(ctx, `UPDATE counters SET value = value + 1`)
	return err
}

func openCounters(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Exec(`CREATE TABLE counters (value INTEGER NOT NULL); INSERT INTO counters VALUES (0)`)
	require.NoError(t, err)
	return db
}

func value(t *testing.T, db *sql.DB) int {
	t.Helper()
	var v int
	require.NoError(t, db.QueryRow(`SELECT value FROM counters`).Scan(&v))
	return v
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	db := openCounters(t)
	bind := func(tx *sql.Tx) counter { return counter{tx: tx} }

	require.NoError(t, Run(ctx, db, bind, func(c counter) error { return c.bump(ctx) }))
	assert.Equal(t, 1, value(t, db))

	boom := errors.New("boom")
	err := Run(ctx, db, bind, func(c counter) error {
		require.NoError(t, c.bump(ctx))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, value(t, db))

	assert.Panics(t, func() {
		_ = Run(ctx, db, bind, func(c counter) error {
			require.NoError(t, c.bump(ctx))
			panic("mid-transaction")
		})
	})
	assert.Equal(t, 1, value(t, db))
}
