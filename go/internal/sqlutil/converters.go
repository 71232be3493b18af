package sqlutil

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/sqlc-dev/pqtype"
)

// Helper functions for converting between Go types and sql.Null* types

// ToNullTime converts a Go time pointer to a nullable Unix nanosecond column
func ToNullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{Valid: false}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

// FromNullTime converts a nullable Unix nanosecond column to a Go time pointer
func FromNullTime(val sql.NullInt64) *time.Time {
	if !val.Valid {
		return nil
	}
	t := time.Unix(0, val.Int64).UTC()
	return &t
}

// FromUnixNano converts a Unix nanosecond column to a UTC time
func FromUnixNano(val int64) time.Time {
	return time.Unix(0, val).UTC()
}

// ToNullRawMessage converts optional JSON into a nullable JSON column
func ToNullRawMessage(raw json.RawMessage) pqtype.NullRawMessage {
	if len(raw) == 0 {
		return pqtype.NullRawMessage{Valid: false}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

// FromNullRawMessage converts a nullable JSON column to optional JSON
func FromNullRawMessage(val pqtype.NullRawMessage) json.RawMessage {
	if !val.Valid || len(val.RawMessage) == 0 {
		return nil
	}
	return val.RawMessage
}

// ToInt64 converts a record ID to the signed column type
func ToInt64(id uint64) int64 {
	return int64(id)
}
