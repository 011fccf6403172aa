package storage

import (
	"context"
	"database/sql"
)

const getValue = `SELECT value FROM kv_store WHERE key = ?`

const upsertValue = `INSERT INTO kv_store (key, value, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

// Queries wraps the prepared statements used by SQLiteRepository.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) GetValue(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := q.db.QueryRowContext(ctx, getValue, key).Scan(&value)
	return value, err
}

func (q *Queries) UpsertValue(ctx context.Context, key string, value []byte) error {
	_, err := q.db.ExecContext(ctx, upsertValue, key, value)
	return err
}
