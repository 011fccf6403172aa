// Package kv defines the key-value surface the ledger persists through.
//
// It plays the role of the browser's local storage: one key holds one
// serialized value, and Set replaces it as a whole.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has never been set.
var ErrNotFound = errors.New("key not found")

// Store is a minimal string-keyed byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}
