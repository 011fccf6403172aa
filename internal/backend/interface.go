package backend

import (
	"context"
	"errors"

	"movimentos/internal/amqp"
	"movimentos/internal/kv"
	"movimentos/internal/services"
)

// CleanupFunc releases the resources of a backend.
type CleanupFunc func() error

// Result is a ready storage backend plus the optional change event client.
type Result struct {
	Store   kv.Store
	Events  *amqp.Client
	Cleanup CleanupFunc
}

// Publisher returns the change publisher, or nil when events are disabled.
func (r *Result) Publisher() services.ChangePublisher {
	if r.Events == nil {
		return nil
	}
	return r.Events
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Ping reports whether the store answers. Stores without a native ping are
// probed with a read of key; a missing key still counts as healthy.
func (r *Result) Ping(ctx context.Context, key string) error {
	if p, ok := r.Store.(pinger); ok {
		return p.Ping(ctx)
	}
	if _, err := r.Store.Get(ctx, key); err != nil && !errors.Is(err, kv.ErrNotFound) {
		return err
	}
	return nil
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*Result, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	BoltDBPath   string
	SQLiteDBPath string

	// Empty AMQPURL disables change events.
	AMQPURL             string
	AMQPExchange        string
	AMQPQueue           string
	AMQPConnectAttempts int
	// RequireEvents turns a broker failure into a creation error instead of
	// a warning.
	RequireEvents bool
}

// BackendType represents the type of backend
type BackendType string

const (
	MemoryBackend BackendType = "memory"
	BoltBackend   BackendType = "bolt"
	SQLiteBackend BackendType = "sqlite"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, BoltBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}
