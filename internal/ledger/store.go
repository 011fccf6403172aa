// Package ledger owns the ordered sequence of movements and its persisted
// snapshot.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"movimentos/internal/core"
	"movimentos/internal/kv"
	applog "movimentos/internal/log"
)

// DefaultKey is the storage key holding the serialized ledger.
const DefaultKey = "movimentos"

var (
	// ErrIndexOutOfRange is returned by RemoveAt for an index outside the
	// current sequence. The ledger is left untouched.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrNotFound is returned by Remove when no movement has the given ID.
	ErrNotFound = errors.New("movement not found")

	// ErrReadOnly is returned by mutations on a store built with NewReader.
	ErrReadOnly = errors.New("ledger store is read-only")
)

// Store is the single owner of the ledger. Every successful mutation is
// persisted before the call returns; a failed persist rolls the mutation back.
type Store struct {
	mu       sync.Mutex
	kv       kv.Store
	key      string
	items    []core.Movement
	revision uint64
	readOnly bool
	logger   *slog.Logger
}

// NewStore returns an empty store persisting under key. Call Load to hydrate it.
func NewStore(backend kv.Store, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		kv:     backend,
		key:    key,
		logger: logger.With(applog.FieldComponent, applog.ComponentLedger),
	}
}

// NewReader returns a store that only loads. It never writes the key, not even
// to persist ids assigned while decoding, so it can follow a ledger owned by
// another process.
func NewReader(backend kv.Store, key string, logger *slog.Logger) *Store {
	s := NewStore(backend, key, logger)
	s.readOnly = true
	return s
}

// Open creates a store and loads the persisted ledger.
func Open(ctx context.Context, backend kv.Store, key string, logger *slog.Logger) *Store {
	s := NewStore(backend, key, logger)
	s.Load(ctx)
	return s
}

// Load replaces the in-memory ledger with the persisted one. A missing key,
// a read failure or a malformed value all yield an empty ledger. Ids assigned
// to records stored without one are written back so they stay stable across
// restarts.
func (s *Store) Load(ctx context.Context) []core.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	s.revision++

	data, err := s.kv.Get(ctx, s.key)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		s.logger.DebugContext(ctx, "No persisted ledger, starting empty", "key", s.key)
		return []core.Movement{}
	case err != nil:
		s.logger.WarnContext(ctx, "Failed to read persisted ledger, starting empty",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpLoad,
			"key", s.key)
		return []core.Movement{}
	}

	items, assigned, err := Decode(data)
	if err != nil {
		s.logger.WarnContext(ctx, "Persisted ledger is corrupt, starting empty",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpLoad,
			"error_type", applog.ErrorTypeCorruptData,
			"key", s.key,
			"bytes", len(data))
		return []core.Movement{}
	}

	if assigned > 0 && !s.readOnly {
		if err := s.persistLocked(ctx, items); err != nil {
			s.logger.WarnContext(ctx, "Assigned ids not persisted, they change on the next load",
				applog.FieldError, err.Error(),
				applog.FieldOperation, applog.OpLoad,
				"assigned", assigned)
		}
	}

	s.items = items
	s.logger.InfoContext(ctx, "Ledger loaded", "key", s.key, "count", len(items), "assigned_ids", assigned)
	return cloneMovements(s.items)
}

// Append adds m at the tail and persists the ledger. An empty ID is filled in.
func (s *Store) Append(ctx context.Context, m core.Movement) (core.Movement, error) {
	if s.readOnly {
		return core.Movement{}, ErrReadOnly
	}
	if err := m.Validate(); err != nil {
		return core.Movement{}, err
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.items
	next := make([]core.Movement, len(prev), len(prev)+1)
	copy(next, prev)
	next = append(next, m)

	if err := s.persistLocked(ctx, next); err != nil {
		return core.Movement{}, err
	}
	s.items = next
	s.revision++

	s.logger.InfoContext(ctx, "Movement appended",
		applog.NewFields().
			WithOperation(applog.OpAppend).
			WithMovement(m.ID, m.Description, m.Amount.Cents, m.Category, string(m.Kind)).
			ToSlice()...)
	return m, nil
}

// RemoveAt deletes the movement at index. Out-of-range indexes are rejected
// with ErrIndexOutOfRange and nothing changes.
func (s *Store) RemoveAt(ctx context.Context, index int) (core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return core.Movement{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.items))
	}
	return s.removeLocked(ctx, index)
}

// Remove deletes the movement with the given ID.
func (s *Store) Remove(ctx context.Context, id string) (core.Movement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.items {
		if m.ID == id {
			return s.removeLocked(ctx, i)
		}
	}
	return core.Movement{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (s *Store) removeLocked(ctx context.Context, index int) (core.Movement, error) {
	if s.readOnly {
		return core.Movement{}, ErrReadOnly
	}
	removed := s.items[index]
	next := make([]core.Movement, 0, len(s.items)-1)
	next = append(next, s.items[:index]...)
	next = append(next, s.items[index+1:]...)

	if err := s.persistLocked(ctx, next); err != nil {
		return core.Movement{}, err
	}
	s.items = next
	s.revision++

	s.logger.InfoContext(ctx, "Movement removed",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldMovementID, removed.ID,
		"index", index,
		"remaining", len(next))
	return removed, nil
}

func (s *Store) persistLocked(ctx context.Context, items []core.Movement) error {
	data, err := Encode(items)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist ledger",
			applog.FieldError, err.Error(),
			applog.FieldOperation, applog.OpPersist,
			"key", s.key)
		return fmt.Errorf("persist ledger: %w", err)
	}
	return nil
}

// Movements returns a copy of the ledger in display order.
func (s *Store) Movements() []core.Movement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMovements(s.items)
}

// Snapshot returns the ledger together with the revision it belongs to.
func (s *Store) Snapshot() ([]core.Movement, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMovements(s.items), s.revision
}

// Len returns the number of movements.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Revision increases after every load and every successful mutation.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

func cloneMovements(in []core.Movement) []core.Movement {
	if len(in) == 0 {
		return []core.Movement{}
	}
	return append([]core.Movement(nil), in...)
}
