// Package bolt provides a kv.Store on top of a single bbolt file.
package bolt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bbolt "go.etcd.io/bbolt"

	"movimentos/internal/kv"
)

// BucketLocalStorage holds every key the application persists.
const BucketLocalStorage = "local_storage"

// Store wraps a bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens (creating if needed) the bbolt file at path and ensures the bucket exists.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(BucketLocalStorage)); err != nil {
			return fmt.Errorf("create bucket %s: %w", BucketLocalStorage, err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Get implements kv.Store. The returned slice is a copy; bbolt memory is only
// valid inside the transaction.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketLocalStorage))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketLocalStorage)
		}
		data := b.Get([]byte(key))
		if data == nil {
			return kv.ErrNotFound
		}
		out = append([]byte(nil), data...)
		return nil
	})
	return out, err
}

// Set implements kv.Store.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(BucketLocalStorage))
		if b == nil {
			return fmt.Errorf("bucket %s not found", BucketLocalStorage)
		}
		return b.Put([]byte(key), value)
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.db.Path()
}
