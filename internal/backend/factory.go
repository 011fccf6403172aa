package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"movimentos/internal/amqp"
	"movimentos/internal/kv"
	applog "movimentos/internal/log"
	"movimentos/internal/storage"
	"movimentos/internal/storage/bolt"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{
		logger: logger.With(applog.FieldComponent, applog.ComponentBackend),
	}
}

// CreateBackend opens the configured store and, when a broker URL is set,
// the change event client.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	events, err := f.connectEvents(ctx, config)
	if err != nil {
		store.Close()
		return nil, err
	}

	f.logger.Info("Initialized backend",
		"type", config.Type,
		"events_enabled", events != nil)

	return &Result{
		Store:   store,
		Events:  events,
		Cleanup: closeAll(store, events),
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (kv.Store, error) {
	switch config.Type {
	case BoltBackend:
		s, err := bolt.Open(config.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		f.logger.Info("Opened bolt store", "db_path", config.BoltDBPath)
		return s, nil
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Opened SQLite store", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Warn("Using memory store, movements are lost on exit")
		return kv.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) connectEvents(ctx context.Context, config Config) (*amqp.Client, error) {
	if config.AMQPURL == "" {
		return nil, nil
	}
	attempts := config.AMQPConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	client, err := amqp.NewClientWithRetry(ctx, config.AMQPURL, config.AMQPExchange, config.AMQPQueue, attempts)
	if err != nil {
		if config.RequireEvents {
			return nil, fmt.Errorf("connect AMQP: %w", err)
		}
		f.logger.Warn("Failed to initialize AMQP client, continuing without change events",
			applog.FieldError, err.Error())
		return nil, nil
	}

	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client, nil
}

func closeAll(store kv.Store, events *amqp.Client) CleanupFunc {
	return func() error {
		var errs []error
		if events != nil {
			if err := events.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
		return errors.Join(errs...)
	}
}
