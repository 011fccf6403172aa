// Package services orchestrates the entry form, the ledger store and the
// change event publisher.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"movimentos/internal/amqp"
	"movimentos/internal/cache"
	"movimentos/internal/core"
	"movimentos/internal/form"
	"movimentos/internal/ledger"
	applog "movimentos/internal/log"
	"movimentos/internal/projector"
)

// ChangePublisher announces committed ledger mutations.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error
}

// LedgerService runs every user action through collector -> store ->
// projection. The local write is the source of truth: publishing is best
// effort.
type LedgerService struct {
	store     *ledger.Store
	collector *form.Collector
	publisher ChangePublisher
	views     *cache.LRUCache[uint64, projector.View]
	logger    *slog.Logger
}

// NewLedgerService wires the service. publisher and views may be nil.
func NewLedgerService(store *ledger.Store, collector *form.Collector, publisher ChangePublisher, views *cache.LRUCache[uint64, projector.View], logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	if views == nil {
		views = cache.NewLRUCache[uint64, projector.View](4, 10*time.Minute)
	}
	return &LedgerService{
		store:     store,
		collector: collector,
		publisher: publisher,
		views:     views,
		logger:    logger.With(applog.FieldComponent, applog.ComponentLedger),
	}
}

// OpenForm shows the entry form for kind.
func (s *LedgerService) OpenForm(ctx context.Context, kind core.Kind) error {
	if err := s.collector.Open(kind); err != nil {
		return err
	}
	s.logger.DebugContext(ctx, "Form opened",
		applog.FieldOperation, applog.OpOpenForm,
		applog.FieldKind, string(kind))
	return nil
}

// CancelForm hides the entry form without touching the ledger.
func (s *LedgerService) CancelForm(ctx context.Context) {
	s.collector.Cancel()
	s.logger.DebugContext(ctx, "Form cancelled", applog.FieldOperation, applog.OpCancel)
}

// FormState reports the form visibility, pending kind and displayed fields.
func (s *LedgerService) FormState() (form.State, core.Kind, form.Fields) {
	return s.collector.State(), s.collector.PendingKind(), s.collector.Fields()
}

// Submit validates the typed input and appends the movement. Invalid input
// returns *form.InvalidInputError and leaves the form open. If the append
// cannot be persisted the form is reopened with what the user typed.
func (s *LedgerService) Submit(ctx context.Context, in form.Input) (core.Movement, error) {
	kind := s.collector.PendingKind()
	m, err := s.collector.Submit(in)
	if err != nil {
		var invalid *form.InvalidInputError
		if errors.As(err, &invalid) {
			s.logger.DebugContext(ctx, "Submission rejected",
				applog.FieldOperation, applog.OpValidate,
				applog.FieldErrorType, applog.ErrorTypeValidation,
				applog.FieldError, invalid.Err.Error(),
				applog.FieldKind, string(kind))
		}
		return core.Movement{}, err
	}

	saved, err := s.store.Append(ctx, m)
	if err != nil {
		s.collector.Restore(kind, form.Fields{Description: in.Description, Amount: in.Amount, Category: m.Category})
		return core.Movement{}, fmt.Errorf("append movement: %w", err)
	}

	s.publish(ctx, amqp.OpAppended, saved.ID)
	return saved, nil
}

// RemoveAt deletes the movement at index. Out-of-range indexes return
// ledger.ErrIndexOutOfRange and change nothing.
func (s *LedgerService) RemoveAt(ctx context.Context, index int) (core.Movement, error) {
	removed, err := s.store.RemoveAt(ctx, index)
	if err != nil {
		return core.Movement{}, err
	}
	s.publish(ctx, amqp.OpRemoved, removed.ID)
	return removed, nil
}

// Remove deletes the movement with id.
func (s *LedgerService) Remove(ctx context.Context, id string) (core.Movement, error) {
	removed, err := s.store.Remove(ctx, id)
	if err != nil {
		return core.Movement{}, err
	}
	s.publish(ctx, amqp.OpRemoved, removed.ID)
	return removed, nil
}

// View returns every projection of the current ledger and its revision.
// Projections are cached per revision.
func (s *LedgerService) View(ctx context.Context) (projector.View, uint64) {
	items, rev := s.store.Snapshot()
	view := s.views.GetOrCompute(rev, func() projector.View {
		s.logger.DebugContext(ctx, "Projecting ledger",
			applog.FieldOperation, applog.OpRender,
			applog.FieldRevision, rev,
			"count", len(items))
		return projector.Project(items)
	})
	return view, rev
}

// Revision returns the current ledger revision.
func (s *LedgerService) Revision() uint64 {
	return s.store.Revision()
}

func (s *LedgerService) publish(ctx context.Context, op, movementID string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewLedgerChangedMessage(op, movementID, s.store.Revision())
	if err := s.publisher.PublishLedgerChanged(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish ledger change",
			applog.FieldOperation, applog.OpPublish,
			applog.FieldErrorType, applog.ErrorTypeNetwork,
			applog.FieldError, err.Error(),
			applog.FieldMovementID, movementID,
			"op", op)
	}
}
