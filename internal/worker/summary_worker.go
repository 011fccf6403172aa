// Package worker recomputes the ledger summary out of process, driven by
// ledger change events.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"movimentos/internal/amqp"
	"movimentos/internal/ledger"
	applog "movimentos/internal/log"
	"movimentos/internal/projector"
)

// Report is the last summary the worker computed.
type Report struct {
	Count      int
	Summary    projector.SummaryView
	Categories int
	Trigger    string
	ComputedAt time.Time
}

// SummaryWorker reloads the ledger from the shared store on every change
// event and logs the recomputed totals.
type SummaryWorker struct {
	store  *ledger.Store
	logger *slog.Logger

	mu   sync.Mutex
	last Report
	runs int
}

func NewSummaryWorker(store *ledger.Store, logger *slog.Logger) *SummaryWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &SummaryWorker{
		store:  store,
		logger: logger.With(applog.FieldComponent, applog.ComponentWorker),
	}
}

// HandleLedgerChanged is the amqp.LedgerChangedHandler of the worker.
func (w *SummaryWorker) HandleLedgerChanged(ctx context.Context, msg *amqp.LedgerChangedMessage) error {
	w.logger.DebugContext(ctx, "Processing ledger change",
		applog.FieldOperation, applog.OpConsume,
		"op", msg.Op,
		applog.FieldMovementID, msg.MovementID,
		applog.FieldRevision, msg.Revision,
		"lag", time.Since(msg.Timestamp).Round(time.Millisecond))
	w.Recompute(ctx, msg.Op)
	return nil
}

// Recompute reloads the ledger and refreshes the report. A corrupt or
// missing ledger yields the empty report, as it does for the web process.
func (w *SummaryWorker) Recompute(ctx context.Context, trigger string) Report {
	items := w.store.Load(ctx)
	view := projector.Project(items)

	r := Report{
		Count:      len(items),
		Summary:    view.Summary,
		Categories: len(view.Distribution.Categories),
		Trigger:    trigger,
		ComputedAt: time.Now(),
	}

	w.mu.Lock()
	w.last = r
	w.runs++
	w.mu.Unlock()

	w.logger.InfoContext(ctx, "Ledger summary recomputed",
		"trigger", trigger,
		"count", r.Count,
		"categories", r.Categories,
		applog.FieldBalanceCents, r.Summary.Balance.Cents,
		"balance", r.Summary.BalanceText,
		"expenses", r.Summary.ExpenseText)
	return r
}

// RunPeriodic recomputes every interval until ctx is done, covering events
// lost while the worker was down.
func (w *SummaryWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.Recompute(ctx, "periodic")
		}
	}
}

// Last returns the latest report and how many recomputations ran.
func (w *SummaryWorker) Last() (Report, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.runs
}
