package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"movimentos/internal/backend"
	"movimentos/internal/cli"
	"movimentos/internal/config"
	"movimentos/internal/ledger"
	applog "movimentos/internal/log"
	"movimentos/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentWorker)
	logger.Info("Starting movimentos-worker", applog.FieldOperation, applog.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger.Slog(), (*config.Config).ValidateWorker)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	backendCfg.RequireEvents = true

	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// The store only reads here; the web process owns every write.
	store := ledger.NewReader(res.Store, cfg.StorageKey, logger.Logger)
	summaries := worker.NewSummaryWorker(store, logger.Logger)

	ctx, done := cli.GracefulShutdown(logger.Slog(), shutdownTimeout, nil)

	summaries.Recompute(ctx, "startup")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return res.Events.ConsumeLedgerChanged(gctx, summaries.HandleLedgerChanged)
	})
	g.Go(func() error {
		return summaries.RunPeriodic(gctx, cfg.SummaryInterval)
	})

	err = g.Wait()
	if cleanupErr := res.Cleanup(); cleanupErr != nil {
		logger.Error("Backend cleanup error", applog.FieldError, cleanupErr)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	_, runs := summaries.Last()
	logger.Info("Worker stopped gracefully", "recomputations", runs)
}
