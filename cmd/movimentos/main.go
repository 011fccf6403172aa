package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"movimentos/internal/backend"
	"movimentos/internal/cache"
	"movimentos/internal/cli"
	"movimentos/internal/form"
	apphttp "movimentos/internal/http"
	"movimentos/internal/ledger"
	applog "movimentos/internal/log"
	"movimentos/internal/projector"
	"movimentos/internal/services"
	"movimentos/internal/taxonomy"
)

const (
	shutdownTimeout    = 30 * time.Second
	viewCacheSize      = 8
	viewCacheTTL       = 10 * time.Minute
	cacheSweepInterval = 5 * time.Minute
)

func main() {
	cli.LoadEnvFile()

	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger.Slog(), nil)

	logger.Info("Starting movimentos",
		applog.FieldOperation, applog.OpStartup,
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", cfg.AMQPEnabled())

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeConfiguration)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	store := ledger.Open(context.Background(), res.Store, cfg.StorageKey, logger.Logger)
	views := cache.NewLRUCache[uint64, projector.View](viewCacheSize, viewCacheTTL)
	categories := taxonomy.NewFromFile(cfg.CategoriesFile)
	svc := services.NewLedgerService(store, form.NewCollector(categories), res.Publisher(), views, logger.Logger)

	srv, err := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Service:            svc,
		Categories:         categories,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready: func(ctx context.Context) error {
			return res.Ping(ctx, cfg.StorageKey)
		},
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	caches := cache.NewManager(logger.Logger)
	caches.Register(views)

	ctx, done := cli.GracefulShutdown(logger.Slog(), shutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", "addr", srv.Addr, "movements", store.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		caches.Start(gctx, cacheSweepInterval)
		<-gctx.Done()
		caches.Stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	if err := res.Cleanup(); err != nil {
		logger.Error("Backend cleanup error", applog.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
