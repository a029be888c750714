package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carlisting_backend/internal/adapters/storage"
	apphttp "carlisting_backend/internal/http"
	"carlisting_backend/internal/http/router"
	"carlisting_backend/internal/listings"
	"carlisting_backend/internal/scheduler"
	"carlisting_backend/platform/config"
	"carlisting_backend/platform/db"
	"carlisting_backend/platform/logger"
	"carlisting_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// Object store for photo uploads (MinIO)
	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize object store", "error", err)
		panic("failed to initialize object store: " + err.Error())
	}
	if err := withRetry(ctx, log, "ensure photos bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx, cfg.GetMinioBucketPhotos())
	}); err != nil {
		log.Error("failed to ensure photos bucket exists", "error", err, "bucket", cfg.GetMinioBucketPhotos())
		panic("failed to ensure photos bucket exists: " + err.Error())
	}
	log.Info("object store initialized", "photosBucket", cfg.GetMinioBucketPhotos())

	purgeClient, closePurge := initPurgeScheduler(cfg, log)
	if closePurge != nil {
		defer closePurge()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	listingsModule := listings.NewModule(pool, store, cfg.GetMinioBucketPhotos(), cfg, purgeClient, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			listingsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initPurgeScheduler(cfg config.SchedulerConfig, log *logger.Logger) (scheduler.PurgeScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; out-of-band photo purging disabled")
		return nil, nil
	}

	purgeClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize purge scheduler client", "error", err)
		return nil, nil
	}

	return purgeClient, func() {
		_ = purgeClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
