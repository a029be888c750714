package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"carlisting_backend/internal/adapters/storage"
	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/internal/scheduler"
	"carlisting_backend/platform/config"
	"carlisting_backend/platform/logger"
)

// The worker drains the photo purge queue: listings whose inline object
// cleanup failed at delete time get their storage prefix emptied here.
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting worker", "env", cfg.Env, "queue", cfg.GetAsynqQueueName())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewMinIOStore(cfg)
	if err != nil {
		log.Error("failed to initialize object store", "error", err)
		panic("failed to initialize object store: " + err.Error())
	}

	pipeline := photos.NewService(store, cfg.GetMinioBucketPhotos(), cfg, log)

	worker, err := scheduler.NewWorker(cfg, pipeline, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("worker stopped")
}
