package scheduler

import (
	"context"
	"fmt"

	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/platform/config"
	"carlisting_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type Worker struct {
	server   *asynq.Server
	mux      *asynq.ServeMux
	pipeline photos.Pipeline
	log      *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pipeline photos.Pipeline, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server:   server,
		mux:      mux,
		pipeline: pipeline,
		log:      log,
	}

	mux.HandleFunc(TaskListingPhotosPurge, w.handleListingPhotosPurge)

	return w, nil
}

// handleListingPhotosPurge retries the removal of a deleted listing's photo
// objects. Purging a prefix that is already empty succeeds, so redelivery of
// a completed task is harmless.
func (w *Worker) handleListingPhotosPurge(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseListingPhotosPurgePayload(task)
	if err != nil {
		return err
	}

	listingID, err := uuid.Parse(payload.ListingID)
	if err != nil {
		return err
	}

	if err := w.pipeline.DeleteAll(ctx, listingID); err != nil {
		w.log.Error("listing photo purge failed", "listingId", listingID, "error", err)
		return err
	}

	w.log.Info("listing photos purged", "listingId", listingID)
	return nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}
