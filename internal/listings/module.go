// Package listings provides the car listing bounded context module.
package listings

import (
	"carlisting_backend/internal/adapters/storage"
	apphttp "carlisting_backend/internal/http"
	"carlisting_backend/internal/listings/handler"
	"carlisting_backend/internal/listings/photos"
	"carlisting_backend/internal/listings/repository"
	"carlisting_backend/internal/listings/service"
	"carlisting_backend/internal/scheduler"
	"carlisting_backend/platform/config"
	"carlisting_backend/platform/logger"
	"carlisting_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the car listing bounded context implementing http.Module.
type Module struct {
	handler  *handler.Handler
	service  *service.Service
	pipeline photos.Pipeline
	repo     repository.Repository
}

// NewModule creates and initializes the listings module. purge may be nil
// when no task queue is configured.
func NewModule(pool *pgxpool.Pool, store storage.ObjectStore, bucket string, photoCfg config.PhotoConfig, purge scheduler.PurgeScheduler, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.NewPostgresRepository(pool)
	pipeline := photos.NewService(store, bucket, photoCfg, log)
	svc := service.NewService(repo, pipeline, purge, log)
	h := handler.NewHandler(svc, val, log)

	return &Module{
		handler:  h,
		service:  svc,
		pipeline: pipeline,
		repo:     repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "listings"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Pipeline returns the photo pipeline, used by the task queue worker.
func (m *Module) Pipeline() photos.Pipeline {
	return m.pipeline
}

// RegisterRoutes mounts the listing routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/carlisting")
	group.POST("", m.handler.Create)
	group.GET("", m.handler.List)
	group.GET("/:id", m.handler.Detail)
	group.PUT("/:id", m.handler.Update)
	group.DELETE("/:id", m.handler.Delete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
