// Package router assembles the Gin engine from the app's modules.
package router

import (
	"net/http"

	apphttp "carlisting_backend/internal/http"
	"carlisting_backend/platform/httpkit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// New builds the Gin engine: global middleware, health endpoints and every
// module's routes under /api.
func New(app *apphttp.App) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(app.Logger))
	engine.Use(httpkit.SecurityHeaders())
	engine.Use(corsMiddleware(app))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(20), 60, app.Logger)
	engine.Use(limiter.RateLimit())

	engine.GET("/", func(c *gin.Context) {
		httpkit.Success(c, "Car listing API is running.")
	})

	engine.GET("/api/health", func(c *gin.Context) {
		if app.Health != nil {
			if err := app.Health.Ping(c.Request.Context()); err != nil {
				httpkit.Error(c, http.StatusServiceUnavailable, "database unreachable", nil)
				return
			}
		}
		httpkit.Success(c, "ok")
	})

	engine.NoRoute(func(c *gin.Context) {
		httpkit.NotFound(c, "Page not found")
	})

	api := engine.Group("/api")
	protected := api.Group("")
	authMiddleware := httpkit.AuthRequired(app.Config)
	protected.Use(authMiddleware)

	ctx := &apphttp.RouterContext{
		Engine:         engine,
		API:            api,
		Protected:      protected,
		Config:         app.Config,
		AuthMiddleware: authMiddleware,
	}

	for _, module := range app.Modules {
		module.RegisterRoutes(ctx)
		app.Logger.Info("registered module routes", "module", module.Name())
	}

	return engine
}

func corsMiddleware(app *apphttp.App) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: app.Config.GetCORSAllowCreds(),
	}
	if app.Config.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = app.Config.GetCORSOrigins()
	}
	return cors.New(corsCfg)
}
