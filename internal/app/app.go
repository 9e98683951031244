package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parcelapi/planengine/internal/infra/config"
	"github.com/parcelapi/planengine/internal/utils/middleware"
)

const healthCheckTimeout = 2 * time.Second

// App is the plan-change engine HTTP application.
type App struct {
	config *config.Config
	deps   *Dependencies
	logger *zap.Logger
	router *gin.Engine

	cleanup func()
}

// LoadConfig loads application configuration.
func LoadConfig() (*config.Config, error) {
	return config.Load()
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	deps, cleanup, err := InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("init dependencies: %w", err)
	}

	app := &App{
		config:  cfg,
		deps:    deps,
		logger:  deps.Logger,
		cleanup: cleanup,
	}

	router, err := app.setupRouter()
	if err != nil {
		cleanup()
		return nil, err
	}
	app.router = router
	app.registerRoutes()

	app.logger.Info("application initialized",
		zap.Int("plans", len(deps.BillingDomain.Plans())),
		zap.Bool("redis", deps.Redis != nil),
		zap.Bool("rate_limit", deps.RateLimiter != nil),
	)
	return app, nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() (*gin.Engine, error) {
	// Set Gin mode based on log level
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Rate limits key on ClientIP, which only reads forwarding headers from trusted proxies.
	if err := r.SetTrustedProxies(a.config.Server.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	// Apply global middleware
	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.Metrics(a.deps.Metrics))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowOrigins:     a.config.CORS.AllowOrigins,
		AllowCredentials: a.config.CORS.AllowCredentials,
		MaxAge:           a.config.CORS.MaxAge,
	}))

	r.GET("/health", a.health)

	if a.config.Metrics.Enabled {
		r.GET(a.config.Metrics.Path, gin.WrapH(promhttp.HandlerFor(a.deps.Registry, promhttp.HandlerOpts{})))
	}

	return r, nil
}

// registerRoutes registers all HTTP routes.
func (a *App) registerRoutes() {
	v1 := a.router.Group("/api/v1")

	var pricing []gin.HandlerFunc
	if a.deps.RateLimiter != nil {
		pricing = append(pricing, middleware.RateLimitByIP(
			a.deps.RateLimiter,
			a.config.RateLimit.Limit,
			a.config.RateLimit.Window,
			a.logger,
			a.deps.Metrics,
		))
	}

	a.deps.Handlers.RegisterRoutes(v1, pricing...)
}

// health reports liveness. Redis is optional, so an unreachable Redis
// degrades the status without failing the check.
func (a *App) health(c *gin.Context) {
	redisStatus := "disabled"
	status := "ok"

	if a.deps.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		redisStatus = "up"
		if err := a.deps.Redis.Ping(ctx).Err(); err != nil {
			a.logger.Warn("redis health check failed", zap.Error(err))
			redisStatus = "down"
			status = "degraded"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":          status,
		"redis":           redisStatus,
		"redis_breaker":   a.deps.RedisBreaker.State().String(),
		"active_sessions": a.deps.BillingDomain.ActiveSessions(),
	})
}

// Router returns the HTTP router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Stop stops the application and releases resources.
func (a *App) Stop() {
	if a.cleanup != nil {
		a.cleanup()
	}
}
