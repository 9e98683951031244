package app

import (
	"context"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	// Domain
	"github.com/parcelapi/planengine/internal/domain/billing"

	// Inbound adapters
	ginadapter "github.com/parcelapi/planengine/internal/adapter/inbound/gin"

	// Ports
	"github.com/parcelapi/planengine/internal/port/inbound"
	"github.com/parcelapi/planengine/internal/port/outbound"

	// Outbound adapters
	"github.com/parcelapi/planengine/internal/adapter/outbound/catalogfile"
	"github.com/parcelapi/planengine/internal/adapter/outbound/memory"
	redisadapter "github.com/parcelapi/planengine/internal/adapter/outbound/redis"

	// Infrastructure
	"github.com/parcelapi/planengine/internal/infra/cache"
	"github.com/parcelapi/planengine/internal/infra/config"

	// Utils
	"github.com/parcelapi/planengine/internal/utils/logger"
	"github.com/parcelapi/planengine/internal/utils/metrics"
)

// Dependencies holds all injected dependencies.
type Dependencies struct {
	Config       *config.Config
	Logger       *zap.Logger
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	Redis        goredis.UniversalClient
	RedisBreaker *redisadapter.Breaker
	RateLimiter  outbound.RateLimiterPort

	// Domain
	BillingDomain *billing.Domain

	// HTTP Handlers
	Handlers *ginadapter.Handlers
}

// ===== Infrastructure Providers =====

// InfraSet provides infrastructure dependencies.
var InfraSet = wire.NewSet(
	ProvideLogger,
	ProvideRegistry,
	ProvideMetrics,
	ProvideRedisClient,
	ProvideRedisBreaker,
	ProvideRateLimiter,
)

// ProvideLogger creates a zap logger instance.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	zapLog, err := logger.NewZapLogger(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, nil, err
	}
	return zapLog, func() { _ = zapLog.Sync() }, nil
}

// ProvideRegistry creates the Prometheus registry served on the metrics endpoint.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// ProvideMetrics creates a metrics instance.
func ProvideMetrics(cfg *config.Config, reg *prometheus.Registry) *metrics.Metrics {
	return metrics.New(cfg.Metrics.Namespace, reg)
}

// ProvideRedisClient creates a Redis client. Redis is optional: when it is
// disabled or unreachable the client is nil and the service runs without
// persisted selections or rate limiting.
func ProvideRedisClient(cfg *config.Config, zapLog *zap.Logger) (goredis.UniversalClient, func()) {
	if !cfg.Redis.Enabled {
		return nil, func() {}
	}

	client, err := cache.NewRedisClient(context.Background(), &cfg.Redis)
	if err != nil {
		zapLog.Warn("Redis connection failed, continuing without Redis", zap.Error(err))
		return nil, func() {}
	}
	return client, func() { _ = client.Close() }
}

// ProvideRedisBreaker creates the circuit breaker shared by the Redis adapters.
func ProvideRedisBreaker(cfg *config.Config, redis goredis.UniversalClient, zapLog *zap.Logger) *redisadapter.Breaker {
	if redis == nil {
		return nil
	}
	return redisadapter.NewBreaker(redisadapter.BreakerConfig{
		Failures: cfg.Redis.BreakerFailures,
		Timeout:  cfg.Redis.BreakerTimeout,
	}, zapLog)
}

// ProvideRateLimiter creates a rate limiter.
func ProvideRateLimiter(cfg *config.Config, redis goredis.UniversalClient, breaker *redisadapter.Breaker) outbound.RateLimiterPort {
	if redis == nil || !cfg.RateLimit.Enabled {
		return nil
	}
	return redisadapter.NewRateLimiter(redis, breaker)
}

// ===== Billing Domain Providers =====

// BillingSet provides plan-change domain dependencies.
var BillingSet = wire.NewSet(
	ProvideCatalog,
	ProvideClock,
	ProvideSelectionStore,
	ProvideSessionRegistry,
	ProvideBillingDomain,
	wire.Bind(new(inbound.PlanChangeDomain), new(*billing.Domain)),
)

// ProvideCatalog loads the catalog file, or the built-in catalog when no path is set.
func ProvideCatalog(cfg *config.Config) (billing.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return billing.DefaultCatalog(), nil
	}
	return catalogfile.Load(cfg.Catalog.Path)
}

// ProvideClock provides the wall clock.
func ProvideClock() billing.Clock {
	return billing.SystemClock{}
}

// ProvideSelectionStore creates the selection store.
func ProvideSelectionStore(cfg *config.Config, redis goredis.UniversalClient, breaker *redisadapter.Breaker) billing.SelectionStore {
	if redis == nil {
		return nil
	}
	return redisadapter.NewSelectionStore(redis, cfg.Billing.SelectionTTL, breaker)
}

// ProvideSessionRegistry creates the in-memory session registry.
func ProvideSessionRegistry(cfg *config.Config, zapLog *zap.Logger) billing.SessionRegistry {
	return memory.NewSessionRegistry(cfg.Billing.SessionCapacity, cfg.Billing.SessionTTL, zapLog)
}

// ProvideBillingDomain creates the plan-change domain.
func ProvideBillingDomain(
	cfg *config.Config,
	catalog billing.Catalog,
	clock billing.Clock,
	store billing.SelectionStore,
	sessions billing.SessionRegistry,
	zapLog *zap.Logger,
) *billing.Domain {
	return billing.NewBillingDomain(catalog, clock, store, sessions, billing.DomainConfig{
		SurchargeBasisPoints: cfg.Billing.SurchargeBasisPoints,
		SaveTimeout:          cfg.Billing.SaveTimeout,
	}, zapLog)
}

// ===== HTTP Handler Providers =====

// HandlerSet provides HTTP handlers.
var HandlerSet = wire.NewSet(
	ginadapter.NewHandlers,
)

// AppSet combines all provider sets.
var AppSet = wire.NewSet(
	InfraSet,
	BillingSet,
	HandlerSet,
)
