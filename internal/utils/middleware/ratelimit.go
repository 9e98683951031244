package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/port/outbound"
	apperrors "github.com/parcelapi/planengine/internal/utils/errors"
	"github.com/parcelapi/planengine/internal/utils/metrics"
	"go.uber.org/zap"
)

const (
	// RateLimitRemaining is the header for remaining requests.
	RateLimitRemaining = "X-RateLimit-Remaining"
	// RateLimitLimit is the header for the limit.
	RateLimitLimit = "X-RateLimit-Limit"
	// RateLimitReset is the header for reset time.
	RateLimitReset = "X-RateLimit-Reset"
	// RetryAfter is the header for retry time.
	RetryAfter = "Retry-After"
)

// RateLimitConfig holds rate limit configuration.
type RateLimitConfig struct {
	// Limit is the maximum number of requests per window.
	Limit int
	// Window is the time window.
	Window time.Duration
	// KeyFunc generates the rate limit key from request.
	// Default uses client IP, which honors X-Forwarded-For only from the
	// engine's trusted proxies.
	KeyFunc func(*gin.Context) string
}

// RateLimit returns a middleware that limits requests using the given limiter.
// Requests pass through when the limiter is nil or fails.
func RateLimit(limiter outbound.RateLimiterPort, cfg RateLimitConfig, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(c *gin.Context) string {
			return "ip:" + c.ClientIP()
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		if limiter == nil || cfg.Limit <= 0 {
			c.Next()
			return
		}

		res, err := limiter.Allow(c.Request.Context(), cfg.KeyFunc(c), cfg.Limit, cfg.Window)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
			c.Next()
			return
		}

		c.Header(RateLimitLimit, strconv.Itoa(res.Limit))
		c.Header(RateLimitRemaining, strconv.Itoa(res.Remaining))
		c.Header(RateLimitReset, strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			if m != nil {
				m.RecordRateLimited(c.FullPath())
			}
			retry := int(time.Until(res.ResetAt).Seconds()) + 1
			c.Header(RetryAfter, strconv.Itoa(max(retry, 1)))

			appErr := apperrors.RateLimited("")
			c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
			return
		}

		c.Next()
	}
}

// RateLimitByIP returns a rate limiter that limits by client IP address.
func RateLimitByIP(limiter outbound.RateLimiterPort, limit int, window time.Duration, logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return RateLimit(limiter, RateLimitConfig{Limit: limit, Window: window}, logger, m)
}
