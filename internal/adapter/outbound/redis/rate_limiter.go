package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/parcelapi/planengine/internal/port/outbound"
	"github.com/redis/go-redis/v9"
)

const rateLimitKeyPrefix = "planengine:ratelimit:"

// rateLimiter implements outbound.RateLimiterPort with fixed windows.
type rateLimiter struct {
	client  redis.UniversalClient
	breaker *Breaker
	now     func() time.Time
}

// NewRateLimiter creates a new rate limiter adapter. breaker may be nil.
func NewRateLimiter(client redis.UniversalClient, breaker *Breaker) outbound.RateLimiterPort {
	return &rateLimiter{client: client, breaker: breaker, now: time.Now}
}

func (r *rateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (outbound.RateLimitResult, error) {
	if window <= 0 {
		return outbound.RateLimitResult{}, fmt.Errorf("rate limit window must be positive, got %s", window)
	}

	// Every key/window pair gets its own counter that expires with the window.
	bucket := r.now().UnixNano() / window.Nanoseconds()
	fullKey := fmt.Sprintf("%s%s:%d", rateLimitKeyPrefix, key, bucket)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.PExpire(ctx, fullKey, window)
	err := r.breaker.Do(func() error {
		_, err := pipe.Exec(ctx)
		return err
	})
	if err != nil {
		return outbound.RateLimitResult{}, fmt.Errorf("count request: %w", err)
	}

	count := int(incr.Val())
	return outbound.RateLimitResult{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
		ResetAt:   time.Unix(0, (bucket+1)*window.Nanoseconds()),
	}, nil
}

// Compile-time check
var _ outbound.RateLimiterPort = (*rateLimiter)(nil)
