package outbound

import (
	"context"
	"time"
)

// RateLimitResult is the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RateLimiterPort defines rate limiting operations.
type RateLimiterPort interface {
	// Allow counts one request against key and reports whether it is within limit for window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (RateLimitResult, error)
}
