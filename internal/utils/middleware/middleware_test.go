package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/parcelapi/planengine/internal/port/outbound"
	"github.com/parcelapi/planengine/internal/utils/metrics"
	"github.com/parcelapi/planengine/internal/utils/requestctx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(router *gin.Engine, method, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, vv := range header {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequestID(t *testing.T) {
	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			assert.Equal(t, GetRequestID(c), requestctx.RequestID(c.Request.Context()))
			c.String(http.StatusOK, GetRequestID(c))
		})
		return router
	}

	t.Run("generates new request ID when not provided", func(t *testing.T) {
		w := serve(newRouter(), "GET", "/test", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		headerID := w.Header().Get(RequestIDHeader)
		assert.NotEmpty(t, headerID)
		assert.Equal(t, headerID, w.Body.String())
	})

	t.Run("uses existing request ID from header", func(t *testing.T) {
		w := serve(newRouter(), "GET", "/test", http.Header{RequestIDHeader: {"existing-request-id-123"}})

		assert.Equal(t, "existing-request-id-123", w.Header().Get(RequestIDHeader))
		assert.Equal(t, "existing-request-id-123", w.Body.String())
	})

	t.Run("replaces unusable request ID", func(t *testing.T) {
		for _, bad := range []string{strings.Repeat("x", 65), "has space", "tab\there"} {
			w := serve(newRouter(), "GET", "/test", http.Header{RequestIDHeader: {bad}})
			assert.NotEqual(t, bad, w.Header().Get(RequestIDHeader))
			assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
		}
	})
}

func TestGetRequestID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))

	c.Set(RequestIDKey, "test-id")
	assert.Equal(t, "test-id", GetRequestID(c))
}

func TestLogging(t *testing.T) {
	tests := []struct {
		name   string
		status int
		level  zapcore.Level
	}{
		{"success logs at info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs at warn", http.StatusUnprocessableEntity, zapcore.WarnLevel},
		{"server error logs at error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			router := gin.New()
			router.Use(RequestID(), Logging(zap.New(core)))
			router.GET("/plans/:id", func(c *gin.Context) {
				c.Status(tt.status)
			})

			serve(router, "GET", "/plans/growth?x=1", nil)

			require.Equal(t, 1, logs.Len())
			entry := logs.All()[0]
			assert.Equal(t, "HTTP Request", entry.Message)
			assert.Equal(t, tt.level, entry.Level)

			fields := entry.ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "/plans/growth", fields["path"])
			assert.Equal(t, "/plans/:id", fields["route"])
			assert.Equal(t, "x=1", fields["query"])
			assert.NotEmpty(t, fields["request_id"])
		})
	}
}

func TestRecovery(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := serve(router, "GET", "/panic", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"]["code"])
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Panic recovered", logs.All()[0].Message)
}

func TestRecovery_NilLogger(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(nil))
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	w := serve(router, "GET", "/panic", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(CORSConfig{AllowOrigins: []string{"https://app.example.com"}}))
	router.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := serve(router, "GET", "/test", http.Header{"Origin": {"https://app.example.com"}})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("other origin is rejected", func(t *testing.T) {
		w := serve(router, "GET", "/test", http.Header{"Origin": {"https://evil.example.com"}})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("preflight", func(t *testing.T) {
		w := serve(router, "OPTIONS", "/test", http.Header{
			"Origin":                        {"https://app.example.com"},
			"Access-Control-Request-Method": {"PUT"},
		})
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PUT")
	})
}

func TestMetrics(t *testing.T) {
	m := metrics.New("mw", prometheus.NewRegistry())
	router := gin.New()
	router.Use(Metrics(m))
	router.GET("/plans/:id", func(c *gin.Context) {
		assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsInFlight))
		c.Status(http.StatusOK)
	})

	serve(router, "GET", "/plans/growth", nil)
	serve(router, "GET", "/plans/scale", nil)
	serve(router, "GET", "/nowhere", nil)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/plans/:id", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "4xx")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.HTTPRequestsInFlight))
}

type fakeLimiter struct {
	allowed int
	calls   int
	err     error
}

func (f *fakeLimiter) Allow(_ context.Context, _ string, limit int, window time.Duration) (outbound.RateLimitResult, error) {
	if f.err != nil {
		return outbound.RateLimitResult{}, f.err
	}
	f.calls++
	return outbound.RateLimitResult{
		Allowed:   f.calls <= f.allowed,
		Limit:     limit,
		Remaining: max(limit-f.calls, 0),
		ResetAt:   time.Now().Add(window),
	}, nil
}

type keyedLimiter struct {
	counts map[string]int
}

func (k *keyedLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (outbound.RateLimitResult, error) {
	if k.counts == nil {
		k.counts = make(map[string]int)
	}
	k.counts[key]++
	return outbound.RateLimitResult{
		Allowed:   k.counts[key] <= limit,
		Limit:     limit,
		Remaining: max(limit-k.counts[key], 0),
		ResetAt:   time.Now().Add(window),
	}, nil
}

func TestRateLimitByIP_ForwardedFor(t *testing.T) {
	newRouter := func(t *testing.T, limiter outbound.RateLimiterPort, trusted []string) *gin.Engine {
		router := gin.New()
		require.NoError(t, router.SetTrustedProxies(trusted))
		router.Use(RateLimitByIP(limiter, 2, time.Minute, nil, nil))
		router.POST("/quotes", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}
	forwardedFor := func(i int) http.Header {
		return http.Header{"X-Forwarded-For": []string{fmt.Sprintf("203.0.113.%d", i)}}
	}

	t.Run("untrusted forwarding headers do not create new clients", func(t *testing.T) {
		limiter := &keyedLimiter{}
		router := newRouter(t, limiter, nil)

		allowed := 0
		for i := range 10 {
			if serve(router, "POST", "/quotes", forwardedFor(i)).Code == http.StatusCreated {
				allowed++
			}
		}

		assert.Equal(t, 2, allowed)
		assert.Equal(t, map[string]int{"ip:192.0.2.1": 10}, limiter.counts)
	})

	t.Run("trusted proxy forwards the client address", func(t *testing.T) {
		limiter := &keyedLimiter{}
		router := newRouter(t, limiter, []string{"192.0.2.1"})

		for i := range 3 {
			assert.Equal(t, http.StatusCreated, serve(router, "POST", "/quotes", forwardedFor(i)).Code)
		}
		assert.Len(t, limiter.counts, 3)
		assert.Equal(t, 1, limiter.counts["ip:203.0.113.0"])
	})
}

func TestRateLimit(t *testing.T) {
	newRouter := func(limiter outbound.RateLimiterPort, m *metrics.Metrics) *gin.Engine {
		router := gin.New()
		router.Use(RateLimitByIP(limiter, 2, time.Minute, nil, m))
		router.POST("/quotes", func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})
		return router
	}

	t.Run("sets headers and rejects over limit", func(t *testing.T) {
		m := metrics.New("rl", prometheus.NewRegistry())
		router := newRouter(&fakeLimiter{allowed: 2}, m)

		first := serve(router, "POST", "/quotes", nil)
		assert.Equal(t, http.StatusCreated, first.Code)
		assert.Equal(t, "2", first.Header().Get(RateLimitLimit))
		assert.Equal(t, "1", first.Header().Get(RateLimitRemaining))

		serve(router, "POST", "/quotes", nil)
		third := serve(router, "POST", "/quotes", nil)

		assert.Equal(t, http.StatusTooManyRequests, third.Code)
		assert.NotEmpty(t, third.Header().Get(RetryAfter))
		assert.Contains(t, third.Body.String(), "RATE_LIMITED")
		assert.Equal(t, float64(1), testutil.ToFloat64(m.RateLimitedTotal.WithLabelValues("/quotes")))
	})

	t.Run("limiter failure lets requests through", func(t *testing.T) {
		router := newRouter(&fakeLimiter{err: errors.New("redis down")}, nil)

		w := serve(router, "POST", "/quotes", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Empty(t, w.Header().Get(RateLimitLimit))
	})

	t.Run("nil limiter is a no-op", func(t *testing.T) {
		w := serve(newRouter(nil, nil), "POST", "/quotes", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}
