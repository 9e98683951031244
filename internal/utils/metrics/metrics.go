package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Billing metrics
	QuotesTotal          *prometheus.CounterVec
	QuotedMonthlyTotal   *prometheus.HistogramVec
	SessionsStartedTotal prometheus.Counter
	ActiveSessions       prometheus.Gauge
	PlanChangesTotal     *prometheus.CounterVec

	// Rate limiting
	RateLimitedTotal *prometheus.CounterVec
}

// New creates a new Metrics instance registered with reg.
// A nil reg registers with the default Prometheus registry.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "planengine"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_in_flight",
				Help:      "Current number of HTTP requests being processed",
			},
		),

		// Billing metrics
		QuotesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "quotes_total",
				Help:      "Total number of quotes produced",
			},
			[]string{"plan_id", "billing_cycle"},
		),
		QuotedMonthlyTotal: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "quoted_monthly_total_dollars",
				Help:      "Monthly total of produced quotes in dollars",
				Buckets:   []float64{250, 500, 1000, 2000, 4000, 8000, 16000},
			},
			[]string{"billing_cycle"},
		),
		SessionsStartedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "sessions_started_total",
				Help:      "Total number of plan-change sessions started",
			},
		),
		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "active_sessions",
				Help:      "Number of live plan-change sessions",
			},
		),
		PlanChangesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "billing",
				Name:      "proposed_changes_total",
				Help:      "Total number of proposals by kind of change",
			},
			[]string{"kind"}, // kind: plan, add_ons, overage_mode, none
		),

		// Rate limiting
		RateLimitedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "rate_limited_total",
				Help:      "Total number of requests rejected by rate limiting",
			},
			[]string{"path"},
		),
	}
}

// --- Convenience methods ---

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := statusCodeToString(status)
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuote records a produced quote and its monthly total.
func (m *Metrics) RecordQuote(planID, billingCycle string, monthlyTotalDollars float64) {
	m.QuotesTotal.WithLabelValues(planID, billingCycle).Inc()
	m.QuotedMonthlyTotal.WithLabelValues(billingCycle).Observe(monthlyTotalDollars)
}

// RecordSessionStarted records a new session and the number of live sessions.
func (m *Metrics) RecordSessionStarted(active int) {
	m.SessionsStartedTotal.Inc()
	m.ActiveSessions.Set(float64(active))
}

// SetActiveSessions sets the number of live sessions.
func (m *Metrics) SetActiveSessions(active int) {
	m.ActiveSessions.Set(float64(active))
}

// RecordProposal records which parts of a subscription a proposal changes.
func (m *Metrics) RecordProposal(planChanged, addOnsChanged, overageChanged bool) {
	if !planChanged && !addOnsChanged && !overageChanged {
		m.PlanChangesTotal.WithLabelValues("none").Inc()
		return
	}
	if planChanged {
		m.PlanChangesTotal.WithLabelValues("plan").Inc()
	}
	if addOnsChanged {
		m.PlanChangesTotal.WithLabelValues("add_ons").Inc()
	}
	if overageChanged {
		m.PlanChangesTotal.WithLabelValues("overage_mode").Inc()
	}
}

// RecordRateLimited records a request rejected by rate limiting.
func (m *Metrics) RecordRateLimited(path string) {
	m.RateLimitedTotal.WithLabelValues(path).Inc()
}

// statusCodeToString converts an HTTP status code to a string category.
func statusCodeToString(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
