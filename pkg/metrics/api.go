package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records outcomes of outbound API requests.
type APIMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
	refresh  *prometheus.CounterVec
}

// NewAPIMetrics registers the request metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "Duration of outbound API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"group", "method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Outbound API requests by endpoint group, method and status.",
	}, []string{"group", "method", "status"})
	refresh := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_token_refresh_total",
		Help: "Token refresh attempts by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests, refresh)
	return &APIMetrics{
		duration: duration,
		requests: requests,
		refresh:  refresh,
	}
}

// ObserveRequest records one completed request.
func (m *APIMetrics) ObserveRequest(group, method, status string, duration time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(group), method, status).Inc()
	m.duration.WithLabelValues(normalizeLabel(group), method).Observe(duration.Seconds())
}

// IncRefresh counts a token refresh attempt; outcome is "success" or "failure".
func (m *APIMetrics) IncRefresh(outcome string) {
	if m == nil || m.refresh == nil {
		return
	}
	m.refresh.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
