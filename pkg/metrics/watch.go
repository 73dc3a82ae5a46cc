package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WatchMetrics records metadata for fixed-interval watchers.
type WatchMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewWatchMetrics registers the watcher metrics on the provided registerer.
func NewWatchMetrics(reg prometheus.Registerer) *WatchMetrics {
	if reg == nil {
		return &WatchMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "watch_tick_duration_seconds",
		Help:    "Duration of watcher ticks in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"watcher"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watch_tick_success",
		Help: "Successful watcher ticks.",
	}, []string{"watcher"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "watch_tick_failure",
		Help: "Failed watcher ticks.",
	}, []string{"watcher"})
	reg.MustRegister(duration, success, failure)
	return &WatchMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveTick records the duration for the named watcher.
func (w *WatchMetrics) ObserveTick(watcher string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(watcher)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named watcher.
func (w *WatchMetrics) IncSuccess(watcher string) {
	if w == nil || w.success == nil {
		return
	}
	w.success.WithLabelValues(normalizeLabel(watcher)).Inc()
}

// IncFailure increments the failure counter for the named watcher.
func (w *WatchMetrics) IncFailure(watcher string) {
	if w == nil || w.failure == nil {
		return
	}
	w.failure.WithLabelValues(normalizeLabel(watcher)).Inc()
}
