// Package watch runs fixed-interval pollers: chat threads and the new-leads
// badge. The server offers no push channel; re-fetching on a ticker is the
// delivery mechanism.
package watch

import (
	"context"
	"time"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/metrics"
)

// tick fetches once and delivers the result. Implementations must be safe
// to call sequentially; the loop never overlaps ticks.
type tick func(ctx context.Context) error

// watcher is the shared ticker loop. Run fetches immediately, then on every
// interval until the context is canceled, and returns only after the loop
// has fully stopped.
type watcher struct {
	name     string
	interval time.Duration
	tick     tick
	logg     *logger.Logger
	metrics  *metrics.WatchMetrics
}

func newWatcher(name string, interval time.Duration, fn tick, logg *logger.Logger, m *metrics.WatchMetrics) (*watcher, error) {
	if name == "" || fn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "watcher requires a name and a tick")
	}
	if interval <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "watcher requires a positive interval")
	}
	return &watcher{name: name, interval: interval, tick: fn, logg: logg, metrics: m}, nil
}

func (w *watcher) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	w.runTick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if w.logg != nil {
				w.logg.Info(w.logg.WithField(ctx, "watcher", w.name), "watcher stopped")
			}
			return ctx.Err()
		case <-ticker.C:
			w.runTick(ctx)
		}
	}
}

func (w *watcher) runTick(ctx context.Context) {
	start := time.Now()
	err := w.tick(ctx)
	w.metrics.ObserveTick(w.name, time.Since(start))
	if err != nil {
		// Transient failures are routine; the next tick retries.
		w.metrics.IncFailure(w.name)
		if w.logg != nil {
			w.logg.Error(w.logg.WithField(ctx, "watcher", w.name), "watch tick failed", err)
		}
		return
	}
	w.metrics.IncSuccess(w.name)
}
