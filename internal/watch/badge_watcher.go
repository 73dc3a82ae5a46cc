package watch

import (
	"context"
	"time"

	"github.com/ndertimnet/ndertimnet-client/internal/leads"
	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/metrics"
)

const defaultBadgeInterval = time.Minute

// LeadBadgeWatcherParams configure the new-leads badge poller.
type LeadBadgeWatcherParams struct {
	Leads    *leads.Client
	Interval time.Duration
	// OnCount receives the number of leads newer than the stored visit mark.
	OnCount func(count int)
	Logger  *logger.Logger
	Metrics *metrics.WatchMetrics
}

// LeadBadgeWatcher periodically recounts leads created since the last visit
// to the my-leads page.
type LeadBadgeWatcher struct {
	inner *watcher
}

func NewLeadBadgeWatcher(params LeadBadgeWatcherParams) (*LeadBadgeWatcher, error) {
	if params.Leads == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "badge watcher requires a leads client")
	}
	if params.OnCount == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "badge watcher requires a callback")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultBadgeInterval
	}
	fn := func(ctx context.Context) error {
		count, err := params.Leads.NewSince(ctx)
		if err != nil {
			return err
		}
		params.OnCount(count)
		return nil
	}
	inner, err := newWatcher("lead_badge", interval, fn, params.Logger, params.Metrics)
	if err != nil {
		return nil, err
	}
	return &LeadBadgeWatcher{inner: inner}, nil
}

func (w *LeadBadgeWatcher) Run(ctx context.Context) error {
	return w.inner.Run(ctx)
}
