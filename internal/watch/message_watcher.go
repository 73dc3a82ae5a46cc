package watch

import (
	"context"
	"time"

	"github.com/ndertimnet/ndertimnet-client/internal/leads"
	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/metrics"
)

const defaultChatInterval = 10 * time.Second

// MessageWatcherParams configure a chat poller for one lead thread.
type MessageWatcherParams struct {
	Leads    *leads.Client
	LeadID   int64
	Interval time.Duration
	// OnMessages receives every successfully fetched thread. Last resolved
	// wins; the callback must tolerate duplicate deliveries.
	OnMessages func(msgs []leads.LeadMessage)
	Logger     *logger.Logger
	Metrics    *metrics.WatchMetrics
}

// MessageWatcher re-fetches a lead's chat thread on a fixed cadence.
type MessageWatcher struct {
	inner *watcher
}

func NewMessageWatcher(params MessageWatcherParams) (*MessageWatcher, error) {
	if params.Leads == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "message watcher requires a leads client")
	}
	if params.LeadID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "message watcher requires a lead")
	}
	if params.OnMessages == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "message watcher requires a callback")
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultChatInterval
	}
	fn := func(ctx context.Context) error {
		msgs, err := params.Leads.Messages(ctx, params.LeadID)
		if err != nil {
			return err
		}
		params.OnMessages(msgs)
		return nil
	}
	inner, err := newWatcher("lead_messages", interval, fn, params.Logger, params.Metrics)
	if err != nil {
		return nil, err
	}
	return &MessageWatcher{inner: inner}, nil
}

// Run polls until the context is canceled and returns only after the loop
// has stopped.
func (w *MessageWatcher) Run(ctx context.Context) error {
	return w.inner.Run(ctx)
}
