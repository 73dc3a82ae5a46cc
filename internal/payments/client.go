// Package payments wraps the paywall endpoints. Pricing and entitlement
// live server-side; these calls are opaque triggers whose effects show up
// as refreshed flags on the affected resources.
package payments

import (
	"context"
	"fmt"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
)

// Result is the acknowledgment returned by the payment endpoints.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments client requires an api client")
	}
	return &Client{api: api}, nil
}

// UnlockLead purchases full access to a job request's lead.
func (c *Client) UnlockLead(ctx context.Context, jobRequestID int64) (*Result, error) {
	var res Result
	body := map[string]int64{"job_request_id": jobRequestID}
	if err := c.api.Post(ctx, "payments/unlock-lead/", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// OfferAccess purchases the right to send an offer on a job request.
func (c *Client) OfferAccess(ctx context.Context, jobRequestID int64) (*Result, error) {
	var res Result
	if err := c.api.Post(ctx, fmt.Sprintf("payments/offer-access/%d/", jobRequestID), map[string]any{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ChatAccess purchases chat on a lead.
func (c *Client) ChatAccess(ctx context.Context, leadID int64) (*Result, error) {
	var res Result
	if err := c.api.Post(ctx, fmt.Sprintf("payments/chat-access/%d/", leadID), map[string]any{}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
