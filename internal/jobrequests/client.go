// Package jobrequests covers the customer side of the marketplace: published
// job requests, their server-persisted drafts and the creation wizard.
package jobrequests

import (
	"context"
	"fmt"
	"sort"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
)

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "jobrequests client requires an api client")
	}
	return &Client{api: api}, nil
}

func (c *Client) List(ctx context.Context) ([]JobRequest, error) {
	var page httpx.Page[JobRequest]
	if err := c.api.Get(ctx, "jobrequests/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*JobRequest, error) {
	var job JobRequest
	if err := c.api.Get(ctx, fmt.Sprintf("jobrequests/%d/", id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) Update(ctx context.Context, id int64, patch DraftPatch) (*JobRequest, error) {
	var job JobRequest
	if err := c.api.Patch(ctx, fmt.Sprintf("jobrequests/%d/", id), patch, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// AcceptOffer awards the job to the given offer.
func (c *Client) AcceptOffer(ctx context.Context, jobID, offerID int64) (*JobRequest, error) {
	var job JobRequest
	body := map[string]int64{"offer_id": offerID}
	if err := c.api.Post(ctx, fmt.Sprintf("jobrequests/%d/accept-offer/", jobID), body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *Client) DeclineOffer(ctx context.Context, jobID, offerID int64) (*JobRequest, error) {
	var job JobRequest
	body := map[string]int64{"offer_id": offerID}
	if err := c.api.Post(ctx, fmt.Sprintf("jobrequests/%d/decline-offer/", jobID), body, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// CreateDraft starts an empty draft on the server.
func (c *Client) CreateDraft(ctx context.Context) (*Draft, error) {
	var draft Draft
	if err := c.api.Post(ctx, "jobrequests/drafts/", map[string]any{}, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *Client) ListDrafts(ctx context.Context) ([]Draft, error) {
	var page httpx.Page[Draft]
	if err := c.api.Get(ctx, "jobrequests/drafts/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) GetDraft(ctx context.Context, id int64) (*Draft, error) {
	var draft Draft
	if err := c.api.Get(ctx, fmt.Sprintf("jobrequests/drafts/%d/", id), &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

func (c *Client) PatchDraft(ctx context.Context, id int64, patch DraftPatch) (*Draft, error) {
	var draft Draft
	if err := c.api.Patch(ctx, fmt.Sprintf("jobrequests/drafts/%d/", id), patch, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// SubmitDraft converts a draft into a published JobRequest.
func (c *Client) SubmitDraft(ctx context.Context, id int64) (*JobRequest, error) {
	var job JobRequest
	if err := c.api.Post(ctx, fmt.Sprintf("jobrequests/drafts/%d/submit/", id), map[string]any{}, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// OpenDrafts returns un-submitted drafts, newest first.
func (c *Client) OpenDrafts(ctx context.Context) ([]Draft, error) {
	drafts, err := c.ListDrafts(ctx)
	if err != nil {
		return nil, err
	}
	open := drafts[:0]
	for _, d := range drafts {
		if !d.Submitted {
			open = append(open, d)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].ID > open[j].ID })
	return open, nil
}
