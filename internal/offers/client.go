// Package offers covers the company side of the marketplace: offers, their
// version history and the editing-and-signing wizard.
package offers

import (
	"context"
	"fmt"
	"net/http"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/validate"
)

type Client struct {
	api *httpx.Client
}

func NewClient(api *httpx.Client) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "offers client requires an api client")
	}
	return &Client{api: api}, nil
}

func (c *Client) List(ctx context.Context) ([]Offer, error) {
	var page httpx.Page[Offer]
	if err := c.api.Get(ctx, "offers/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// Create opens a draft offer against a job request.
func (c *Client) Create(ctx context.Context, jobRequestID int64) (*Offer, error) {
	var offer Offer
	body := map[string]int64{"job_request": jobRequestID}
	if err := c.api.Post(ctx, "offers/", body, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*Offer, error) {
	var offer Offer
	if err := c.api.Get(ctx, fmt.Sprintf("offers/%d/", id), &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// Patch edits fields on the offer's current version.
func (c *Client) Patch(ctx context.Context, id int64, patch VersionPatch) (*Offer, error) {
	var offer Offer
	if err := c.api.Patch(ctx, fmt.Sprintf("offers/%d/", id), patch, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}

// Mine lists the authenticated company's offers.
func (c *Client) Mine(ctx context.Context) ([]Offer, error) {
	var page httpx.Page[Offer]
	if err := c.api.Get(ctx, "offers/mine/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) ByJob(ctx context.Context, jobRequestID int64) ([]Offer, error) {
	var page httpx.Page[Offer]
	if err := c.api.Get(ctx, fmt.Sprintf("offers/by-job/%d/", jobRequestID), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// CheckByJob returns the company's own offer for a job, or nil when none
// exists.
func (c *Client) CheckByJob(ctx context.Context, jobRequestID int64) (*Offer, error) {
	var offer Offer
	err := c.api.Get(ctx, fmt.Sprintf("offers/check-by-job/%d/", jobRequestID), &offer)
	if err != nil {
		if apiErr := pkgerrors.As(err); apiErr != nil && apiErr.Code() == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// Versions returns the append-only edit history.
func (c *Client) Versions(ctx context.Context, id int64) ([]OfferVersion, error) {
	var page httpx.Page[OfferVersion]
	if err := c.api.Get(ctx, fmt.Sprintf("offers/%d/versions/", id), &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// PDF fetches the rendered offer document.
func (c *Client) PDF(ctx context.Context, id int64) ([]byte, error) {
	return c.api.DoRaw(ctx, httpx.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("offers/%d/pdf/", id),
	})
}

// Sign finalizes the offer. The personal number is validated locally before
// the request goes out.
func (c *Client) Sign(ctx context.Context, id int64, req SignRequest) (*Offer, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var offer Offer
	if err := c.api.Post(ctx, fmt.Sprintf("offers/%d/sign/", id), req, &offer); err != nil {
		return nil, err
	}
	return &offer, nil
}
