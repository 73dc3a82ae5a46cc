// Package leads covers lead matches between companies and job requests:
// the negotiation lifecycle, paywalled unlocks, chat threads and the
// new-leads badge.
package leads

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

// visitMarkMyLeads keys the stored last-visit timestamp backing the badge.
const visitMarkMyLeads = "my_leads"

type Client struct {
	api    *httpx.Client
	tokens *tokenstore.Selector
	now    func() time.Time
}

type Option func(*Client)

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(api *httpx.Client, tokens *tokenstore.Selector, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "leads client requires an api client")
	}
	if tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "leads client requires a token store")
	}
	c := &Client{api: api, tokens: tokens, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) List(ctx context.Context) ([]LeadMatch, error) {
	var page httpx.Page[LeadMatch]
	if err := c.api.Get(ctx, "leads/leadmatches/", &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (c *Client) Get(ctx context.Context, id int64) (*LeadMatch, error) {
	var lead LeadMatch
	if err := c.api.Get(ctx, fmt.Sprintf("leads/leadmatches/%d/", id), &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// Create expresses interest in a job request.
func (c *Client) Create(ctx context.Context, jobRequestID int64) (*LeadMatch, error) {
	var lead LeadMatch
	body := map[string]int64{"job_request": jobRequestID}
	if err := c.api.Post(ctx, "leads/leadmatches/", body, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// action posts to a lead sub-resource and returns the updated record.
func (c *Client) action(ctx context.Context, id int64, verb string) (*LeadMatch, error) {
	var lead LeadMatch
	if err := c.api.Post(ctx, fmt.Sprintf("leads/leadmatches/%d/%s/", id, verb), map[string]any{}, &lead); err != nil {
		return nil, err
	}
	return &lead, nil
}

// UnlockChat opens the chat thread. Entitlement is checked server-side; the
// returned record carries the refreshed flags.
func (c *Client) UnlockChat(ctx context.Context, id int64) (*LeadMatch, error) {
	return c.action(ctx, id, "unlock_chat")
}

func (c *Client) UnlockCustomerInfo(ctx context.Context, id int64) (*LeadMatch, error) {
	return c.action(ctx, id, "unlock_customer_info")
}

func (c *Client) Accept(ctx context.Context, id int64) (*LeadMatch, error) {
	return c.action(ctx, id, "accept")
}

func (c *Client) Decline(ctx context.Context, id int64) (*LeadMatch, error) {
	return c.action(ctx, id, "decline")
}

// Messages fetches the chat thread for a lead.
func (c *Client) Messages(ctx context.Context, leadID int64) ([]LeadMessage, error) {
	var page httpx.Page[LeadMessage]
	req := httpx.Request{
		Method: http.MethodGet,
		Path:   "leads/leadmessages/",
		Query:  url.Values{"lead_match": []string{strconv.FormatInt(leadID, 10)}},
	}
	if err := c.api.Do(ctx, req, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// SendMessage appends to the chat thread.
func (c *Client) SendMessage(ctx context.Context, leadID int64, body string) (*LeadMessage, error) {
	if body == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message must not be empty")
	}
	var msg LeadMessage
	payload := map[string]any{"lead_match": leadID, "message": body}
	if err := c.api.Post(ctx, "leads/leadmessages/", payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// NewSince counts leads created after the stored my-leads visit mark. A
// missing mark counts everything as new.
func (c *Client) NewSince(ctx context.Context) (int, error) {
	store, _, err := c.tokens.Active(ctx)
	if err != nil {
		return 0, err
	}
	var mark time.Time
	if store != nil {
		if mark, err = store.VisitMark(ctx, visitMarkMyLeads); err != nil {
			return 0, err
		}
	}
	all, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, lead := range all {
		if lead.CreatedAt.After(mark) {
			count++
		}
	}
	return count, nil
}

// MarkVisited records now as the my-leads visit mark.
func (c *Client) MarkVisited(ctx context.Context) error {
	store, _, err := c.tokens.Active(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no active session")
	}
	return store.SetVisitMark(ctx, visitMarkMyLeads, c.now())
}
