// Package taxonomy serves the static lookup lists: professions and cities.
// Both are cached with a short TTL since they do not change within a session.
package taxonomy

import (
	"context"
	"sync"
	"time"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
)

const defaultTTL = 10 * time.Minute

// Profession is a trade offered on the marketplace.
type Profession struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// City is a serviceable location.
type City struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
}

type cacheEntry[T any] struct {
	items   []T
	expires time.Time
}

func (e *cacheEntry[T]) fresh(now time.Time) bool {
	return e.items != nil && now.Before(e.expires)
}

// Client fetches lookup lists with per-list memoization.
type Client struct {
	api *httpx.Client
	ttl time.Duration
	now func() time.Time

	mu          sync.Mutex
	professions cacheEntry[Profession]
	cities      cacheEntry[City]
}

type Option func(*Client)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) { c.ttl = ttl }
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

func NewClient(api *httpx.Client, opts ...Option) (*Client, error) {
	if api == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "taxonomy client requires an api client")
	}
	c := &Client{api: api, ttl: defaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Professions returns the profession list, cached.
func (c *Client) Professions(ctx context.Context) ([]Profession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.professions.fresh(c.now()) {
		return c.professions.items, nil
	}
	var page httpx.Page[Profession]
	if err := c.api.Get(ctx, "taxonomy/professions/", &page); err != nil {
		return nil, err
	}
	c.professions = cacheEntry[Profession]{items: page.Results, expires: c.now().Add(c.ttl)}
	return page.Results, nil
}

// Cities returns the city list, cached.
func (c *Client) Cities(ctx context.Context) ([]City, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cities.fresh(c.now()) {
		return c.cities.items, nil
	}
	var page httpx.Page[City]
	if err := c.api.Get(ctx, "locations/cities/", &page); err != nil {
		return nil, err
	}
	c.cities = cacheEntry[City]{items: page.Results, expires: c.now().Add(c.ttl)}
	return page.Results, nil
}

// ProfessionName resolves an id to its display name, or empty when unknown.
func (c *Client) ProfessionName(ctx context.Context, id int64) (string, error) {
	professions, err := c.Professions(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range professions {
		if p.ID == id {
			return p.Name, nil
		}
	}
	return "", nil
}

// CityName resolves an id to its display name, or empty when unknown.
func (c *Client) CityName(ctx context.Context, id int64) (string, error) {
	cities, err := c.Cities(ctx)
	if err != nil {
		return "", err
	}
	for _, city := range cities {
		if city.ID == id {
			return city.Name, nil
		}
	}
	return "", nil
}
