package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/metrics"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

const (
	refreshPath = "token/refresh/"

	errorBodyReadLimit int64 = 4096
)

// Client is the authenticated JSON transport for the marketplace API.
// Every request carries a bearer token unless flagged SkipAuth, and a 401
// triggers at most one refresh-and-replay per original request.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     *tokenstore.Selector
	logg       *logger.Logger
	metrics    *metrics.APIMetrics

	// refreshMu serializes token refreshes so concurrent 401s share one
	// refresh round-trip.
	refreshMu sync.Mutex
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout overrides the default HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithBaseURL replaces the base URL, typically to point at a staging host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// WithMetrics attaches request metrics.
func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds the API client for the given base URL and token scopes.
func NewClient(baseURL string, tokens *tokenstore.Selector, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, fmt.Errorf("api base URL is required")
	}
	if tokens == nil {
		return nil, fmt.Errorf("token selector is required")
	}

	client := &Client{
		baseURL:    trimmed,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client, nil
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   any

	// SkipAuth omits the Authorization header and opts the request out of
	// the 401 refresh flow entirely.
	SkipAuth bool

	// Group overrides the metrics label; defaults to the first path segment.
	Group string

	retried bool
}

func (r Request) group() string {
	if r.Group != "" {
		return r.Group
	}
	if idx := strings.IndexByte(r.Path, '/'); idx > 0 {
		return r.Path[:idx]
	}
	return r.Path
}

// Do executes the request and decodes a JSON response body into out when
// out is non-nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	body, status, err := c.execute(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 || status == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "decode response")
	}
	return nil
}

// DoRaw executes the request and returns the raw response body. Used for
// binary payloads such as offer PDFs.
func (c *Client) DoRaw(ctx context.Context, req Request) ([]byte, error) {
	body, _, err := c.execute(ctx, req)
	return body, err
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

func (c *Client) execute(ctx context.Context, req Request) ([]byte, int, error) {
	access := ""
	if !req.SkipAuth {
		store, _, err := c.tokens.Active(ctx)
		if err != nil {
			return nil, 0, errors.Wrap(errors.CodeInternal, err, "read credentials")
		}
		if store != nil {
			tokens, err := store.Tokens(ctx)
			if err != nil {
				return nil, 0, errors.Wrap(errors.CodeInternal, err, "read credentials")
			}
			access = tokens.Access
		}
	}

	body, status, err := c.roundTrip(ctx, req, access)
	if err != nil {
		return nil, 0, err
	}
	if status < 400 {
		return body, status, nil
	}

	apiErr := c.errorFromResponse(status, body)

	if status == http.StatusUnauthorized && c.shouldRefresh(req) {
		newAccess, refreshErr := c.refreshAccess(ctx, access)
		if refreshErr != nil {
			return nil, 0, apiErr
		}
		req.retried = true
		body, status, err = c.roundTrip(ctx, req, newAccess)
		if err != nil {
			return nil, 0, err
		}
		if status < 400 {
			return body, status, nil
		}
		return nil, 0, c.errorFromResponse(status, body)
	}

	return nil, 0, apiErr
}

// shouldRefresh guards the single-retry invariant: never the refresh
// endpoint itself, never SkipAuth requests, never a second time.
func (c *Client) shouldRefresh(req Request) bool {
	if req.SkipAuth || req.retried {
		return false
	}
	return !strings.Contains(req.Path, "token/refresh")
}

func (c *Client) roundTrip(ctx context.Context, req Request, access string) ([]byte, int, error) {
	target := c.buildURL(req.Path)
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var payload io.Reader
	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, 0, errors.Wrap(errors.CodeInternal, err, "marshal request body")
		}
		payload = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, payload)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeInternal, err, "build request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", requestID)
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if !req.SkipAuth && access != "" {
		httpReq.Header.Set("Authorization", "Bearer "+access)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.observe(req, "error", time.Since(start))
		return nil, 0, errors.Wrap(errors.CodeDependency, err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	c.observe(req, strconv.Itoa(resp.StatusCode), time.Since(start))
	if c.logg != nil {
		logCtx := c.logg.WithRequestID(ctx, requestID)
		logCtx = c.logg.WithEndpoint(logCtx, req.Method+" "+req.Path)
		logCtx = c.logg.WithField(logCtx, "status", resp.StatusCode)
		c.logg.Debug(logCtx, "api request completed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, errors.Wrap(errors.CodeDependency, err, "read response body")
	}
	return body, resp.StatusCode, nil
}

// refreshAccess performs the single token refresh. Concurrent callers are
// serialized; a caller whose stale access token was already rotated by an
// earlier refresh reuses the new token instead of refreshing again.
func (c *Client) refreshAccess(ctx context.Context, staleAccess string) (string, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	store, _, err := c.tokens.Active(ctx)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "read credentials")
	}
	if store == nil {
		return "", errors.New(errors.CodeUnauthorized, "no stored credentials")
	}

	tokens, err := store.Tokens(ctx)
	if err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "read credentials")
	}
	if tokens.Access != "" && tokens.Access != staleAccess {
		// Another request already refreshed while we waited on the lock.
		return tokens.Access, nil
	}
	if tokens.Refresh == "" {
		c.metricsRefresh("failure")
		_ = store.Clear(ctx)
		return "", errors.New(errors.CodeUnauthorized, "no refresh token")
	}

	var refreshed struct {
		Access string `json:"access"`
	}
	err = c.Do(ctx, Request{
		Method:   http.MethodPost,
		Path:     refreshPath,
		Body:     map[string]string{"refresh": tokens.Refresh},
		SkipAuth: true,
		Group:    "token",
	}, &refreshed)
	if err != nil || refreshed.Access == "" {
		c.metricsRefresh("failure")
		if c.logg != nil {
			c.logg.Warn(ctx, "token refresh failed; clearing credentials")
		}
		_ = store.Clear(ctx)
		if err == nil {
			err = errors.New(errors.CodeUnauthorized, "refresh returned no access token")
		}
		return "", err
	}

	if err := store.SetAccess(ctx, refreshed.Access); err != nil {
		return "", errors.Wrap(errors.CodeInternal, err, "persist refreshed token")
	}
	c.metricsRefresh("success")
	return refreshed.Access, nil
}

func (c *Client) errorFromResponse(status int, body []byte) error {
	message, detail, serverCode := extractErrorFields(body)

	if status == http.StatusForbidden && isEmailUnverifiedPayload(serverCode, detail) {
		msg := detail
		if msg == "" {
			msg = message
		}
		if msg == "" {
			msg = errors.MetadataFor(errors.CodeEmailUnverified).PublicMessage
		}
		return errors.New(errors.CodeEmailUnverified, msg).WithHTTPStatus(status)
	}

	msg := message
	if msg == "" {
		msg = detail
	}
	return errors.FromStatus(status, msg)
}

func extractErrorFields(body []byte) (message, detail, code string) {
	if len(body) == 0 {
		return "", "", ""
	}
	if int64(len(body)) > errorBodyReadLimit {
		// Error payloads are small; anything bigger is not the API's JSON.
		body = body[:errorBodyReadLimit]
	}
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Code    string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", "", ""
	}
	return payload.Message, payload.Detail, payload.Code
}

// isEmailUnverifiedPayload matches the API's soft 403: either the explicit
// code or a detail string mentioning email verification.
func isEmailUnverifiedPayload(code, detail string) bool {
	if code == "EMAIL_NOT_VERIFIED" {
		return true
	}
	return strings.Contains(strings.ToLower(detail), "email")
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}

func (c *Client) observe(req Request, status string, duration time.Duration) {
	if c.metrics == nil {
		return
	}
	c.metrics.ObserveRequest(req.group(), req.Method, status, duration)
}

func (c *Client) metricsRefresh(outcome string) {
	if c.metrics == nil {
		return
	}
	c.metrics.IncRefresh(outcome)
}
