// Package transport provides the HTTP client used to reach remote data
// sources. It sets common headers and turns non-200 responses into typed
// errors so callers can tell an expected 404 from a real failure.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/errors"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality for one remote source.
type Client struct {
	http      *http.Client
	source    string
	userAgent string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a new transport client for the named source.
func New(source string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: DefaultHTTPTimeout},
		source:    source,
		userAgent: constants.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Source returns the name used in errors for this client.
func (c *Client) Source() string {
	return c.source
}

// Do performs an HTTP request with common headers applied.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.NewResourceError("fetch", c.source, req.URL.String(), ctx.Err())
		}
		return nil, &errors.APIError{
			Source:   c.source,
			Endpoint: req.URL.String(),
			Message:  "request failed",
			Err:      err,
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapResource("create", "request", "GET "+url, err)
	}
	return c.Do(ctx, req)
}

// GetBytes performs a GET request and returns the body of a 200 response.
// Any other status is returned as an *errors.APIError.
func (c *Client) GetBytes(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	return ReadBody(resp, c.source)
}
