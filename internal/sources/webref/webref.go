// Package webref fetches the curated webref dataset: the specification
// index and each specification's CSS feature document.
package webref

import (
	"context"
	"strings"
	"time"

	"github.com/agentstation/cssmap/internal/transport"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/logging"
)

// SourceName identifies webref in errors and metrics.
const SourceName = "webref"

// Resolver maps a shortname to the document it is published under and
// to any advisory note attached to it. *corrections.Table implements it.
type Resolver interface {
	FetchName(shortname string) string
	Note(shortname string) string
}

// Outcome classifies a per-specification fetch.
type Outcome string

// Fetch outcomes.
const (
	OutcomeFetched Outcome = "fetched"
	OutcomeMissing Outcome = "missing"
	OutcomeFailed  Outcome = "failed"
)

// Observer is notified of every per-specification fetch.
type Observer interface {
	ObserveFetch(outcome Outcome, elapsed time.Duration)
}

// Client fetches webref documents.
type Client struct {
	http      *transport.Client
	baseURL   string
	batchSize int
	resolver  Resolver
	observer  Observer
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the webref base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		if url != "" {
			c.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithBatchSize sets how many specifications are fetched concurrently.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.batchSize = min(n, constants.MaxBatchSize)
		}
	}
}

// WithResolver sets the alias and note lookup.
func WithResolver(r Resolver) Option {
	return func(c *Client) {
		c.resolver = r
	}
}

// WithObserver sets the fetch observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithTransport replaces the HTTP transport.
func WithTransport(t *transport.Client) Option {
	return func(c *Client) {
		if t != nil {
			c.http = t
		}
	}
}

// New creates a webref client.
func New(opts ...Option) *Client {
	c := &Client{
		http:      transport.New(SourceName),
		baseURL:   constants.WebrefBaseURL,
		batchSize: constants.DefaultBatchSize,
		resolver:  identity{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.resolver == nil {
		c.resolver = identity{}
	}
	return c
}

// IndexURL returns the URL of the specification index.
func (c *Client) IndexURL() string {
	return c.baseURL + "/" + constants.WebrefIndexPath
}

// FeaturesURL returns the URL of a feature document by its published name.
func (c *Client) FeaturesURL(fetchName string) string {
	return c.baseURL + "/" + constants.WebrefCSSDir + "/" + fetchName + ".json"
}

// FetchIndex retrieves the specification index. Any failure is returned;
// nothing downstream can run without the index.
func (c *Client) FetchIndex(ctx context.Context) (*cssdata.SpecIndex, error) {
	logger := logging.FromContext(ctx)
	logger.Info().Str("url", c.IndexURL()).Msg("Fetching specification index")

	body, err := c.http.GetBytes(ctx, c.IndexURL())
	if err != nil {
		return nil, err
	}
	idx, err := cssdata.ParseSpecIndex(body)
	if err != nil {
		return nil, err
	}

	logger.Info().Int("spec_count", len(idx.Results)).Msg("Fetched specification index")
	return idx, nil
}

type identity struct{}

func (identity) FetchName(shortname string) string {
	return shortname
}

func (identity) Note(string) string {
	return ""
}
