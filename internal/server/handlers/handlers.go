// Package handlers provides the HTTP handlers of the cssmap API.
package handlers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/cssmap/internal/server/cache"
	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/errors"
)

// Loader reads the current catalog.
type Loader interface {
	Load() (*catalog.Catalog, error)
}

// catalogKey is the cache key of the loaded catalog.
const catalogKey = "catalog"

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	loader    Loader
	cache     *cache.Cache
	logger    *zerolog.Logger
	startTime time.Time
}

// New creates a new Handlers instance.
func New(loader Loader, cache *cache.Cache, logger *zerolog.Logger) *Handlers {
	return &Handlers{
		loader:    loader,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
	}
}

// catalog returns the cached catalog, loading it on a miss.
func (h *Handlers) catalog() (*catalog.Catalog, error) {
	v, err := h.cache.GetOrLoad(catalogKey, func() (any, error) {
		c, err := h.loader.Load()
		if err != nil {
			return nil, err
		}
		h.logger.Debug().
			Int("specs", len(c.Dataset)).
			Int("features", c.Dataset.FeatureCount()).
			Msg("Catalog loaded")
		return c, nil
	})
	if err != nil {
		return nil, errors.WrapResource("load", "catalog", "", err)
	}
	return v.(*catalog.Catalog), nil
}
