package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/cssmap/internal/server/response"
)

// HandleHealth handles GET /health (liveness).
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	response.OK(w, map[string]any{
		"status":  "healthy",
		"service": "cssmap-api",
		"uptime":  time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HandleReady handles GET /ready. It is ready once the artifacts load.
func (h *Handlers) HandleReady(w http.ResponseWriter, _ *http.Request) {
	c, err := h.catalog()
	if err != nil {
		h.logger.Warn().Err(err).Msg("Catalog not available")
		response.ServiceUnavailable(w, "Catalog not available; run cssmap update")
		return
	}

	response.OK(w, map[string]any{
		"status":   "ready",
		"specs":    len(c.Dataset),
		"features": c.Dataset.FeatureCount(),
		"cache": map[string]any{
			"items": h.cache.ItemCount(),
		},
	})
}
