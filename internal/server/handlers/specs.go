package handlers

import (
	"net/http"

	"github.com/agentstation/cssmap/internal/server/response"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/logging"
)

// HandleListSpecs handles GET /api/specs. It answers with the index entries.
func (h *Handlers) HandleListSpecs(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load catalog")
		response.ErrorFromType(w, err)
		return
	}

	results := []cssdata.SpecIndexEntry{}
	if c.Specs != nil {
		results = c.Specs.Results
	}
	response.OK(w, map[string]any{
		"specs": results,
		"total": len(results),
	})
}

// HandleCompletedSpecs handles GET /api/specs/completed: CSS Working Group
// specifications at Recommendation.
func (h *Handlers) HandleCompletedSpecs(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load catalog")
		response.ErrorFromType(w, err)
		return
	}

	completed := c.CompletedSpecs()
	if completed == nil {
		completed = []cssdata.SpecIndexEntry{}
	}
	response.OK(w, map[string]any{
		"specs": completed,
		"total": len(completed),
	})
}
