package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agentstation/cssmap/internal/server/response"
	"github.com/agentstation/cssmap/pkg/catalog"
	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/errors"
	"github.com/agentstation/cssmap/pkg/logging"
)

// HandleListFeatures handles GET /api/features.
//
// Query parameters: q (name substring), category, view, page, page_size,
// and all (disable pagination).
func (h *Handlers) HandleListFeatures(w http.ResponseWriter, r *http.Request) {
	q, err := ParseQuery(r)
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	c, err := h.catalog()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load catalog")
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, c.Query(q))
}

// HandleSpecFeatures handles GET /api/features/{spec}: the feature
// document of one specification.
func (h *Handlers) HandleSpecFeatures(w http.ResponseWriter, r *http.Request) {
	shortname := chi.URLParam(r, "spec")

	c, err := h.catalog()
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("Failed to load catalog")
		response.ErrorFromType(w, err)
		return
	}

	data, ok := c.Spec(shortname)
	if !ok {
		response.ErrorFromType(w, errors.NewNotFoundError("spec", shortname))
		return
	}
	response.OK(w, map[string]any{
		"spec":     shortname,
		"title":    data.SpecTitle(),
		"features": data,
		"count":    data.Count(),
	})
}

// ParseQuery reads a catalog query from the request's query string.
func ParseQuery(r *http.Request) (catalog.Query, error) {
	values := r.URL.Query()

	category, err := catalog.ParseCategory(values.Get("category"))
	if err != nil {
		return catalog.Query{}, err
	}
	view, err := catalog.ParseView(values.Get("view"))
	if err != nil {
		return catalog.Query{}, err
	}

	q := catalog.Query{
		Search:   values.Get("q"),
		Category: category,
		View:     view,
		Page:     1,
		PageSize: constants.DefaultPageSize,
	}
	if q.Page, err = intParam(values.Get("page"), "page", 1); err != nil {
		return catalog.Query{}, err
	}
	if q.PageSize, err = intParam(values.Get("page_size"), "page_size", constants.DefaultPageSize); err != nil {
		return catalog.Query{}, err
	}
	if q.PageSize > constants.MaxPageSize {
		return catalog.Query{}, errors.NewValidationError("page_size", q.PageSize,
			"must be at most "+strconv.Itoa(constants.MaxPageSize))
	}
	if all := values.Get("all"); all != "" {
		if q.NoPagination, err = strconv.ParseBool(all); err != nil {
			return catalog.Query{}, errors.NewValidationError("all", all, "must be a boolean")
		}
	}
	return q, nil
}

func intParam(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, errors.NewValidationError(name, raw, "must be a positive integer")
	}
	return n, nil
}
