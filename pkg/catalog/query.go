package catalog

import (
	"strings"

	"github.com/agentstation/cssmap/pkg/constants"
	"github.com/agentstation/cssmap/pkg/cssdata"
	"github.com/agentstation/cssmap/pkg/errors"
)

// Category restricts results to one feature type.
type Category string

// Categories.
const (
	CategoryAll      Category = "all"
	CategoryProperty Category = cssdata.TypeProperty
	CategoryAtRule   Category = cssdata.TypeAtRule
	CategoryValue    Category = cssdata.TypeValue
	CategoryFunction Category = cssdata.TypeFunction
)

// View selects which features are listed.
type View string

// Views.
const (
	ViewProperties     View = "properties"      // every feature
	ViewBrowserSupport View = "browser-support" // only supported features
)

// ParseCategory validates a category name. Empty means all.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(s)); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryProperty, CategoryAtRule, CategoryValue, CategoryFunction:
		return c, nil
	}
	return "", errors.NewValidationError("category", s, "must be one of: all, property, at-rule, value, function")
}

// ParseView validates a view name. Empty means properties.
func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(s)); v {
	case "":
		return ViewProperties, nil
	case ViewProperties, ViewBrowserSupport:
		return v, nil
	}
	return "", errors.NewValidationError("view", s, "must be one of: properties, browser-support")
}

// Query describes one listing request.
type Query struct {
	Search       string   // Case-insensitive substring of the feature name
	Category     Category // Defaults to all
	View         View     // Defaults to properties
	Page         int      // 1-based
	PageSize     int      // Defaults to 9
	NoPagination bool     // Return every match on one page
}

// Page is one page of results.
type Page struct {
	Items      []Item `json:"items"`
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// Filter returns every item matching the query's view, search, and category.
func (c *Catalog) Filter(q Query) []Item {
	search := strings.ToLower(q.Search)
	matches := []Item{}
	for _, it := range c.All() {
		if q.View == ViewBrowserSupport && !it.Supported() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(it.Name()), search) {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && Category(it.Type) != q.Category {
			continue
		}
		matches = append(matches, it)
	}
	return matches
}

// Query filters and paginates.
func (c *Catalog) Query(q Query) Page {
	matches := c.Filter(q)

	size := q.PageSize
	if size <= 0 {
		size = constants.DefaultPageSize
	}
	if q.NoPagination {
		return Page{Items: matches, Total: len(matches), Page: 1, PageSize: len(matches), TotalPages: 1}
	}

	page := max(q.Page, 1)
	totalPages := len(matches) / size
	if len(matches)%size != 0 {
		totalPages++
	}
	start := len(matches)
	if page <= totalPages {
		start = (page - 1) * size
	}
	end := start + min(size, len(matches)-start)

	return Page{
		Items:      matches[start:end],
		Total:      len(matches),
		Page:       page,
		PageSize:   size,
		TotalPages: totalPages,
	}
}
