package common

import (
	"net/http"
	"strconv"
)

// MaxPageLimit bounds the per-page size accepted by listing endpoints.
const MaxPageLimit = 50

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalItems int `json:"total_items"`
}

// ParsePagination extracts page and limit parameters from query values.
// Both are clamped to [1, MaxPageLimit]; bad values fall back to defaults.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if perPage < 1 {
		perPage = 1
	}
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > MaxPageLimit {
		perPage = MaxPageLimit
	}
	return
}
