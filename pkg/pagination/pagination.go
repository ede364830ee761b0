package pagination

import (
	"net/http"
	"strconv"
)

// Default and maximum page sizes for list endpoints.
const (
	DefaultLimit = 12
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  DefaultLimit,
		Offset: 0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request. Invalid
// or out-of-range values fall back to the defaults rather than erroring.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			if v > MaxLimit {
				v = MaxLimit
			}
			p.Limit = v
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Meta describes the page window of a list response.
type Meta struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// NewMeta computes the page metadata for the given window and total count.
func NewMeta(page, perPage int, totalItems int64) Meta {
	totalPages := 0
	if perPage > 0 {
		totalPages = int(totalItems) / perPage
		if int(totalItems)%perPage > 0 {
			totalPages++
		}
	}
	return Meta{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   totalItems,
		ItemsPerPage: perPage,
	}
}
