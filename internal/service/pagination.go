package service

import "inkwell/internal/repository"

// PageLimits bound the page size accepted by listing operations.
type PageLimits struct {
	Default int
	Max     int
}

var limits = PageLimits{Default: 10, Max: 100}

// ConfigurePaging overrides the default and maximum page size. Non-positive
// values keep the current setting.
func ConfigurePaging(def, max int) {
	if def > 0 {
		limits.Default = def
	}
	if max > 0 {
		limits.Max = max
	}
	if limits.Default > limits.Max {
		limits.Default = limits.Max
	}
}

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page  int
	Limit int
}

// normalize clamps the page to at least 1 and the limit into [1, Max],
// substituting def when no limit was requested.
func (p PageRequest) normalize(def int) PageRequest {
	if p.Page < 1 {
		p.Page = 1
	}
	if def <= 0 {
		def = limits.Default
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > limits.Max {
		p.Limit = limits.Max
	}
	return p
}

func (p PageRequest) window() repository.Page {
	return repository.Page{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit}
}

// Pagination describes where a page sits in the full result.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	Total       int64 `json:"total"`
	Limit       int   `json:"limit"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func newPagination(p PageRequest, total int64) Pagination {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  pages,
		Total:       total,
		Limit:       p.Limit,
		HasNext:     p.Page < pages,
		HasPrev:     p.Page > 1,
	}
}
