package records

import (
	"math"
	"time"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 500

	SortAsc  = "asc"
	SortDesc = "desc"
)

// ListQuery describes a bulk read against one collection. Sort keys and
// filter keys are domain field names; the store translates them.
type ListQuery struct {
	From    time.Time
	To      time.Time
	Filters map[string]string
	SortBy  string
	SortDir string
	Page    int
	PerPage int
}

// All returns a query that reads the whole collection inside [from, to].
// Zero times leave that side open.
func All(from, to time.Time) ListQuery {
	return ListQuery{From: from, To: to, SortBy: "date", SortDir: SortDesc, PerPage: -1}
}

// Normalize applies pagination defaults. PerPage < 0 disables pagination.
func (q ListQuery) Normalize() ListQuery {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if q.SortDir != SortAsc {
		q.SortDir = SortDesc
	}
	return q
}

// Paginated reports whether limit/offset should be applied.
func (q ListQuery) Paginated() bool {
	return q.PerPage > 0
}

// Offset returns the row offset for the current page.
func (q ListQuery) Offset() int {
	if !q.Paginated() || q.Page <= 1 {
		return 0
	}
	return (q.Page - 1) * q.PerPage
}

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes pagination metadata.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		return Pagination{Page: 1, PerPage: total, Total: total, TotalPages: 1}
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Page is one page of a collection read.
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// Patch is a partial update keyed by domain field names. Nested product
// fields of a sale use the "product." prefix.
type Patch map[string]any
