package httpx

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/records"
)

// UUIDParam reads a UUID path parameter.
func UUIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q is not a valid id", records.ErrValidation, name, raw)
	}
	return id, nil
}

// ParseListQuery reads from, to, sort, dir, page and per_page plus the
// equality filters named in filters (query parameter to domain field). Dates
// are YYYY-MM-DD in loc; to covers its whole day.
func ParseListQuery(r *http.Request, loc *time.Location, filters map[string]string) (records.ListQuery, error) {
	if loc == nil {
		loc = time.UTC
	}
	values := r.URL.Query()
	q := records.ListQuery{
		SortBy:  strings.TrimSpace(values.Get("sort")),
		SortDir: strings.ToLower(strings.TrimSpace(values.Get("dir"))),
	}
	if q.SortDir != "" && q.SortDir != records.SortAsc && q.SortDir != records.SortDesc {
		return q, fmt.Errorf("%w: dir must be asc or desc", records.ErrValidation)
	}

	if raw := strings.TrimSpace(values.Get("from")); raw != "" {
		from, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return q, fmt.Errorf("%w: from must be YYYY-MM-DD", records.ErrValidation)
		}
		q.From = from
	}
	if raw := strings.TrimSpace(values.Get("to")); raw != "" {
		to, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return q, fmt.Errorf("%w: to must be YYYY-MM-DD", records.ErrValidation)
		}
		q.To = to.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return q, fmt.Errorf("%w: to is before from", records.ErrValidation)
	}

	var err error
	if q.Page, err = intParam(values.Get("page")); err != nil {
		return q, fmt.Errorf("%w: page must be a positive number", records.ErrValidation)
	}
	if q.PerPage, err = intParam(values.Get("per_page")); err != nil {
		return q, fmt.Errorf("%w: per_page must be a positive number", records.ErrValidation)
	}

	for param, field := range filters {
		if raw := strings.TrimSpace(values.Get(param)); raw != "" {
			if q.Filters == nil {
				q.Filters = make(map[string]string)
			}
			q.Filters[field] = raw
		}
	}
	// An absent dir stays empty so each collection applies its own default order.
	n := q.Normalize()
	n.SortDir = q.SortDir
	return n, nil
}

func intParam(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %q", raw)
	}
	return n, nil
}
