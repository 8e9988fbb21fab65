// Package reporting derives revenue, expense and profit summaries from sale
// and expense records over calendar windows.
package reporting

import (
	"fmt"
	"strings"
	"time"

	"github.com/storeledger/backoffice/internal/records"
)

// Granularity is the reporting period unit.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity accepts daily, monthly or yearly and the day, month and
// year aliases. An empty value selects monthly.
func ParseGranularity(raw string) (Granularity, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "daily", "day":
		return Daily, nil
	case "", "monthly", "month":
		return Monthly, nil
	case "yearly", "year":
		return Yearly, nil
	}
	return "", fmt.Errorf("%w: unknown granularity %q", records.ErrValidation, raw)
}

// Layout returns the selector layout for the granularity.
func (g Granularity) Layout() string {
	switch g {
	case Daily:
		return "2006-01-02"
	case Yearly:
		return "2006"
	default:
		return "2006-01"
	}
}

// Window is the closed interval [Start, End].
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, both ends inclusive.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Dated is any record with an occurrence timestamp.
type Dated interface {
	OccurredAt() time.Time
}

// FilterByWindow returns the records whose timestamp lies inside w.
func FilterByWindow[T Dated](items []T, w Window) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if w.Contains(item.OccurredAt()) {
			out = append(out, item)
		}
	}
	return out
}

// WindowFor parses a selector (YYYY-MM-DD, YYYY-MM or YYYY) in loc and
// returns the whole day, month or year it names.
func WindowFor(g Granularity, selector string, loc *time.Location) (Window, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(g.Layout(), strings.TrimSpace(selector), loc)
	if err != nil {
		return Window{}, fmt.Errorf("%w: period %q does not match %s", records.ErrValidation, selector, g.Layout())
	}
	return WindowAt(g, t), nil
}

// WindowAt returns the window of granularity g containing t.
func WindowAt(g Granularity, t time.Time) Window {
	y, m, d := t.Date()
	loc := t.Location()
	switch g {
	case Daily:
		start := time.Date(y, m, d, 0, 0, 0, 0, loc)
		return Window{Start: start, End: endOfDay(start)}
	case Yearly:
		return Window{
			Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc),
			End:   endOfDay(time.Date(y, time.December, 31, 0, 0, 0, 0, loc)),
		}
	default:
		return Window{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			// day 0 of the following month is the last day of this one
			End: endOfDay(time.Date(y, m+1, 0, 0, 0, 0, 0, loc)),
		}
	}
}

// PreviousWindow returns the window of the same granularity immediately
// preceding w, using calendar arithmetic.
func PreviousWindow(w Window, g Granularity) Window {
	y, m, d := w.Start.Date()
	loc := w.Start.Location()
	switch g {
	case Daily:
		return WindowAt(Daily, time.Date(y, m, d-1, 0, 0, 0, 0, loc))
	case Yearly:
		return WindowAt(Yearly, time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc))
	default:
		return WindowAt(Monthly, time.Date(y, m-1, 1, 0, 0, 0, 0, loc))
	}
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
