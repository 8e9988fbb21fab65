// Package reportinghttp exposes dashboards, reports and exports over HTTP.
package reportinghttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/storeledger/backoffice/internal/platform/httpx"
)

// MountRoutes registers the reporting endpoints. Exports are limited to
// exportLimit requests per minute per client; zero disables the limit.
func (h *Handler) MountRoutes(r chi.Router, exportLimit int) {
	if h == nil {
		return
	}
	r.Get("/dashboard", h.handleDashboard)
	r.Get("/reports", h.handleReport)
	r.Group(func(gr chi.Router) {
		if exportLimit > 0 {
			gr.Use(httprate.Limit(exportLimit, time.Minute,
				httprate.WithKeyFuncs(httprate.KeyByRealIP),
				httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
					httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "export limit reached, retry in a minute")
				}),
			))
		}
		gr.Get("/reports/export.csv", h.handleExport("csv"))
		gr.Get("/reports/export.xlsx", h.handleExport("xlsx"))
		gr.Get("/reports/export.pdf", h.handleExport("pdf"))
	})
}
