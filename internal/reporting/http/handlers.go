package reportinghttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/storeledger/backoffice/internal/platform/httpx"
	"github.com/storeledger/backoffice/internal/reporting"
	"github.com/storeledger/backoffice/internal/reporting/export"
)

const defaultRequestTimeout = 10 * time.Second

// ReportService is the read side the handler needs.
type ReportService interface {
	Report(ctx context.Context, granularity, period string) (reporting.Report, error)
	Dashboard(ctx context.Context) (reporting.Dashboard, error)
	Location() *time.Location
}

// Handler serves the dashboard, reports and report downloads.
type Handler struct {
	logger  *slog.Logger
	service ReportService
	timeout time.Duration
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the reporting HTTP handler. A zero timeout selects
// the default.
func NewHandler(logger *slog.Logger, service ReportService, timeout time.Duration) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	h := &Handler{logger: logger, service: service, timeout: timeout, now: time.Now}
	h.bufPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx)
	if err != nil {
		h.fail(w, "load dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	report, err := h.service.Report(ctx, query(r, "granularity"), query(r, "period"))
	if err != nil {
		h.fail(w, "build report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) handleExport(format string) http.HandlerFunc {
	rnd, ok := export.Lookup(format)
	if !ok {
		panic(fmt.Sprintf("reportinghttp: unknown export format %q", format))
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()

		report, err := h.service.Report(ctx, query(r, "granularity"), query(r, "period"))
		if err != nil {
			h.fail(w, "build report", err)
			return
		}
		payload := export.NewPayload(report, h.now(), h.service.Location())

		buf := h.bufPool.Get().(*bytes.Buffer)
		buf.Reset()
		defer func() {
			buf.Reset()
			h.bufPool.Put(buf)
		}()

		if err := rnd.Write(buf, payload); err != nil {
			h.fail(w, "render "+rnd.Ext, err)
			return
		}
		if err := httpx.Attachment(w, rnd.ContentType, payload.Filename(rnd.Ext), buf.Bytes()); err != nil {
			h.logger.Warn("stream export", slog.String("format", rnd.Ext), slog.Any("error", err))
		}
	}
}

func (h *Handler) fail(w http.ResponseWriter, action string, err error) {
	status := httpx.StatusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(action, slog.Any("error", err))
	} else if !errors.Is(err, context.Canceled) {
		h.logger.Debug(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}
