package employees

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storeledger/backoffice/internal/platform/httpx"
)

var listFilters = map[string]string{
	"active":     "isActive",
	"department": "department",
	"position":   "position",
	"name":       "name",
}

// Handler manages employee endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers employee routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.listEmployees)
		r.Post("/", h.createEmployee)
		r.Get("/{id}", h.showEmployee)
		r.Patch("/{id}", h.updateEmployee)
		r.Delete("/{id}", h.deleteEmployee)
	})
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	q, err := httpx.ParseListQuery(r, h.service.loc, listFilters)
	if err != nil {
		h.fail(w, "list employees", err)
		return
	}
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, "list employees", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) showEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "show employee", err)
		return
	}
	employee, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "create employee", err)
		return
	}
	employee, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create employee", err)
		return
	}
	h.logger.Info("employee added", slog.String("employee_id", employee.ID.String()))
	httpx.JSON(w, http.StatusCreated, employee)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "update employee", err)
		return
	}
	var req UpdateEmployeeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "update employee", err)
		return
	}
	employee, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update employee", err)
		return
	}
	httpx.JSON(w, http.StatusOK, employee)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "delete employee", err)
		return
	}
	if err := h.service.Delete(r.Context(), id, r.URL.Query().Get("confirm")); err != nil {
		h.fail(w, "delete employee", err)
		return
	}
	h.logger.Info("employee deleted", slog.String("employee_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
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
