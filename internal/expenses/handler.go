package expenses

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/platform/httpx"
	"github.com/storeledger/backoffice/internal/records"
)

var listFilters = map[string]string{
	"category":       "category",
	"subcategory":    "subcategory",
	"vendor":         "vendor",
	"payment_method": "paymentMethod",
	"status":         "approvalStatus",
	"recurring":      "isRecurring",
}

// Handler manages expense endpoints.
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

// MountRoutes registers expense routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", h.listExpenses)
		r.Post("/", h.createExpense)
		r.Get("/categories", h.listCategories)
		r.Get("/{id}", h.showExpense)
		r.Patch("/{id}", h.updateExpense)
		r.Delete("/{id}", h.deleteExpense)
		r.Post("/{id}/approve", h.decide("approve expense", h.service.Approve))
		r.Post("/{id}/reject", h.decide("reject expense", h.service.Reject))
	})
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	q, err := httpx.ParseListQuery(r, h.service.loc, listFilters)
	if err != nil {
		h.fail(w, "list expenses", err)
		return
	}
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, "list expenses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) listCategories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string][]string{"categories": records.ExpenseCategories})
}

func (h *Handler) showExpense(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "show expense", err)
		return
	}
	expense, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req CreateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "create expense", err)
		return
	}
	expense, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create expense", err)
		return
	}
	h.logger.Info("expense recorded", slog.String("expense_id", expense.ID.String()), slog.Float64("amount", expense.Amount))
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) updateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "update expense", err)
		return
	}
	var req UpdateExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "update expense", err)
		return
	}
	expense, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update expense", err)
		return
	}
	httpx.JSON(w, http.StatusOK, expense)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "delete expense", err)
		return
	}
	if err := h.service.Delete(r.Context(), id, r.URL.Query().Get("confirm")); err != nil {
		h.fail(w, "delete expense", err)
		return
	}
	h.logger.Info("expense deleted", slog.String("expense_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

type decision func(ctx context.Context, id uuid.UUID, req DecisionRequest) (records.Expense, error)

func (h *Handler) decide(action string, fn decision) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := httpx.UUIDParam(r, "id")
		if err != nil {
			h.fail(w, action, err)
			return
		}
		var req DecisionRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			h.fail(w, action, err)
			return
		}
		expense, err := fn(r.Context(), id, req)
		if err != nil {
			h.fail(w, action, err)
			return
		}
		httpx.JSON(w, http.StatusOK, expense)
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
