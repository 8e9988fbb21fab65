package sales

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/storeledger/backoffice/internal/platform/httpx"
)

// listFilters maps query parameters to filterable sale fields.
var listFilters = map[string]string{
	"payment_method": "paymentMethod",
	"sales_person":   "salesPerson",
	"customer":       "customerName",
	"returned":       "isReturned",
	"brand":          "product.brand",
	"category":       "product.category",
	"model":          "product.model",
	"imei":           "product.imei",
}

var productFilters = map[string]string{
	"brand":    "brand",
	"category": "category",
	"model":    "model",
}

// Handler manages sale endpoints.
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

// MountRoutes registers sale routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/sales", h.listSales)
	r.Post("/sales", h.createSale)
	r.Get("/sales/{id}", h.showSale)
	r.Patch("/sales/{id}", h.updateSale)
	r.Delete("/sales/{id}", h.deleteSale)
	r.Get("/products", h.listProducts)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	q, err := httpx.ParseListQuery(r, h.service.loc, listFilters)
	if err != nil {
		h.fail(w, "list sales", err)
		return
	}
	page, err := h.service.List(r.Context(), q)
	if err != nil {
		h.fail(w, "list sales", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) showSale(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "show sale", err)
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "show sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "create sale", err)
		return
	}
	sale, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.fail(w, "create sale", err)
		return
	}
	h.logger.Info("sale recorded", slog.String("sale_id", sale.ID.String()), slog.Float64("total", sale.TotalAmount))
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) updateSale(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "update sale", err)
		return
	}
	var req UpdateSaleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		h.fail(w, "update sale", err)
		return
	}
	sale, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.fail(w, "update sale", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.UUIDParam(r, "id")
	if err != nil {
		h.fail(w, "delete sale", err)
		return
	}
	if err := h.service.Delete(r.Context(), id, r.URL.Query().Get("confirm")); err != nil {
		h.fail(w, "delete sale", err)
		return
	}
	h.logger.Info("sale deleted", slog.String("sale_id", id.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q, err := httpx.ParseListQuery(r, h.service.loc, productFilters)
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	page, err := h.service.Products(r.Context(), q)
	if err != nil {
		h.fail(w, "list products", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
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
