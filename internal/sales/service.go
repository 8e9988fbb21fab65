package sales

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/platform/validation"
	"github.com/storeledger/backoffice/internal/records"
)

// Service provides business logic for sale records.
type Service struct {
	repo      Repository
	products  ProductCatalog
	staff     EmployeeDirectory
	reports   Invalidator
	validator *validation.Validator
	loc       *time.Location
	logger    *slog.Logger
}

// NewService constructs a sales service. staff and reports may be nil.
func NewService(repo Repository, products ProductCatalog, staff EmployeeDirectory, reports Invalidator, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		products:  products,
		staff:     staff,
		reports:   reports,
		validator: validation.New(),
		loc:       loc,
		logger:    logger,
	}
}

// List returns one page of sales.
func (s *Service) List(ctx context.Context, q records.ListQuery) (records.Page[records.Sale], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return records.Page[records.Sale]{}, fmt.Errorf("list sales: %w", err)
	}
	return page, nil
}

// Get returns a single sale.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (records.Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return records.Sale{}, fmt.Errorf("get sale: %w", err)
	}
	return sale, nil
}

// Products lists the products that have been sold.
func (s *Service) Products(ctx context.Context, q records.ListQuery) (records.Page[records.Product], error) {
	page, err := s.products.List(ctx, q)
	if err != nil {
		return records.Page[records.Product]{}, fmt.Errorf("list products: %w", err)
	}
	return page, nil
}

// Create records a sale. The total is quantity times unit price; the
// commission falls back to the sales person's rate.
func (s *Service) Create(ctx context.Context, req CreateSaleRequest) (records.Sale, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Sale{}, err
	}
	date, err := validation.ParseTime("date", req.Date, s.loc)
	if err != nil {
		return records.Sale{}, err
	}
	warrantyStart := date
	if strings.TrimSpace(req.WarrantyStartDate) != "" {
		if warrantyStart, err = validation.ParseTime("warrantyStartDate", req.WarrantyStartDate, s.loc); err != nil {
			return records.Sale{}, err
		}
	}

	months := req.Product.WarrantyMonths
	if months == 0 {
		months = records.DefaultWarrantyMonths
	}
	sale := records.Sale{
		Date: date,
		Product: records.Product{
			Category:       strings.TrimSpace(req.Product.Category),
			Brand:          strings.TrimSpace(req.Product.Brand),
			Model:          strings.TrimSpace(req.Product.Model),
			IMEI:           strings.TrimSpace(req.Product.IMEI),
			WarrantyMonths: months,
		},
		Quantity:          req.Quantity,
		UnitPrice:         req.UnitPrice,
		TotalAmount:       lineTotal(req.Quantity, req.UnitPrice),
		PaymentMethod:     records.PaymentMethod(req.PaymentMethod),
		CustomerName:      strings.TrimSpace(req.CustomerName),
		CustomerPhone:     strings.TrimSpace(req.CustomerPhone),
		SalesPerson:       strings.TrimSpace(req.SalesPerson),
		WarrantyStartDate: warrantyStart,
		Notes:             req.Notes,
	}
	if req.Commission != nil {
		sale.Commission = *req.Commission
	} else {
		sale.Commission = s.commissionFor(ctx, sale.SalesPerson, sale.TotalAmount)
	}

	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		return records.Sale{}, fmt.Errorf("create sale: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial update. Changing quantity or unit price
// recomputes the total.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateSaleRequest) (records.Sale, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Sale{}, err
	}
	patch, err := s.patchFor(req)
	if err != nil {
		return records.Sale{}, err
	}
	if req.Quantity != nil || req.UnitPrice != nil {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return records.Sale{}, fmt.Errorf("get sale: %w", err)
		}
		quantity, price := current.Quantity, current.UnitPrice
		if req.Quantity != nil {
			quantity = *req.Quantity
		}
		if req.UnitPrice != nil {
			price = *req.UnitPrice
		}
		patch["totalAmount"] = lineTotal(quantity, price)
	}
	if len(patch) == 0 {
		return s.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return records.Sale{}, fmt.Errorf("update sale: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes a sale. confirm must echo the sale id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirm string) error {
	if strings.TrimSpace(confirm) != id.String() {
		return fmt.Errorf("%w: repeat the sale id to delete it", records.ErrConfirmationRequired)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) patchFor(req UpdateSaleRequest) (records.Patch, error) {
	patch := records.Patch{}
	if req.Date != nil {
		date, err := validation.ParseTime("date", *req.Date, s.loc)
		if err != nil {
			return nil, err
		}
		patch["date"] = date
	}
	if req.WarrantyStartDate != nil {
		start, err := validation.ParseTime("warrantyStartDate", *req.WarrantyStartDate, s.loc)
		if err != nil {
			return nil, err
		}
		patch["warrantyStartDate"] = start
	}
	if req.Quantity != nil {
		patch["quantity"] = *req.Quantity
	}
	if req.UnitPrice != nil {
		patch["unitPrice"] = *req.UnitPrice
	}
	if req.PaymentMethod != nil {
		patch["paymentMethod"] = *req.PaymentMethod
	}
	if req.CustomerName != nil {
		patch["customerName"] = strings.TrimSpace(*req.CustomerName)
	}
	if req.CustomerPhone != nil {
		patch["customerPhone"] = strings.TrimSpace(*req.CustomerPhone)
	}
	if req.SalesPerson != nil {
		patch["salesPerson"] = strings.TrimSpace(*req.SalesPerson)
	}
	if req.Commission != nil {
		patch["commission"] = *req.Commission
	}
	if req.IsReturned != nil {
		patch["isReturned"] = *req.IsReturned
	}
	if req.Notes != nil {
		patch["notes"] = *req.Notes
	}
	if p := req.Product; p != nil {
		if p.Category != nil {
			patch["product.category"] = strings.TrimSpace(*p.Category)
		}
		if p.Brand != nil {
			patch["product.brand"] = strings.TrimSpace(*p.Brand)
		}
		if p.Model != nil {
			patch["product.model"] = strings.TrimSpace(*p.Model)
		}
		if p.IMEI != nil {
			patch["product.imei"] = strings.TrimSpace(*p.IMEI)
		}
		if p.WarrantyMonths != nil {
			months := *p.WarrantyMonths
			if months == 0 {
				months = records.DefaultWarrantyMonths
			}
			patch["product.warrantyMonths"] = months
		}
	}
	return patch, nil
}

// commissionFor looks up an active employee by name. Unknown names earn
// no commission.
func (s *Service) commissionFor(ctx context.Context, name string, total float64) float64 {
	if s.staff == nil || name == "" {
		return 0
	}
	page, err := s.staff.List(ctx, records.ListQuery{
		Filters: map[string]string{"name": name, "isActive": "true"},
		PerPage: 1,
	})
	if err != nil {
		s.logger.Warn("commission lookup failed", slog.String("sales_person", name), slog.Any("error", err))
		return 0
	}
	if len(page.Items) == 0 {
		return 0
	}
	return roundCents(total * page.Items[0].CommissionRate / 100)
}

func (s *Service) invalidate(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
	}
}

func lineTotal(quantity int, unitPrice float64) float64 {
	return roundCents(float64(quantity) * unitPrice)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
