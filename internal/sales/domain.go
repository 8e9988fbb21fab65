package sales

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/records"
)

// Repository persists sales. Implemented by store.SalesStore.
type Repository interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Sale], error)
	Get(ctx context.Context, id uuid.UUID) (records.Sale, error)
	Create(ctx context.Context, sale records.Sale) (records.Sale, error)
	Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Sale, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductCatalog reads products. Implemented by store.ProductStore.
type ProductCatalog interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Product], error)
}

// EmployeeDirectory finds the sales person behind a sale for commission.
type EmployeeDirectory interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Employee], error)
}

// Invalidator drops cached reports after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// ProductInput describes the product sold.
type ProductInput struct {
	Category       string `json:"category" validate:"required,max=100"`
	Brand          string `json:"brand" validate:"required,max=100"`
	Model          string `json:"model" validate:"required,max=100"`
	IMEI           string `json:"imei" validate:"omitempty,max=32"`
	WarrantyMonths int    `json:"warrantyMonths" validate:"gte=0,lte=120"`
}

// CreateSaleRequest is the payload for recording a sale. Commission is
// derived from the sales person's rate when omitted.
type CreateSaleRequest struct {
	Date              string       `json:"date" validate:"required"`
	Product           ProductInput `json:"product"`
	Quantity          int          `json:"quantity" validate:"gt=0"`
	UnitPrice         float64      `json:"unitPrice" validate:"gte=0"`
	PaymentMethod     string       `json:"paymentMethod" validate:"required,oneof=cash card emi upi"`
	CustomerName      string       `json:"customerName" validate:"required,max=200"`
	CustomerPhone     string       `json:"customerPhone" validate:"omitempty,max=20"`
	SalesPerson       string       `json:"salesPerson" validate:"omitempty,max=200"`
	Commission        *float64     `json:"commission" validate:"omitempty,gte=0"`
	WarrantyStartDate string       `json:"warrantyStartDate"`
	Notes             string       `json:"notes" validate:"omitempty,max=2000"`
}

// ProductPatch changes product fields of an existing sale.
type ProductPatch struct {
	Category       *string `json:"category" validate:"omitempty,min=1,max=100"`
	Brand          *string `json:"brand" validate:"omitempty,min=1,max=100"`
	Model          *string `json:"model" validate:"omitempty,min=1,max=100"`
	IMEI           *string `json:"imei" validate:"omitempty,max=32"`
	WarrantyMonths *int    `json:"warrantyMonths" validate:"omitempty,gte=0,lte=120"`
}

// UpdateSaleRequest is a partial update; nil fields stay unchanged.
type UpdateSaleRequest struct {
	Date              *string       `json:"date"`
	Product           *ProductPatch `json:"product"`
	Quantity          *int          `json:"quantity" validate:"omitempty,gt=0"`
	UnitPrice         *float64      `json:"unitPrice" validate:"omitempty,gte=0"`
	PaymentMethod     *string       `json:"paymentMethod" validate:"omitempty,oneof=cash card emi upi"`
	CustomerName      *string       `json:"customerName" validate:"omitempty,min=1,max=200"`
	CustomerPhone     *string       `json:"customerPhone" validate:"omitempty,max=20"`
	SalesPerson       *string       `json:"salesPerson" validate:"omitempty,max=200"`
	Commission        *float64      `json:"commission" validate:"omitempty,gte=0"`
	IsReturned        *bool         `json:"isReturned"`
	WarrantyStartDate *string       `json:"warrantyStartDate"`
	Notes             *string       `json:"notes" validate:"omitempty,max=2000"`
}
