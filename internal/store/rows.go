package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// SaleRow is the denormalised sales row joined with its product.
type SaleRow struct {
	ID                    uuid.UUID           `db:"id"`
	Date                  time.Time           `db:"date"`
	ProductID             uuid.UUID           `db:"product_id"`
	ProductCategory       pgtype.Text         `db:"product_category"`
	ProductBrand          pgtype.Text         `db:"product_brand"`
	ProductModel          pgtype.Text         `db:"product_model"`
	ProductIMEI           pgtype.Text         `db:"product_imei"`
	ProductWarrantyMonths pgtype.Int4         `db:"product_warranty_months"`
	Quantity              int32               `db:"quantity"`
	UnitPrice             decimal.Decimal     `db:"unit_price"`
	TotalAmount           decimal.Decimal     `db:"total_amount"`
	PaymentMethod         string              `db:"payment_method"`
	CustomerName          pgtype.Text         `db:"customer_name"`
	CustomerPhone         pgtype.Text         `db:"customer_phone"`
	SalesPerson           pgtype.Text         `db:"sales_person"`
	Commission            decimal.NullDecimal `db:"commission"`
	IsReturned            pgtype.Bool         `db:"is_returned"`
	WarrantyStartDate     pgtype.Date         `db:"warranty_start_date"`
	Notes                 pgtype.Text         `db:"notes"`
	CreatedAt             pgtype.Timestamptz  `db:"created_at"`
}

// ProductRow is a row of the products table.
type ProductRow struct {
	ID             uuid.UUID   `db:"id"`
	Category       pgtype.Text `db:"category"`
	Brand          pgtype.Text `db:"brand"`
	Model          pgtype.Text `db:"model"`
	IMEI           pgtype.Text `db:"imei"`
	WarrantyMonths pgtype.Int4 `db:"warranty_months"`
}

// ExpenseRow is a row of the expenses table.
type ExpenseRow struct {
	ID                 uuid.UUID          `db:"id"`
	Date               time.Time          `db:"date"`
	Category           pgtype.Text        `db:"category"`
	Subcategory        pgtype.Text        `db:"subcategory"`
	Amount             decimal.Decimal    `db:"amount"`
	Description        pgtype.Text        `db:"description"`
	Vendor             pgtype.Text        `db:"vendor"`
	PaymentMethod      string             `db:"payment_method"`
	ApprovalStatus     pgtype.Text        `db:"approval_status"`
	ApprovedBy         pgtype.Text        `db:"approved_by"`
	IsRecurring        pgtype.Bool        `db:"is_recurring"`
	RecurringFrequency pgtype.Text        `db:"recurring_frequency"`
	FromLocation       pgtype.Text        `db:"from_location"`
	ToLocation         pgtype.Text        `db:"to_location"`
	CreatedAt          pgtype.Timestamptz `db:"created_at"`
}

// EmployeeRow is a row of the employees table.
type EmployeeRow struct {
	ID               uuid.UUID           `db:"id"`
	Name             string              `db:"name"`
	Position         pgtype.Text         `db:"position"`
	Department       pgtype.Text         `db:"department"`
	Salary           decimal.Decimal     `db:"salary"`
	CommissionRate   decimal.NullDecimal `db:"commission_rate"`
	JoinDate         pgtype.Date         `db:"join_date"`
	IsActive         pgtype.Bool         `db:"is_active"`
	Phone            pgtype.Text         `db:"phone"`
	Email            pgtype.Text         `db:"email"`
	Address          pgtype.Text         `db:"address"`
	EmergencyContact pgtype.Text         `db:"emergency_contact"`
	BankAccount      pgtype.Text         `db:"bank_account"`
	AadharNumber     pgtype.Text         `db:"aadhar_number"`
	PanNumber        pgtype.Text         `db:"pan_number"`
	CreatedAt        pgtype.Timestamptz  `db:"created_at"`
}
