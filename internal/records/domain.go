// Package records holds the domain shapes shared by the record services, the
// store and the reporting engine. Backend row shapes never appear here.
package records

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWarrantyMonths applies when a product carries no warranty length.
const DefaultWarrantyMonths = 12

// PaymentMethod enumerates how a sale was settled.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentCard PaymentMethod = "card"
	PaymentEMI  PaymentMethod = "emi"
	PaymentUPI  PaymentMethod = "upi"
)

// ExpensePaymentMethod enumerates how an expense was paid.
type ExpensePaymentMethod string

const (
	ExpensePaymentCash   ExpensePaymentMethod = "cash"
	ExpensePaymentCard   ExpensePaymentMethod = "card"
	ExpensePaymentCheque ExpensePaymentMethod = "cheque"
	ExpensePaymentOnline ExpensePaymentMethod = "online"
)

// ApprovalStatus tracks the expense approval workflow.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Frequency describes how often a recurring expense repeats.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// TravelSubcategory is the only subcategory that uses the route endpoints.
const TravelSubcategory = "travel"

// ExpenseCategories is the advisory category list offered to users. It is
// not enforced: expenses may carry any category string.
var ExpenseCategories = []string{
	"rent",
	"utilities",
	"salaries",
	"inventory",
	"marketing",
	"maintenance",
	"transport",
	"office supplies",
	"taxes",
	"miscellaneous",
}

// Product describes the item sold in a sale.
type Product struct {
	ID             uuid.UUID `json:"id"`
	Category       string    `json:"category"`
	Brand          string    `json:"brand"`
	Model          string    `json:"model"`
	IMEI           string    `json:"imei"`
	WarrantyMonths int       `json:"warrantyMonths"`
}

// Key groups products for ranking purposes.
func (p Product) Key() string {
	return p.Brand + " " + p.Model
}

// Sale is a single sale record.
type Sale struct {
	ID                uuid.UUID     `json:"id"`
	Date              time.Time     `json:"date"`
	Product           Product       `json:"product"`
	Quantity          int           `json:"quantity"`
	UnitPrice         float64       `json:"unitPrice"`
	TotalAmount       float64       `json:"totalAmount"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`
	CustomerName      string        `json:"customerName"`
	CustomerPhone     string        `json:"customerPhone"`
	SalesPerson       string        `json:"salesPerson"`
	Commission        float64       `json:"commission"`
	IsReturned        bool          `json:"isReturned"`
	WarrantyStartDate time.Time     `json:"warrantyStartDate"`
	Notes             string        `json:"notes"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// OccurredAt implements the dated contract used by window filtering.
func (s Sale) OccurredAt() time.Time { return s.Date }

// Expense is a single expense record.
type Expense struct {
	ID                 uuid.UUID            `json:"id"`
	Date               time.Time            `json:"date"`
	Category           string               `json:"category"`
	Subcategory        string               `json:"subcategory"`
	Amount             float64              `json:"amount"`
	Description        string               `json:"description"`
	Vendor             string               `json:"vendor"`
	PaymentMethod      ExpensePaymentMethod `json:"paymentMethod"`
	ApprovalStatus     ApprovalStatus       `json:"approvalStatus"`
	ApprovedBy         string               `json:"approvedBy"`
	IsRecurring        bool                 `json:"isRecurring"`
	RecurringFrequency Frequency            `json:"recurringFrequency"`
	FromLocation       string               `json:"fromLocation"`
	ToLocation         string               `json:"toLocation"`
	CreatedAt          time.Time            `json:"createdAt"`
}

// OccurredAt implements the dated contract used by window filtering.
func (e Expense) OccurredAt() time.Time { return e.Date }

// Employee is a staff record.
type Employee struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Position         string    `json:"position"`
	Department       string    `json:"department"`
	Salary           float64   `json:"salary"`
	CommissionRate   float64   `json:"commissionRate"`
	JoinDate         time.Time `json:"joinDate"`
	IsActive         bool      `json:"isActive"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Address          string    `json:"address"`
	EmergencyContact string    `json:"emergencyContact"`
	BankAccount      string    `json:"bankAccount"`
	AadharNumber     string    `json:"aadharNumber"`
	PanNumber        string    `json:"panNumber"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Valid reports whether the payment method is one of the known values.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentEMI, PaymentUPI:
		return true
	}
	return false
}

// Valid reports whether the expense payment method is known.
func (m ExpensePaymentMethod) Valid() bool {
	switch m {
	case ExpensePaymentCash, ExpensePaymentCard, ExpensePaymentCheque, ExpensePaymentOnline:
		return true
	}
	return false
}
