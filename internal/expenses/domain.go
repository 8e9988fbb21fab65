// Package expenses records business expenses and runs their approval
// workflow.
package expenses

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/records"
)

// Repository persists expenses. Implemented by store.ExpenseStore.
type Repository interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Expense], error)
	Get(ctx context.Context, id uuid.UUID) (records.Expense, error)
	Create(ctx context.Context, expense records.Expense) (records.Expense, error)
	Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Expense, error)
	// Transition applies patch only if the expense is still in status from,
	// failing with records.ErrInvalidTransition otherwise.
	Transition(ctx context.Context, id uuid.UUID, from records.ApprovalStatus, patch records.Patch) (records.Expense, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops cached reports after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CreateExpenseRequest is the payload for recording an expense. New
// expenses always start pending.
type CreateExpenseRequest struct {
	Date               string  `json:"date" validate:"required"`
	Category           string  `json:"category" validate:"required,max=100"`
	Subcategory        string  `json:"subcategory" validate:"omitempty,max=100"`
	Amount             float64 `json:"amount" validate:"gt=0"`
	Description        string  `json:"description" validate:"required,max=500"`
	Vendor             string  `json:"vendor" validate:"omitempty,max=200"`
	PaymentMethod      string  `json:"paymentMethod" validate:"required,oneof=cash card cheque online"`
	IsRecurring        bool    `json:"isRecurring"`
	RecurringFrequency string  `json:"recurringFrequency" validate:"omitempty,oneof=daily weekly monthly yearly"`
	FromLocation       string  `json:"fromLocation" validate:"omitempty,max=200"`
	ToLocation         string  `json:"toLocation" validate:"omitempty,max=200"`
}

// UpdateExpenseRequest is a partial update. Approval fields change only
// through Approve and Reject.
type UpdateExpenseRequest struct {
	Date               *string  `json:"date"`
	Category           *string  `json:"category" validate:"omitempty,min=1,max=100"`
	Subcategory        *string  `json:"subcategory" validate:"omitempty,max=100"`
	Amount             *float64 `json:"amount" validate:"omitempty,gt=0"`
	Description        *string  `json:"description" validate:"omitempty,min=1,max=500"`
	Vendor             *string  `json:"vendor" validate:"omitempty,max=200"`
	PaymentMethod      *string  `json:"paymentMethod" validate:"omitempty,oneof=cash card cheque online"`
	IsRecurring        *bool    `json:"isRecurring"`
	RecurringFrequency *string  `json:"recurringFrequency" validate:"omitempty,oneof=daily weekly monthly yearly"`
	FromLocation       *string  `json:"fromLocation" validate:"omitempty,max=200"`
	ToLocation         *string  `json:"toLocation" validate:"omitempty,max=200"`
}

// DecisionRequest carries the approver of an approve or reject action.
type DecisionRequest struct {
	ApprovedBy string `json:"approvedBy" validate:"required,max=200"`
}
