// Package employees manages staff records used for payroll figures and
// sales commission.
package employees

import (
	"context"

	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/records"
)

// Repository persists employees. Implemented by store.EmployeeStore.
type Repository interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Employee], error)
	Get(ctx context.Context, id uuid.UUID) (records.Employee, error)
	Create(ctx context.Context, employee records.Employee) (records.Employee, error)
	Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Employee, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Invalidator drops cached dashboards after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// CreateEmployeeRequest is the payload for adding a staff member. IsActive
// defaults to true.
type CreateEmployeeRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Position         string  `json:"position" validate:"required,max=100"`
	Department       string  `json:"department" validate:"omitempty,max=100"`
	Salary           float64 `json:"salary" validate:"gte=0"`
	CommissionRate   float64 `json:"commissionRate" validate:"gte=0,lte=100"`
	JoinDate         string  `json:"joinDate" validate:"required"`
	IsActive         *bool   `json:"isActive"`
	Phone            string  `json:"phone" validate:"omitempty,max=20"`
	Email            string  `json:"email" validate:"omitempty,email"`
	Address          string  `json:"address" validate:"omitempty,max=500"`
	EmergencyContact string  `json:"emergencyContact" validate:"omitempty,max=200"`
	BankAccount      string  `json:"bankAccount" validate:"omitempty,max=34"`
	AadharNumber     string  `json:"aadharNumber" validate:"omitempty,len=12,numeric"`
	PanNumber        string  `json:"panNumber" validate:"omitempty,len=10,alphanum"`
}

// UpdateEmployeeRequest is a partial update; nil fields stay unchanged.
type UpdateEmployeeRequest struct {
	Name             *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Position         *string  `json:"position" validate:"omitempty,min=1,max=100"`
	Department       *string  `json:"department" validate:"omitempty,max=100"`
	Salary           *float64 `json:"salary" validate:"omitempty,gte=0"`
	CommissionRate   *float64 `json:"commissionRate" validate:"omitempty,gte=0,lte=100"`
	JoinDate         *string  `json:"joinDate"`
	IsActive         *bool    `json:"isActive"`
	Phone            *string  `json:"phone" validate:"omitempty,max=20"`
	Email            *string  `json:"email" validate:"omitempty,email"`
	Address          *string  `json:"address" validate:"omitempty,max=500"`
	EmergencyContact *string  `json:"emergencyContact" validate:"omitempty,max=200"`
	BankAccount      *string  `json:"bankAccount" validate:"omitempty,max=34"`
	AadharNumber     *string  `json:"aadharNumber" validate:"omitempty,len=12,numeric"`
	PanNumber        *string  `json:"panNumber" validate:"omitempty,len=10,alphanum"`
}
