package employees

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storeledger/backoffice/internal/platform/validation"
	"github.com/storeledger/backoffice/internal/records"
)

// Service provides business logic for employees.
type Service struct {
	repo      Repository
	reports   Invalidator
	validator *validation.Validator
	loc       *time.Location
	logger    *slog.Logger
}

// NewService constructs an employee service. reports may be nil.
func NewService(repo Repository, reports Invalidator, loc *time.Location, logger *slog.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		reports:   reports,
		validator: validation.New(),
		loc:       loc,
		logger:    logger,
	}
}

// List returns one page of employees.
func (s *Service) List(ctx context.Context, q records.ListQuery) (records.Page[records.Employee], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return records.Page[records.Employee]{}, fmt.Errorf("list employees: %w", err)
	}
	return page, nil
}

// Get returns a single employee.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (records.Employee, error) {
	employee, err := s.repo.Get(ctx, id)
	if err != nil {
		return records.Employee{}, fmt.Errorf("get employee: %w", err)
	}
	return employee, nil
}

// Create adds a staff member.
func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (records.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Employee{}, err
	}
	joined, err := validation.ParseTime("joinDate", req.JoinDate, s.loc)
	if err != nil {
		return records.Employee{}, err
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	employee := records.Employee{
		Name:             strings.TrimSpace(req.Name),
		Position:         strings.TrimSpace(req.Position),
		Department:       strings.TrimSpace(req.Department),
		Salary:           req.Salary,
		CommissionRate:   req.CommissionRate,
		JoinDate:         joined,
		IsActive:         active,
		Phone:            strings.TrimSpace(req.Phone),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Address:          strings.TrimSpace(req.Address),
		EmergencyContact: strings.TrimSpace(req.EmergencyContact),
		BankAccount:      strings.TrimSpace(req.BankAccount),
		AadharNumber:     req.AadharNumber,
		PanNumber:        strings.ToUpper(req.PanNumber),
	}

	created, err := s.repo.Create(ctx, employee)
	if err != nil {
		return records.Employee{}, fmt.Errorf("create employee: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial update.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateEmployeeRequest) (records.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Employee{}, err
	}
	patch := records.Patch{}
	if req.JoinDate != nil {
		joined, err := validation.ParseTime("joinDate", *req.JoinDate, s.loc)
		if err != nil {
			return records.Employee{}, err
		}
		patch["joinDate"] = joined
	}
	setText := func(key string, v *string, norm func(string) string) {
		if v != nil {
			patch[key] = norm(strings.TrimSpace(*v))
		}
	}
	keep := func(v string) string { return v }
	setText("name", req.Name, keep)
	setText("position", req.Position, keep)
	setText("department", req.Department, keep)
	setText("phone", req.Phone, keep)
	setText("email", req.Email, strings.ToLower)
	setText("address", req.Address, keep)
	setText("emergencyContact", req.EmergencyContact, keep)
	setText("bankAccount", req.BankAccount, keep)
	setText("aadharNumber", req.AadharNumber, keep)
	setText("panNumber", req.PanNumber, strings.ToUpper)
	if req.Salary != nil {
		patch["salary"] = *req.Salary
	}
	if req.CommissionRate != nil {
		patch["commissionRate"] = *req.CommissionRate
	}
	if req.IsActive != nil {
		patch["isActive"] = *req.IsActive
	}
	if len(patch) == 0 {
		return s.Get(ctx, id)
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return records.Employee{}, fmt.Errorf("update employee: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes an employee. confirm must echo the employee id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirm string) error {
	if strings.TrimSpace(confirm) != id.String() {
		return fmt.Errorf("%w: repeat the employee id to delete it", records.ErrConfirmationRequired)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.reports == nil {
		return
	}
	if err := s.reports.Invalidate(ctx); err != nil {
		s.logger.Warn("report cache invalidation failed", slog.Any("error", err))
	}
}
