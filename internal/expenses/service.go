package expenses

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

// Service provides business logic for expenses.
type Service struct {
	repo      Repository
	reports   Invalidator
	validator *validation.Validator
	loc       *time.Location
	logger    *slog.Logger
}

// NewService constructs an expense service. reports may be nil.
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

// List returns one page of expenses.
func (s *Service) List(ctx context.Context, q records.ListQuery) (records.Page[records.Expense], error) {
	page, err := s.repo.List(ctx, q)
	if err != nil {
		return records.Page[records.Expense]{}, fmt.Errorf("list expenses: %w", err)
	}
	return page, nil
}

// Get returns a single expense.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (records.Expense, error) {
	expense, err := s.repo.Get(ctx, id)
	if err != nil {
		return records.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return expense, nil
}

// Create records a pending expense.
func (s *Service) Create(ctx context.Context, req CreateExpenseRequest) (records.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Expense{}, err
	}
	date, err := validation.ParseTime("date", req.Date, s.loc)
	if err != nil {
		return records.Expense{}, err
	}
	expense := records.Expense{
		Date:               date,
		Category:           strings.TrimSpace(req.Category),
		Subcategory:        strings.ToLower(strings.TrimSpace(req.Subcategory)),
		Amount:             req.Amount,
		Description:        strings.TrimSpace(req.Description),
		Vendor:             strings.TrimSpace(req.Vendor),
		PaymentMethod:      records.ExpensePaymentMethod(req.PaymentMethod),
		ApprovalStatus:     records.ApprovalPending,
		IsRecurring:        req.IsRecurring,
		RecurringFrequency: records.Frequency(req.RecurringFrequency),
		FromLocation:       strings.TrimSpace(req.FromLocation),
		ToLocation:         strings.TrimSpace(req.ToLocation),
	}
	if err := checkShape(expense); err != nil {
		return records.Expense{}, err
	}
	if !expense.IsRecurring {
		expense.RecurringFrequency = ""
	}

	created, err := s.repo.Create(ctx, expense)
	if err != nil {
		return records.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	s.invalidate(ctx)
	return created, nil
}

// Update applies a partial update. The merged record must still satisfy
// the travel and recurrence rules.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (records.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Expense{}, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return records.Expense{}, fmt.Errorf("get expense: %w", err)
	}

	patch := records.Patch{}
	merged := current
	if req.Date != nil {
		date, err := validation.ParseTime("date", *req.Date, s.loc)
		if err != nil {
			return records.Expense{}, err
		}
		patch["date"] = date
	}
	if req.Category != nil {
		patch["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Subcategory != nil {
		merged.Subcategory = strings.ToLower(strings.TrimSpace(*req.Subcategory))
		patch["subcategory"] = merged.Subcategory
	}
	if req.Amount != nil {
		patch["amount"] = *req.Amount
	}
	if req.Description != nil {
		patch["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Vendor != nil {
		patch["vendor"] = strings.TrimSpace(*req.Vendor)
	}
	if req.PaymentMethod != nil {
		patch["paymentMethod"] = *req.PaymentMethod
	}
	if req.IsRecurring != nil {
		merged.IsRecurring = *req.IsRecurring
		patch["isRecurring"] = merged.IsRecurring
	}
	if req.RecurringFrequency != nil {
		merged.RecurringFrequency = records.Frequency(*req.RecurringFrequency)
		patch["recurringFrequency"] = *req.RecurringFrequency
	}
	// A stored frequency only means something on a recurring expense.
	if !merged.IsRecurring && (req.IsRecurring != nil || req.RecurringFrequency != nil) {
		merged.RecurringFrequency = ""
		patch["recurringFrequency"] = ""
	}
	if req.FromLocation != nil {
		merged.FromLocation = strings.TrimSpace(*req.FromLocation)
		patch["fromLocation"] = merged.FromLocation
	}
	if req.ToLocation != nil {
		merged.ToLocation = strings.TrimSpace(*req.ToLocation)
		patch["toLocation"] = merged.ToLocation
	}
	if err := checkShape(merged); err != nil {
		return records.Expense{}, err
	}
	if len(patch) == 0 {
		return current, nil
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return records.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.invalidate(ctx)
	return updated, nil
}

// Approve marks a pending expense approved.
func (s *Service) Approve(ctx context.Context, id uuid.UUID, req DecisionRequest) (records.Expense, error) {
	return s.decide(ctx, id, req, records.ApprovalApproved)
}

// Reject marks a pending expense rejected.
func (s *Service) Reject(ctx context.Context, id uuid.UUID, req DecisionRequest) (records.Expense, error) {
	return s.decide(ctx, id, req, records.ApprovalRejected)
}

func (s *Service) decide(ctx context.Context, id uuid.UUID, req DecisionRequest, status records.ApprovalStatus) (records.Expense, error) {
	if err := s.validator.Struct(req); err != nil {
		return records.Expense{}, err
	}
	updated, err := s.repo.Transition(ctx, id, records.ApprovalPending, records.Patch{
		"approvalStatus": string(status),
		"approvedBy":     strings.TrimSpace(req.ApprovedBy),
	})
	if err != nil {
		return records.Expense{}, fmt.Errorf("%s expense: %w", status, err)
	}
	s.logger.Info("expense decided",
		slog.String("expense_id", id.String()),
		slog.String("status", string(status)),
		slog.String("approved_by", updated.ApprovedBy),
	)
	s.invalidate(ctx)
	return updated, nil
}

// Delete removes an expense. confirm must echo the expense id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirm string) error {
	if strings.TrimSpace(confirm) != id.String() {
		return fmt.Errorf("%w: repeat the expense id to delete it", records.ErrConfirmationRequired)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate(ctx)
	return nil
}

// checkShape enforces the cross-field rules: route endpoints belong to
// travel expenses only and recurring expenses need a frequency.
func checkShape(e records.Expense) error {
	fields := records.FieldErrors{}
	if e.Subcategory != records.TravelSubcategory {
		if e.FromLocation != "" {
			fields["fromLocation"] = "is only allowed for travel expenses"
		}
		if e.ToLocation != "" {
			fields["toLocation"] = "is only allowed for travel expenses"
		}
	}
	if e.IsRecurring && e.RecurringFrequency == "" {
		fields["recurringFrequency"] = "is required"
	}
	if len(fields) > 0 {
		return fields
	}
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
