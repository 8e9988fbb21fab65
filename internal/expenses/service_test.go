package expenses

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeledger/backoffice/internal/records"
)

type mockRepository struct {
	mu        sync.Mutex
	expenses  map[uuid.UUID]records.Expense
	lastQuery records.ListQuery
	lastPatch records.Patch
}

func newMockRepository() *mockRepository {
	return &mockRepository{expenses: make(map[uuid.UUID]records.Expense)}
}

func (m *mockRepository) List(_ context.Context, q records.ListQuery) (records.Page[records.Expense], error) {
	m.lastQuery = q
	items := make([]records.Expense, 0, len(m.expenses))
	for _, e := range m.expenses {
		items = append(items, e)
	}
	return records.Page[records.Expense]{Items: items}, nil
}

func (m *mockRepository) Get(_ context.Context, id uuid.UUID) (records.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return records.Expense{}, records.ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) Create(_ context.Context, e records.Expense) (records.Expense, error) {
	e.ID = uuid.New()
	m.expenses[e.ID] = e
	return e, nil
}

func (m *mockRepository) Update(_ context.Context, id uuid.UUID, patch records.Patch) (records.Expense, error) {
	return m.apply(id, patch)
}

func (m *mockRepository) Transition(_ context.Context, id uuid.UUID, from records.ApprovalStatus, patch records.Patch) (records.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok {
		return records.Expense{}, records.ErrNotFound
	}
	if e.ApprovalStatus != from {
		return records.Expense{}, records.ErrInvalidTransition
	}
	return m.apply(id, patch)
}

func (m *mockRepository) apply(id uuid.UUID, patch records.Patch) (records.Expense, error) {
	e, ok := m.expenses[id]
	if !ok {
		return records.Expense{}, records.ErrNotFound
	}
	m.lastPatch = patch
	for key, v := range patch {
		switch key {
		case "amount":
			e.Amount = v.(float64)
		case "approvalStatus":
			e.ApprovalStatus = records.ApprovalStatus(v.(string))
		case "approvedBy":
			e.ApprovedBy = v.(string)
		case "subcategory":
			e.Subcategory = v.(string)
		case "fromLocation":
			e.FromLocation = v.(string)
		case "toLocation":
			e.ToLocation = v.(string)
		case "isRecurring":
			e.IsRecurring = v.(bool)
		case "recurringFrequency":
			e.RecurringFrequency = records.Frequency(v.(string))
		}
	}
	m.expenses[id] = e
	return e, nil
}

func (m *mockRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.expenses[id]; !ok {
		return records.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

type mockInvalidator struct{ calls int }

func (m *mockInvalidator) Invalidate(context.Context) error {
	m.calls++
	return nil
}

func newTestService(t *testing.T) (*Service, *mockRepository, *mockInvalidator) {
	t.Helper()
	repo := newMockRepository()
	inv := &mockInvalidator{}
	return NewService(repo, inv, time.UTC, nil), repo, inv
}

func validRequest() CreateExpenseRequest {
	return CreateExpenseRequest{
		Date:          "2024-03-05",
		Category:      "rent",
		Amount:        20000,
		Description:   "March rent",
		PaymentMethod: "online",
	}
}

func createPending(t *testing.T, svc *Service) records.Expense {
	t.Helper()
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	return e
}

func TestCreateStartsPending(t *testing.T) {
	svc, _, inv := newTestService(t)

	e := createPending(t, svc)
	assert.Equal(t, records.ApprovalPending, e.ApprovalStatus)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), e.Date)
	assert.Equal(t, 1, inv.calls)
}

func TestCreateTravelKeepsRoute(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	req.Category = "transport"
	req.Subcategory = "Travel"
	req.FromLocation = "Pune"
	req.ToLocation = "Mumbai"

	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, records.TravelSubcategory, e.Subcategory)
	assert.Equal(t, "Pune", e.FromLocation)
}

func TestCreateRouteOutsideTravelRejected(t *testing.T) {
	svc, repo, _ := newTestService(t)
	req := validRequest()
	req.FromLocation = "Pune"

	_, err := svc.Create(context.Background(), req)
	var fields records.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "fromLocation")
	assert.Empty(t, repo.expenses)
}

func TestCreateRecurringNeedsFrequency(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	req.IsRecurring = true

	_, err := svc.Create(context.Background(), req)
	require.ErrorIs(t, err, records.ErrValidation)

	req.RecurringFrequency = "monthly"
	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, records.FrequencyMonthly, e.RecurringFrequency)
}

func TestCreateDropsFrequencyWhenNotRecurring(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	req.RecurringFrequency = "weekly"

	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Empty(t, e.RecurringFrequency)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	req.Amount = 0
	req.PaymentMethod = "upi"

	_, err := svc.Create(context.Background(), req)
	var fields records.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "amount")
	assert.Contains(t, fields, "paymentMethod")
}

func TestApproveAndRejectOnlyFromPending(t *testing.T) {
	svc, _, inv := newTestService(t)
	e := createPending(t, svc)

	approved, err := svc.Approve(context.Background(), e.ID, DecisionRequest{ApprovedBy: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, records.ApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, "Owner", approved.ApprovedBy)
	assert.Equal(t, 2, inv.calls)

	_, err = svc.Reject(context.Background(), e.ID, DecisionRequest{ApprovedBy: "Owner"})
	assert.ErrorIs(t, err, records.ErrInvalidTransition)

	other := createPending(t, svc)
	rejected, err := svc.Reject(context.Background(), other.ID, DecisionRequest{ApprovedBy: "Owner"})
	require.NoError(t, err)
	assert.Equal(t, records.ApprovalRejected, rejected.ApprovalStatus)
}

func TestDecisionLosesToEarlierDecision(t *testing.T) {
	svc, repo, inv := newTestService(t)
	e := createPending(t, svc)

	// Another reviewer approved it after this caller last read the expense.
	stored := repo.expenses[e.ID]
	stored.ApprovalStatus = records.ApprovalApproved
	stored.ApprovedBy = "Manager"
	repo.expenses[e.ID] = stored

	_, err := svc.Reject(context.Background(), e.ID, DecisionRequest{ApprovedBy: "Owner"})
	require.ErrorIs(t, err, records.ErrInvalidTransition)
	assert.Equal(t, records.ApprovalApproved, repo.expenses[e.ID].ApprovalStatus)
	assert.Equal(t, "Manager", repo.expenses[e.ID].ApprovedBy)
	assert.Equal(t, 1, inv.calls)

	_, err = svc.Approve(context.Background(), uuid.New(), DecisionRequest{ApprovedBy: "Owner"})
	assert.ErrorIs(t, err, records.ErrNotFound)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, time.UTC, nil)
	e := createPending(t, svc)

	const callers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			decide := svc.Approve
			if i%2 == 1 {
				decide = svc.Reject
			}
			_, err := decide(context.Background(), e.ID, DecisionRequest{ApprovedBy: "Owner"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, records.ErrInvalidTransition):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)
	assert.NotEqual(t, records.ApprovalPending, repo.expenses[e.ID].ApprovalStatus)
}

func TestDecisionNeedsApprover(t *testing.T) {
	svc, _, _ := newTestService(t)
	e := createPending(t, svc)

	_, err := svc.Approve(context.Background(), e.ID, DecisionRequest{})
	assert.ErrorIs(t, err, records.ErrValidation)
}

func TestUpdateChecksMergedShape(t *testing.T) {
	svc, _, _ := newTestService(t)
	e := createPending(t, svc)

	to := "Mumbai"
	_, err := svc.Update(context.Background(), e.ID, UpdateExpenseRequest{ToLocation: &to})
	assert.ErrorIs(t, err, records.ErrValidation)

	sub := "travel"
	updated, err := svc.Update(context.Background(), e.ID, UpdateExpenseRequest{Subcategory: &sub, ToLocation: &to})
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.ToLocation)
}

func TestUpdateStoppingRecurrenceClearsFrequency(t *testing.T) {
	svc, repo, _ := newTestService(t)
	req := validRequest()
	req.IsRecurring = true
	req.RecurringFrequency = "monthly"
	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	off := false
	updated, err := svc.Update(context.Background(), e.ID, UpdateExpenseRequest{IsRecurring: &off})
	require.NoError(t, err)
	assert.False(t, updated.IsRecurring)
	assert.Empty(t, updated.RecurringFrequency)
	assert.Equal(t, "", repo.lastPatch["recurringFrequency"])
}

func TestUpdateFrequencyIgnoredWhenNotRecurring(t *testing.T) {
	svc, repo, _ := newTestService(t)
	req := validRequest()
	req.IsRecurring = true
	req.RecurringFrequency = "monthly"
	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)

	off := false
	weekly := "weekly"
	updated, err := svc.Update(context.Background(), e.ID, UpdateExpenseRequest{IsRecurring: &off, RecurringFrequency: &weekly})
	require.NoError(t, err)
	assert.False(t, updated.IsRecurring)
	assert.Empty(t, updated.RecurringFrequency)
	assert.Equal(t, "", repo.lastPatch["recurringFrequency"])
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	e := createPending(t, svc)

	assert.ErrorIs(t, svc.Delete(context.Background(), e.ID, "yes"), records.ErrConfirmationRequired)
	require.NoError(t, svc.Delete(context.Background(), e.ID, e.ID.String()))
	assert.Empty(t, repo.expenses)
	assert.ErrorIs(t, svc.Delete(context.Background(), e.ID, e.ID.String()), records.ErrNotFound)
}
