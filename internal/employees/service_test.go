package employees

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeledger/backoffice/internal/records"
)

type mockRepository struct {
	employees map[uuid.UUID]records.Employee
	lastQuery records.ListQuery
	lastPatch records.Patch
	createErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{employees: make(map[uuid.UUID]records.Employee)}
}

func (m *mockRepository) List(_ context.Context, q records.ListQuery) (records.Page[records.Employee], error) {
	m.lastQuery = q
	items := make([]records.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		items = append(items, e)
	}
	return records.Page[records.Employee]{Items: items}, nil
}

func (m *mockRepository) Get(_ context.Context, id uuid.UUID) (records.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return records.Employee{}, records.ErrNotFound
	}
	return e, nil
}

func (m *mockRepository) Create(_ context.Context, e records.Employee) (records.Employee, error) {
	if m.createErr != nil {
		return records.Employee{}, m.createErr
	}
	e.ID = uuid.New()
	m.employees[e.ID] = e
	return e, nil
}

func (m *mockRepository) Update(_ context.Context, id uuid.UUID, patch records.Patch) (records.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return records.Employee{}, records.ErrNotFound
	}
	m.lastPatch = patch
	for key, v := range patch {
		switch key {
		case "isActive":
			e.IsActive = v.(bool)
		case "salary":
			e.Salary = v.(float64)
		case "panNumber":
			e.PanNumber = v.(string)
		}
	}
	m.employees[id] = e
	return e, nil
}

func (m *mockRepository) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.employees[id]; !ok {
		return records.ErrNotFound
	}
	delete(m.employees, id)
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

func validRequest() CreateEmployeeRequest {
	return CreateEmployeeRequest{
		Name:           "Ravi Kumar",
		Position:       "Sales Associate",
		Salary:         18000,
		CommissionRate: 2.5,
		JoinDate:       "2023-06-01",
		Email:          "Ravi@Example.com",
		AadharNumber:   "123412341234",
		PanNumber:      "abcde1234f",
	}
}

func TestCreateDefaultsActive(t *testing.T) {
	svc, _, inv := newTestService(t)

	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)
	assert.True(t, e.IsActive)
	assert.Equal(t, "ravi@example.com", e.Email)
	assert.Equal(t, "ABCDE1234F", e.PanNumber)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), e.JoinDate)
	assert.Equal(t, 1, inv.calls)
}

func TestCreateExplicitInactive(t *testing.T) {
	svc, _, _ := newTestService(t)
	req := validRequest()
	inactive := false
	req.IsActive = &inactive

	e, err := svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, e.IsActive)
}

func TestCreateValidation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	req := validRequest()
	req.Email = "not-an-email"
	req.CommissionRate = 120
	req.AadharNumber = "12ab"
	req.Name = ""

	_, err := svc.Create(context.Background(), req)
	var fields records.FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "commissionRate")
	assert.Contains(t, fields, "aadharNumber")
	assert.Contains(t, fields, "name")
	assert.Empty(t, repo.employees)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.createErr = records.ErrDuplicate

	_, err := svc.Create(context.Background(), validRequest())
	assert.ErrorIs(t, err, records.ErrDuplicate)
}

func TestUpdateDeactivates(t *testing.T) {
	svc, repo, inv := newTestService(t)
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	off := false
	pan := "zzzzz9999z"
	updated, err := svc.Update(context.Background(), e.ID, UpdateEmployeeRequest{IsActive: &off, PanNumber: &pan})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "ZZZZZ9999Z", updated.PanNumber)
	assert.Len(t, repo.lastPatch, 2)
	assert.Equal(t, 2, inv.calls)
}

func TestUpdateEmptyPatchReturnsCurrent(t *testing.T) {
	svc, _, inv := newTestService(t)
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), e.ID, UpdateEmployeeRequest{})
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, 1, inv.calls)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	svc, repo, _ := newTestService(t)
	e, err := svc.Create(context.Background(), validRequest())
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(context.Background(), e.ID, ""), records.ErrConfirmationRequired)
	require.NoError(t, svc.Delete(context.Background(), e.ID, e.ID.String()))
	assert.Empty(t, repo.employees)
}
