package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeledger/backoffice/internal/records"
)

var employeesCollection = collection[EmployeeRow]{
	table: "employees",
	alias: "m",
	selectSQL: `SELECT m.id, m.name, m.position, m.department, m.salary, m.commission_rate, m.join_date,
       m.is_active, m.phone, m.email, m.address, m.emergency_contact, m.bank_account,
       m.aadhar_number, m.pan_number, m.created_at`,
	fromSQL:     "FROM employees m",
	defaultSort: "name",
	fields: map[string]field{
		"name":             {alias: "m", column: "name", kind: kindString, sortable: true, filter: true},
		"position":         {alias: "m", column: "position", kind: kindText, sortable: true, filter: true},
		"department":       {alias: "m", column: "department", kind: kindText, sortable: true, filter: true},
		"salary":           {alias: "m", column: "salary", kind: kindMoney, sortable: true},
		"commissionRate":   {alias: "m", column: "commission_rate", kind: kindNullMoney, sortable: true},
		"joinDate":         {alias: "m", column: "join_date", kind: kindDate, sortable: true},
		"isActive":         {alias: "m", column: "is_active", kind: kindBool, filter: true},
		"phone":            {alias: "m", column: "phone", kind: kindText},
		"email":            {alias: "m", column: "email", kind: kindText, filter: true},
		"address":          {alias: "m", column: "address", kind: kindText},
		"emergencyContact": {alias: "m", column: "emergency_contact", kind: kindText},
		"bankAccount":      {alias: "m", column: "bank_account", kind: kindText},
		"aadharNumber":     {alias: "m", column: "aadhar_number", kind: kindText},
		"panNumber":        {alias: "m", column: "pan_number", kind: kindText},
		"createdAt":        {alias: "m", column: "created_at", kind: kindTime, sortable: true, readOnly: true},
	},
}

// EmployeeStore persists employee records.
type EmployeeStore struct {
	pool *pgxpool.Pool
}

// NewEmployeeStore constructs an employee store over the pool.
func NewEmployeeStore(pool *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{pool: pool}
}

// List reads one page of employees. Employees default to name order.
func (s *EmployeeStore) List(ctx context.Context, q records.ListQuery) (records.Page[records.Employee], error) {
	if q.SortBy == "" || q.SortBy == "date" {
		q.SortBy = "name"
		if q.SortDir == "" {
			q.SortDir = records.SortAsc
		}
	}
	q = q.Normalize()
	rows, total, err := employeesCollection.list(ctx, s.pool, q)
	if err != nil {
		return records.Page[records.Employee]{}, err
	}
	items := make([]records.Employee, 0, len(rows))
	for _, row := range rows {
		items = append(items, EmployeeFromRow(row))
	}
	return records.Page[records.Employee]{Items: items, Pagination: records.NewPagination(q.Page, q.PerPage, total)}, nil
}

// Get loads one employee.
func (s *EmployeeStore) Get(ctx context.Context, id uuid.UUID) (records.Employee, error) {
	row, err := employeesCollection.get(ctx, s.pool, id)
	if err != nil {
		return records.Employee{}, err
	}
	return EmployeeFromRow(row), nil
}

// Create inserts an employee.
func (s *EmployeeStore) Create(ctx context.Context, employee records.Employee) (records.Employee, error) {
	if employee.ID == uuid.Nil {
		employee.ID = uuid.New()
	}
	row := EmployeeToRow(employee)
	_, err := s.pool.Exec(ctx, `INSERT INTO employees (id, name, position, department, salary, commission_rate,
		join_date, is_active, phone, email, address, emergency_contact, bank_account, aadhar_number, pan_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		row.ID, row.Name, row.Position, row.Department, row.Salary, row.CommissionRate,
		row.JoinDate, row.IsActive, row.Phone, row.Email, row.Address, row.EmergencyContact,
		row.BankAccount, row.AadharNumber, row.PanNumber,
	)
	if err != nil {
		return records.Employee{}, fmt.Errorf("store: insert employee: %w", translate(err))
	}
	return s.Get(ctx, employee.ID)
}

// Update applies a partial update.
func (s *EmployeeStore) Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Employee, error) {
	if err := employeesCollection.update(ctx, s.pool, id, patch); err != nil {
		return records.Employee{}, err
	}
	return s.Get(ctx, id)
}

// Delete removes an employee.
func (s *EmployeeStore) Delete(ctx context.Context, id uuid.UUID) error {
	return employeesCollection.delete(ctx, s.pool, id)
}
