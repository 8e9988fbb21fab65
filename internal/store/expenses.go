package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storeledger/backoffice/internal/records"
)

var expensesCollection = collection[ExpenseRow]{
	table: "expenses",
	alias: "e",
	selectSQL: `SELECT e.id, e.date, e.category, e.subcategory, e.amount, e.description, e.vendor,
       e.payment_method, e.approval_status, e.approved_by, e.is_recurring, e.recurring_frequency,
       e.from_location, e.to_location, e.created_at`,
	fromSQL:     "FROM expenses e",
	dateField:   "date",
	defaultSort: "date",
	fields: map[string]field{
		"date":               {alias: "e", column: "date", kind: kindTime, sortable: true},
		"category":           {alias: "e", column: "category", kind: kindText, sortable: true, filter: true},
		"subcategory":        {alias: "e", column: "subcategory", kind: kindText, sortable: true, filter: true},
		"amount":             {alias: "e", column: "amount", kind: kindMoney, sortable: true},
		"description":        {alias: "e", column: "description", kind: kindText},
		"vendor":             {alias: "e", column: "vendor", kind: kindText, sortable: true, filter: true},
		"paymentMethod":      {alias: "e", column: "payment_method", kind: kindString, sortable: true, filter: true},
		"approvalStatus":     {alias: "e", column: "approval_status", kind: kindText, sortable: true, filter: true},
		"approvedBy":         {alias: "e", column: "approved_by", kind: kindText},
		"isRecurring":        {alias: "e", column: "is_recurring", kind: kindBool, filter: true},
		"recurringFrequency": {alias: "e", column: "recurring_frequency", kind: kindText, filter: true},
		"fromLocation":       {alias: "e", column: "from_location", kind: kindText},
		"toLocation":         {alias: "e", column: "to_location", kind: kindText},
		"createdAt":          {alias: "e", column: "created_at", kind: kindTime, sortable: true, readOnly: true},
	},
}

// ExpenseStore persists expenses.
type ExpenseStore struct {
	pool *pgxpool.Pool
}

// NewExpenseStore constructs an expense store over the pool.
func NewExpenseStore(pool *pgxpool.Pool) *ExpenseStore {
	return &ExpenseStore{pool: pool}
}

// List reads one page of expenses.
func (s *ExpenseStore) List(ctx context.Context, q records.ListQuery) (records.Page[records.Expense], error) {
	q = q.Normalize()
	rows, total, err := expensesCollection.list(ctx, s.pool, q)
	if err != nil {
		return records.Page[records.Expense]{}, err
	}
	items := make([]records.Expense, 0, len(rows))
	for _, row := range rows {
		items = append(items, ExpenseFromRow(row))
	}
	return records.Page[records.Expense]{Items: items, Pagination: records.NewPagination(q.Page, q.PerPage, total)}, nil
}

// Get loads one expense.
func (s *ExpenseStore) Get(ctx context.Context, id uuid.UUID) (records.Expense, error) {
	row, err := expensesCollection.get(ctx, s.pool, id)
	if err != nil {
		return records.Expense{}, err
	}
	return ExpenseFromRow(row), nil
}

// Create inserts an expense.
func (s *ExpenseStore) Create(ctx context.Context, expense records.Expense) (records.Expense, error) {
	if expense.ID == uuid.Nil {
		expense.ID = uuid.New()
	}
	row := ExpenseToRow(expense)
	_, err := s.pool.Exec(ctx, `INSERT INTO expenses (id, date, category, subcategory, amount, description, vendor,
		payment_method, approval_status, approved_by, is_recurring, recurring_frequency, from_location, to_location)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		row.ID, row.Date, row.Category, row.Subcategory, row.Amount, row.Description, row.Vendor,
		row.PaymentMethod, row.ApprovalStatus, row.ApprovedBy, row.IsRecurring, row.RecurringFrequency,
		row.FromLocation, row.ToLocation,
	)
	if err != nil {
		return records.Expense{}, fmt.Errorf("store: insert expense: %w", translate(err))
	}
	return s.Get(ctx, expense.ID)
}

// Update applies a partial update.
func (s *ExpenseStore) Update(ctx context.Context, id uuid.UUID, patch records.Patch) (records.Expense, error) {
	if err := expensesCollection.update(ctx, s.pool, id, patch); err != nil {
		return records.Expense{}, err
	}
	return s.Get(ctx, id)
}

// Transition applies patch only while the expense is still in status from.
// A concurrent decision that got there first yields ErrInvalidTransition.
func (s *ExpenseStore) Transition(ctx context.Context, id uuid.UUID, from records.ApprovalStatus, patch records.Patch) (records.Expense, error) {
	matched, err := expensesCollection.updateIf(ctx, s.pool, id, patch, map[string]string{"approvalStatus": string(from)})
	if err != nil {
		return records.Expense{}, err
	}
	if !matched {
		current, err := s.Get(ctx, id)
		if err != nil {
			return records.Expense{}, err
		}
		return records.Expense{}, fmt.Errorf("%w: expense is already %s", records.ErrInvalidTransition, current.ApprovalStatus)
	}
	return s.Get(ctx, id)
}

// Delete removes an expense.
func (s *ExpenseStore) Delete(ctx context.Context, id uuid.UUID) error {
	return expensesCollection.delete(ctx, s.pool, id)
}
