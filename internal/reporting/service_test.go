package reporting

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeledger/backoffice/internal/records"
)

type fakeSales struct {
	mu      sync.Mutex
	items   []records.Sale
	err     error
	calls   int
	queries []records.ListQuery
}

func (f *fakeSales) List(_ context.Context, q records.ListQuery) (records.Page[records.Sale], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, q)
	if f.err != nil {
		return records.Page[records.Sale]{}, f.err
	}
	w := Window{Start: q.From, End: q.To}
	items := FilterByWindow(f.items, w)
	return records.Page[records.Sale]{Items: items, Pagination: records.NewPagination(1, -1, len(items))}, nil
}

type fakeExpenses struct {
	mu    sync.Mutex
	items []records.Expense
	calls int
}

func (f *fakeExpenses) List(_ context.Context, q records.ListQuery) (records.Page[records.Expense], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	items := FilterByWindow(f.items, Window{Start: q.From, End: q.To})
	return records.Page[records.Expense]{Items: items}, nil
}

type fakeEmployees struct {
	items []records.Employee
	query records.ListQuery
}

func (f *fakeEmployees) List(_ context.Context, q records.ListQuery) (records.Page[records.Employee], error) {
	f.query = q
	return records.Page[records.Employee]{Items: f.items}, nil
}

func fixtures() (*fakeSales, *fakeExpenses, *fakeEmployees) {
	sales := &fakeSales{items: []records.Sale{
		{TotalAmount: 1000, Date: date(2024, 3, 15), Product: records.Product{Brand: "Acme", Model: "X1"}, PaymentMethod: records.PaymentCard},
		{TotalAmount: 500, Date: date(2024, 3, 20), Product: records.Product{Brand: "Acme", Model: "X1"}, PaymentMethod: records.PaymentCash},
		{TotalAmount: 750, Date: date(2024, 2, 29), Product: records.Product{Brand: "Zen", Model: "Z"}, PaymentMethod: records.PaymentUPI},
	}}
	expenses := &fakeExpenses{items: []records.Expense{
		{Amount: 600, Category: "rent", Date: date(2024, 3, 1)},
		{Amount: 300, Category: "rent", Date: date(2024, 2, 1)},
	}}
	employees := &fakeEmployees{items: []records.Employee{{Name: "Ravi", Salary: 1000, IsActive: true}}}
	return sales, expenses, employees
}

func newTestService(t *testing.T, sales SalesSource, expenses ExpenseSource, employees EmployeeSource) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	svc := NewService(sales, expenses, employees, NewCache(client, time.Minute), Options{TopProducts: 3})
	svc.WithNow(func() time.Time { return time.Date(2024, 3, 21, 10, 0, 0, 0, time.UTC) })
	return svc, mr
}

func TestServiceReportComparesWithPreviousMonth(t *testing.T) {
	sales, expenses, employees := fixtures()
	svc, _ := newTestService(t, sales, expenses, employees)

	report, err := svc.Report(context.Background(), "monthly", "2024-03")
	require.NoError(t, err)

	assert.Equal(t, Monthly, report.Granularity)
	assert.Equal(t, 1500.0, report.Current.Revenue)
	assert.Equal(t, 600.0, report.Current.TotalExpenses)
	assert.Equal(t, 900.0, report.Current.Profit)
	assert.Equal(t, 60.0, report.Current.ProfitMargin)
	assert.Equal(t, 100.0, report.Comparison.RevenueChange)
	assert.Equal(t, 100.0, report.Comparison.ExpenseChange)
	assert.Equal(t, 29, report.Comparison.Previous.End.Day())

	require.Len(t, sales.queries, 1)
	assert.Equal(t, date(2024, 2, 1), sales.queries[0].From)
	assert.False(t, sales.queries[0].Paginated())
}

func TestServiceReportIsCachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	sales, expenses, employees := fixtures()
	svc, _ := newTestService(t, sales, expenses, employees)

	_, err := svc.Report(ctx, "monthly", "2024-03")
	require.NoError(t, err)
	_, err = svc.Report(ctx, "month", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 1, sales.calls)

	require.NoError(t, svc.Invalidate(ctx))
	sales.items = append(sales.items, records.Sale{TotalAmount: 100, Date: date(2024, 3, 21)})

	report, err := svc.Report(ctx, "monthly", "2024-03")
	require.NoError(t, err)
	assert.Equal(t, 2, sales.calls)
	assert.Equal(t, 1600.0, report.Current.Revenue)
}

func TestServiceReportDefaultsToCurrentPeriod(t *testing.T) {
	sales, expenses, employees := fixtures()
	svc, _ := newTestService(t, sales, expenses, employees)

	report, err := svc.Report(context.Background(), "yearly", "")
	require.NoError(t, err)

	assert.Equal(t, "2024", report.Period)
	assert.Equal(t, 2250.0, report.Current.Revenue)
	assert.Equal(t, 0.0, report.Comparison.RevenueChange)
}

func TestServiceReportRejectsBadSelector(t *testing.T) {
	sales, expenses, employees := fixtures()
	svc, _ := newTestService(t, sales, expenses, employees)

	_, err := svc.Report(context.Background(), "daily", "2024-03")
	require.ErrorIs(t, err, records.ErrValidation)
	_, err = svc.Report(context.Background(), "hourly", "")
	require.ErrorIs(t, err, records.ErrValidation)
	assert.Zero(t, sales.calls)
}

func TestServiceReportSurfacesStoreErrors(t *testing.T) {
	sales, expenses, employees := fixtures()
	sales.err = errors.New("connection reset")
	svc, _ := newTestService(t, sales, expenses, employees)

	_, err := svc.Report(context.Background(), "monthly", "2024-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestServiceDashboard(t *testing.T) {
	sales, expenses, employees := fixtures()
	svc, _ := newTestService(t, sales, expenses, employees)

	d, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1500.0, d.Month.Revenue)
	assert.Equal(t, 0, d.Today.SalesCount)
	assert.Equal(t, 1, d.Staff.Active)
	assert.Equal(t, "true", employees.query.Filters["isActive"])
}

func TestServiceWithoutRedis(t *testing.T) {
	sales, expenses, employees := fixtures()
	svc := NewService(sales, expenses, employees, nil, Options{})
	svc.WithNow(func() time.Time { return date(2024, 3, 21) })

	for i := 0; i < 2; i++ {
		_, err := svc.Report(context.Background(), "monthly", "2024-03")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, sales.calls)
	assert.NoError(t, svc.Invalidate(context.Background()))
}

// blockingSales holds every List call until release is closed or the call's
// context ends.
type blockingSales struct {
	fakeSales
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingSales) List(ctx context.Context, q records.ListQuery) (records.Page[records.Sale], error) {
	b.once.Do(func() { close(b.started) })
	select {
	case <-ctx.Done():
		return records.Page[records.Sale]{}, ctx.Err()
	case <-b.release:
	}
	return b.fakeSales.List(ctx, q)
}

func TestServiceReportSurvivesCancelledPeer(t *testing.T) {
	base, expenses, employees := fixtures()
	sales := &blockingSales{
		fakeSales: fakeSales{items: base.items},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewService(sales, expenses, employees, nil, Options{BuildTimeout: 5 * time.Second})
	svc.WithNow(func() time.Time { return date(2024, 3, 21) })

	type result struct {
		report Report
		err    error
	}
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()
	first := make(chan result, 1)
	go func() {
		r, err := svc.Report(firstCtx, "monthly", "2024-03")
		first <- result{r, err}
	}()
	<-sales.started

	second := make(chan result, 1)
	go func() {
		r, err := svc.Report(context.Background(), "monthly", "2024-03")
		second <- result{r, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	got := <-first
	require.ErrorIs(t, got.err, context.Canceled)

	close(sales.release)
	got = <-second
	require.NoError(t, got.err)
	assert.Equal(t, 1500.0, got.report.Current.Revenue)
	assert.Equal(t, 1, sales.calls)
}

func TestServiceSharedBuildHonoursTimeout(t *testing.T) {
	base, expenses, employees := fixtures()
	sales := &blockingSales{
		fakeSales: fakeSales{items: base.items},
		started:   make(chan struct{}),
		release:   make(chan struct{}),
	}
	svc := NewService(sales, expenses, employees, nil, Options{BuildTimeout: 20 * time.Millisecond})
	svc.WithNow(func() time.Time { return date(2024, 3, 21) })

	_, err := svc.Report(context.Background(), "monthly", "2024-03")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}
