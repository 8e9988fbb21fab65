package reporting

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/storeledger/backoffice/internal/records"
)

// DefaultTopProducts is the ranking length used when none is configured.
const DefaultTopProducts = 5

// DefaultBuildTimeout bounds a shared report build when none is configured.
const DefaultBuildTimeout = 30 * time.Second

// SalesSource lists sales.
type SalesSource interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Sale], error)
}

// ExpenseSource lists expenses.
type ExpenseSource interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Expense], error)
}

// EmployeeSource lists employees.
type EmployeeSource interface {
	List(ctx context.Context, q records.ListQuery) (records.Page[records.Employee], error)
}

// Options configures the report service.
type Options struct {
	TopProducts int
	Location    *time.Location
	Logger      *slog.Logger
	Metrics     *Metrics
	// BuildTimeout bounds one shared build. Builds outlive the caller that
	// started them so concurrent callers of the same key still get a result.
	BuildTimeout time.Duration
}

// Service fetches records and turns them into reports.
type Service struct {
	sales     SalesSource
	expenses  ExpenseSource
	employees EmployeeSource
	cache     *Cache
	group     singleflight.Group
	topN      int
	timeout   time.Duration
	loc       *time.Location
	logger    *slog.Logger
	metrics   *Metrics
	now       func() time.Time
}

// NewService wires the report service.
func NewService(sales SalesSource, expenses ExpenseSource, employees EmployeeSource, cache *Cache, opts Options) *Service {
	if opts.TopProducts <= 0 {
		opts.TopProducts = DefaultTopProducts
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BuildTimeout <= 0 {
		opts.BuildTimeout = DefaultBuildTimeout
	}
	return &Service{
		sales:     sales,
		expenses:  expenses,
		employees: employees,
		cache:     cache,
		topN:      opts.TopProducts,
		timeout:   opts.BuildTimeout,
		loc:       opts.Location,
		logger:    opts.Logger,
		metrics:   opts.Metrics,
		now:       time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Location returns the reporting time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Resolve turns a granularity and selector into a window. An empty selector
// means the period containing now.
func (s *Service) Resolve(granularity, period string) (Granularity, string, Window, error) {
	g, err := ParseGranularity(granularity)
	if err != nil {
		return "", "", Window{}, err
	}
	if period == "" {
		period = s.now().In(s.loc).Format(g.Layout())
	}
	w, err := WindowFor(g, period, s.loc)
	if err != nil {
		return "", "", Window{}, err
	}
	return g, period, w, nil
}

// Report builds the snapshot for the selected period and compares it with
// the preceding one.
func (s *Service) Report(ctx context.Context, granularity, period string) (Report, error) {
	g, period, current, err := s.Resolve(granularity, period)
	if err != nil {
		return Report{}, err
	}
	key, err := s.cache.BuildKey(ctx, reportKey(g, period)...)
	if err != nil {
		return Report{}, fmt.Errorf("reporting: cache key: %w", err)
	}
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var report Report
		err := s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (any, error) {
			return s.buildReport(ctx, g, period, current)
		})
		return report, err
	})
	if err != nil {
		return Report{}, err
	}
	return v.(Report), nil
}

func (s *Service) buildReport(ctx context.Context, g Granularity, period string, current Window) (Report, error) {
	defer s.metrics.observe("report", time.Now())
	previous := PreviousWindow(current, g)
	sales, expenses, err := s.fetch(ctx, Window{Start: previous.Start, End: current.End})
	if err != nil {
		return Report{}, err
	}
	now := BuildSnapshot(sales, expenses, current, s.topN)
	before := BuildSnapshot(sales, expenses, previous, s.topN)
	s.logger.DebugContext(ctx, "report built",
		slog.String("granularity", string(g)),
		slog.String("period", period),
		slog.Int("sales", len(now.Sales)),
		slog.Int("expenses", len(now.Expenses)),
	)
	return Report{
		Granularity: g,
		Period:      period,
		Current:     now,
		Comparison:  Compare(now, before),
	}, nil
}

// Dashboard builds the landing page summary as of now.
func (s *Service) Dashboard(ctx context.Context) (Dashboard, error) {
	now := s.now().In(s.loc)
	key, err := s.cache.BuildKey(ctx, dashboardKey(now)...)
	if err != nil {
		return Dashboard{}, fmt.Errorf("reporting: cache key: %w", err)
	}
	v, err := s.shared(ctx, key, func(ctx context.Context) (any, error) {
		var dashboard Dashboard
		err := s.cache.FetchJSON(ctx, key, &dashboard, func(ctx context.Context) (any, error) {
			return s.buildDashboard(ctx, now)
		})
		return dashboard, err
	})
	if err != nil {
		return Dashboard{}, err
	}
	return v.(Dashboard), nil
}

func (s *Service) buildDashboard(ctx context.Context, now time.Time) (Dashboard, error) {
	defer s.metrics.observe("dashboard", time.Now())
	var (
		sales     []records.Sale
		expenses  []records.Expense
		employees []records.Employee
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, expenses, err = s.fetch(gctx, DashboardRange(now))
		return err
	})
	g.Go(func() error {
		page, err := s.employees.List(gctx, records.ListQuery{
			Filters: map[string]string{"isActive": "true"},
			SortBy:  "name",
			SortDir: records.SortAsc,
			PerPage: -1,
		})
		if err != nil {
			return fmt.Errorf("reporting: list employees: %w", err)
		}
		employees = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(now, sales, expenses, employees, s.topN), nil
}

// shared runs fn once per key across concurrent callers. The build runs
// detached from ctx, bounded by the build timeout; each caller stops waiting
// when its own ctx ends.
func (s *Service) shared(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()
		return fn(buildCtx)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.Val, res.Err
	}
}

func (s *Service) fetch(ctx context.Context, w Window) ([]records.Sale, []records.Expense, error) {
	var (
		sales    []records.Sale
		expenses []records.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		page, err := s.sales.List(gctx, records.All(w.Start, w.End))
		if err != nil {
			return fmt.Errorf("reporting: list sales: %w", err)
		}
		sales = page.Items
		return nil
	})
	g.Go(func() error {
		page, err := s.expenses.List(gctx, records.All(w.Start, w.End))
		if err != nil {
			return fmt.Errorf("reporting: list expenses: %w", err)
		}
		expenses = page.Items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return sales, expenses, nil
}

// Invalidate drops every cached report. Record services call it after each
// write.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.cache.Bump(ctx); err != nil {
		return fmt.Errorf("reporting: invalidate: %w", err)
	}
	return nil
}
