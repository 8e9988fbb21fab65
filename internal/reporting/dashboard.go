package reporting

import (
	"sort"
	"time"

	"github.com/storeledger/backoffice/internal/records"
)

// RecentSalesLimit caps the recent sales list on the dashboard.
const RecentSalesLimit = 5

// DayFigures summarises one day of trading.
type DayFigures struct {
	Revenue    float64 `json:"revenue"`
	SalesCount int     `json:"salesCount"`
}

// MonthFigures summarises the month to date.
type MonthFigures struct {
	Window           Window  `json:"window"`
	Revenue          float64 `json:"revenue"`
	Expenses         float64 `json:"expenses"`
	Profit           float64 `json:"profit"`
	ProfitMargin     float64 `json:"profitMargin"`
	Commission       float64 `json:"commission"`
	ReturnedSales    int     `json:"returnedSales"`
	PendingApprovals int     `json:"pendingApprovals"`
}

// Staff summarises the active workforce.
type Staff struct {
	Active         int     `json:"active"`
	MonthlyPayroll float64 `json:"monthlyPayroll"`
}

// Dashboard is the landing page summary.
type Dashboard struct {
	AsOf        time.Time      `json:"asOf"`
	Today       DayFigures     `json:"today"`
	Month       MonthFigures   `json:"month"`
	Change      Comparison     `json:"change"`
	Staff       Staff          `json:"staff"`
	TopProducts []ProductSales `json:"topProducts"`
	RecentSales []records.Sale `json:"recentSales"`
}

// DashboardRange is the span of records BuildDashboard needs: the previous
// month through the end of the current month.
func DashboardRange(now time.Time) Window {
	month := WindowAt(Monthly, now)
	return Window{Start: PreviousWindow(month, Monthly).Start, End: month.End}
}

// BuildDashboard derives the dashboard as of now. sales and expenses should
// cover DashboardRange(now); records outside it are ignored.
func BuildDashboard(now time.Time, sales []records.Sale, expenses []records.Expense, employees []records.Employee, topN int) Dashboard {
	today := FilterByWindow(sales, WindowAt(Daily, now))
	monthWindow := WindowAt(Monthly, now)
	current := BuildSnapshot(sales, expenses, monthWindow, topN)
	previous := BuildSnapshot(sales, expenses, PreviousWindow(monthWindow, Monthly), 0)

	month := MonthFigures{
		Window:       monthWindow,
		Revenue:      current.Revenue,
		Expenses:     current.TotalExpenses,
		Profit:       current.Profit,
		ProfitMargin: current.ProfitMargin,
	}
	for _, sale := range current.Sales {
		month.Commission += sale.Commission
		if sale.IsReturned {
			month.ReturnedSales++
		}
	}
	for _, expense := range current.Expenses {
		if expense.ApprovalStatus == records.ApprovalPending {
			month.PendingApprovals++
		}
	}

	var staff Staff
	for _, employee := range employees {
		if !employee.IsActive {
			continue
		}
		staff.Active++
		staff.MonthlyPayroll += employee.Salary
	}

	return Dashboard{
		AsOf:        now,
		Today:       DayFigures{Revenue: SumRevenue(today), SalesCount: len(today)},
		Month:       month,
		Change:      Compare(current, previous),
		Staff:       staff,
		TopProducts: current.TopProducts,
		RecentSales: recentSales(sales, RecentSalesLimit),
	}
}

func recentSales(sales []records.Sale, limit int) []records.Sale {
	out := make([]records.Sale, len(sales))
	copy(out, sales)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
