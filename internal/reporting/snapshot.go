package reporting

import "github.com/storeledger/backoffice/internal/records"

// Snapshot is the result of one aggregation run over a window.
type Snapshot struct {
	Window               Window               `json:"window"`
	Revenue              float64              `json:"revenue"`
	TotalExpenses        float64              `json:"totalExpenses"`
	Profit               float64              `json:"profit"`
	ProfitMargin         float64              `json:"profitMargin"`
	Sales                []records.Sale       `json:"sales"`
	Expenses             []records.Expense    `json:"expenses"`
	TopProducts          []ProductSales       `json:"topProducts"`
	ExpensesByCategory   []CategoryExpense    `json:"expensesByCategory"`
	SalesByPaymentMethod []PaymentMethodSales `json:"salesByPaymentMethod"`
}

// BuildSnapshot filters both collections to w and derives every aggregate.
func BuildSnapshot(sales []records.Sale, expenses []records.Expense, w Window, topN int) Snapshot {
	inSales := FilterByWindow(sales, w)
	inExpenses := FilterByWindow(expenses, w)

	revenue := SumRevenue(inSales)
	spent := SumExpenses(inExpenses)
	profit := ComputeProfit(revenue, spent)

	return Snapshot{
		Window:               w,
		Revenue:              revenue,
		TotalExpenses:        spent,
		Profit:               profit,
		ProfitMargin:         ComputeMargin(profit, revenue),
		Sales:                inSales,
		Expenses:             inExpenses,
		TopProducts:          TopProducts(inSales, topN),
		ExpensesByCategory:   ExpensesByCategory(inExpenses),
		SalesByPaymentMethod: SalesByPaymentMethod(inSales),
	}
}

// Comparison holds the period-over-period change of the headline figures.
type Comparison struct {
	Previous      Window  `json:"previous"`
	RevenueChange float64 `json:"revenueChange"`
	ExpenseChange float64 `json:"expenseChange"`
	ProfitChange  float64 `json:"profitChange"`
}

// Compare measures current against previous.
func Compare(current, previous Snapshot) Comparison {
	return Comparison{
		Previous:      previous.Window,
		RevenueChange: PeriodOverPeriodChange(current.Revenue, previous.Revenue),
		ExpenseChange: PeriodOverPeriodChange(current.TotalExpenses, previous.TotalExpenses),
		ProfitChange:  PeriodOverPeriodChange(current.Profit, previous.Profit),
	}
}

// Report is a snapshot with its comparison against the preceding window.
type Report struct {
	Granularity Granularity `json:"granularity"`
	Period      string      `json:"period"`
	Current     Snapshot    `json:"current"`
	Comparison  Comparison  `json:"comparison"`
}
