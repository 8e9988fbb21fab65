package reporting

import (
	"math"

	"github.com/storeledger/backoffice/internal/records"
)

// SumRevenue adds up TotalAmount. The stored total is authoritative.
func SumRevenue(sales []records.Sale) float64 {
	var total float64
	for _, sale := range sales {
		total += sale.TotalAmount
	}
	return total
}

// SumExpenses adds up expense amounts.
func SumExpenses(expenses []records.Expense) float64 {
	var total float64
	for _, expense := range expenses {
		total += expense.Amount
	}
	return total
}

// ComputeProfit returns revenue minus expenses; it may be negative.
func ComputeProfit(revenue, expenses float64) float64 {
	return revenue - expenses
}

// ComputeMargin returns profit as a percentage of revenue, or 0 when there
// is no revenue.
func ComputeMargin(profit, revenue float64) float64 {
	if revenue > 0 {
		return profit / revenue * 100
	}
	return 0
}

// PeriodOverPeriodChange returns the percentage change from previous to
// current, or 0 when previous is 0.
func PeriodOverPeriodChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / math.Abs(previous) * 100
}
