package reporting

import (
	"sort"

	"github.com/storeledger/backoffice/internal/records"
)

// ProductSales is one row of the top products ranking.
type ProductSales struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Revenue  float64 `json:"revenue"`
}

// CategoryExpense is one row of the expense breakdown.
type CategoryExpense struct {
	Category   string  `json:"category"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// PaymentMethodSales is one row of the payment method breakdown.
type PaymentMethodSales struct {
	Method records.PaymentMethod `json:"method"`
	Amount float64               `json:"amount"`
	Count  int                   `json:"count"`
}

// TopProducts groups sales by brand and model and returns at most limit
// entries by revenue, ties kept in first-seen order.
func TopProducts(sales []records.Sale, limit int) []ProductSales {
	if limit <= 0 {
		return []ProductSales{}
	}
	index := make(map[string]int)
	groups := make([]ProductSales, 0)
	for _, sale := range sales {
		key := sale.Product.Key()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, ProductSales{Product: key})
		}
		groups[i].Quantity += sale.Quantity
		groups[i].Revenue += sale.TotalAmount
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Revenue > groups[j].Revenue
	})
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// ExpensesByCategory groups expenses by category with each group's share of
// the total.
func ExpensesByCategory(expenses []records.Expense) []CategoryExpense {
	index := make(map[string]int)
	groups := make([]CategoryExpense, 0)
	var total float64
	for _, expense := range expenses {
		i, ok := index[expense.Category]
		if !ok {
			i = len(groups)
			index[expense.Category] = i
			groups = append(groups, CategoryExpense{Category: expense.Category})
		}
		groups[i].Amount += expense.Amount
		total += expense.Amount
	}
	for i := range groups {
		if total != 0 {
			groups[i].Percentage = groups[i].Amount / total * 100
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount > groups[j].Amount
	})
	return groups
}

// SalesByPaymentMethod groups sales by payment method.
func SalesByPaymentMethod(sales []records.Sale) []PaymentMethodSales {
	index := make(map[records.PaymentMethod]int)
	groups := make([]PaymentMethodSales, 0)
	for _, sale := range sales {
		i, ok := index[sale.PaymentMethod]
		if !ok {
			i = len(groups)
			index[sale.PaymentMethod] = i
			groups = append(groups, PaymentMethodSales{Method: sale.PaymentMethod})
		}
		groups[i].Amount += sale.TotalAmount
		groups[i].Count++
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Amount > groups[j].Amount
	})
	return groups
}
