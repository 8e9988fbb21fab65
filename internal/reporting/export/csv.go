package export

import (
	"encoding/csv"
	"io"
	"strconv"
)

var (
	salesHeader = []string{
		"Date", "Product", "Category", "Quantity", "Unit Price", "Total",
		"Payment Method", "Customer", "Sales Person", "Returned",
	}
	expensesHeader = []string{
		"Date", "Category", "Subcategory", "Description", "Vendor", "Amount",
		"Payment Method", "Status",
	}
)

// WriteCSV writes the summary followed by the SALES DATA and EXPENSES DATA
// sections, separated by blank rows.
func WriteCSV(w io.Writer, payload Payload) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	rows := [][]string{
		{payload.Title},
		{"Period", payload.Report.Period},
		{"Generated", payload.date(payload.GeneratedAt)},
	}
	for _, line := range payload.summary() {
		rows = append(rows, []string{line.label, plainAmount(line.value) + line.unit})
	}
	rows = append(rows, []string{}, []string{"SALES DATA"}, salesHeader)
	for _, sale := range payload.Sales {
		rows = append(rows, []string{
			payload.date(sale.Date),
			sale.Product.Key(),
			sale.Product.Category,
			strconv.Itoa(sale.Quantity),
			plainAmount(sale.UnitPrice),
			plainAmount(sale.TotalAmount),
			string(sale.PaymentMethod),
			sale.CustomerName,
			sale.SalesPerson,
			yesNo(sale.IsReturned),
		})
	}
	rows = append(rows, []string{}, []string{"EXPENSES DATA"}, expensesHeader)
	for _, expense := range payload.Expenses {
		rows = append(rows, []string{
			payload.date(expense.Date),
			expense.Category,
			expense.Subcategory,
			expense.Description,
			expense.Vendor,
			plainAmount(expense.Amount),
			string(expense.PaymentMethod),
			string(expense.ApprovalStatus),
		})
	}

	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
