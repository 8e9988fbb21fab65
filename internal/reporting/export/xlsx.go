package export

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the XLSX workbook, in order.
const (
	SheetSummary   = "Summary"
	SheetTop       = "Top Products"
	SheetCategory  = "Expenses by Category"
	SheetPayment   = "Sales by Payment"
	SheetSales     = "Sales"
	SheetExpenses  = "Expenses"
	defaultSheet   = "Sheet1"
	columnWidth    = 18.0
	lastDataColumn = "J"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// WriteXLSX writes a workbook with summary, breakdown and raw record sheets.
func WriteXLSX(w io.Writer, payload Payload) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: xlsx style: %w", err)
	}

	for i, s := range workbookSheets(payload) {
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, s.name); err != nil {
				return fmt.Errorf("export: xlsx rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("export: xlsx sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, bold); err != nil {
			return err
		}
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := s.header
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("export: xlsx %s header: %w", s.name, err)
	}
	end, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", end, headerStyle); err != nil {
		return err
	}
	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row
		if err := f.SetSheetRow(s.name, cell, &values); err != nil {
			return fmt.Errorf("export: xlsx %s row %d: %w", s.name, i+2, err)
		}
	}
	return f.SetColWidth(s.name, "A", lastDataColumn, columnWidth)
}

func workbookSheets(payload Payload) []sheet {
	snap := payload.Report.Current

	summary := sheet{name: SheetSummary, header: []any{"Metric", "Value"}}
	summary.rows = append(summary.rows,
		[]any{"Report", payload.Title},
		[]any{"Period", payload.Report.Period},
		[]any{"Generated", payload.date(payload.GeneratedAt)},
	)
	for _, line := range payload.summary() {
		summary.rows = append(summary.rows, []any{line.label, round2(line.value)})
	}

	top := sheet{name: SheetTop, header: []any{"Product", "Quantity", "Revenue"}}
	for _, p := range snap.TopProducts {
		top.rows = append(top.rows, []any{p.Product, p.Quantity, round2(p.Revenue)})
	}

	category := sheet{name: SheetCategory, header: []any{"Category", "Amount", "Percentage"}}
	for _, c := range snap.ExpensesByCategory {
		category.rows = append(category.rows, []any{c.Category, round2(c.Amount), round2(c.Percentage)})
	}

	payment := sheet{name: SheetPayment, header: []any{"Payment Method", "Amount", "Count"}}
	for _, m := range snap.SalesByPaymentMethod {
		payment.rows = append(payment.rows, []any{string(m.Method), round2(m.Amount), m.Count})
	}

	sales := sheet{name: SheetSales, header: toAny(salesHeader)}
	for _, s := range payload.Sales {
		sales.rows = append(sales.rows, []any{
			payload.date(s.Date), s.Product.Key(), s.Product.Category, s.Quantity,
			s.UnitPrice, s.TotalAmount, string(s.PaymentMethod), s.CustomerName, s.SalesPerson,
			yesNo(s.IsReturned),
		})
	}

	expenses := sheet{name: SheetExpenses, header: toAny(expensesHeader)}
	for _, e := range payload.Expenses {
		expenses.rows = append(expenses.rows, []any{
			payload.date(e.Date), e.Category, e.Subcategory, e.Description, e.Vendor,
			e.Amount, string(e.PaymentMethod), string(e.ApprovalStatus),
		})
	}

	return []sheet{summary, top, category, payment, sales, expenses}
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
