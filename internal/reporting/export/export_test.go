package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/storeledger/backoffice/internal/records"
	"github.com/storeledger/backoffice/internal/reporting"
)

func samplePayload() Payload {
	w := reporting.WindowAt(reporting.Monthly, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	sales := []records.Sale{
		{
			Date:          time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			Product:       records.Product{Brand: "Acme", Model: "X1", Category: "phones"},
			Quantity:      2,
			UnitPrice:     500,
			TotalAmount:   1000,
			PaymentMethod: records.PaymentCard,
			CustomerName:  "Asha",
			SalesPerson:   "Ravi",
		},
		{
			Date:          time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			Product:       records.Product{Brand: "Zen", Model: "Z"},
			Quantity:      1,
			UnitPrice:     500,
			TotalAmount:   500,
			PaymentMethod: records.PaymentCash,
			IsReturned:    true,
		},
	}
	expenses := []records.Expense{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Category: "rent", Amount: 400, PaymentMethod: records.ExpensePaymentCheque, ApprovalStatus: records.ApprovalApproved},
		{Date: time.Date(2024, 1, 9, 0, 0, 0, 0, time.UTC), Category: "marketing", Description: "flyers, posters", Amount: 200, PaymentMethod: records.ExpensePaymentCash, ApprovalStatus: records.ApprovalPending},
	}
	report := reporting.Report{
		Granularity: reporting.Monthly,
		Period:      "2024-01",
		Current:     reporting.BuildSnapshot(sales, expenses, w, 5),
	}
	return NewPayload(report, time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC), time.UTC)
}

func TestWriteCSVSections(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, samplePayload()))

	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	index := func(label string) int {
		for i, row := range rows {
			if len(row) == 1 && row[0] == label {
				return i
			}
		}
		return -1
	}
	salesAt := index("SALES DATA")
	expensesAt := index("EXPENSES DATA")
	require.Positive(t, salesAt)
	require.Greater(t, expensesAt, salesAt)

	assert.Equal(t, salesHeader, rows[salesAt+1])
	assert.Equal(t, []string{"2024-01-15", "Acme X1", "phones", "2", "500.00", "1000.00", "card", "Asha", "Ravi", "No"}, rows[salesAt+2])
	assert.Equal(t, "Yes", rows[salesAt+3][9])
	assert.Equal(t, expensesHeader, rows[expensesAt+1])
	assert.Equal(t, "flyers, posters", rows[expensesAt+3][3])
	assert.Contains(t, rows, []string{"Total Revenue", "1500.00"})
	assert.Contains(t, rows, []string{"Profit Margin", "60.00%"})
}

func TestWriteXLSXSheets(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WriteXLSX(buf, samplePayload()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetSummary, SheetTop, SheetCategory, SheetPayment, SheetSales, SheetExpenses}, f.GetSheetList())

	top, err := f.GetRows(SheetTop)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"Acme X1", "2", "1000"}, top[1])

	category, err := f.GetRows(SheetCategory)
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "400", "66.67"}, category[1])

	sales, err := f.GetRows(SheetSales)
	require.NoError(t, err)
	assert.Len(t, sales, 3)

	expenses, err := f.GetRows(SheetExpenses)
	require.NoError(t, err)
	assert.Equal(t, "marketing", expenses[2][1])
}

func TestWritePDF(t *testing.T) {
	buf := &bytes.Buffer{}
	require.NoError(t, WritePDF(buf, samplePayload()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestPDFWriterBreaksPages(t *testing.T) {
	p := newPDFWriter()
	for i := 0; i < 80; i++ {
		p.line("row")
		assert.LessOrEqual(t, p.y, pageBreakY+lineHeight)
	}
	require.NoError(t, p.doc.Error())
	assert.Equal(t, 2, p.doc.PageNo())
}

func TestPayloadHelpers(t *testing.T) {
	payload := samplePayload()
	assert.Equal(t, "report-monthly-2024-01.xlsx", payload.Filename("xlsx"))
	assert.Equal(t, "1,234,567.50", displayAmount(1234567.5))
	assert.Equal(t, "-12.50", plainAmount(-12.5))
}

func TestLookupFormats(t *testing.T) {
	assert.Equal(t, []string{"csv", "pdf", "xlsx"}, Formats())

	f, ok := Lookup("xlsx")
	require.True(t, ok)
	assert.Equal(t, "xlsx", f.Ext)
	assert.NotNil(t, f.Write)

	_, ok = Lookup("docx")
	assert.False(t, ok)
}

func TestExportDatesUseReportZone(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	w, err := reporting.WindowFor(reporting.Monthly, "2024-03", ist)
	require.NoError(t, err)
	// 00:30 on 1 March in IST, stored in UTC.
	sales := []records.Sale{{
		Date:          time.Date(2024, 2, 29, 19, 0, 0, 0, time.UTC),
		Product:       records.Product{Brand: "A", Model: "B"},
		TotalAmount:   10,
		PaymentMethod: records.PaymentCash,
	}}
	report := reporting.Report{
		Granularity: reporting.Monthly,
		Period:      "2024-03",
		Current:     reporting.BuildSnapshot(sales, nil, w, 5),
	}
	require.Len(t, report.Current.Sales, 1)

	buf := &bytes.Buffer{}
	require.NoError(t, WriteCSV(buf, NewPayload(report, time.Date(2024, 3, 31, 20, 0, 0, 0, time.UTC), ist)))
	reader := csv.NewReader(bytes.NewReader(buf.Bytes()))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Contains(t, rows, []string{"Generated", "2024-04-01"})
	var saleRow []string
	for i, row := range rows {
		if len(row) == 1 && row[0] == "SALES DATA" {
			saleRow = rows[i+2]
		}
	}
	require.NotEmpty(t, saleRow)
	assert.Equal(t, "2024-03-01", saleRow[0])

	fallback := NewPayload(report, time.Time{}, nil)
	assert.Equal(t, "2024-03-01", fallback.date(sales[0].Date))
}
