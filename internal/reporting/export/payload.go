// Package export renders reports as CSV, XLSX and PDF downloads.
package export

import (
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/storeledger/backoffice/internal/records"
	"github.com/storeledger/backoffice/internal/reporting"
)

const dateLayout = "2006-01-02"

// Payload is everything a renderer needs: the report plus the raw records
// inside its window.
type Payload struct {
	Title       string
	Report      reporting.Report
	Sales       []records.Sale
	Expenses    []records.Expense
	GeneratedAt time.Time
	// Location is the reporting time zone every printed date is shown in.
	Location *time.Location
}

// NewPayload builds a payload from a report, taking the raw collections from
// its current snapshot. A nil loc falls back to the zone of the report window.
func NewPayload(report reporting.Report, generatedAt time.Time, loc *time.Location) Payload {
	if loc == nil {
		loc = report.Current.Window.Start.Location()
	}
	return Payload{
		Title:       "Business Report " + report.Period,
		Report:      report,
		Sales:       report.Current.Sales,
		Expenses:    report.Current.Expenses,
		GeneratedAt: generatedAt,
		Location:    loc,
	}
}

// date prints t as a calendar day in the reporting zone.
func (p Payload) date(t time.Time) string {
	if p.Location != nil {
		t = t.In(p.Location)
	}
	return t.Format(dateLayout)
}

// Filename returns the download name for the given extension.
func (p Payload) Filename(ext string) string {
	return "report-" + string(p.Report.Granularity) + "-" + p.Report.Period + "." + ext
}

type summaryLine struct {
	label string
	value float64
	unit  string
}

func (p Payload) summary() []summaryLine {
	snap := p.Report.Current
	cmp := p.Report.Comparison
	return []summaryLine{
		{label: "Total Revenue", value: snap.Revenue},
		{label: "Total Expenses", value: snap.TotalExpenses},
		{label: "Net Profit", value: snap.Profit},
		{label: "Profit Margin", value: snap.ProfitMargin, unit: "%"},
		{label: "Revenue Change", value: cmp.RevenueChange, unit: "%"},
		{label: "Expense Change", value: cmp.ExpenseChange, unit: "%"},
		{label: "Profit Change", value: cmp.ProfitChange, unit: "%"},
	}
}

var printer = message.NewPrinter(language.English)

// displayAmount formats v with thousands grouping for human readers.
func displayAmount(v float64) string {
	return printer.Sprintf("%.2f", v)
}

// plainAmount formats v for machine readable exports.
func plainAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
