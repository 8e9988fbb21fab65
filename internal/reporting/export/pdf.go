package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	pageTop      = 20.0
	pageBreakY   = 270.0
	marginLeft   = 15.0
	lineHeight   = 6.0
	headerHeight = 7.0
)

// pdfWriter places plain text lines top to bottom, starting a new page once
// the cursor passes pageBreakY.
type pdfWriter struct {
	doc *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func newPDFWriter() *pdfWriter {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetMargins(marginLeft, pageTop, marginLeft)
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()
	return &pdfWriter{doc: doc, tr: doc.UnicodeTranslatorFromDescriptor(""), y: pageTop}
}

func (p *pdfWriter) advance(step float64) {
	p.y += step
	if p.y > pageBreakY {
		p.doc.AddPage()
		p.y = pageTop
	}
}

func (p *pdfWriter) heading(text string, size float64) {
	p.doc.SetFont("Helvetica", "B", size)
	p.doc.Text(marginLeft, p.y, p.tr(text))
	p.advance(headerHeight)
}

func (p *pdfWriter) line(text string) {
	p.doc.SetFont("Helvetica", "", 9)
	p.doc.Text(marginLeft, p.y, p.tr(text))
	p.advance(lineHeight)
}

func (p *pdfWriter) gap() {
	p.advance(lineHeight)
}

// WritePDF renders the report as paginated text on A4 pages.
func WritePDF(w io.Writer, payload Payload) error {
	p := newPDFWriter()
	snap := payload.Report.Current

	p.heading(payload.Title, 16)
	p.line(fmt.Sprintf("Period: %s (%s)", payload.Report.Period, payload.Report.Granularity))
	p.line("Generated: " + payload.date(payload.GeneratedAt))
	p.gap()

	p.heading("Summary", 12)
	for _, s := range payload.summary() {
		p.line(fmt.Sprintf("%s: %s%s", s.label, displayAmount(s.value), s.unit))
	}
	p.gap()

	p.heading("Top Products", 12)
	for i, item := range snap.TopProducts {
		p.line(fmt.Sprintf("%d. %s - %d units - %s", i+1, item.Product, item.Quantity, displayAmount(item.Revenue)))
	}
	p.gap()

	p.heading("Expenses by Category", 12)
	for _, c := range snap.ExpensesByCategory {
		p.line(fmt.Sprintf("%s: %s (%.1f%%)", orDash(c.Category), displayAmount(c.Amount), c.Percentage))
	}
	p.gap()

	p.heading("Sales by Payment Method", 12)
	for _, m := range snap.SalesByPaymentMethod {
		p.line(fmt.Sprintf("%s: %s (%d sales)", strings.ToUpper(string(m.Method)), displayAmount(m.Amount), m.Count))
	}
	p.gap()

	p.heading("SALES DATA", 12)
	for _, s := range payload.Sales {
		p.line(fmt.Sprintf("%s  %s  x%d  %s  %s",
			payload.date(s.Date), s.Product.Key(), s.Quantity, displayAmount(s.TotalAmount), s.PaymentMethod))
	}
	p.gap()

	p.heading("EXPENSES DATA", 12)
	for _, e := range payload.Expenses {
		p.line(fmt.Sprintf("%s  %s  %s  %s  %s",
			payload.date(e.Date), orDash(e.Category), orDash(e.Description), displayAmount(e.Amount), e.ApprovalStatus))
	}

	if err := p.doc.Error(); err != nil {
		return fmt.Errorf("export: pdf: %w", err)
	}
	return p.doc.Output(w)
}

func orDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
