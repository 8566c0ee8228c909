// Package pdf implements billing.Sink on top of gofpdf, producing the
// fixed Helvetica invoice layout as a portrait A4 document.
package pdf

import (
	"bytes"

	"github.com/phpdave11/gofpdf"

	"timebill/internal/billing"
)

const defaultFontSize = 10

// Document is a single-use PDF rendering sink. Construct one per invoice.
type Document struct {
	fpdf *gofpdf.Fpdf
}

func New() *Document {
	f := gofpdf.New("P", "mm", "A4", "")
	f.SetFont("Helvetica", "", defaultFontSize)
	return &Document{fpdf: f}
}

func (d *Document) AddPage() { d.fpdf.AddPage() }

// printableWidth is the page width between the left and right margins.
func (d *Document) printableWidth() float64 {
	w, _ := d.fpdf.GetPageSize()
	left, _, right, _ := d.fpdf.GetMargins()
	return w - left - right
}

func (d *Document) applyStyle(st billing.TextStyle) {
	style := ""
	if st.Bold {
		style = "B"
	}
	size := st.Size
	if size == 0 {
		size = defaultFontSize
	}
	d.fpdf.SetFont("Helvetica", style, size)
	if st.Color != nil {
		d.fpdf.SetTextColor(st.Color.R, st.Color.G, st.Color.B)
	} else {
		d.fpdf.SetTextColor(0, 0, 0)
	}
}

func (d *Document) Text(s string, height float64, st billing.TextStyle) {
	d.applyStyle(st)
	d.fpdf.CellFormat(0, height, s, "", 1, "L", false, 0, "")
}

func (d *Document) Spacer(height float64) { d.fpdf.Ln(height) }

func (d *Document) Row(height float64, cells []billing.Cell) {
	epw := d.printableWidth()
	for _, c := range cells {
		d.applyStyle(billing.TextStyle{Bold: c.Bold, Color: c.Color})
		fill := false
		if c.Fill != nil {
			d.fpdf.SetFillColor(c.Fill.R, c.Fill.G, c.Fill.B)
			fill = true
		}
		align := c.Align
		if align == "" {
			align = "L"
		}
		d.fpdf.CellFormat(epw*c.Width, height, c.Text, "", 0, align, fill, 0, "")
	}
	d.fpdf.Ln(-1)
}

// FooterStart pins the cursor reserve millimeters above the page bottom, or
// just below existing content when the table already reaches that far down.
func (d *Document) FooterStart(reserve float64) {
	_, pageH := d.fpdf.GetPageSize()
	if d.fpdf.GetY() > pageH-reserve-5 {
		d.fpdf.Ln(10)
		return
	}
	d.fpdf.SetY(-reserve)
}

func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.fpdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
