package billing

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RGB is a 0-255 color triple used for cell fills and text colors.
type RGB struct{ R, G, B int }

var (
	black     = RGB{0, 0, 0}
	white     = RGB{255, 255, 255}
	rowShade  = RGB{245, 245, 245}
	rowNormal = RGB{255, 255, 255}
)

// TextStyle controls one styled text block written to a Sink. A zero Size
// means the sink's default body size.
type TextStyle struct {
	Size  float64
	Bold  bool
	Color *RGB
}

// Cell is a single table cell. Width is a fraction of the printable page
// width; Align is "L" or "R" (left when empty).
type Cell struct {
	Text  string
	Width float64
	Align string
	Bold  bool
	Fill  *RGB
	Color *RGB
}

// Sink is the document backend the assembler drives. Implementations own
// all layout state (cursor, fonts, margins) and finalize to raw bytes.
type Sink interface {
	AddPage()
	Text(s string, height float64, style TextStyle)
	Spacer(height float64)
	Row(height float64, cells []Cell)
	// FooterStart moves the cursor to reserve millimeters above the page
	// bottom, or just past the current content when the page is already
	// fuller than that.
	FooterStart(reserve float64)
	Bytes() ([]byte, error)
}

// usd formats currency amounts with a thousands separator.
var usd = message.NewPrinter(language.AmericanEnglish)

func money(v float64) string { return usd.Sprintf("$%.2f", v) }

func quantity(v float64) string { return strconv.FormatFloat(v, 'f', 1, 64) }

func (li LineItem) describe() string {
	const long = "January 02 2006"
	return li.StartDate.Format(long) + " - " + li.EndDate.Format(long)
}

// Render drives sink through the fixed invoice layout: title, corp block,
// invoice metadata, bill-to/ship-to block, itemized table with total, and
// the payment terms footer. It returns the finalized document bytes.
//
// A zero-value corp or bill-to address fails with ErrMissingAddress and an
// empty item list with ErrEmptyLineItems; nothing is emitted on error.
func Render(sink Sink, inv Invoice) ([]byte, error) {
	if inv.Corp.IsZero() || inv.BillTo.IsZero() {
		return nil, ErrMissingAddress
	}
	if len(inv.Items) == 0 {
		return nil, ErrEmptyLineItems
	}
	shipTo := inv.BillTo
	if inv.ShipTo != nil {
		shipTo = *inv.ShipTo
	}

	sink.AddPage()

	sink.Text("INVOICE", 20, TextStyle{Size: 24, Bold: true})
	sink.Spacer(5)

	sink.Text(inv.Corp.CompanyName, 10, TextStyle{Size: 15})
	sink.Text(inv.Corp.Street, 5, TextStyle{})
	sink.Text(cityLine(inv.Corp), 5, TextStyle{})
	if inv.Corp.PhoneNumber != "" {
		sink.Text(inv.Corp.PhoneNumber, 5, TextStyle{})
	}
	sink.Spacer(5)

	sink.Text("Date: "+inv.Date.Format("2006-01-02"), 5, TextStyle{Bold: true})
	sink.Text(fmt.Sprintf("Invoice # %d", inv.Number), 5, TextStyle{Bold: true})
	sink.Spacer(5)

	renderParties(sink, inv.BillTo, shipTo)
	sink.Spacer(5)

	renderItems(sink, inv.Items)
	sink.Spacer(5)

	sink.Text("Make all checks payable to "+inv.Corp.CompanyName, 10, TextStyle{})

	sink.FooterStart(45)
	sink.Text("Terms", 5, TextStyle{})
	sink.Text("Thank you for your business!", 5, TextStyle{})
	sink.Text(fmt.Sprintf("Payment terms: Net %d", inv.NetTermsDays), 5, TextStyle{})

	return sink.Bytes()
}

func cityLine(a Address) string {
	return fmt.Sprintf("%s, %s %s", a.City, a.State, a.ZipCode)
}

func renderParties(sink Sink, billTo, shipTo Address) {
	header := func(s string) Cell {
		return Cell{Text: s, Width: 0.5, Bold: true, Fill: &black, Color: &white}
	}
	sink.Row(8, []Cell{header("BILL TO"), header("SHIP TO")})

	pair := func(l, r string) {
		sink.Row(5, []Cell{{Text: l, Width: 0.5}, {Text: r, Width: 0.5}})
	}
	pair(billTo.CompanyName, shipTo.CompanyName)
	pair(billTo.Recipient, shipTo.Recipient)
	pair(billTo.Street, shipTo.Street)
	pair(cityLine(billTo), cityLine(shipTo))
}

// Column widths of the itemized table, as fractions of the printable width.
const (
	colQuantity    = 0.15
	colDescription = 0.55
	colUnitPrice   = 0.15
	colAmount      = 0.15
)

func renderItems(sink Sink, items []LineItem) {
	head := func(s string, w float64) Cell {
		return Cell{Text: s, Width: w, Align: "R", Bold: true, Fill: &black, Color: &white}
	}
	sink.Row(8, []Cell{
		head("QUANTITY", colQuantity),
		head("DESCRIPTION", colDescription),
		head("UNIT PRICE", colUnitPrice),
		head("AMOUNT", colAmount),
	})

	var total float64
	for i, li := range items {
		fill := &rowNormal
		if i%2 == 1 {
			fill = &rowShade
		}
		sink.Row(8, []Cell{
			{Text: quantity(li.Quantity), Width: colQuantity, Align: "L", Fill: fill},
			{Text: li.describe(), Width: colDescription, Align: "R", Fill: fill},
			{Text: money(li.HourlyRate), Width: colUnitPrice, Align: "R", Fill: fill},
			{Text: money(li.Amount()), Width: colAmount, Align: "R", Fill: fill},
		})
		total += li.Amount()
	}

	sink.Row(8, []Cell{
		{Text: "Total", Width: 1 - colAmount, Align: "R", Bold: true},
		{Text: money(total), Width: colAmount, Align: "R", Bold: true},
	})
}
