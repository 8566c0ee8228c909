package billing

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// recordingSink captures assembler calls for assertions.
type recordingSink struct {
	pages  int
	texts  []string
	rows   [][]Cell
	footer bool
}

func (s *recordingSink) AddPage()                          { s.pages++ }
func (s *recordingSink) Text(t string, _ float64, _ TextStyle) { s.texts = append(s.texts, t) }
func (s *recordingSink) Spacer(float64)                    {}
func (s *recordingSink) Row(_ float64, cells []Cell)       { s.rows = append(s.rows, cells) }
func (s *recordingSink) FooterStart(float64)               { s.footer = true }
func (s *recordingSink) Bytes() ([]byte, error)            { return []byte("doc"), nil }

func testCorp() Address {
	return Address{
		Recipient:   "Jane Doe",
		CompanyName: "Acme Consulting LLC",
		Street:      "1 Main St",
		City:        "Springfield",
		State:       "NY",
		ZipCode:     "10001",
		PhoneNumber: "555-0100",
	}
}

func testBillTo() Address {
	return Address{
		Recipient:   "Accounts Payable",
		CompanyName: "BigCo",
		Street:      "9 College Ave",
		City:        "Indianapolis",
		State:       "IN",
		ZipCode:     "46280",
	}
}

func testInvoice() Invoice {
	return Invoice{
		Corp:   testCorp(),
		BillTo: testBillTo(),
		Number: 42,
		Date:   date(2025, time.January, 13),
		Items: []LineItem{
			{HourlyRate: 192.75, Quantity: 16, StartDate: monday, EndDate: monday.AddDate(0, 0, 1)},
			{HourlyRate: 150, Quantity: 8, StartDate: monday.AddDate(0, 0, 2), EndDate: monday.AddDate(0, 0, 2)},
		},
		NetTermsDays: 15,
	}
}

func findText(texts []string, substr string) bool {
	for _, t := range texts {
		if strings.Contains(t, substr) {
			return true
		}
	}
	return false
}

func TestRenderLayoutAndTotals(t *testing.T) {
	sink := &recordingSink{}
	out, err := Render(sink, testInvoice())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "doc" {
		t.Fatalf("expected finalized sink bytes, got %q", out)
	}
	if sink.pages != 1 {
		t.Fatalf("expected one page got %d", sink.pages)
	}
	for _, want := range []string{
		"INVOICE",
		"Acme Consulting LLC",
		"Date: 2025-01-13",
		"Invoice # 42",
		"Make all checks payable to Acme Consulting LLC",
		"Payment terms: Net 15",
	} {
		if !findText(sink.texts, want) {
			t.Fatalf("missing text block %q in %#v", want, sink.texts)
		}
	}
	if !sink.footer {
		t.Fatal("terms footer was not positioned")
	}

	// Rows: bill/ship header + 4 pairs + table header + 2 items + total.
	if len(sink.rows) != 9 {
		t.Fatalf("expected 9 rows got %d", len(sink.rows))
	}
	// Ship-to defaults to bill-to.
	pair := sink.rows[1]
	if pair[0].Text != "BigCo" || pair[1].Text != "BigCo" {
		t.Fatalf("ship-to should mirror bill-to: %#v", pair)
	}
	// First item row formatting.
	item := sink.rows[6]
	if item[0].Text != "16.0" {
		t.Fatalf("quantity must have one decimal, got %q", item[0].Text)
	}
	if item[1].Text != "January 06 2025 - January 07 2025" {
		t.Fatalf("unexpected description %q", item[1].Text)
	}
	if item[2].Text != "$192.75" || item[3].Text != "$3,084.00" {
		t.Fatalf("unexpected money cells %q / %q", item[2].Text, item[3].Text)
	}
	// Total row sums both items: 16*192.75 + 8*150 = 4284.
	total := sink.rows[8]
	if total[0].Text != "Total" || total[1].Text != "$4,284.00" {
		t.Fatalf("unexpected total row %#v", total)
	}
}

func TestRenderAlternatingRowFill(t *testing.T) {
	sink := &recordingSink{}
	if _, err := Render(sink, testInvoice()); err != nil {
		t.Fatalf("render: %v", err)
	}
	first, second := sink.rows[6], sink.rows[7]
	if *first[0].Fill != rowNormal || *second[0].Fill != rowShade {
		t.Fatalf("expected alternating fills, got %#v / %#v", first[0].Fill, second[0].Fill)
	}
}

func TestRenderExplicitShipTo(t *testing.T) {
	inv := testInvoice()
	ship := testCorp()
	ship.CompanyName = "Warehouse Inc"
	inv.ShipTo = &ship
	sink := &recordingSink{}
	if _, err := Render(sink, inv); err != nil {
		t.Fatalf("render: %v", err)
	}
	pair := sink.rows[1]
	if pair[1].Text != "Warehouse Inc" {
		t.Fatalf("explicit ship-to ignored: %#v", pair)
	}
}

func TestRenderMissingAddress(t *testing.T) {
	inv := testInvoice()
	inv.Corp = Address{}
	if _, err := Render(&recordingSink{}, inv); !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress got %v", err)
	}
	inv = testInvoice()
	inv.BillTo = Address{}
	if _, err := Render(&recordingSink{}, inv); !errors.Is(err, ErrMissingAddress) {
		t.Fatalf("expected ErrMissingAddress got %v", err)
	}
}

func TestRenderEmptyLineItems(t *testing.T) {
	inv := testInvoice()
	inv.Items = nil
	sink := &recordingSink{}
	if _, err := Render(sink, inv); !errors.Is(err, ErrEmptyLineItems) {
		t.Fatalf("expected ErrEmptyLineItems got %v", err)
	}
	if sink.pages != 0 || len(sink.rows) != 0 {
		t.Fatal("no output may be emitted on error")
	}
}

func TestSlug(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Acme Consulting LLC", "acme_consulting_llc"},
		{"  Édouard & Co.  ", "douard_co"},
		{"already_slugged", "already_slugged"},
		{"***", ""},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Fatalf("Slug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFilename(t *testing.T) {
	got := Filename(testCorp(), 42, date(2025, time.February, 1))
	want := "acme_consulting_llc_invoice_42_20250201.pdf"
	if got != want {
		t.Fatalf("Filename = %q, want %q", got, want)
	}
}
