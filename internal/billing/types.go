package billing

import "time"

// TimeEntry is one recorded day of work. Hours may be zero: a zero-hour
// entry still counts as a worked day when grouping, unlike a day with no
// entry at all.
type TimeEntry struct {
	Date       time.Time
	Hours      float64
	HourlyRate float64
}

// LineItem is one invoice row: a run of consecutive days inside a single
// calendar week, billed at one hourly rate.
type LineItem struct {
	HourlyRate float64
	Quantity   float64
	StartDate  time.Time
	EndDate    time.Time
}

// Amount returns the billed amount for the row.
func (li LineItem) Amount() float64 { return li.HourlyRate * li.Quantity }

// Address identifies one party on the invoice. PhoneNumber is optional.
type Address struct {
	Recipient   string
	CompanyName string
	Street      string
	City        string
	State       string
	ZipCode     string
	PhoneNumber string
}

// IsZero reports whether no identifying field of the address is set.
func (a Address) IsZero() bool {
	return a.Recipient == "" && a.CompanyName == "" && a.Street == "" &&
		a.City == "" && a.State == "" && a.ZipCode == ""
}

// Invoice is the assembled document input. ShipTo may be nil, in which case
// the bill-to address doubles as the shipping address. Number is assigned by
// the caller; NetTermsDays feeds the payment terms footer.
type Invoice struct {
	Corp         Address
	BillTo       Address
	ShipTo       *Address
	Number       int
	Date         time.Time
	Items        []LineItem
	NetTermsDays int
}

// Total sums rate times quantity over all line items.
func (inv Invoice) Total() float64 {
	var total float64
	for _, li := range inv.Items {
		total += li.Amount()
	}
	return total
}
