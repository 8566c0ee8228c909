package models

import (
	"time"

	"timebill/internal/billing"
)

// Address kinds; one row per kind.
const (
	AddressKindCorp   = "corp"
	AddressKindBillTo = "bill_to"
	AddressKindShipTo = "ship_to"
)

// Address is a singleton party profile: the biller ("corp"), the bill-to
// party, or an optional separate ship-to party.
type Address struct {
	ID          uint   `gorm:"primaryKey"`
	Kind        string `gorm:"uniqueIndex;not null"`
	Recipient   string
	CompanyName string
	Street      string
	City        string
	State       string
	ZipCode     string
	PhoneNumber string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Billing converts the stored row into the core address value.
func (a Address) Billing() billing.Address {
	return billing.Address{
		Recipient:   a.Recipient,
		CompanyName: a.CompanyName,
		Street:      a.Street,
		City:        a.City,
		State:       a.State,
		ZipCode:     a.ZipCode,
		PhoneNumber: a.PhoneNumber,
	}
}
