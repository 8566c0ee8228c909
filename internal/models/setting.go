package models

// Setting is a key/value application preference (e.g. next_invoice_number).
type Setting struct {
	Key   string `gorm:"primaryKey" json:"key"`
	Value string `json:"value"`
}

// EmailSettings is the singleton SMTP delivery profile. Account is the
// SMTP login; FromEmail may be an alias shown to recipients. AppPassword
// is write-only at the API boundary.
type EmailSettings struct {
	ID          uint `gorm:"primaryKey"`
	Account     string
	FromEmail   string
	ToEmail     string
	CCEmail     string
	Subject     string
	AppPassword string
}
