package models

import (
	"time"

	"timebill/internal/billing"
)

const DateLayout = "2006-01-02"

// TimeEntry is one recorded day of work, keyed by its calendar date.
// The Inputted flags track which fields the user typed versus defaulted,
// so the UI can distinguish them on later edits.
type TimeEntry struct {
	Date          string `gorm:"primaryKey;size:10" json:"date"`
	Hours         float64 `json:"hours"`
	HourlyRate    float64 `json:"hourly_rate"`
	HoursInputted bool    `json:"hours_inputted"`
	RateInputted  bool    `json:"rate_inputted"`
}

// Billing converts the stored row into the core entry value.
func (e TimeEntry) Billing() (billing.TimeEntry, error) {
	d, err := time.Parse(DateLayout, e.Date)
	if err != nil {
		return billing.TimeEntry{}, err
	}
	return billing.TimeEntry{Date: d, Hours: e.Hours, HourlyRate: e.HourlyRate}, nil
}
