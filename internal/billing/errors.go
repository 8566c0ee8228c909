package billing

import "errors"

var (
	// ErrInvalidRange is returned when the start date falls after the end date.
	ErrInvalidRange = errors.New("billing: start date after end date")
	// ErrInvalidEntry is returned when an input entry carries negative hours or a negative rate.
	ErrInvalidEntry = errors.New("billing: invalid time entry")
	// ErrMissingAddress is returned when the corp or bill-to address is absent.
	ErrMissingAddress = errors.New("billing: missing address")
	// ErrEmptyLineItems is returned when there is nothing to render.
	ErrEmptyLineItems = errors.New("billing: no line items")
)
