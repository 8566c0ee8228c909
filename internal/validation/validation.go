package validation

import (
	"strings"
	"time"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

func PositiveInt(field string, val int, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// Date checks a YYYY-MM-DD value. Empty values are left to Required.
func Date(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		v[field] = "must_be_yyyy_mm_dd"
	}
}
