package billing

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases a display name and collapses every run of
// non-alphanumeric characters into a single underscore, trimming leading
// and trailing underscores.
func Slug(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(s, "_")
}

// Filename builds the download name for a rendered invoice:
// {slug}_invoice_{number}_{YYYYMMDD}.pdf.
func Filename(corp Address, number int, date time.Time) string {
	return fmt.Sprintf("%s_invoice_%d_%s.pdf", Slug(corp.CompanyName), number, date.Format("20060102"))
}
