package db

import (
	"regexp"
	"strings"
)

var kvPairRegex = regexp.MustCompile(`(?i)\b(host|user|password|dbname|port|sslmode)=`)

// IsPostgres reports whether the DSN targets postgres (URL form or a
// lib/pq key=value list). Anything else is treated as a sqlite file path.
func IsPostgres(dsn string) bool {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	return strings.HasPrefix(lower, "postgres://") ||
		strings.HasPrefix(lower, "postgresql://") ||
		kvPairRegex.MatchString(lower)
}

// NormalizeDSN trims quotes and whitespace and, for key=value postgres
// form, collapses spacing and supplements sslmode=disable when missing.
func NormalizeDSN(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, "\"'")
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !kvPairRegex.MatchString(s) {
		// sqlite file path
		return s
	}
	fields := strings.Fields(s)
	cleaned := strings.Join(fields, " ")
	if !strings.Contains(strings.ToLower(cleaned), "sslmode=") {
		cleaned += " sslmode=disable"
	}
	return cleaned
}
