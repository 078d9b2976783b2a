package util

import (
	"fmt"
	"strings"
	"time"
)

// ParseDateArg parses a date given on the command line or in config.
// Accepted forms: YYYY-MM-DD, YYYY_MM_DD, YYYY/MM/DD. The result is
// normalized to midnight UTC.
func ParseDateArg(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	norm := strings.NewReplacer("_", "-", "/", "-").Replace(s)
	t, err := time.ParseInLocation("2006-01-02", norm, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDate renders a normalized date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatDateCompact renders a normalized date as YYYYMMDD, used in output
// file names.
func FormatDateCompact(t time.Time) string {
	return t.Format("20060102")
}
