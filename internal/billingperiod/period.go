// Package billingperiod normalizes billing month values. A billing month is
// always stored as midnight UTC on the first day of the month.
package billingperiod

import (
	"errors"
	"strings"
	"time"
)

var ErrInvalidMonth = errors.New("invalid_billing_month")

// FirstOfMonth truncates t to the first day of its month in UTC.
func FirstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Parse accepts "2006-01" or "2006-01-02" and returns the normalized month.
func Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrInvalidMonth
	}
	if t, err := time.Parse("2006-01", value); err == nil {
		return FirstOfMonth(t), nil
	}
	if t, err := time.Parse("2006-01-02", value); err == nil {
		return FirstOfMonth(t), nil
	}
	return time.Time{}, ErrInvalidMonth
}

// Format renders the canonical "2006-01" form.
func Format(t time.Time) string {
	return FirstOfMonth(t).Format("2006-01")
}
