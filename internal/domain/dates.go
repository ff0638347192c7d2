package domain

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

// DateToday is the sentinel some bookings carry instead of a calendar date.
const DateToday = "Today"

// EpochVisit is older than any real visit and is what a fresh or reset
// client record carries as lastVisit.
const EpochVisit = "2000-01-01"

// NormalizeDate returns raw as a YYYY-MM-DD key. "Today" becomes today and
// longer timestamps are truncated to their date part. Anything shorter than a
// full date is returned trimmed and will simply not match any month or range.
func NormalizeDate(raw string, today string) string {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, DateToday) {
		return today
	}
	if len(raw) > len(DateLayout) {
		return raw[:len(DateLayout)]
	}
	return raw
}

// MonthKey returns the YYYY-MM prefix of a normalized date, or "" when the
// value is not long enough to carry one.
func MonthKey(date string) string {
	if len(date) < len(MonthLayout) {
		return ""
	}
	return date[:len(MonthLayout)]
}

// ValidMonth reports whether raw is a YYYY-MM month key.
func ValidMonth(raw string) bool {
	_, err := time.Parse(MonthLayout, raw)
	return err == nil
}

// ValidDate reports whether raw is a YYYY-MM-DD date key.
func ValidDate(raw string) bool {
	_, err := time.Parse(DateLayout, raw)
	return err == nil
}

// Today formats now in loc as a date key.
func Today(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return now.In(loc).Format(DateLayout)
}
