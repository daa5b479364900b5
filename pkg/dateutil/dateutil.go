package dateutil

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

// ParseISO parses an ISO-8601 calendar date (YYYY-MM-DD) in UTC.
func ParseISO(s string) (time.Time, error) {
	t, err := time.Parse(isoLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date %q: %w", s, err)
	}
	return t, nil
}

// FormatISO renders a date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(isoLayout)
}

// AddMonths adds n calendar months to a date, clamping the day of month to the
// last day of the target month. time.Time.AddDate normalizes Jan 31 + 1 month
// to Mar 2/3; payment schedules want Feb 28/29 instead.
func AddMonths(date time.Time, n int) time.Time {
	y, m, d := date.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	last := DaysInMonth(first.Year(), first.Month())
	if d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, 0, 0, 0, 0, time.UTC)
}

// MonthsBetween returns the number of whole months from a to b, adjusting for
// day of month. Never negative; returns 0 when b is before a.
func MonthsBetween(a, b time.Time) int {
	if !b.After(a) {
		return 0
	}
	months := (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
	if b.Day() < a.Day() && b.Day() != DaysInMonth(b.Year(), b.Month()) {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DaysInMonth returns the number of days in a month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}

// Age calculates the age in whole years at a given date.
func Age(birthDate, atDate time.Time) int {
	age := atDate.Year() - birthDate.Year()
	if atDate.Month() < birthDate.Month() ||
		(atDate.Month() == birthDate.Month() && atDate.Day() < birthDate.Day()) {
		age--
	}
	return age
}

// AgeInMonths calculates the age in whole months at a given date.
func AgeInMonths(birthDate, atDate time.Time) int {
	return MonthsBetween(birthDate, atDate)
}

// IsLeapYear checks if a year is a leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// EndOfYear returns the last day of the year for a given date.
func EndOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 12, 31, 0, 0, 0, 0, time.UTC)
}

// BeginningOfYear returns the first day of the year for a given date.
func BeginningOfYear(date time.Time) time.Time {
	return time.Date(date.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
}
