// Package civil handles calendar dates without a time of day, as stored in
// DATE columns and exchanged as "YYYY-MM-DD".
package civil

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// ParseDate parses "YYYY-MM-DD" into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date has wrong format, use YYYY-MM-DD")
	}
	return t, nil
}

// FormatDate renders t as "YYYY-MM-DD"; the zero time renders as "".
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(Layout)
}

// Age returns the number of whole years between dob and asOf: the year
// difference, minus one when asOf falls before the birthday in its year.
// A person born on 29 February turns a year older on 1 March in non-leap
// years.
func Age(dob, asOf time.Time) int {
	years := asOf.Year() - dob.Year()
	if asOf.Month() < dob.Month() || (asOf.Month() == dob.Month() && asOf.Day() < dob.Day()) {
		years--
	}
	return years
}
