package mrz

import (
	"fmt"
	"time"
)

const dateLayout = "060102" // "06" for year, "01" for month, "02" for day

// Date is a YYMMDD date as printed in the zone. The year keeps its two digits;
// picking a century is left to BirthTime and ExpiryTime.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a YYMMDD value, reporting failures as an InvalidDate FormatError for field.
func ParseDate(field Field, value string) (Date, error) {
	// time.Parse accepts a sign in the year position, so insist on digits first
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return Date{}, &FormatError{Kind: InvalidDate, Field: field, Value: value,
				Err: fmt.Errorf("unexpected character %q", value[i])}
		}
	}

	// Go maps 00-68 to 20xx and 69-99 to 19xx, so Feb 29 is accepted exactly when
	// the two-digit year is divisible by 4
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return Date{}, &FormatError{Kind: InvalidDate, Field: field, Value: value, Err: err}
	}

	return Date{
		Year:  parsed.Year() % 100,
		Month: parsed.Month(),
		Day:   parsed.Day(),
	}, nil
}

// String returns the date in its original six character form.
func (d Date) String() string {
	return fmt.Sprintf("%02d%02d%02d", d.Year, int(d.Month), d.Day)
}

// Matches reports whether t falls on the same YYMMDD as d. The zero time never matches.
func (d Date) Matches(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	return t.Format(dateLayout) == d.String()
}

func (d Date) pivoted() time.Time {
	year := 2000 + d.Year
	if d.Year >= 69 {
		year = 1900 + d.Year
	}
	return time.Date(year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// BirthTime resolves the century for a date of birth.
func (d Date) BirthTime(now time.Time) time.Time {
	t := d.pivoted()
	// when someone is born in 1950 only 50 is stored, which the pivot turns into 2050
	if t.After(now) {
		t = t.AddDate(-100, 0, 0)
	}
	return t
}

// ExpiryTime resolves the century for an expiration date.
func (d Date) ExpiryTime(now time.Time) time.Time {
	t := d.pivoted()
	// arbitrarily determine that a date more than 30 years ago gets added 100 years
	if t.Before(now.AddDate(-30, 0, 0)) {
		t = t.AddDate(100, 0, 0)
	}
	return t
}
