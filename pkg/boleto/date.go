package boleto

import (
	"time"
)

// DateLayout is the provider's dd.mm.yyyy date format.
const DateLayout = "02.01.2006"

// Date is a calendar date without time of day. The zero value means "not set".
type Date struct {
	t   time.Time
	set bool
}

const secondsPerDay = 24 * 60 * 60

// ParseDate parses a dd.mm.yyyy string.
func ParseDate(s string) (Date, error) {
	return parseDate("", s)
}

func parseDate(field, s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, &DateParseError{Field: field, Value: s, Err: err}
	}
	return Date{t: t, set: true}, nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and
// package-level values.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), set: true}
}

// Today returns the current calendar date in the local time zone.
func Today() Date {
	return DateOf(time.Now())
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return !d.set
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return d.t
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.t.Before(other.t)
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.t.After(other.t)
}

// Equal reports whether both dates fall on the same calendar day.
func (d Date) Equal(other Date) bool {
	return d.set == other.set && d.t.Equal(other.t)
}

// DaysUntil returns the signed number of calendar days from d to other.
// Both values are UTC midnights, so the Unix seconds divide exactly.
func (d Date) DaysUntil(other Date) int {
	return int(other.dayNumber() - d.dayNumber())
}

func (d Date) dayNumber() int64 {
	return d.t.Unix() / secondsPerDay
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{t: d.t.AddDate(0, 0, n), set: d.set}
}

// String formats the date as dd.mm.yyyy, or "" when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}
