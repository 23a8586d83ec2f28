package calendar

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidMonth is returned when a month outside 1-12 is requested.
var ErrInvalidMonth = errors.New("invalid month: must be between 1 and 12")

// ErrInvalidRange is returned when a range ends before it starts.
var ErrInvalidRange = errors.New("invalid date range: end is before start")

// maxDaysInMonth is where the month-end search starts.
const maxDaysInMonth = 31

// Date is a calendar date without a time of day.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the Date for t in t's location.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return NewDate(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Valid reports whether the date exists on the Gregorian calendar.
// time.Date normalizes out-of-range values (Feb 30 becomes Mar 1 or 2), so
// a date is valid exactly when it survives the round trip unchanged.
func (d Date) Valid() bool {
	y, m, day := d.Time().Date()
	return y == d.Year && m == d.Month && day == d.Day
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return NewDate(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// String returns the date in YYYY-MM-DD format.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// USFormat returns the date as MM/DD/YYYY, the format used by the
// Zoom report query string.
func (d Date) USFormat() string {
	return fmt.Sprintf("%02d/%02d/%04d", int(d.Month), d.Day, d.Year)
}

// MonthEnd returns the last day of the given month.
//
// A zero month or year is replaced by the corresponding value from now.
// The search starts at day 31 and walks back until the date is valid, so
// 30-day months and leap-year Februaries are handled by the calendar rules
// rather than a lookup table. A month outside 1-12 cannot be fixed by
// decrementing the day; in that case the last attempted date is returned
// together with ErrInvalidMonth.
func MonthEnd(month, year int, now time.Time) (Date, error) {
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	d := Date{Year: year, Month: time.Month(month), Day: maxDaysInMonth}
	for !d.Valid() {
		if month < 1 || month > 12 {
			return d, fmt.Errorf("%w: %d", ErrInvalidMonth, month)
		}
		d.Day--
	}
	return d, nil
}

// MonthEndOf returns the last day of t's month.
func MonthEndOf(t time.Time) Date {
	// The month of a real time.Time is always valid.
	d, _ := MonthEnd(int(t.Month()), t.Year(), t) //nolint:errcheck // month is always in range
	return d
}

// Range is an inclusive span of calendar days.
type Range struct {
	From Date
	To   Date
}

// MonthRange returns the range covering every day of the given month,
// with the same defaulting rules as MonthEnd.
func MonthRange(month, year int, now time.Time) (Range, error) {
	end, err := MonthEnd(month, year, now)
	if err != nil {
		return Range{}, err
	}
	return Range{
		From: Date{Year: end.Year, Month: end.Month, Day: 1},
		To:   end,
	}, nil
}

// NewRange validates and returns the range [from, to].
func NewRange(from, to Date) (Range, error) {
	if !from.Valid() {
		return Range{}, fmt.Errorf("invalid start date %s", from)
	}
	if !to.Valid() {
		return Range{}, fmt.Errorf("invalid end date %s", to)
	}
	if to.Before(from) {
		return Range{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, from, to)
	}
	return Range{From: from, To: to}, nil
}

// Days returns every date in the range in ascending order.
func (r Range) Days() []Date {
	days := make([]Date, 0)
	for d := r.From; !r.To.Before(d); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// Len returns the number of days in the range.
func (r Range) Len() int {
	return len(r.Days())
}

// String returns "YYYY-MM-DD..YYYY-MM-DD".
func (r Range) String() string {
	return r.From.String() + ".." + r.To.String()
}
