package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the textual contract for all dates exchanged with callers.
const DateLayout = "02.01.2006"

// =============================================================================
// DATE - Calendar date without time of day
// =============================================================================

// Date is a calendar day at UTC midnight. The zero Date means "unset".
type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a DD.MM.YYYY string. Surrounding whitespace is ignored.
// Out-of-range components ("31.02.2025") are rejected, not normalized,
// and so is 01.01.0001, which is the unset Date.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return Date{}, err
	}
	if !t.After(time.Time{}) {
		return Date{}, fmt.Errorf("date %s is out of range", t.Format(DateLayout))
	}
	return NewDate(t.Year(), t.Month(), t.Day()), nil
}

// Properties
func (d Date) Year() int         { return d.Time.Year() }
func (d Date) Month() time.Month { return d.Time.Month() }
func (d Date) Day() int          { return d.Time.Day() }
func (d Date) IsZero() bool      { return d.Time.IsZero() }
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

func (d Date) String() string { return d.Time.Format(DateLayout) }

// =============================================================================
// MONTH WHEEL
// =============================================================================

// MonthOffset moves year/month forward by k months on a 12-month wheel.
//
//	month = (startMonth - 1 + k) mod 12 + 1
//	year  = startYear + (startMonth - 1 + k) div 12
func MonthOffset(year int, month time.Month, k int) (int, time.Month) {
	idx := int(month) - 1 + k
	return year + floorDiv(idx, 12), time.Month(floorMod(idx, 12) + 1)
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return EndOfMonth(year, month).Day()
}

func EndOfMonth(year int, month time.Month) Date {
	return Date{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// ClampedDate builds a date, clamping day to the last valid day of the month.
func ClampedDate(year int, month time.Month, day int) Date {
	if last := DaysIn(year, month); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return NewDate(year, month, day)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}
