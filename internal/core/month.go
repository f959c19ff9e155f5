package core

import (
	"fmt"
	"strconv"
	"time"
)

// MonthKey identifies a calendar month as "YYYY-MM" in local time.
//
// Every record is bucketed into a month by the local calendar, never UTC:
// two records on the same UTC day can belong to different local months near
// a month boundary, and all views must agree on which one.
type MonthKey string

// MonthKeyOf derives the local month key for an instant.
// The second return value is false for a zero instant; callers must then
// exclude the record from month-scoped aggregation rather than treat it as
// belonging to month "".
func MonthKeyOf(t time.Time) (MonthKey, bool) {
	if t.IsZero() {
		return "", false
	}
	lt := t.Local()
	return MonthKey(fmt.Sprintf("%04d-%02d", lt.Year(), int(lt.Month()))), true
}

// CurrentMonthKey returns the month key for the current local date.
// It is a UI default only; aggregation always takes the month explicitly.
func CurrentMonthKey() MonthKey {
	m, _ := MonthKeyOf(time.Now())
	return m
}

// ParseMonthKey validates a "YYYY-MM" string.
func ParseMonthKey(s string) (MonthKey, error) {
	m := MonthKey(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMonthKey, s)
	}
	return m, nil
}

// Valid reports whether the key has the canonical "YYYY-MM" shape.
func (m MonthKey) Valid() bool {
	if len(m) != 7 || m[4] != '-' {
		return false
	}
	year, err := strconv.Atoi(string(m[:4]))
	if err != nil || year < 1 {
		return false
	}
	month, err := strconv.Atoi(string(m[5:7]))
	return err == nil && month >= 1 && month <= 12
}

// Year returns the calendar year of the key, or 0 for an invalid key.
func (m MonthKey) Year() int {
	if !m.Valid() {
		return 0
	}
	y, _ := strconv.Atoi(string(m[:4]))
	return y
}

// Index returns the zero-based month index (January = 0), or -1 for an
// invalid key.
func (m MonthKey) Index() int {
	if !m.Valid() {
		return -1
	}
	n, _ := strconv.Atoi(string(m[5:7]))
	return n - 1
}

// YearMonths returns the twelve month keys of a calendar year in order.
func YearMonths(year int) []MonthKey {
	months := make([]MonthKey, 12)
	for i := range months {
		months[i] = MonthKey(fmt.Sprintf("%04d-%02d", year, i+1))
	}
	return months
}
