// Package calendar provides whole-day arithmetic over ISO-8601 dates
// (YYYY-MM-DD) in a fixed UTC calendar.
//
// Dates are passed around as strings because ISO dates sort lexically,
// which keeps comparisons and map keys trivial for callers.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"time"
)

// Layout is the ISO-8601 calendar date layout used for every date string.
const Layout = "2006-01-02"

// ErrInvalidDate is returned when a string is not a YYYY-MM-DD calendar date.
var ErrInvalidDate = errors.New("invalid ISO date")

var isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsDate reports whether s has the shape of an ISO date and names a real
// calendar day (2024-02-30 is rejected).
func IsDate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Parse returns the UTC midnight instant of an ISO date.
func Parse(s string) (time.Time, error) {
	if !isoDateRe.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t, err := time.ParseInLocation(Layout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Format returns the UTC calendar date of t. Time-of-day is discarded.
func Format(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Today returns the UTC calendar date of now.
func Today(now time.Time) string {
	return Format(now)
}

// AddDays shifts an ISO date by n calendar days (n may be negative).
func AddDays(date string, n int) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return Format(t.AddDate(0, 0, n)), nil
}

// DaysBetween returns the absolute number of whole days between two dates,
// both taken at UTC midnight.
func DaysBetween(a, b string) (int, error) {
	ta, err := Parse(a)
	if err != nil {
		return 0, err
	}
	tb, err := Parse(b)
	if err != nil {
		return 0, err
	}
	d := int(tb.Sub(ta).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d, nil
}

// MinDate returns the lexically smallest date. Empty input yields "".
func MinDate(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	min := dates[0]
	for _, d := range dates[1:] {
		if d < min {
			min = d
		}
	}
	return min
}

// MaxDate returns the lexically largest date. Empty input yields "".
func MaxDate(dates []string) string {
	if len(dates) == 0 {
		return ""
	}
	max := dates[0]
	for _, d := range dates[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

// Range yields every date from start to end inclusive, one UTC day at a
// time. The sequence is lazy and can be ranged over any number of times.
// It is empty when either bound is invalid or start is after end.
func Range(start, end string) iter.Seq[string] {
	return func(yield func(string) bool) {
		from, err := Parse(start)
		if err != nil {
			return
		}
		to, err := Parse(end)
		if err != nil {
			return
		}
		for cur := from; !cur.After(to); cur = cur.AddDate(0, 0, 1) {
			if !yield(Format(cur)) {
				return
			}
		}
	}
}
