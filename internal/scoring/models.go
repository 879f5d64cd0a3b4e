// Package scoring implements the closed-form decay and urgency models that
// produce the snapshot's scoring blocks.
package scoring

import (
	"math"

	"github.com/hyperengineering/plankdash/internal/calendar"
)

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// Retention is the forgetting curve exp(-elapsed/stability). A non-positive
// stability yields 0.
func Retention(elapsedDays, stability float64) float64 {
	if elapsedDays <= 0 {
		return 1
	}
	if stability <= 0 || math.IsNaN(stability) {
		return 0
	}
	return math.Exp(-elapsedDays / stability)
}

// Urgency is the logistic overdue model 1/(1+exp(-k(elapsed/interval-1))).
// A non-positive interval is treated as maximally overdue.
func Urgency(elapsedDays, intervalDays, steepness float64) float64 {
	if intervalDays <= 0 || math.IsNaN(intervalDays) {
		return 1
	}
	return 1 / (1 + math.Exp(-steepness*(elapsedDays/intervalDays-1)))
}

// SleepDayScore scores one night against the target: max(0, 1-|h-target|/target).
func SleepDayScore(hours, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Max(0, 1-math.Abs(hours-target)/target)
}

// Decay is the strength contribution of one plank daysSince days ago.
func Decay(perPlank, halfLifeDays, daysSince float64) float64 {
	if halfLifeDays <= 0 {
		return 0
	}
	return perPlank * math.Exp(-math.Ln2/halfLifeDays*math.Max(0, daysSince))
}

// elapsed returns the absolute number of days between date and today. ok is
// false when date is absent or invalid.
func elapsed(date, today string) (float64, bool) {
	if date == "" {
		return 0, false
	}
	days, err := calendar.DaysBetween(date, today)
	if err != nil {
		return 0, false
	}
	return float64(days), true
}

// inWindow reports whether date falls in the trailing window of size days
// ending at today, inclusive.
func inWindow(date, today string, size int) bool {
	if size <= 0 || !calendar.IsDate(date) {
		return false
	}
	start, err := calendar.AddDays(today, -(size - 1))
	if err != nil {
		return false
	}
	return date >= start && date <= today
}
