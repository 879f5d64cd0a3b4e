package timeline

import "github.com/hyperengineering/plankdash/internal/types"

// transparent reports whether a status neither extends nor breaks a streak.
func transparent(s types.Status) bool {
	return s == types.StatusRest || s == types.StatusPending
}

// LongestStreak scans days in order, ignoring anything after today, and
// returns the longest run of done days. Rest and pending days are skipped;
// every other status resets the run.
func LongestStreak(days []types.DayRecord, today string) int {
	longest, run := 0, 0
	for _, day := range days {
		if day.Date > today {
			continue
		}
		switch {
		case day.Status == types.StatusDone:
			run++
			longest = max(longest, run)
		case transparent(day.Status):
		default:
			run = 0
		}
	}
	return longest
}

// CurrentStreak walks backwards from the newest non-future day, counting
// done days and skipping rest and pending days, and stops at the first day
// with any other status.
func CurrentStreak(days []types.DayRecord, today string) int {
	count := 0
	for i := len(days) - 1; i >= 0; i-- {
		day := days[i]
		if day.Date > today || transparent(day.Status) {
			continue
		}
		if day.Status != types.StatusDone {
			break
		}
		count++
	}
	return count
}

// Summarize computes the streak summary for a timeline.
func Summarize(days []types.DayRecord, today string) types.Summary {
	s := types.Summary{
		CurrentStreak: CurrentStreak(days, today),
		LongestStreak: LongestStreak(days, today),
	}
	for _, day := range days {
		if day.Status == types.StatusDone {
			s.TotalPlanks++
		}
		if day.Date <= today {
			s.TrackedDays++
		}
	}
	return s
}
