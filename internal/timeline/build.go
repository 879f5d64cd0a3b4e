package timeline

import (
	"github.com/hyperengineering/plankdash/internal/calendar"
	"github.com/hyperengineering/plankdash/internal/types"
)

// Build emits exactly one record per calendar date from the earliest to the
// latest of today and every key in records, ascending and without gaps.
// Dates with no record become "future" placeholders when after today and
// derived misses otherwise. Keys that are not real calendar dates are ignored.
func Build(records map[string]types.DayRecord, today string) ([]types.DayRecord, types.DateRange) {
	known := []string{today}
	for date := range records {
		if calendar.IsDate(date) {
			known = append(known, date)
		}
	}
	span := types.DateRange{
		Start: calendar.MinDate(known),
		End:   calendar.MaxDate(known),
	}

	var days []types.DayRecord
	for date := range calendar.Range(span.Start, span.End) {
		days = append(days, dayFor(date, records, today))
	}
	return days, span
}

func dayFor(date string, records map[string]types.DayRecord, today string) types.DayRecord {
	isFuture := date > today

	if rec, ok := records[date]; ok {
		rec.Date = date
		rec.IsFuture = isFuture
		return rec
	}

	if isFuture {
		return types.DayRecord{
			Date:        date,
			Status:      types.StatusFuture,
			KeepsStreak: true,
			IsFuture:    true,
			Source:      types.SourceDerived,
		}
	}
	return types.DayRecord{
		Date:   date,
		Status: types.StatusMissed,
		Source: types.SourceDerived,
	}
}
