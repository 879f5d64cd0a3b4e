package scoring

import (
	"fmt"
	"math"

	"github.com/hyperengineering/plankdash/internal/types"
)

// SRS computes per-item retention and the aggregate retention percentage.
// Items without a usable lastReview score 0.
func SRS(items []types.Record, today string) (types.SRSBlock, error) {
	block := types.SRSBlock{Items: make([]types.Record, 0, len(items))}
	if len(items) == 0 {
		return block, nil
	}

	var total float64
	for i, item := range items {
		retention := 0.0
		last, _ := item.String("lastReview")
		if days, ok := elapsed(last, today); ok {
			stability, _ := item.Float("stability")
			retention = Retention(days, stability)
		}
		retention = Round(retention, 3)
		total += retention

		out, err := item.With("retention", retention)
		if err != nil {
			return types.SRSBlock{}, fmt.Errorf("srs item %d: %w", i, err)
		}
		block.Items = append(block.Items, out)
	}

	block.AggregateRetention = int(math.Round(total / float64(len(items)) * 100))
	return block, nil
}

// Health computes per-checkup urgency and the aggregate health score.
// Never-completed checkups are maximally urgent.
func Health(checkups []types.Record, today string, defaultSteepness float64) (types.HealthBlock, error) {
	block := types.HealthBlock{Checkups: make([]types.Record, 0, len(checkups))}
	if len(checkups) == 0 {
		return block, nil
	}

	var total float64
	for i, c := range checkups {
		urgency := 1.0
		last, _ := c.String("lastCompleted")
		if days, ok := elapsed(last, today); ok {
			interval, _ := c.Float("intervalDays")
			k, ok := c.Float("steepness")
			if !ok || k == 0 {
				k = defaultSteepness
			}
			urgency = Urgency(days, interval, k)
		}
		urgency = Round(urgency, 3)
		total += urgency

		out, err := c.With("urgency", urgency)
		if err != nil {
			return types.HealthBlock{}, fmt.Errorf("checkup %d: %w", i, err)
		}
		block.Checkups = append(block.Checkups, out)
	}

	block.AggregateScore = int(math.Round((1 - total/float64(len(checkups))) * 100))
	return block, nil
}

// Sleep scores the trailing window. Hours are summed per date before scoring,
// so every entry carries the score of its whole date. The summed day scores
// are divided by the window length and days with no entry count as 0.
func Sleep(entries []types.Record, today string, windowDays int, targetHours float64) (types.SleepBlock, error) {
	block := types.SleepBlock{Entries: []types.Record{}}

	var kept []types.Record
	perDay := make(map[string]float64)
	for _, e := range entries {
		date, _ := e.String("date")
		hours, ok := e.Float("hours")
		if !ok || hours < 0 || !inWindow(date, today, windowDays) {
			continue
		}
		perDay[date] += hours
		kept = append(kept, e)
	}
	if len(perDay) == 0 {
		return block, nil
	}

	dayScore := make(map[string]float64, len(perDay))
	var scoreSum, hoursSum float64
	for date, h := range perDay {
		dayScore[date] = SleepDayScore(h, targetHours)
		scoreSum += dayScore[date]
		hoursSum += h
	}

	for i, e := range kept {
		date, _ := e.String("date")
		out, err := e.With("score", Round(dayScore[date], 3))
		if err != nil {
			return types.SleepBlock{}, fmt.Errorf("sleep entry %d: %w", i, err)
		}
		block.Entries = append(block.Entries, out)
	}

	block.AggregateScore = int(math.Round(scoreSum / float64(windowDays) * 100))
	block.AvgHours = Round(hoursSum/float64(len(perDay)), 1)
	block.LoggedDays = len(perDay)
	return block, nil
}

// Activity sums minutes in the trailing window against the target. The
// aggregate is capped at 100.
func Activity(entries []types.Record, today string, windowDays int, targetMinutes float64) types.PlayBlock {
	block := types.PlayBlock{Entries: []types.Record{}}

	active := make(map[string]bool)
	for _, e := range entries {
		date, _ := e.String("date")
		minutes, ok := e.Float("minutes")
		if !ok || minutes < 0 || !inWindow(date, today, windowDays) {
			continue
		}
		block.Entries = append(block.Entries, e)
		block.TotalMinutes += minutes
		if minutes > 0 {
			active[date] = true
		}
	}

	block.TotalMinutes = Round(block.TotalMinutes, 1)
	block.ActiveDays = len(active)
	if targetMinutes > 0 {
		block.AggregateScore = int(math.Min(100, math.Round(block.TotalMinutes/targetMinutes*100)))
	}
	return block
}

// StrengthParams configures the plank strength model.
type StrengthParams struct {
	HalfLifeDays float64
	PerPlank     float64
	Max          float64
	Recent       int
}

// Strength sums the decayed contribution of every plank on or before today.
func Strength(days []types.DayRecord, today string, p StrengthParams) types.StrengthBlock {
	block := types.StrengthBlock{RecentPlanks: []types.RecentPlank{}}

	var total float64
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		if !d.DidPlank || d.Date > today {
			continue
		}
		since, ok := elapsed(d.Date, today)
		if !ok {
			continue
		}
		total += Decay(p.PerPlank, p.HalfLifeDays, since)

		if block.DaysSinceLastPlank == nil {
			n := int(since)
			block.DaysSinceLastPlank = &n
		}
		if len(block.RecentPlanks) < p.Recent {
			block.RecentPlanks = append(block.RecentPlanks, types.RecentPlank{Date: d.Date, Note: d.Note})
		}
	}

	if p.Max > 0 {
		total = math.Min(p.Max, total)
	}
	block.Score = int(math.Max(0, math.Min(100, math.Round(total))))
	return block
}
