package timeline

import (
	"strings"

	"github.com/hyperengineering/plankdash/internal/calendar"
	"github.com/hyperengineering/plankdash/internal/types"
)

// StatusSnapshot is the live "current status" confirmation record.
type StatusSnapshot struct {
	Date      string
	Confirmed bool
	Time      string
}

// StatusFromRecord reads a StatusSnapshot out of the raw status record.
// Only the JSON literal true counts as confirmed; a non-string time is
// treated as empty.
func StatusFromRecord(r types.Record) StatusSnapshot {
	date, _ := r.String("date")
	tm, _ := r.String("time")
	return StatusSnapshot{
		Date:      date,
		Confirmed: r.Bool("confirmed"),
		Time:      tm,
	}
}

// Reconcile turns a status snapshot into at most one DayRecord.
// Confirmed snapshots are done, or rest when the time text mentions
// "rest day". Unconfirmed snapshots are pending on today and missed on any
// other date. ok is false when the snapshot date is not an ISO date.
func Reconcile(s StatusSnapshot, today string) (rec types.DayRecord, ok bool) {
	if !calendar.IsDate(s.Date) {
		return types.DayRecord{}, false
	}

	rec = types.DayRecord{
		Date:   s.Date,
		Source: types.SourceStatus,
	}
	switch {
	case s.Confirmed && strings.Contains(strings.ToLower(s.Time), "rest day"):
		rec.Status, rec.DidPlank, rec.KeepsStreak = types.StatusRest, false, true
	case s.Confirmed:
		rec.Status, rec.DidPlank, rec.KeepsStreak = types.StatusDone, true, true
	case s.Date == today:
		rec.Status = types.StatusPending
	default:
		rec.Status = types.StatusMissed
	}
	return rec, true
}

// Merge resolves a status-derived record against the log record for the
// same date. A done or rest status always wins; anything else leaves an
// existing log record in place.
func Merge(existing types.DayRecord, hasExisting bool, incoming types.DayRecord) types.DayRecord {
	if !hasExisting {
		return incoming
	}
	if incoming.Status == types.StatusDone || incoming.Status == types.StatusRest {
		return incoming
	}
	return existing
}

// ApplyStatus reconciles the snapshot and merges the result into records.
// records is modified in place.
func ApplyStatus(records map[string]types.DayRecord, s StatusSnapshot, today string) {
	incoming, ok := Reconcile(s, today)
	if !ok {
		return
	}
	existing, has := records[incoming.Date]
	records[incoming.Date] = Merge(existing, has, incoming)
}
