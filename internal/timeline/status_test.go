package timeline

import (
	"encoding/json"
	"testing"

	"github.com/hyperengineering/plankdash/internal/types"
)

func TestStatusFromRecord(t *testing.T) {
	var r types.Record
	if err := json.Unmarshal([]byte(`{"date":"2024-01-03","confirmed":true,"time":"07:10"}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := StatusFromRecord(r)
	want := StatusSnapshot{Date: "2024-01-03", Confirmed: true, Time: "07:10"}
	if got != want {
		t.Errorf("StatusFromRecord() = %+v, want %+v", got, want)
	}
}

func TestStatusFromRecord_NonBooleanConfirmed(t *testing.T) {
	var r types.Record
	if err := json.Unmarshal([]byte(`{"date":"2024-01-03","confirmed":"true","time":42}`), &r); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := StatusFromRecord(r)
	if got.Confirmed {
		t.Error(`Confirmed = true for the string "true"`)
	}
	if got.Time != "" {
		t.Errorf("Time = %q, want empty for a numeric time", got.Time)
	}
}

func TestReconcile(t *testing.T) {
	const today = "2024-01-03"
	tests := []struct {
		name        string
		in          StatusSnapshot
		wantOK      bool
		status      types.Status
		didPlank    bool
		keepsStreak bool
	}{
		{"confirmed", StatusSnapshot{Date: today, Confirmed: true, Time: "06:45"}, true, types.StatusDone, true, true},
		{"confirmed rest", StatusSnapshot{Date: today, Confirmed: true, Time: "Rest Day"}, true, types.StatusRest, false, true},
		{"unconfirmed today", StatusSnapshot{Date: today}, true, types.StatusPending, false, false},
		{"unconfirmed earlier", StatusSnapshot{Date: "2024-01-01"}, true, types.StatusMissed, false, false},
		{"invalid date", StatusSnapshot{Date: "today", Confirmed: true}, false, "", false, false},
		{"empty date", StatusSnapshot{}, false, "", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, ok := Reconcile(tt.in, today)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if rec.Status != tt.status || rec.DidPlank != tt.didPlank || rec.KeepsStreak != tt.keepsStreak {
				t.Errorf("record = %+v, want status=%s didPlank=%v keepsStreak=%v",
					rec, tt.status, tt.didPlank, tt.keepsStreak)
			}
			if rec.Source != types.SourceStatus {
				t.Errorf("source = %s, want status", rec.Source)
			}
			if rec.Note != nil {
				t.Errorf("note = %q, want nil", *rec.Note)
			}
		})
	}
}

func TestMerge_Precedence(t *testing.T) {
	note := "from log"
	logMissed := types.DayRecord{Date: "2024-01-02", Status: types.StatusMissed, Source: types.SourceLog}
	logDone := types.DayRecord{Date: "2024-01-02", Status: types.StatusDone, DidPlank: true, KeepsStreak: true, Note: &note, Source: types.SourceLog}
	statusDone := types.DayRecord{Date: "2024-01-02", Status: types.StatusDone, DidPlank: true, KeepsStreak: true, Source: types.SourceStatus}
	statusRest := types.DayRecord{Date: "2024-01-02", Status: types.StatusRest, KeepsStreak: true, Source: types.SourceStatus}
	statusMissed := types.DayRecord{Date: "2024-01-02", Status: types.StatusMissed, Source: types.SourceStatus}

	tests := []struct {
		name        string
		existing    types.DayRecord
		hasExisting bool
		incoming    types.DayRecord
		want        types.DayRecord
	}{
		{"no log record", types.DayRecord{}, false, statusMissed, statusMissed},
		{"confirmed done beats logged miss", logMissed, true, statusDone, statusDone},
		{"confirmed rest beats logged done", logDone, true, statusRest, statusRest},
		{"unconfirmed never beats log", logDone, true, statusMissed, logDone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.existing, tt.hasExisting, tt.incoming)
			if got.Status != tt.want.Status || got.Source != tt.want.Source {
				t.Errorf("Merge() = %s/%s, want %s/%s", got.Status, got.Source, tt.want.Status, tt.want.Source)
			}
		})
	}
}

func TestApplyStatus(t *testing.T) {
	records := map[string]types.DayRecord{
		"2024-01-02": {Date: "2024-01-02", Status: types.StatusMissed, Source: types.SourceLog},
	}

	ApplyStatus(records, StatusSnapshot{Date: "2024-01-02", Confirmed: true}, "2024-01-03")
	if got := records["2024-01-02"]; got.Status != types.StatusDone || got.Source != types.SourceStatus {
		t.Errorf("record = %+v, want done from status", got)
	}

	ApplyStatus(records, StatusSnapshot{Date: "not-a-date", Confirmed: true}, "2024-01-03")
	if len(records) != 1 {
		t.Errorf("invalid status date added a record: %v", records)
	}

	ApplyStatus(records, StatusSnapshot{Date: "2024-01-03"}, "2024-01-03")
	if got := records["2024-01-03"]; got.Status != types.StatusPending {
		t.Errorf("today record = %+v, want pending", got)
	}
}
