package types

import (
	"encoding/json"
	"time"
)

// Status is the normalized outcome of a single tracked day.
type Status string

const (
	StatusDone    Status = "done"
	StatusRest    Status = "rest"
	StatusMissed  Status = "missed"
	StatusPending Status = "pending"
	StatusUnknown Status = "unknown"
	StatusFuture  Status = "future"
)

// Source records where a DayRecord came from.
type Source string

const (
	SourceLog     Source = "log"
	SourceStatus  Source = "status"
	SourceDerived Source = "derived"
)

// DayRecord is the canonical record for one calendar date.
type DayRecord struct {
	Date        string  `json:"date"`
	Status      Status  `json:"status"`
	DidPlank    bool    `json:"didPlank"`
	KeepsStreak bool    `json:"keepsStreak"`
	IsFuture    bool    `json:"isFuture"`
	Note        *string `json:"note"`
	Source      Source  `json:"source"`
}

// DateRange bounds the emitted timeline, both ends inclusive.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Summary holds streak statistics derived from the timeline.
type Summary struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	TotalPlanks   int `json:"totalPlanks"`
	TrackedDays   int `json:"trackedDays"`
}

// SRSBlock is the forgetting-curve retention block.
type SRSBlock struct {
	Items              []Record `json:"items"`
	AggregateRetention int      `json:"aggregateRetention"`
}

// HealthBlock is the checkup urgency block. Higher AggregateScore is healthier.
type HealthBlock struct {
	Checkups       []Record `json:"checkups"`
	AggregateScore int      `json:"aggregateScore"`
}

// SleepBlock scores sleep entries inside the trailing window. An entry's
// score is that of its date, with split nights summed first.
type SleepBlock struct {
	Entries        []Record `json:"entries"`
	AggregateScore int      `json:"aggregateScore"`
	AvgHours       float64  `json:"avgHours"`
	LoggedDays     int      `json:"loggedDays"`
}

// PlayBlock scores activity entries inside the trailing window.
type PlayBlock struct {
	Entries        []Record `json:"entries"`
	AggregateScore int      `json:"aggregateScore"`
	TotalMinutes   float64  `json:"totalMinutes"`
	ActiveDays     int      `json:"activeDays"`
}

// RecentPlank is one entry of the strength block's training log.
type RecentPlank struct {
	Date string  `json:"date"`
	Note *string `json:"note"`
}

// StrengthBlock is the decaying "training strength" derived from plank days.
type StrengthBlock struct {
	Score              int           `json:"score"`
	DaysSinceLastPlank *int          `json:"daysSinceLastPlank"`
	RecentPlanks       []RecentPlank `json:"recentPlanks"`
}

// Snapshot is the single document consumed by the dashboard.
// It is rebuilt wholesale on every run.
type Snapshot struct {
	GeneratedAt   time.Time     `json:"generatedAt"`
	CurrentStatus Record        `json:"currentStatus"`
	DateRange     DateRange     `json:"dateRange"`
	Summary       Summary       `json:"summary"`
	Days          []DayRecord   `json:"days"`
	SRS           SRSBlock      `json:"srs"`
	Health        HealthBlock   `json:"health"`
	Sleep         SleepBlock    `json:"sleep"`
	Play          PlayBlock     `json:"play"`
	Strength      StrengthBlock `json:"strength"`
}

// MarshalJSON ensures nil slices in SRSBlock marshal as [] not null.
func (b SRSBlock) MarshalJSON() ([]byte, error) {
	if b.Items == nil {
		b.Items = []Record{}
	}
	type Alias SRSBlock
	return json.Marshal(Alias(b))
}

// MarshalJSON ensures nil slices in HealthBlock marshal as [] not null.
func (b HealthBlock) MarshalJSON() ([]byte, error) {
	if b.Checkups == nil {
		b.Checkups = []Record{}
	}
	type Alias HealthBlock
	return json.Marshal(Alias(b))
}

// MarshalJSON ensures nil slices in SleepBlock marshal as [] not null.
func (b SleepBlock) MarshalJSON() ([]byte, error) {
	if b.Entries == nil {
		b.Entries = []Record{}
	}
	type Alias SleepBlock
	return json.Marshal(Alias(b))
}

// MarshalJSON ensures nil slices in PlayBlock marshal as [] not null.
func (b PlayBlock) MarshalJSON() ([]byte, error) {
	if b.Entries == nil {
		b.Entries = []Record{}
	}
	type Alias PlayBlock
	return json.Marshal(Alias(b))
}

// MarshalJSON ensures nil slices in StrengthBlock marshal as [] not null.
func (b StrengthBlock) MarshalJSON() ([]byte, error) {
	if b.RecentPlanks == nil {
		b.RecentPlanks = []RecentPlank{}
	}
	type Alias StrengthBlock
	return json.Marshal(Alias(b))
}

// MarshalJSON ensures nil slices in Snapshot marshal as [] not null and
// renders generatedAt with millisecond precision in UTC.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	if s.Days == nil {
		s.Days = []DayRecord{}
	}
	if s.CurrentStatus == nil {
		s.CurrentStatus = Record{}
	}
	type Alias Snapshot
	return json.Marshal(struct {
		GeneratedAt string `json:"generatedAt"`
		Alias
	}{
		GeneratedAt: s.GeneratedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		Alias:       Alias(s),
	})
}
