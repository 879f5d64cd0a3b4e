package plankclient

import (
	"encoding/json"
	"time"
)

// Health is the server's health report.
type Health struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	LastGenerated *time.Time `json:"lastGenerated"`
	LastRunID     string     `json:"lastRunId,omitempty"`
}

// Summary mirrors the snapshot's streak statistics.
type Summary struct {
	CurrentStreak int `json:"currentStreak"`
	LongestStreak int `json:"longestStreak"`
	TotalPlanks   int `json:"totalPlanks"`
	TrackedDays   int `json:"trackedDays"`
}

// Snapshot is a fetched snapshot document. Raw holds the exact bytes the
// server sent; the other fields are decoded from it for convenience.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	DateRange   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
	Summary Summary `json:"summary"`

	// RunID is set for snapshots returned by Regenerate.
	RunID string          `json:"-"`
	Raw   json.RawMessage `json:"-"`
}

// SnapshotURL is a time-limited download link for the published snapshot.
type SnapshotURL struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
