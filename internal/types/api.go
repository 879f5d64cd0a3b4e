package types

import "time"

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status        string     `json:"status"`
	Version       string     `json:"version"`
	LastGenerated *time.Time `json:"lastGenerated"`
	LastRunID     string     `json:"lastRunId,omitempty"`
}

// RegenerateRequest is the optional body of POST /api/v1/snapshot.
type RegenerateRequest struct {
	// Today overrides the reference date for this run.
	Today string `json:"today,omitempty"`
}

// SnapshotURLResponse is returned by GET /api/v1/snapshot/url.
type SnapshotURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
