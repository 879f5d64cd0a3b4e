package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// --- Fixtures ---

const (
	fixtureLog = "# Plank Log\n\n" +
		"## 2024-03-01\n**Status:** Done\n\n" +
		"## 2024-03-02\n**Status:** Done\n\n" +
		"## 2024-03-03\n**Status:** Rest day\n\n" +
		"## 2024-03-05\n**Status:** Done\n"
	fixtureStatus = `{"date":"2024-03-06","confirmed":false}`
	fixtureSRS    = `[{"id":"go-iter","lastReview":"2024-03-04","stability":4}]`
	fixtureHealth = `[{"name":"Dentist","lastCompleted":"2023-09-06","intervalDays":180}]`
	fixtureSleep  = `[{"date":"2024-03-05","hours":8},{"date":"2024-03-04","hours":6}]`
	fixturePlay   = `[{"date":"2024-03-05","minutes":30,"activity":"climbing"}]`
)

// workspace is a temp layout holding tracking files, a dashboard and an
// output location.
type workspace struct {
	root    string
	dataDir string
	siteDir string
	output  string
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	ws := &workspace{
		root:    root,
		dataDir: filepath.Join(root, "data"),
		siteDir: filepath.Join(root, "site"),
		output:  filepath.Join(root, "site", "public", "plank-data.json"),
	}

	ws.write(t, filepath.Join(ws.dataDir, "plank-log.md"), fixtureLog)
	ws.write(t, filepath.Join(ws.dataDir, "plank-status.json"), fixtureStatus)
	ws.write(t, filepath.Join(ws.dataDir, "srs-items.json"), fixtureSRS)
	ws.write(t, filepath.Join(ws.dataDir, "health-checkups.json"), fixtureHealth)
	ws.write(t, filepath.Join(ws.dataDir, "sleep-log.json"), fixtureSleep)
	ws.write(t, filepath.Join(ws.dataDir, "play-log.json"), fixturePlay)
	ws.write(t, filepath.Join(ws.siteDir, "index.html"), "<!doctype html><title>plank</title>")
	ws.write(t, filepath.Join(ws.siteDir, "src", "main.js"), "fetch('public/plank-data.json')")
	return ws
}

func (ws *workspace) write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// appendLog adds a section to the plank log.
func (ws *workspace) appendLog(t *testing.T, section string) {
	t.Helper()
	f, err := os.OpenFile(filepath.Join(ws.dataDir, "plank-log.md"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(section); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

// --- HTTP helpers ---

// snapshotDoc is the subset of the snapshot the tests inspect.
type snapshotDoc struct {
	GeneratedAt string `json:"generatedAt"`
	DateRange   struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"dateRange"`
	Summary struct {
		CurrentStreak int `json:"currentStreak"`
		LongestStreak int `json:"longestStreak"`
		TotalPlanks   int `json:"totalPlanks"`
		TrackedDays   int `json:"trackedDays"`
	} `json:"summary"`
	Days []struct {
		Date   string `json:"date"`
		Status string `json:"status"`
		Source string `json:"source"`
	} `json:"days"`
	SRS struct {
		AggregateRetention float64 `json:"aggregateRetention"`
	} `json:"srs"`
	Health struct {
		AggregateScore float64 `json:"aggregateScore"`
	} `json:"health"`
	Play struct {
		TotalMinutes float64 `json:"totalMinutes"`
		ActiveDays   int     `json:"activeDays"`
	} `json:"play"`
}

func statusOf(doc snapshotDoc, date string) string {
	for _, d := range doc.Days {
		if d.Date == date {
			return d.Status
		}
	}
	return ""
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("decode body: %v\n%s", err, data)
	}
}
