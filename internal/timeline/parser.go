// Package timeline turns the raw daily log and the live confirmation status
// into one canonical record per calendar day, and derives streak statistics
// from that sequence.
package timeline

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hyperengineering/plankdash/internal/types"
)

// LogEntry is one dated section of the daily log before classification.
type LogEntry struct {
	Date   string
	Status string // raw status phrase, "" when the section has none
	Note   string // raw note phrase, "" when the section has none
	Body   string
}

var (
	headerRe      = regexp.MustCompile(`^##\s+(\d{4}-\d{2}-\d{2})\s*$`)
	statusLabelRe = regexp.MustCompile(`(?i)\*\*status:\*\*`)
	noteLabelRe   = regexp.MustCompile(`(?i)\*\*notes:\*\*`)
)

// ParseEntries splits the log into dated sections. A section starts at a
// "## YYYY-MM-DD" header line and runs until the next header or end of input.
// Text before the first header is ignored.
func ParseEntries(r io.Reader) ([]LogEntry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		entries []LogEntry
		date    string
		body    []string
		open    bool
	)
	flush := func() {
		if !open {
			return
		}
		entries = append(entries, newLogEntry(date, body))
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if m := headerRe.FindStringSubmatch(line); m != nil {
			flush()
			date, body, open = m[1], nil, true
			continue
		}
		if open {
			body = append(body, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	flush()

	return entries, nil
}

func newLogEntry(date string, body []string) LogEntry {
	return LogEntry{
		Date:   date,
		Status: labelledValue(body, statusLabelRe),
		Note:   labelledValue(body, noteLabelRe),
		Body:   strings.Join(body, "\n"),
	}
}

// labelledValue returns the text after the first line matching label.
// When the label ends its line the next non-blank line is used.
func labelledValue(lines []string, label *regexp.Regexp) string {
	for i, line := range lines {
		loc := label.FindStringIndex(line)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(line[loc[1]:])
		if rest != "" {
			return rest
		}
		for _, next := range lines[i+1:] {
			if v := strings.TrimSpace(next); v != "" {
				return v
			}
		}
		return ""
	}
	return ""
}

// Classify maps a free-text status phrase onto a Status together with its
// didPlank and keepsStreak flags. Matching is case-insensitive and checked
// in order: rest day, done, missed.
func Classify(phrase string) (status types.Status, didPlank, keepsStreak bool) {
	v := strings.ToLower(strings.TrimSpace(phrase))
	switch {
	case v == "":
		return types.StatusUnknown, false, false
	case strings.Contains(v, "rest day"):
		return types.StatusRest, false, true
	case strings.Contains(v, "done"), strings.Contains(v, "completed"), strings.Contains(v, "yes"):
		return types.StatusDone, true, true
	case strings.Contains(v, "missed"), strings.Contains(v, "no response"):
		return types.StatusMissed, false, false
	default:
		return types.StatusUnknown, false, false
	}
}

// ParseLog parses the full log text into one DayRecord per date with
// source=log. When a date appears more than once the last section wins.
// A section without a status phrase is classified from its whole body.
func ParseLog(content string) (map[string]types.DayRecord, error) {
	entries, err := ParseEntries(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	records := make(map[string]types.DayRecord, len(entries))
	for _, e := range entries {
		phrase := e.Status
		if phrase == "" {
			phrase = e.Body
		}
		status, didPlank, keepsStreak := Classify(phrase)

		var note *string
		if n := strings.TrimSpace(e.Note); n != "" {
			note = &n
		}

		records[e.Date] = types.DayRecord{
			Date:        e.Date,
			Status:      status,
			DidPlank:    didPlank,
			KeepsStreak: keepsStreak,
			Note:        note,
			Source:      types.SourceLog,
		}
	}
	return records, nil
}
