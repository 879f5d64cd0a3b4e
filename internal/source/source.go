// Package source locates and reads the raw tracking files. Absent files fall
// back to empty defaults so a run never fails on a missing optional input.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hyperengineering/plankdash/internal/config"
	"github.com/hyperengineering/plankdash/internal/types"
	"github.com/hyperengineering/plankdash/internal/validation"
)

// DefaultLog is used when the log file is absent.
const DefaultLog = "# Plank Log\n"

// Inputs holds everything read for one run.
type Inputs struct {
	Dir      string
	Log      string
	Status   types.Record
	SRSItems []types.Record
	Checkups []types.Record
	Sleep    []types.Record
	Play     []types.Record

	// StatusFallback is set when the status record was synthesized because
	// the file was absent or unparsable.
	StatusFallback bool

	// Warnings describe fields that will be treated as absent.
	Warnings []validation.ValidationError
}

// Resolve returns the first directory that contains both the log and the
// status file. cfg.Dir is tried first, then cfg.Candidates. Relative paths
// are resolved against base.
func Resolve(cfg config.SourceConfig, base string) (string, error) {
	var candidates []string
	if cfg.Dir != "" {
		candidates = append(candidates, cfg.Dir)
	}
	candidates = append(candidates, cfg.Candidates...)

	tried := make([]string, 0, len(candidates))
	for _, c := range candidates {
		dir := c
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(base, dir)
		}
		tried = append(tried, dir)
		if isFile(filepath.Join(dir, cfg.LogFile)) && isFile(filepath.Join(dir, cfg.StatusFile)) {
			return dir, nil
		}
	}

	return "", &MissingSourceError{
		Tried:    tried,
		Required: []string{cfg.LogFile, cfg.StatusFile},
	}
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Loader reads the configured files from a directory.
type Loader struct {
	cfg config.SourceConfig
}

// NewLoader creates a loader for the configured file names.
func NewLoader(cfg config.SourceConfig) *Loader {
	return &Loader{cfg: cfg}
}

// Load reads all inputs from dir. today is used to synthesize the default
// status record.
func (l *Loader) Load(dir, today string) (*Inputs, error) {
	in, err := l.LoadFS(os.DirFS(dir), today)
	if err != nil {
		return nil, err
	}
	in.Dir = dir
	return in, nil
}

// LoadFS reads all inputs from fsys.
func (l *Loader) LoadFS(fsys fs.FS, today string) (*Inputs, error) {
	in := &Inputs{}

	logData, found, err := readOptional(fsys, l.cfg.LogFile)
	if err != nil {
		return nil, err
	}
	in.Log = DefaultLog
	if found {
		in.Log = string(logData)
	}

	in.Status, in.StatusFallback, err = l.loadStatus(fsys, today)
	if err != nil {
		return nil, err
	}

	var v validation.Collector
	if in.SRSItems, err = readCollection(fsys, l.cfg.SRSFile); err != nil {
		return nil, err
	}
	validateDates(&v, l.cfg.SRSFile, in.SRSItems, "lastReview", false)
	validateNumbers(&v, l.cfg.SRSFile, in.SRSItems, "stability", validation.ValidatePositive)

	if in.Checkups, err = readCollection(fsys, l.cfg.HealthFile); err != nil {
		return nil, err
	}
	validateDates(&v, l.cfg.HealthFile, in.Checkups, "lastCompleted", false)
	validateNumbers(&v, l.cfg.HealthFile, in.Checkups, "intervalDays", validation.ValidatePositive)

	if in.Sleep, err = readCollection(fsys, l.cfg.SleepFile); err != nil {
		return nil, err
	}
	validateDates(&v, l.cfg.SleepFile, in.Sleep, "date", true)
	validateNumbers(&v, l.cfg.SleepFile, in.Sleep, "hours", validation.ValidateNonNegative)

	if in.Play, err = readCollection(fsys, l.cfg.PlayFile); err != nil {
		return nil, err
	}
	validateDates(&v, l.cfg.PlayFile, in.Play, "date", true)
	validateNumbers(&v, l.cfg.PlayFile, in.Play, "minutes", validation.ValidateNonNegative)

	in.Warnings = v.Errors()
	return in, nil
}

// loadStatus parses the status record. Absent or unparsable files yield
// {date: today, confirmed: false}.
func (l *Loader) loadStatus(fsys fs.FS, today string) (types.Record, bool, error) {
	fallback := func() (types.Record, bool, error) {
		r, err := types.NewRecord(map[string]any{"date": today, "confirmed": false})
		return r, true, err
	}

	data, found, err := readOptional(fsys, l.cfg.StatusFile)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return fallback()
	}

	var r types.Record
	if err := json.Unmarshal(data, &r); err != nil || r == nil {
		slog.Warn("status file unparsable, using default",
			"component", "source",
			"action", "status_fallback",
			"file", l.cfg.StatusFile,
			"error", err,
		)
		return fallback()
	}
	return r, false, nil
}

// readOptional returns the file contents, or found=false when it does not exist.
func readOptional(fsys fs.FS, name string) ([]byte, bool, error) {
	if name == "" {
		return nil, false, nil
	}
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return data, true, nil
}

// readCollection decodes a JSON array of objects. A missing file or a JSON
// null yields an empty collection; null elements are dropped.
func readCollection(fsys fs.FS, name string) ([]types.Record, error) {
	data, found, err := readOptional(fsys, name)
	if err != nil || !found {
		return []types.Record{}, err
	}

	var raw []types.Record
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedInput, name, err)
	}

	out := make([]types.Record, 0, len(raw))
	for _, r := range raw {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

// validateDates records a warning for every record whose date field is not
// an ISO date. Optional fields are only checked when present and non-empty.
func validateDates(v *validation.Collector, file string, records []types.Record, field string, required bool) {
	for i, r := range records {
		raw, present := r[field]
		if !required && (!present || string(raw) == "null" || string(raw) == `""`) {
			continue
		}
		s, _ := r.String(field)
		v.Add(validation.ValidateISODate(fieldName(file, i, field), s))
	}
}

// validateNumbers records a warning for every record whose numeric field is
// missing or fails check.
func validateNumbers(v *validation.Collector, file string, records []types.Record, field string, check func(string, float64) *validation.ValidationError) {
	for i, r := range records {
		name := fieldName(file, i, field)
		f, ok := r.Float(field)
		if !ok {
			v.Add(&validation.ValidationError{Field: name, Message: "must be a number"})
			continue
		}
		v.Add(check(name, f))
	}
}

func fieldName(file string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", file, index, field)
}
