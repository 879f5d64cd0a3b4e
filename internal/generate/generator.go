// Package generate runs the derivation pipeline: it reads the tracking files,
// builds the canonical timeline, runs the scoring producers and publishes
// the resulting snapshot.
package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/hyperengineering/plankdash/internal/calendar"
	"github.com/hyperengineering/plankdash/internal/config"
	"github.com/hyperengineering/plankdash/internal/scoring"
	"github.com/hyperengineering/plankdash/internal/snapshot"
	"github.com/hyperengineering/plankdash/internal/source"
	"github.com/hyperengineering/plankdash/internal/timeline"
	"github.com/hyperengineering/plankdash/internal/types"
	"github.com/hyperengineering/plankdash/internal/validation"
)

// ErrInvalidToday indicates an explicit reference date is not an ISO date.
var ErrInvalidToday = errors.New("invalid reference date")

// Options override configuration for a single run. Zero values fall back to
// the clock and the configured paths.
type Options struct {
	Today     string
	SourceDir string
	Output    string
}

// Result describes one completed run.
type Result struct {
	RunID     string
	Today     string
	SourceDir string
	Output    string
	Snapshot  *types.Snapshot
	Warnings  []validation.ValidationError
}

// Generator runs the pipeline. Derive is safe for concurrent use; Generate
// serializes runs so writes to the output never interleave.
type Generator struct {
	cfg       *config.Config
	loader    *source.Loader
	registry  *scoring.Registry
	publisher snapshot.Publisher
	now       func() time.Time
	baseDir   string

	mu   sync.Mutex
	last *Result
}

// Option configures a Generator.
type Option func(*Generator)

// WithClock sets the time source. Defaults to time.Now.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithBaseDir sets the directory relative source candidates resolve against.
// Defaults to the working directory.
func WithBaseDir(dir string) Option {
	return func(g *Generator) { g.baseDir = dir }
}

// WithPublisher sets the remote publisher. Defaults to snapshot.NoopPublisher.
func WithPublisher(p snapshot.Publisher) Option {
	return func(g *Generator) { g.publisher = p }
}

// WithRegistry replaces the default scoring producers.
func WithRegistry(r *scoring.Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// New creates a Generator for cfg.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:       cfg,
		loader:    source.NewLoader(cfg.Source),
		registry:  scoring.NewDefaultRegistry(cfg.Scoring),
		publisher: snapshot.NoopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			g.baseDir = wd
		}
	}
	return g
}

// OutputPath returns the configured snapshot path.
func (g *Generator) OutputPath() string {
	return g.cfg.Output.Path
}

// Publisher returns the remote publisher.
func (g *Generator) Publisher() snapshot.Publisher {
	return g.publisher
}

// Last returns the most recent successful Generate result, or nil.
func (g *Generator) Last() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.last
}

// Derive computes a snapshot without writing it. The reference date is
// captured once and used for every stage of the run.
func (g *Generator) Derive(ctx context.Context, opts Options) (*Result, error) {
	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = NewRunID()
	}

	now := g.now().UTC()
	today := calendar.Today(now)
	if opts.Today != "" {
		if _, err := calendar.Parse(opts.Today); err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidToday, opts.Today)
		}
		today = opts.Today
	}

	dir := opts.SourceDir
	if dir == "" {
		resolved, err := source.Resolve(g.cfg.Source, g.baseDir)
		if err != nil {
			return nil, err
		}
		dir = resolved
	}

	in, err := g.loader.Load(dir, today)
	if err != nil {
		return nil, err
	}
	for _, w := range in.Warnings {
		slog.Warn("input field ignored",
			"component", "generate",
			"action", "validate_input",
			"run_id", runID,
			"field", w.Field,
			"reason", w.Message,
		)
	}

	records, err := timeline.ParseLog(in.Log)
	if err != nil {
		return nil, fmt.Errorf("parse log: %w", err)
	}
	timeline.ApplyStatus(records, timeline.StatusFromRecord(in.Status), today)

	days, span := timeline.Build(records, today)

	snap := &types.Snapshot{
		GeneratedAt:   now,
		CurrentStatus: in.Status,
		DateRange:     span,
		Summary:       timeline.Summarize(days, today),
		Days:          days,
	}

	scoringIn := scoring.Input{
		Today:    today,
		Days:     days,
		SRSItems: in.SRSItems,
		Checkups: in.Checkups,
		Sleep:    in.Sleep,
		Play:     in.Play,
	}
	for _, p := range g.registry.Enabled(g.cfg.Scoring.Disabled) {
		if err := p.Produce(scoringIn, snap); err != nil {
			return nil, fmt.Errorf("produce %s: %w", p.Name(), err)
		}
	}

	return &Result{
		RunID:     runID,
		Today:     today,
		SourceDir: dir,
		Snapshot:  snap,
		Warnings:  in.Warnings,
	}, nil
}

// Generate derives a snapshot, writes it atomically to the output path and
// hands it to the publisher. Runs are serialized.
func (g *Generator) Generate(ctx context.Context, opts Options) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	runID := RunIDFromContext(ctx)
	if runID == "" {
		runID = NewRunID()
		ctx = WithRunID(ctx, runID)
	}
	start := g.now()

	res, err := g.Derive(ctx, opts)
	if err != nil {
		slog.Error("generation failed",
			"component", "generate",
			"action", "generate_failed",
			"run_id", runID,
			"error", err,
		)
		return nil, err
	}

	res.Output = opts.Output
	if res.Output == "" {
		res.Output = g.cfg.Output.Path
	}
	if err := snapshot.Write(res.Output, res.Snapshot); err != nil {
		return nil, err
	}

	if err := g.publisher.Publish(ctx, res.Output); err != nil {
		slog.Warn("snapshot publish failed",
			"component", "generate",
			"action", "publish_failed",
			"run_id", runID,
			"error", err,
		)
	}

	g.last = res
	slog.Info("snapshot generated",
		"component", "generate",
		"action", "generate_complete",
		"run_id", runID,
		"today", res.Today,
		"source", res.SourceDir,
		"output", res.Output,
		"days", len(res.Snapshot.Days),
		"current_streak", res.Snapshot.Summary.CurrentStreak,
		"warnings", len(res.Warnings),
		"duration_ms", g.now().Sub(start).Milliseconds(),
	)
	return res, nil
}
