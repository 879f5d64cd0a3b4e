// Package worker runs background jobs for the dashboard server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/hyperengineering/plankdash/internal/generate"
)

// SnapshotGenerator defines the generator operations needed by the
// regeneration worker.
type SnapshotGenerator interface {
	Generate(ctx context.Context, opts generate.Options) (*generate.Result, error)
}

// RegenerationWorker rebuilds the snapshot periodically so the dashboard
// picks up new log entries without a manual run.
type RegenerationWorker struct {
	generator SnapshotGenerator
	interval  time.Duration
}

// NewRegenerationWorker creates a worker with the given generator and interval.
func NewRegenerationWorker(generator SnapshotGenerator, interval time.Duration) *RegenerationWorker {
	return &RegenerationWorker{
		generator: generator,
		interval:  interval,
	}
}

// Run starts the worker loop. Regenerates immediately on start, then on each
// interval. A non-positive interval regenerates once and returns. Respects
// context cancellation for graceful shutdown; an in-progress run completes.
func (w *RegenerationWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "regeneration",
		"interval", w.interval.String(),
	)

	w.regenerate(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "regeneration",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.regenerate(ctx)
		}
	}
}

// regenerate runs one generation and logs any errors.
func (w *RegenerationWorker) regenerate(ctx context.Context) {
	runID := generate.NewRunID()
	slog.Info("regeneration started",
		"component", "worker",
		"action", "regenerate_start",
		"run_id", runID,
	)

	if _, err := w.generator.Generate(generate.WithRunID(ctx, runID), generate.Options{}); err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Warn("regeneration failed",
			"component", "worker",
			"action", "regenerate_failed",
			"run_id", runID,
			"error", err,
		)
	}
}
