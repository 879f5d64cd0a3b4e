package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/hyperengineering/plankdash/internal/api"
	"github.com/hyperengineering/plankdash/internal/worker"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard and the snapshot API",
	Long: "Start the HTTP server for the dashboard files and the snapshot " +
		"API, regenerating the snapshot on start and on a fixed interval.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// 1. Configuration and logger
	cfg, err := loadConfig(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.Info("logger initialized", "level", cfg.Log.Level)

	// 2. Generator with the configured publisher
	gen, err := newGenerator(cfg)
	if err != nil {
		return err
	}
	slog.Info("generator initialized", "output", gen.OutputPath())

	// 3. HTTP router
	handler := api.NewHandler(gen, Version)
	router := api.NewRouter(handler, cfg.Server.Root)
	slog.Info("router initialized", "root", cfg.Server.Root)

	// 4. HTTP server
	addr := cfg.ListenAddr()
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout),
	}

	// 5. Workers
	var wg sync.WaitGroup
	regen := worker.NewRegenerationWorker(gen, time.Duration(cfg.Worker.RegenerateInterval))
	startWorker(ctx, &wg, "regeneration", regen.Run)

	// 6. Serve until signalled
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called.
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			serveErr <- err
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 7. Graceful shutdown: drain requests, then wait for workers
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout))
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	wg.Wait()

	slog.Info("shutdown complete")

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve %s: %w", addr, err)
	default:
		return nil
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}
