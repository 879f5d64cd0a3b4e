package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// logCapture captures slog output for testing
type logCapture struct {
	mu      sync.Mutex
	entries []map[string]any
}

func (c *logCapture) handler() slog.Handler {
	return slog.NewJSONHandler(c, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func (c *logCapture) Write(p []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err == nil {
		c.entries = append(c.entries, entry)
	}
	return len(p), nil
}

func (c *logCapture) hasMessage(msg string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.entries {
		if e["msg"] == msg {
			return true
		}
	}
	return false
}

// logMessages extracts msg fields from JSON log lines.
func logMessages(logs string) []string {
	var msgs []string
	scanner := bufio.NewScanner(strings.NewReader(logs))
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}
		if msg, ok := entry["msg"].(string); ok {
			msgs = append(msgs, msg)
		}
	}
	return msgs
}

func indexOf(slice []string, item string) int {
	for i, v := range slice {
		if v == item {
			return i
		}
	}
	return -1
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestStartWorker_LaunchesGoroutineAndTracksCompletion(t *testing.T) {
	capture := &logCapture{}
	oldDefault := slog.Default()
	slog.SetDefault(slog.New(capture.handler()))
	defer slog.SetDefault(oldDefault)

	var wg sync.WaitGroup
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	finished := atomic.Bool{}
	startWorker(ctx, &wg, "regeneration", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		time.Sleep(20 * time.Millisecond) // in-flight run completing
		finished.Store(true)
	})

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("worker function was not called")
	}

	cancel()
	wg.Wait()

	if !finished.Load() {
		t.Error("wg.Wait() returned before worker completed")
	}
	if !capture.hasMessage("worker started") || !capture.hasMessage("worker stopped") {
		t.Error("expected worker started/stopped log messages")
	}

	capture.mu.Lock()
	defer capture.mu.Unlock()
	for _, e := range capture.entries {
		if e["worker"] != "regeneration" {
			t.Errorf("log entry without worker name: %v", e)
		}
	}
}

func TestServe_LifecycleAndGracefulShutdown(t *testing.T) {
	root := workspace(t)
	port := freePort(t)
	t.Setenv("PLANK_PORT", fmt.Sprint(port))
	t.Setenv("PLANK_LOG_LEVEL", "info")
	t.Setenv("PLANK_SERVER_ROOT", root)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	type result struct {
		stderr string
		err    error
	}
	done := make(chan result, 1)
	go func() {
		_, stderr, err := executeCmdContext(t, ctx, "serve")
		done <- result{stderr, err}
	}()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	deadline := time.Now().Add(5 * time.Second)
	ready := false
	for time.Now().Before(deadline) && !ready {
		resp, err := http.Get(base + "/api/v1/snapshot")
		if err == nil {
			resp.Body.Close()
			ready = resp.StatusCode == http.StatusOK
		}
		if !ready {
			time.Sleep(20 * time.Millisecond)
		}
	}
	if !ready {
		cancel()
		res := <-done
		t.Fatalf("server never served a snapshot: err=%v\n%s", res.err, res.stderr)
	}

	cancel()
	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
	if res.err != nil {
		t.Fatalf("serve error = %v", res.err)
	}

	msgs := logMessages(res.stderr)
	order := []string{
		"logger initialized",
		"generator initialized",
		"router initialized",
		"snapshot generated",
		"shutdown initiated",
		"shutdown complete",
	}
	last := -1
	for _, msg := range order {
		idx := indexOf(msgs, msg)
		if idx == -1 {
			t.Errorf("missing log %q in %v", msg, msgs)
			continue
		}
		if idx < last {
			t.Errorf("log %q out of order in %v", msg, msgs)
		}
		last = idx
	}
	// Workers see the cancellation together with the server, but must be
	// waited for before shutdown completes.
	if idx := indexOf(msgs, "worker stopped"); idx == -1 || idx > indexOf(msgs, "shutdown complete") {
		t.Errorf("worker stopped not logged before shutdown complete: %v", msgs)
	}
	if idx := indexOf(msgs, "server starting"); idx == -1 || idx > indexOf(msgs, "shutdown initiated") {
		t.Errorf("server starting not logged before shutdown: %v", msgs)
	}

	if _, err := http.Get(base + "/api/v1/health"); err == nil {
		t.Error("server still accepting connections after shutdown")
	}
}

func TestServe_InvalidConfigFails(t *testing.T) {
	workspace(t)
	t.Setenv("PLANK_LOG_FORMAT", "xml")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if _, _, err := executeCmdContext(t, ctx, "serve"); err == nil || !strings.Contains(err.Error(), "log.format") {
		t.Errorf("serve error = %v, want log.format validation error", err)
	}
}

func TestServe_BindFailureIsReturned(t *testing.T) {
	workspace(t)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer l.Close()
	t.Setenv("PLANK_HOST", "127.0.0.1")
	t.Setenv("PLANK_PORT", fmt.Sprint(l.Addr().(*net.TCPAddr).Port))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, stderr, err := executeCmdContext(t, ctx, "serve")
	if err == nil {
		t.Fatal("serve returned nil with the port already in use")
	}
	if ctx.Err() != nil {
		t.Fatalf("serve only returned on test timeout: %v", err)
	}
	if !strings.Contains(err.Error(), "address already in use") {
		t.Errorf("serve error = %v, want bind failure", err)
	}
	if !strings.Contains(stderr, "shutdown complete") {
		t.Errorf("serve skipped graceful shutdown:\n%s", stderr)
	}
}
