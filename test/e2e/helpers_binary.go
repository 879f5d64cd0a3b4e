//go:build e2e

package e2e

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

// plankdashServer manages a running `plankdash serve` process.
type plankdashServer struct {
	cmd     *exec.Cmd
	address string
	logFile string
}

// workspaceEnv configures plankdash for ws entirely via environment
// variables, skipping any YAML file.
func workspaceEnv(ws *workspace) []string {
	return append(os.Environ(),
		"PLANK_CONFIG_PATH="+filepath.Join(ws.root, "nonexistent.yaml"),
		"PLANK_SOURCE_DIR="+ws.dataDir,
		"PLANK_OUTPUT_PATH="+ws.output,
		"PLANK_SERVER_ROOT="+ws.siteDir,
		"PLANK_LOG_LEVEL=debug",
	)
}

// startPlankdash launches the binary and waits for it to become healthy.
func startPlankdash(t *testing.T, ws *workspace) *plankdashServer {
	t.Helper()
	requirePlankdash(t)

	port := freePort(t)
	address := fmt.Sprintf("127.0.0.1:%d", port)
	logFile := filepath.Join(ws.root, "plankdash.log")

	cmd := exec.Command(plankdashBin, "serve")
	cmd.Env = append(workspaceEnv(ws),
		fmt.Sprintf("PLANK_PORT=%d", port),
		"PLANK_HOST=127.0.0.1",
		"PLANK_REGENERATE_INTERVAL=0s",
	)

	lf, err := os.Create(logFile)
	if err != nil {
		t.Fatalf("create log file: %v", err)
	}
	cmd.Stdout = lf
	cmd.Stderr = lf

	if err := cmd.Start(); err != nil {
		lf.Close()
		t.Fatalf("start plankdash: %v", err)
	}

	s := &plankdashServer{
		cmd:     cmd,
		address: address,
		logFile: logFile,
	}

	t.Cleanup(func() {
		s.stop()
		lf.Close()
	})

	if err := s.waitHealthy(10 * time.Second); err != nil {
		s.dumpLog(t)
		t.Fatalf("plankdash not healthy: %v", err)
	}

	return s
}

func (s *plankdashServer) stop() {
	if s.cmd != nil && s.cmd.Process != nil {
		_ = s.cmd.Process.Signal(os.Interrupt)
		_ = s.cmd.Wait()
	}
}

func (s *plankdashServer) baseURL() string {
	return fmt.Sprintf("http://%s", s.address)
}

func (s *plankdashServer) waitHealthy(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	url := fmt.Sprintf("%s/api/v1/health", s.baseURL())

	for time.Now().Before(deadline) {
		resp, err := http.Get(url)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("plankdash not healthy after %s", timeout)
}

func (s *plankdashServer) dumpLog(t *testing.T) {
	t.Helper()
	if data, err := os.ReadFile(s.logFile); err == nil {
		t.Logf("plankdash log:\n%s", data)
	}
}

// runPlankdash runs a one-shot subcommand and returns its stdout.
func runPlankdash(t *testing.T, ws *workspace, args ...string) (string, error) {
	t.Helper()
	requirePlankdash(t)

	cmd := exec.Command(plankdashBin, args...)
	cmd.Env = workspaceEnv(ws)
	out, err := cmd.Output()
	return string(out), err
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
