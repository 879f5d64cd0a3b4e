// Package site assembles the deployable static dashboard.
package site

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hyperengineering/plankdash/internal/config"
)

// SnapshotName is the file name the dashboard fetches.
const SnapshotName = "plank-data.json"

// ErrUnsafeDist indicates the dist directory would remove the site root or
// one of its ancestors.
var ErrUnsafeDist = errors.New("refusing to replace dist directory")

// Build recreates the dist directory and copies index.html, the src tree and
// the snapshot at snapshotPath into it. It returns the dist path.
func Build(cfg config.SiteConfig, snapshotPath string) (string, error) {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return "", fmt.Errorf("resolve site root: %w", err)
	}
	dist := cfg.DistDir
	if !filepath.IsAbs(dist) {
		dist = filepath.Join(root, dist)
	}
	if err := checkDist(root, dist); err != nil {
		return "", err
	}

	if err := os.RemoveAll(dist); err != nil {
		return "", fmt.Errorf("clear dist: %w", err)
	}
	if err := os.MkdirAll(dist, 0755); err != nil {
		return "", fmt.Errorf("create dist: %w", err)
	}

	if err := copyFile(filepath.Join(root, "index.html"), filepath.Join(dist, "index.html")); err != nil {
		return "", err
	}
	if err := os.CopyFS(filepath.Join(dist, "src"), os.DirFS(filepath.Join(root, "src"))); err != nil {
		return "", fmt.Errorf("copy src: %w", err)
	}
	if err := copyFile(snapshotPath, filepath.Join(dist, SnapshotName)); err != nil {
		return "", err
	}

	slog.Info("static site built",
		"component", "site",
		"action", "build_complete",
		"dist", dist,
	)
	return dist, nil
}

// checkDist rejects a dist directory equal to or containing root.
func checkDist(root, dist string) error {
	rel, err := filepath.Rel(dist, root)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeDist, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return fmt.Errorf("%w: %s contains the site root", ErrUnsafeDist, dist)
}

func copyFile(from, to string) error {
	src, err := os.Open(from)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(from), err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(from), err)
	}
	dst, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("copy %s: %w", filepath.Base(from), err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("copy %s: %w", filepath.Base(from), err)
	}
	return dst.Close()
}
