package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oklog/ulid/v2"

	"github.com/hyperengineering/plankdash/internal/types"
)

// Encode renders the snapshot as two-space indented JSON with a trailing
// newline.
func Encode(snap *types.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// Write encodes snap and publishes it at path atomically: the document is
// written to a temporary file in the same directory and renamed into place,
// so readers see either the previous snapshot or the new one, never a
// partial write.
func Write(path string, snap *types.Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	return WriteFile(path, data)
}

// writeTemp is replaced in tests to simulate a failed write.
var writeTemp = os.WriteFile

// WriteFile atomically replaces path with data, creating parent directories.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+ulid.Make().String()+".tmp")
	if err := writeTemp(tmp, data, 0644); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}
