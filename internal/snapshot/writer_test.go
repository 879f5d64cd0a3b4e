package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperengineering/plankdash/internal/types"
)

func testSnapshot() *types.Snapshot {
	return &types.Snapshot{
		GeneratedAt: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),
		DateRange:   types.DateRange{Start: "2024-03-09", End: "2024-03-10"},
		Days: []types.DayRecord{
			{Date: "2024-03-09", Status: types.StatusDone, DidPlank: true, KeepsStreak: true, Source: types.SourceLog},
			{Date: "2024-03-10", Status: types.StatusPending, KeepsStreak: true, Source: types.SourceStatus},
		},
	}
}

func TestEncode_IndentedWithTrailingNewline(t *testing.T) {
	data, err := Encode(testSnapshot())
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !bytes.HasSuffix(data, []byte("}\n")) {
		t.Error("encoded snapshot should end with a newline")
	}
	if !bytes.Contains(data, []byte("\n  \"generatedAt\": \"2024-03-10T08:30:00.000Z\"")) {
		t.Errorf("expected two-space indentation and millisecond timestamp:\n%s", data)
	}
}

func TestWrite_CreatesParentsAndLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "public", "plank-data.json")

	if err := Write(path, testSnapshot()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := decoded["days"]; !ok {
		t.Error("output missing days")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWrite_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plank-data.json")
	if err := os.WriteFile(path, []byte("stale"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := Write(path, testSnapshot()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, _ := os.ReadFile(path)
	if bytes.Contains(data, []byte("stale")) {
		t.Error("existing snapshot was not replaced")
	}
}

func TestWriteFile_RenameFailureCleansUp(t *testing.T) {
	dir := t.TempDir()
	// A directory at the target path makes the rename fail.
	target := filepath.Join(dir, "plank-data.json")
	if err := os.MkdirAll(filepath.Join(target, "occupied"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if err := WriteFile(target, []byte("{}\n")); err == nil {
		t.Fatal("WriteFile() expected error, got nil")
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestWriteFile_PartialWriteCleansUp(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "plank-data.json")
	if err := os.WriteFile(target, []byte("previous\n"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	diskFull := errors.New("no space left on device")
	orig := writeTemp
	writeTemp = func(name string, data []byte, perm os.FileMode) error {
		if err := os.WriteFile(name, data[:len(data)/2], perm); err != nil {
			return err
		}
		return diskFull
	}
	defer func() { writeTemp = orig }()

	if err := WriteFile(target, []byte(`{"days":[]}`+"\n")); !errors.Is(err, diskFull) {
		t.Fatalf("WriteFile() error = %v, want wrapped write failure", err)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if got, _ := os.ReadFile(target); string(got) != "previous\n" {
		t.Errorf("target = %q, want previous snapshot untouched", got)
	}
}
