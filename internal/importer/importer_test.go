package importer

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const samplePayload = `{
  "data": {
    "metrics": [
      {"name": "step_count", "units": "count", "data": [
        {"date": "2025-03-10 00:00:00 +0000", "qty": 8432},
        {"date": "2025-03-11 00:00:00 +0000", "qty": 10210}
      ]}
    ],
    "workouts": [
      {"name": "Outdoor Run", "start": "2025-03-10 07:00:00 +0000", "end": "2025-03-10 07:30:00 +0000"}
    ]
  }
}`

// TestImportDryRun verifies that dry-run mode counts file contents without
// needing a database.
func TestImportDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2025-03-10.json", samplePayload)
	writeFile(t, dir, "empty.json", `{"data":{"metrics":[],"workouts":[]}}`)
	writeFile(t, dir, "notes.txt", "not a payload")
	writeFile(t, dir, "broken.json", "{nope")

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	imp := New(nil, 1, log, true)

	stats, err := imp.Import(context.Background(), dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.FilesProcessed != 1 {
		t.Errorf("files processed = %d, want 1", stats.FilesProcessed)
	}
	if stats.FilesSkipped != 1 {
		t.Errorf("files skipped = %d, want 1", stats.FilesSkipped)
	}
	if stats.FilesErrored != 1 {
		t.Errorf("files errored = %d, want 1", stats.FilesErrored)
	}
	if stats.MetricPoints != 2 {
		t.Errorf("metric points = %d, want 2", stats.MetricPoints)
	}
	if stats.WorkoutsInserted != 1 {
		t.Errorf("workouts = %d, want 1", stats.WorkoutsInserted)
	}
}

// TestImportEmptyDir verifies a directory with no payload files is an error
// instead of silently succeeding.
func TestImportEmptyDir(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	imp := New(nil, 1, log, true)

	if _, err := imp.Import(context.Background(), t.TempDir()); err == nil {
		t.Fatal("expected error for directory without payloads")
	}
}

// TestImportMissingDir verifies a nonexistent path is reported clearly.
func TestImportMissingDir(t *testing.T) {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	imp := New(nil, 1, log, true)

	if _, err := imp.Import(context.Background(), "/nonexistent/exports"); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
