package widget

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stridetrack/stridetrack/internal/bridge"
	"github.com/stridetrack/stridetrack/internal/models"
)

func testProvider(store bridge.SnapshotStore) *TimelineProvider {
	p := NewTimelineProvider(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	p.now = func() time.Time { return time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC) }
	return p
}

// TestEntryFromStoredSnapshot verifies a stored snapshot flows through
// with the 30-minute refresh horizon.
func TestEntryFromStoredSnapshot(t *testing.T) {
	store := bridge.NewMemoryStore()
	want := models.WidgetSnapshot{MasterStreak: 3, TodaySteps: 8432, LastUpdated: 1770000000}
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	entry := testProvider(store).Entry(context.Background())

	if entry.Placeholder {
		t.Error("entry marked placeholder with a stored snapshot present")
	}
	if entry.Snapshot != want {
		t.Errorf("snapshot = %+v, want %+v", entry.Snapshot, want)
	}
	if got := entry.RefreshAfter.Sub(entry.GeneratedAt); got != 30*time.Minute {
		t.Errorf("refresh horizon = %v, want 30m", got)
	}
}

// TestEntryPlaceholderOnEmptyStore verifies the spec fixture renders when
// shared storage has nothing, with no error surfaced.
func TestEntryPlaceholderOnEmptyStore(t *testing.T) {
	entry := testProvider(bridge.NewMemoryStore()).Entry(context.Background())

	if !entry.Placeholder {
		t.Fatal("entry not marked placeholder on empty store")
	}
	if entry.Snapshot.MasterStreak != 7 {
		t.Errorf("placeholder master streak = %d, want 7", entry.Snapshot.MasterStreak)
	}
	if entry.Snapshot.StepsGoal != 10000 {
		t.Errorf("placeholder steps goal = %d, want 10000", entry.Snapshot.StepsGoal)
	}
}
