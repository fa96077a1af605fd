package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestSaveNowWritesSnapshot verifies an explicit save lands in the store.
func TestSaveNowWritesSnapshot(t *testing.T) {
	store := NewMemoryStore()
	snapshot := func(ctx context.Context) (models.WidgetSnapshot, error) {
		return models.WidgetSnapshot{MasterStreak: 4, TodaySteps: 8432, LastUpdated: 100}, nil
	}
	r := NewRefresher(store, snapshot, time.Minute, discardLogger())

	if err := r.SaveNow(context.Background()); err != nil {
		t.Fatalf("SaveNow error: %v", err)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.MasterStreak != 4 || got.TodaySteps != 8432 {
		t.Errorf("snapshot = %+v, want master 4 steps 8432", got)
	}
}

// TestLastUpdatedMonotonic verifies lastUpdated never decreases even when
// the snapshot builder reports an older clock.
func TestLastUpdatedMonotonic(t *testing.T) {
	store := NewMemoryStore()
	stamps := []int64{100, 50, 200}
	i := 0
	snapshot := func(ctx context.Context) (models.WidgetSnapshot, error) {
		s := models.WidgetSnapshot{LastUpdated: stamps[i]}
		i++
		return s, nil
	}
	r := NewRefresher(store, snapshot, time.Minute, discardLogger())

	var seen []int64
	for range stamps {
		if err := r.SaveNow(context.Background()); err != nil {
			t.Fatalf("SaveNow error: %v", err)
		}
		got, err := store.Load(context.Background())
		if err != nil {
			t.Fatalf("Load error: %v", err)
		}
		seen = append(seen, got.LastUpdated)
	}

	for j := 1; j < len(seen); j++ {
		if seen[j] < seen[j-1] {
			t.Fatalf("lastUpdated decreased: %v", seen)
		}
	}
	if seen[1] != 100 {
		t.Errorf("backwards clock write = %d, want held at 100", seen[1])
	}
	if seen[2] != 200 {
		t.Errorf("final write = %d, want 200", seen[2])
	}
}

// TestSaveNowPropagatesBuildError verifies a failing snapshot builder does
// not clobber the stored snapshot.
func TestSaveNowPropagatesBuildError(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Save(context.Background(), models.WidgetSnapshot{MasterStreak: 9, LastUpdated: 1}); err != nil {
		t.Fatalf("seed error: %v", err)
	}

	buildErr := errors.New("source down")
	r := NewRefresher(store, func(ctx context.Context) (models.WidgetSnapshot, error) {
		return models.WidgetSnapshot{}, buildErr
	}, time.Minute, discardLogger())

	if err := r.SaveNow(context.Background()); !errors.Is(err, buildErr) {
		t.Fatalf("SaveNow error = %v, want %v", err, buildErr)
	}

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got.MasterStreak != 9 {
		t.Errorf("stored snapshot clobbered: %+v", got)
	}
}

// TestMemoryStoreEmpty verifies loading before any save reports
// ErrStaleSnapshot.
func TestMemoryStoreEmpty(t *testing.T) {
	_, err := NewMemoryStore().Load(context.Background())
	if !errors.Is(err, models.ErrStaleSnapshot) {
		t.Errorf("error = %v, want ErrStaleSnapshot", err)
	}
}

// TestSQLiteStoreRoundTrip exercises the file-backed store end to end,
// including the empty-store error.
func TestSQLiteStoreRoundTrip(t *testing.T) {
	store, err := OpenSQLite(t.TempDir())
	if err != nil {
		t.Fatalf("OpenSQLite error: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, models.ErrStaleSnapshot) {
		t.Errorf("empty store error = %v, want ErrStaleSnapshot", err)
	}

	want := models.WidgetSnapshot{
		MasterStreak: 7, LiftsStreak: 5, CardioStreak: 3, RecoveryStreak: 2,
		LiftsCompleted: 2, LiftsGoal: 4,
		TodaySteps: 8432, StepsGoal: 10000, TodayCalories: 512,
		LastUpdated: 1770000000,
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}

	// Last writer wins.
	want.TodaySteps = 9001
	want.LastUpdated = 1770000100
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("second Save error: %v", err)
	}
	got, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("second Load error: %v", err)
	}
	if got.TodaySteps != 9001 {
		t.Errorf("steps after overwrite = %d, want 9001", got.TodaySteps)
	}
}
