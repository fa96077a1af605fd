package state

import (
	"testing"
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
)

// TestStoreUpdateNotifiesSubscriber verifies an update is delivered to a
// live subscription.
func TestStoreUpdateNotifiesSubscriber(t *testing.T) {
	st := NewStore()
	ch, cancel := st.Subscribe()
	defer cancel()

	st.Update(func(s *AppState) {
		s.Today.Steps = 8432
		s.Loading = false
	})

	select {
	case got := <-ch:
		if got.Today.Steps != 8432 {
			t.Errorf("steps = %d, want 8432", got.Today.Steps)
		}
		if got.Loading {
			t.Error("loading still true after update")
		}
	case <-time.After(time.Second):
		t.Fatal("no notification received")
	}
}

// TestStoreSlowSubscriberGetsLatest verifies intermediate states are
// dropped and the most recent one wins.
func TestStoreSlowSubscriberGetsLatest(t *testing.T) {
	st := NewStore()
	ch, cancel := st.Subscribe()
	defer cancel()

	for steps := 1; steps <= 5; steps++ {
		n := steps
		st.Update(func(s *AppState) { s.Today.Steps = n * 1000 })
	}

	got := <-ch
	if got.Today.Steps != 5000 {
		t.Errorf("steps = %d, want latest 5000", got.Today.Steps)
	}
}

// TestStoreSnapshotIsolation verifies mutating a returned snapshot does
// not leak back into the store.
func TestStoreSnapshotIsolation(t *testing.T) {
	st := NewStore()
	st.Update(func(s *AppState) {
		s.Progress = map[models.Category]models.WeeklyProgress{
			models.CategoryCardio: {Category: models.CategoryCardio, Completed: 2, Goal: 3},
		}
	})

	snap := st.Get()
	snap.Progress[models.CategoryCardio] = models.WeeklyProgress{Completed: 99}
	snap.Streaks.PerCategory[models.CategoryCardio] = 99

	fresh := st.Get()
	if fresh.Progress[models.CategoryCardio].Completed != 2 {
		t.Errorf("progress leaked: %+v", fresh.Progress[models.CategoryCardio])
	}
	if fresh.Streaks.Streak(models.CategoryCardio) != 0 {
		t.Errorf("streaks leaked: %d", fresh.Streaks.Streak(models.CategoryCardio))
	}
}

// TestStoreCancelStopsDelivery verifies no notification arrives after
// cancellation and double-cancel is safe.
func TestStoreCancelStopsDelivery(t *testing.T) {
	st := NewStore()
	ch, cancel := st.Subscribe()
	cancel()
	cancel() // idempotent

	st.Update(func(s *AppState) { s.Today.Steps = 1 })

	if _, open := <-ch; open {
		t.Error("channel still open after cancel")
	}
}
