package tracker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stridetrack/stridetrack/internal/messaging"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/state"
)

// fakeRepo is an in-memory Repository; fakeSource exposes its workouts
// and metrics as an activity.Source.
type fakeRepo struct {
	mu          sync.Mutex
	goals       []models.CategoryGoal
	workouts    []models.WorkoutRecord
	metrics     models.DailyMetrics
	streaks     models.StreakState
	fail        bool
	failMetrics bool
}

func (f *fakeRepo) workoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.workouts)
}

func (f *fakeRepo) GetGoals(ctx context.Context, userID int) ([]models.CategoryGoal, error) {
	if f.fail {
		return nil, errors.New("db down")
	}
	return f.goals, nil
}

type fakeSource struct {
	repo *fakeRepo
}

func (f fakeSource) WorkoutsBetween(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	if f.repo.fail {
		return nil, errors.New("db down")
	}
	f.repo.mu.Lock()
	defer f.repo.mu.Unlock()
	var out []models.WorkoutRecord
	for _, w := range f.repo.workouts {
		if !w.StartedAt.Before(start) && w.StartedAt.Before(end) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f fakeSource) TodayMetrics(ctx context.Context) (models.DailyMetrics, error) {
	if f.repo.fail || f.repo.failMetrics {
		return models.DailyMetrics{}, errors.New("db down")
	}
	return f.repo.metrics, nil
}

func (f *fakeRepo) InsertWorkout(ctx context.Context, w models.WorkoutRecord) (bool, error) {
	if f.fail {
		return false, errors.New("db down")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.workouts {
		if existing.StartedAt.Equal(w.StartedAt) && existing.Name == w.Name {
			return false, nil
		}
	}
	f.workouts = append(f.workouts, w)
	return true, nil
}

func (f *fakeRepo) GetStreakState(ctx context.Context, userID int) (models.StreakState, error) {
	if f.fail {
		return models.StreakState{}, errors.New("db down")
	}
	return f.streaks, nil
}

func (f *fakeRepo) PutStreakState(ctx context.Context, userID int, s models.StreakState) error {
	if f.fail {
		return errors.New("db down")
	}
	f.streaks = s
	return nil
}

func testService(repo *fakeRepo, now time.Time) (*Service, *state.Store) {
	store := state.NewStore()
	svc := New(repo, fakeSource{repo}, store, 1, 10000, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return now }
	return svc, store
}

func defaultGoals() []models.CategoryGoal {
	return []models.CategoryGoal{
		{Category: models.CategoryStrength, WeeklyTarget: 4},
		{Category: models.CategoryCardio, WeeklyTarget: 3},
		{Category: models.CategoryRecovery, WeeklyTarget: 2},
	}
}

// TestRefreshPublishesProgress verifies a refresh computes this week's
// progress and today's metrics into the state store.
func TestRefreshPublishesProgress(t *testing.T) {
	// Wednesday; week started Monday March 2nd.
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goals: defaultGoals(),
		workouts: []models.WorkoutRecord{
			{Category: models.CategoryStrength, Name: "Push Day", StartedAt: now.AddDate(0, 0, -1)},
			{Category: models.CategoryStrength, Name: "Pull Day", StartedAt: now.Add(-2 * time.Hour)},
			{Category: models.CategoryCardio, Name: "Running", StartedAt: now.Add(-26 * time.Hour)},
		},
		metrics: models.DailyMetrics{Steps: 8432, CaloriesBurned: 512},
		streaks: models.StreakState{
			Master:        2,
			PerCategory:   map[models.Category]int{models.CategoryStrength: 2, models.CategoryCardio: 2, models.CategoryRecovery: 2},
			LastEvaluated: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		},
	}
	svc, store := testService(repo, now)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	st := store.Get()
	if st.Loading || st.Stale {
		t.Errorf("state flags = loading %v stale %v, want false/false", st.Loading, st.Stale)
	}
	if got := st.Progress[models.CategoryStrength].Completed; got != 2 {
		t.Errorf("strength completed = %d, want 2", got)
	}
	if st.Today.Steps != 8432 {
		t.Errorf("today steps = %d, want 8432", st.Today.Steps)
	}
}

// TestRefreshRollsOverPendingWeek verifies the previous week is scored
// once when LastEvaluated lags behind.
func TestRefreshRollsOverPendingWeek(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	prevWeek := time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC)

	// Previous week fully met: 4 strength, 3 cardio, 2 recovery.
	var workouts []models.WorkoutRecord
	mk := func(c models.Category, n int) {
		for i := 0; i < n; i++ {
			workouts = append(workouts, models.WorkoutRecord{
				Category:  c,
				Name:      string(c),
				StartedAt: prevWeek.Add(time.Duration(len(workouts)) * time.Hour),
			})
		}
	}
	mk(models.CategoryStrength, 4)
	mk(models.CategoryCardio, 3)
	mk(models.CategoryRecovery, 2)

	repo := &fakeRepo{
		goals:    defaultGoals(),
		workouts: workouts,
		streaks: models.StreakState{
			Master:        1,
			PerCategory:   map[models.Category]int{models.CategoryStrength: 1, models.CategoryCardio: 1, models.CategoryRecovery: 1},
			LastEvaluated: prevWeek.AddDate(0, 0, -7),
		},
	}
	svc, store := testService(repo, now)

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}

	if repo.streaks.Master != 2 {
		t.Errorf("persisted master streak = %d, want 2", repo.streaks.Master)
	}
	if !repo.streaks.LastEvaluated.Equal(prevWeek) {
		t.Errorf("LastEvaluated = %v, want %v", repo.streaks.LastEvaluated, prevWeek)
	}
	if got := store.Get().Streaks.Master; got != 2 {
		t.Errorf("published master streak = %d, want 2", got)
	}

	// A second refresh must not score the same week again.
	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("second Refresh error: %v", err)
	}
	if repo.streaks.Master != 2 {
		t.Errorf("master streak after re-refresh = %d, want 2", repo.streaks.Master)
	}
}

// TestRefreshFailureMarksStale verifies a repository outage flags the
// state stale instead of crashing or clearing it.
func TestRefreshFailureMarksStale(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{goals: defaultGoals(), fail: true}
	svc, store := testService(repo, now)

	err := svc.Refresh(context.Background())
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Errorf("error = %v, want ErrDataUnavailable", err)
	}
	st := store.Get()
	if !st.Stale {
		t.Error("state not marked stale after failure")
	}
}

// TestRefreshMetricsOutagePublishesStale verifies that when only today's
// metrics are unreadable, the freshly computed progress is still published
// with the stale flag set.
func TestRefreshMetricsOutagePublishesStale(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goals: defaultGoals(),
		workouts: []models.WorkoutRecord{
			{Category: models.CategoryStrength, Name: "Push Day", StartedAt: now.Add(-2 * time.Hour)},
		},
		streaks: models.StreakState{
			PerCategory:   map[models.Category]int{},
			LastEvaluated: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		},
		failMetrics: true,
	}
	svc, store := testService(repo, now)

	err := svc.Refresh(context.Background())
	if !errors.Is(err, models.ErrDataUnavailable) {
		t.Errorf("error = %v, want ErrDataUnavailable", err)
	}

	st := store.Get()
	if !st.Stale {
		t.Error("state not marked stale")
	}
	if got := st.Progress[models.CategoryStrength].Completed; got != 1 {
		t.Errorf("strength completed = %d, want 1 (progress should still publish)", got)
	}
}

// TestSnapshotBuildsWireRecord verifies the snapshot carries streaks,
// progress, and today's totals with the strength→lifts field mapping.
func TestSnapshotBuildsWireRecord(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		goals: defaultGoals(),
		workouts: []models.WorkoutRecord{
			{Category: models.CategoryStrength, Name: "Push Day", StartedAt: now.Add(-2 * time.Hour)},
		},
		metrics: models.DailyMetrics{Steps: 8432, CaloriesBurned: 512},
		streaks: models.StreakState{
			Master:        3,
			PerCategory:   map[models.Category]int{models.CategoryStrength: 5, models.CategoryCardio: 3, models.CategoryRecovery: 4},
			LastEvaluated: time.Date(2026, 2, 23, 0, 0, 0, 0, time.UTC),
		},
	}
	svc, _ := testService(repo, now)

	snap, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot error: %v", err)
	}
	if snap.MasterStreak != 3 || snap.LiftsStreak != 5 {
		t.Errorf("streaks = master %d lifts %d, want 3/5", snap.MasterStreak, snap.LiftsStreak)
	}
	if snap.LiftsCompleted != 1 || snap.LiftsGoal != 4 {
		t.Errorf("lifts progress = %d/%d, want 1/4", snap.LiftsCompleted, snap.LiftsGoal)
	}
	if snap.TodaySteps != 8432 || snap.StepsGoal != 10000 {
		t.Errorf("steps = %d/%d, want 8432/10000", snap.TodaySteps, snap.StepsGoal)
	}
	if snap.LastUpdated != now.Unix() {
		t.Errorf("lastUpdated = %d, want %d", snap.LastUpdated, now.Unix())
	}
}

// TestRunCommandsRecordsBracketedSession verifies a start/stop command
// pair lands as a workout record and a stray stop is ignored.
func TestRunCommandsRecordsBracketedSession(t *testing.T) {
	now := time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{goals: defaultGoals()}
	svc, _ := testService(repo, now)

	bus := messaging.NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.RunCommands(ctx, bus)
		close(done)
	}()

	// Give the subscriber a moment to attach.
	time.Sleep(10 * time.Millisecond)

	bus.Publish(messaging.Event{Type: messaging.EventWorkoutStop}) // stray
	bus.Publish(messaging.Event{
		Type:  messaging.EventWorkoutStart,
		Start: &messaging.WorkoutStart{Activity: models.CategoryCardio},
	})
	bus.Publish(messaging.Event{Type: messaging.EventWorkoutStop})

	deadline := time.After(2 * time.Second)
	for repo.workoutCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("no workout recorded")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done

	if got := repo.workoutCount(); got != 1 {
		t.Fatalf("workouts = %d, want 1", got)
	}
	w := repo.workouts[0]
	if w.Category != models.CategoryCardio || w.Source != "companion" {
		t.Errorf("workout = %+v, want cardio from companion", w)
	}
}
