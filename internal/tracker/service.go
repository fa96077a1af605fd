// Package tracker orchestrates the streak pipeline: it reads workout and
// metric data, computes weekly progress, rolls streaks over at week
// boundaries, publishes the result to the state store, and asks the
// widget bridge to persist a fresh snapshot.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stridetrack/stridetrack/internal/activity"
	"github.com/stridetrack/stridetrack/internal/messaging"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/state"
	"github.com/stridetrack/stridetrack/internal/storage"
	"github.com/stridetrack/stridetrack/internal/streak"
)

// Repository captures the persistence operations the tracker writes
// through. Reads of workouts and metrics go through an activity.Source so
// outages degrade to cached data. *storage.DB satisfies it; tests
// substitute fakes.
type Repository interface {
	GetGoals(ctx context.Context, userID int) ([]models.CategoryGoal, error)
	InsertWorkout(ctx context.Context, w models.WorkoutRecord) (bool, error)
	GetStreakState(ctx context.Context, userID int) (models.StreakState, error)
	PutStreakState(ctx context.Context, userID int, s models.StreakState) error
}

// Compile-time check: *storage.DB satisfies Repository.
var _ Repository = (*storage.DB)(nil)

// Saver triggers a snapshot write. Satisfied by *bridge.Refresher.
type Saver interface {
	SaveNow(ctx context.Context) error
}

// Service ties the aggregation core to storage and observers.
type Service struct {
	repo      Repository
	src       activity.Source
	store     *state.Store
	log       *slog.Logger
	userID    int
	stepsGoal int
	saver     Saver
	now       func() time.Time
}

// New creates a tracker service for one user.
func New(repo Repository, src activity.Source, store *state.Store, userID, stepsGoal int, log *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		src:       src,
		store:     store,
		log:       log,
		userID:    userID,
		stepsGoal: stepsGoal,
		now:       time.Now,
	}
}

// AttachSaver wires the widget bridge. Optional; Refresh works without it.
func (s *Service) AttachSaver(saver Saver) {
	s.saver = saver
}

// SetAuth publishes the sign-in state so companions can route to the
// right screen.
func (s *Service) SetAuth(signedIn bool, email string) {
	s.store.Update(func(st *state.AppState) {
		st.Auth = state.AuthState{SignedIn: signedIn, Email: email}
	})
}

// Refresh recomputes progress and streaks from storage and publishes the
// result. It evaluates any pending week rollover first, then computes the
// current week's progress. A data-source failure publishes a stale flag
// and keeps the previous state visible.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.now()
	weekStart := streak.WeekStart(now)

	goals, err := s.repo.GetGoals(ctx, s.userID)
	if err != nil {
		return s.markStale(fmt.Errorf("loading goals: %w", err))
	}

	streaks, err := s.repo.GetStreakState(ctx, s.userID)
	if err != nil {
		return s.markStale(fmt.Errorf("loading streak state: %w", err))
	}

	// Roll over the previous week if it has not been scored yet.
	prevWeek := weekStart.AddDate(0, 0, -7)
	if streaks.LastEvaluated.IsZero() || streaks.LastEvaluated.Before(prevWeek) {
		prevWorkouts, err := s.src.WorkoutsBetween(ctx, prevWeek, weekStart)
		if err != nil {
			return s.markStale(fmt.Errorf("loading previous week: %w", err))
		}
		prevProgress := streak.ComputeProgress(prevWorkouts, goals)
		next := streak.EvaluateRollover(streaks, prevWeek, prevProgress)
		if err := s.repo.PutStreakState(ctx, s.userID, next); err != nil {
			return s.markStale(fmt.Errorf("storing streak state: %w", err))
		}
		s.log.Info("week rolled over",
			"week", prevWeek.Format("2006-01-02"),
			"master", next.Master)
		streaks = next
	}

	workouts, err := s.src.WorkoutsBetween(ctx, weekStart, now)
	if err != nil {
		return s.markStale(fmt.Errorf("loading current week: %w", err))
	}
	progress := streak.ComputeProgress(workouts, goals)

	// A cached source hands back last-known metrics alongside the error;
	// publish what we have with the stale flag rather than dropping the
	// freshly computed progress.
	today, todayErr := s.src.TodayMetrics(ctx)
	if todayErr != nil {
		s.store.Update(func(st *state.AppState) {
			st.Today = today
			st.Progress = progress
			st.Streaks = streaks
			st.Goals = goals
			st.Loading = false
			st.Stale = true
		})
		if errors.Is(todayErr, models.ErrDataUnavailable) {
			return todayErr
		}
		return fmt.Errorf("%w: %v", models.ErrDataUnavailable, todayErr)
	}

	s.store.Update(func(st *state.AppState) {
		st.Today = today
		st.Progress = progress
		st.Streaks = streaks
		st.Goals = goals
		st.Loading = false
		st.Stale = false
		st.LastSync = now
	})

	if s.saver != nil {
		if err := s.saver.SaveNow(ctx); err != nil {
			s.log.Warn("snapshot save after refresh failed", "error", err)
		}
	}
	return nil
}

// markStale flags the published state as stale without clearing it, and
// returns the error wrapped as data-unavailable.
func (s *Service) markStale(err error) error {
	s.store.Update(func(st *state.AppState) {
		st.Stale = true
		st.Loading = false
	})
	if errors.Is(err, models.ErrDataUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
}

// Snapshot builds the widget snapshot from current storage contents.
// Used by the bridge as its SnapshotFunc.
func (s *Service) Snapshot(ctx context.Context) (models.WidgetSnapshot, error) {
	now := s.now()
	weekStart := streak.WeekStart(now)

	goals, err := s.repo.GetGoals(ctx, s.userID)
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("loading goals: %w", err)
	}
	workouts, err := s.src.WorkoutsBetween(ctx, weekStart, now)
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("loading workouts: %w", err)
	}
	streaks, err := s.repo.GetStreakState(ctx, s.userID)
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("loading streak state: %w", err)
	}
	today, err := s.src.TodayMetrics(ctx)
	if err != nil {
		return models.WidgetSnapshot{}, fmt.Errorf("loading today's metrics: %w", err)
	}

	progress := streak.ComputeProgress(workouts, goals)
	return models.BuildSnapshot(streaks, progress, today, s.stepsGoal, now), nil
}

// RecordWorkout stores a completed workout and refreshes derived state.
// Returns false when the workout was a duplicate.
func (s *Service) RecordWorkout(ctx context.Context, w models.WorkoutRecord) (bool, error) {
	w.UserID = s.userID
	if w.Category == "" {
		w.Category = models.ClassifyWorkout(w.Name)
	}
	inserted, err := s.repo.InsertWorkout(ctx, w)
	if err != nil {
		return false, fmt.Errorf("recording workout: %w", err)
	}
	if inserted {
		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("refresh after workout failed", "error", err)
		}
	}
	return inserted, nil
}

// RunCommands consumes cross-device workout commands from the bus: a stop
// following a start records the bracketed session. Stray stops are ignored.
func (s *Service) RunCommands(ctx context.Context, bus *messaging.Bus) {
	events, cancel := bus.Subscribe()
	defer cancel()

	var active *messaging.WorkoutStart
	var startedAt time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case messaging.EventWorkoutStart:
				active = ev.Start
				startedAt = s.now()
				s.log.Info("workout started", "activity", ev.Start.Activity)
			case messaging.EventWorkoutStop:
				if active == nil {
					s.log.Warn("workout stop without active session")
					continue
				}
				name := string(active.Activity)
				if active.StrengthType != "" {
					name = name + " " + active.StrengthType
				}
				rec := models.WorkoutRecord{
					Category:  active.Activity,
					Name:      name,
					StartedAt: startedAt,
					Duration:  s.now().Sub(startedAt),
					Source:    "companion",
				}
				if _, err := s.RecordWorkout(ctx, rec); err != nil {
					s.log.Error("recording companion workout", "error", err)
				}
				active = nil
			}
		}
	}
}
