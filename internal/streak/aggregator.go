// Package streak computes weekly goal progress and consecutive-week streak
// counters. Everything here is a pure function of its inputs; persistence
// and scheduling live elsewhere.
package streak

import (
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
)

// Weeks roll over Monday 00:00 in the user's local timezone. The phone app
// never pinned this down, so the server owns the convention.

// WeekStart returns the Monday 00:00 boundary of the week containing t,
// in t's location.
func WeekStart(t time.Time) time.Time {
	// time.Weekday is Sunday=0; shift so Monday=0.
	days := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -days).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ComputeProgress derives per-category weekly progress from the week's
// workout records and the configured goals. Fraction is min(completed/goal, 1)
// and zero when the goal is zero. Every configured category appears in the
// result even with no workouts logged.
func ComputeProgress(workouts []models.WorkoutRecord, goals []models.CategoryGoal) map[models.Category]models.WeeklyProgress {
	counts := make(map[models.Category]int)
	for _, w := range workouts {
		counts[w.Category]++
	}

	progress := make(map[models.Category]models.WeeklyProgress, len(goals))
	for _, g := range goals {
		p := models.WeeklyProgress{
			Category:  g.Category,
			Completed: counts[g.Category],
			Goal:      g.WeeklyTarget,
		}
		if g.WeeklyTarget > 0 {
			p.Fraction = float64(p.Completed) / float64(g.WeeklyTarget)
			if p.Fraction > 1 {
				p.Fraction = 1
			}
		}
		progress[g.Category] = p
	}
	return progress
}

// EvaluateRollover applies one week-boundary evaluation to the streak state.
// weekStart identifies the completed week (its Monday); progress is that
// week's final per-category progress.
//
// Rules:
//   - a category met its goal (completed >= goal, goal > 0): streak + 1
//   - otherwise: streak reset to 0
//   - master streak + 1 only when all categories met, else reset to 0
//
// The evaluation is idempotent per week: a weekStart at or before
// LastEvaluated returns the state unchanged. When whole weeks were skipped
// between LastEvaluated and weekStart, the skipped weeks count as unmet and
// all counters reset before the completed week is scored.
func EvaluateRollover(state models.StreakState, weekStart time.Time, progress map[models.Category]models.WeeklyProgress) models.StreakState {
	if !state.LastEvaluated.IsZero() && !weekStart.After(state.LastEvaluated) {
		return state
	}

	next := models.NewStreakState()
	next.LastEvaluated = weekStart

	// Consecutive means the next calendar week, not a fixed 168h: DST
	// transitions make local Monday-to-Monday spans 167h or 169h.
	gap := !state.LastEvaluated.IsZero() && !weekStart.Equal(WeekStart(state.LastEvaluated.AddDate(0, 0, 7)))

	allMet := len(progress) > 0
	for _, c := range models.Categories() {
		p, ok := progress[c]
		met := ok && p.Met()
		if !met {
			allMet = false
			continue
		}
		if gap {
			next.PerCategory[c] = 1
		} else {
			next.PerCategory[c] = state.Streak(c) + 1
		}
	}

	if allMet {
		if gap {
			next.Master = 1
		} else {
			next.Master = state.Master + 1
		}
	}
	return next
}
