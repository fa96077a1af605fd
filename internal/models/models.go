package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for the failure taxonomy. Handlers and providers wrap
// these so callers can pick a fallback with errors.Is.
var (
	// ErrDataUnavailable means the activity source could not be queried.
	// Callers fall back to last-known cached values.
	ErrDataUnavailable = errors.New("activity data unavailable")
	// ErrStaleSnapshot means shared snapshot storage is unreadable or
	// empty. Widget surfaces render placeholder data instead.
	ErrStaleSnapshot = errors.New("widget snapshot unavailable")
	// ErrAuthRequired means the request carries no valid identity.
	ErrAuthRequired = errors.New("authentication required")
)

// DailyMetrics holds one calendar day of activity totals.
type DailyMetrics struct {
	Day            time.Time `json:"day"`
	Steps          int       `json:"steps"`
	CaloriesBurned int       `json:"calories_burned"`
	DistanceMiles  float64   `json:"distance_miles"`
}

// WorkoutRecord is a completed workout. Immutable once recorded.
type WorkoutRecord struct {
	ID        uuid.UUID     `json:"id"`
	UserID    int           `json:"-"`
	Category  Category      `json:"category"`
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_sec"`
	Source    string        `json:"source,omitempty"`
}

// CategoryGoal is the configured weekly target for one category.
// A target of 0 disables the category: it can never be "met".
type CategoryGoal struct {
	Category     Category `json:"category"`
	WeeklyTarget int      `json:"weekly_target"`
}

// WeeklyProgress is the derived completion state for one category within
// the current week. Never persisted; recomputed whenever workout data
// changes.
type WeeklyProgress struct {
	Category  Category `json:"category"`
	Completed int      `json:"completed"`
	Goal      int      `json:"goal"`
	Fraction  float64  `json:"fraction"`
}

// Met reports whether the category goal is satisfied. A zero goal is
// never met.
func (p WeeklyProgress) Met() bool {
	return p.Goal > 0 && p.Completed >= p.Goal
}

// StreakState holds consecutive-week streak counters. Persisted across
// sessions; LastEvaluated is the start of the most recent week that has
// been rolled over, guarding against double evaluation.
type StreakState struct {
	Master        int              `json:"master"`
	PerCategory   map[Category]int `json:"per_category"`
	LastEvaluated time.Time        `json:"last_evaluated"`
}

// NewStreakState returns a zeroed state with all category counters present.
func NewStreakState() StreakState {
	per := make(map[Category]int, len(Categories()))
	for _, c := range Categories() {
		per[c] = 0
	}
	return StreakState{PerCategory: per}
}

// Streak returns the counter for a category, zero when absent.
func (s StreakState) Streak(c Category) int {
	return s.PerCategory[c]
}
