package models

import "time"

// WidgetSnapshot is the denormalized record written to shared storage for
// complication and widget processes. The wire field names are fixed: the
// watch complications already read them, so strength maps to the legacy
// "lifts" fields. LastUpdated is epoch seconds and must never decrease
// across successive writes.
type WidgetSnapshot struct {
	MasterStreak   int `json:"masterStreak"`
	LiftsStreak    int `json:"liftsStreak"`
	CardioStreak   int `json:"cardioStreak"`
	RecoveryStreak int `json:"recoveryStreak"`

	LiftsCompleted    int `json:"liftsCompleted"`
	LiftsGoal         int `json:"liftsGoal"`
	CardioCompleted   int `json:"cardioCompleted"`
	CardioGoal        int `json:"cardioGoal"`
	RecoveryCompleted int `json:"recoveryCompleted"`
	RecoveryGoal      int `json:"recoveryGoal"`

	TodaySteps    int `json:"todaySteps"`
	StepsGoal     int `json:"stepsGoal"`
	TodayCalories int `json:"todayCalories"`

	LastUpdated int64 `json:"lastUpdated"`
}

// BuildSnapshot assembles a WidgetSnapshot from streaks, per-category
// progress, today's metrics, and the daily steps goal.
func BuildSnapshot(streaks StreakState, progress map[Category]WeeklyProgress, today DailyMetrics, stepsGoal int, now time.Time) WidgetSnapshot {
	snap := WidgetSnapshot{
		MasterStreak:   streaks.Master,
		LiftsStreak:    streaks.Streak(CategoryStrength),
		CardioStreak:   streaks.Streak(CategoryCardio),
		RecoveryStreak: streaks.Streak(CategoryRecovery),
		TodaySteps:     today.Steps,
		StepsGoal:      stepsGoal,
		TodayCalories:  today.CaloriesBurned,
		LastUpdated:    now.Unix(),
	}
	if p, ok := progress[CategoryStrength]; ok {
		snap.LiftsCompleted, snap.LiftsGoal = p.Completed, p.Goal
	}
	if p, ok := progress[CategoryCardio]; ok {
		snap.CardioCompleted, snap.CardioGoal = p.Completed, p.Goal
	}
	if p, ok := progress[CategoryRecovery]; ok {
		snap.RecoveryCompleted, snap.RecoveryGoal = p.Completed, p.Goal
	}
	return snap
}
