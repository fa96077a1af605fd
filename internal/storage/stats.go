package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalWorkouts      int64          `json:"total_workouts"`
	TotalMetricDays    int64          `json:"total_metric_days"`
	EarliestData       *time.Time     `json:"earliest_data"`
	LatestData         *time.Time     `json:"latest_data"`
	WorkoutsByCategory []CategoryStat `json:"workouts_by_category"`
}

// CategoryStat holds summary stats for a single training category.
type CategoryStat struct {
	Category      string  `json:"category"`
	Count         int64   `json:"count"`
	TotalDuration float64 `json:"total_duration_sec"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workouts WHERE user_id = $1`, userID,
	).Scan(&stats.TotalWorkouts)
	if err != nil {
		return nil, fmt.Errorf("counting workouts: %w", err)
	}

	err = db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM daily_metrics WHERE user_id = $1`, userID,
	).Scan(&stats.TotalMetricDays)
	if err != nil {
		return nil, fmt.Errorf("counting metric days: %w", err)
	}

	// Date range (earliest/latest across metrics and workouts)
	err = db.Pool.QueryRow(ctx,
		`SELECT MIN(t), MAX(t) FROM (
			SELECT MIN(day) AS t FROM daily_metrics WHERE user_id = $1
			UNION ALL
			SELECT MIN(started_at) FROM workouts WHERE user_id = $1
			UNION ALL
			SELECT MAX(day) FROM daily_metrics WHERE user_id = $1
			UNION ALL
			SELECT MAX(started_at) FROM workouts WHERE user_id = $1
		) sub`, userID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT category, COUNT(*), COALESCE(SUM(duration_sec), 0)
		 FROM workouts
		 WHERE user_id = $1
		 GROUP BY category
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workouts by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s CategoryStat
		if err := rows.Scan(&s.Category, &s.Count, &s.TotalDuration); err != nil {
			return nil, fmt.Errorf("scanning category stat: %w", err)
		}
		stats.WorkoutsByCategory = append(stats.WorkoutsByCategory, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
