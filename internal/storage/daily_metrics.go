package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stridetrack/stridetrack/internal/models"
)

// UpsertDailyMetrics writes one day's activity totals. Re-syncs within the
// same day keep the larger value per column, so a partial export can never
// shrink an already-recorded day.
func (db *DB) UpsertDailyMetrics(ctx context.Context, userID int, m models.DailyMetrics) error {
	day := m.Day.Truncate(24 * time.Hour)
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO daily_metrics (user_id, day, steps, calories_burned, distance_miles)
		 VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (user_id, day) DO UPDATE SET
		   steps = GREATEST(daily_metrics.steps, EXCLUDED.steps),
		   calories_burned = GREATEST(daily_metrics.calories_burned, EXCLUDED.calories_burned),
		   distance_miles = GREATEST(daily_metrics.distance_miles, EXCLUDED.distance_miles)`,
		userID, day, m.Steps, m.CaloriesBurned, m.DistanceMiles)
	if err != nil {
		return fmt.Errorf("upserting daily metrics: %w", err)
	}
	return nil
}

// DailyMetricsFor returns the metrics row for one calendar day. A day with
// no data yet returns zero metrics, not an error.
func (db *DB) DailyMetricsFor(ctx context.Context, userID int, day time.Time) (models.DailyMetrics, error) {
	day = day.Truncate(24 * time.Hour)
	m := models.DailyMetrics{Day: day}
	err := db.Pool.QueryRow(ctx,
		`SELECT steps, calories_burned, distance_miles
		 FROM daily_metrics WHERE user_id = $1 AND day = $2`,
		userID, day,
	).Scan(&m.Steps, &m.CaloriesBurned, &m.DistanceMiles)
	if errors.Is(err, pgx.ErrNoRows) {
		return m, nil
	}
	if err != nil {
		return m, fmt.Errorf("querying daily metrics: %w", err)
	}
	return m, nil
}

// DailyMetricsRange returns metric rows for days in [start, end), oldest first.
func (db *DB) DailyMetricsRange(ctx context.Context, userID int, start, end time.Time) ([]models.DailyMetrics, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT day, steps, calories_burned, distance_miles
		 FROM daily_metrics
		 WHERE user_id = $1 AND day >= $2 AND day < $3
		 ORDER BY day`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying daily metrics range: %w", err)
	}
	defer rows.Close()

	var out []models.DailyMetrics
	for rows.Next() {
		var m models.DailyMetrics
		if err := rows.Scan(&m.Day, &m.Steps, &m.CaloriesBurned, &m.DistanceMiles); err != nil {
			return nil, fmt.Errorf("scanning daily metrics: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
