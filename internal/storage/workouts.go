package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stridetrack/stridetrack/internal/models"
)

// InsertWorkout inserts a workout record. Returns true if inserted, false
// if it was a duplicate (same user, start time, and name).
func (db *DB) InsertWorkout(ctx context.Context, w models.WorkoutRecord) (bool, error) {
	id := w.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, category, name, started_at, duration_sec, source)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (user_id, started_at, name) DO NOTHING`,
		id, w.UserID, string(w.Category), w.Name, w.StartedAt, int(w.Duration.Seconds()), w.Source)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// WorkoutsBetween returns workouts in [start, end) for a user, newest first.
// An empty category matches all categories.
func (db *DB) WorkoutsBetween(ctx context.Context, start, end time.Time, userID int, category models.Category) ([]models.WorkoutRecord, error) {
	query := `SELECT id, user_id, category, name, started_at, duration_sec, source
	          FROM workouts
	          WHERE user_id = $1 AND started_at >= $2 AND started_at < $3`
	args := []any{userID, start, end}
	if category != "" {
		query += ` AND category = $4`
		args = append(args, string(category))
	}
	query += ` ORDER BY started_at DESC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var out []models.WorkoutRecord
	for rows.Next() {
		var w models.WorkoutRecord
		var cat string
		var durationSec int
		if err := rows.Scan(&w.ID, &w.UserID, &cat, &w.Name, &w.StartedAt, &durationSec, &w.Source); err != nil {
			return nil, fmt.Errorf("scanning workout: %w", err)
		}
		w.Category = models.Category(cat)
		w.Duration = time.Duration(durationSec) * time.Second
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetWorkout returns a single workout by ID.
func (db *DB) GetWorkout(ctx context.Context, id uuid.UUID, userID int) (*models.WorkoutRecord, error) {
	var w models.WorkoutRecord
	var cat string
	var durationSec int
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, category, name, started_at, duration_sec, source
		 FROM workouts WHERE id = $1 AND user_id = $2`,
		id, userID,
	).Scan(&w.ID, &w.UserID, &cat, &w.Name, &w.StartedAt, &durationSec, &w.Source)
	if err != nil {
		return nil, fmt.Errorf("querying workout %s: %w", id, err)
	}
	w.Category = models.Category(cat)
	w.Duration = time.Duration(durationSec) * time.Second
	return &w, nil
}
