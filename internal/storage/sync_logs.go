package storage

import (
	"context"
	"fmt"
	"time"
)

// SyncLog represents a single ingest operation's outcome.
type SyncLog struct {
	ID               int64     `json:"id"`
	UserID           int       `json:"user_id"`
	CreatedAt        time.Time `json:"created_at"`
	Source           string    `json:"source"`
	Status           string    `json:"status"`
	MetricDays       int       `json:"metric_days"`
	WorkoutsReceived int       `json:"workouts_received"`
	WorkoutsInserted int       `json:"workouts_inserted"`
	DurationMs       *int      `json:"duration_ms"`
	ErrorMessage     *string   `json:"error_message"`
}

// InsertSyncLog creates a new sync log entry and returns its ID.
func (db *DB) InsertSyncLog(ctx context.Context, log SyncLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx,
		`INSERT INTO sync_logs (user_id, source, status, metric_days,
		 workouts_received, workouts_inserted, duration_ms, error_message)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING id`,
		log.UserID, log.Source, log.Status, log.MetricDays,
		log.WorkoutsReceived, log.WorkoutsInserted, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting sync log: %w", err)
	}
	return id, nil
}

// QuerySyncLogs returns the most recent sync log entries for a user.
func (db *DB) QuerySyncLogs(ctx context.Context, userID, limit int) ([]SyncLog, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, created_at, source, status, metric_days,
		 workouts_received, workouts_inserted, duration_ms, error_message
		 FROM sync_logs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var out []SyncLog
	for rows.Next() {
		var l SyncLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Status,
			&l.MetricDays, &l.WorkoutsReceived, &l.WorkoutsInserted,
			&l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
