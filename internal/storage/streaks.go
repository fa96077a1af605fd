package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stridetrack/stridetrack/internal/models"
)

// GetStreakState loads the persisted streak counters for a user. A user
// with no row yet gets a zeroed state.
func (db *DB) GetStreakState(ctx context.Context, userID int) (models.StreakState, error) {
	state := models.NewStreakState()
	var strength, cardio, recovery int
	var lastEvaluated *time.Time
	err := db.Pool.QueryRow(ctx,
		`SELECT master, strength, cardio, recovery, last_evaluated
		 FROM streak_states WHERE user_id = $1`,
		userID,
	).Scan(&state.Master, &strength, &cardio, &recovery, &lastEvaluated)
	if errors.Is(err, pgx.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("querying streak state: %w", err)
	}
	state.PerCategory[models.CategoryStrength] = strength
	state.PerCategory[models.CategoryCardio] = cardio
	state.PerCategory[models.CategoryRecovery] = recovery
	if lastEvaluated != nil {
		state.LastEvaluated = *lastEvaluated
	}
	return state, nil
}

// PutStreakState persists the streak counters for a user.
func (db *DB) PutStreakState(ctx context.Context, userID int, state models.StreakState) error {
	var lastEvaluated *time.Time
	if !state.LastEvaluated.IsZero() {
		lastEvaluated = &state.LastEvaluated
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO streak_states (user_id, master, strength, cardio, recovery, last_evaluated, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,NOW())
		 ON CONFLICT (user_id) DO UPDATE SET
		   master = EXCLUDED.master,
		   strength = EXCLUDED.strength,
		   cardio = EXCLUDED.cardio,
		   recovery = EXCLUDED.recovery,
		   last_evaluated = EXCLUDED.last_evaluated,
		   updated_at = NOW()`,
		userID, state.Master,
		state.Streak(models.CategoryStrength),
		state.Streak(models.CategoryCardio),
		state.Streak(models.CategoryRecovery),
		lastEvaluated)
	if err != nil {
		return fmt.Errorf("storing streak state: %w", err)
	}
	return nil
}
