package storage

import (
	"context"
	"fmt"

	"github.com/stridetrack/stridetrack/internal/models"
)

// GetGoals returns the configured weekly goals for a user, in category
// display order. Categories without a stored row are omitted; callers seed
// defaults at startup.
func (db *DB) GetGoals(ctx context.Context, userID int) ([]models.CategoryGoal, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT category, weekly_target FROM category_goals
		 WHERE user_id = $1
		 ORDER BY CASE category
		   WHEN 'strength' THEN 0 WHEN 'cardio' THEN 1 ELSE 2 END`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying goals: %w", err)
	}
	defer rows.Close()

	var out []models.CategoryGoal
	for rows.Next() {
		var g models.CategoryGoal
		var cat string
		if err := rows.Scan(&cat, &g.WeeklyTarget); err != nil {
			return nil, fmt.Errorf("scanning goal: %w", err)
		}
		g.Category = models.Category(cat)
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// PutGoal sets the weekly target for one category.
func (db *DB) PutGoal(ctx context.Context, userID int, g models.CategoryGoal) error {
	if g.WeeklyTarget <= 0 {
		return fmt.Errorf("weekly target for %s must be positive, got %d", g.Category, g.WeeklyTarget)
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO category_goals (user_id, category, weekly_target)
		 VALUES ($1,$2,$3)
		 ON CONFLICT (user_id, category) DO UPDATE SET weekly_target = EXCLUDED.weekly_target`,
		userID, string(g.Category), g.WeeklyTarget)
	if err != nil {
		return fmt.Errorf("storing goal for %s: %w", g.Category, err)
	}
	return nil
}

// SeedDefaultGoals inserts goals for any category the user has not
// configured yet. Existing rows are left untouched.
func (db *DB) SeedDefaultGoals(ctx context.Context, userID int, defaults []models.CategoryGoal) error {
	for _, g := range defaults {
		_, err := db.Pool.Exec(ctx,
			`INSERT INTO category_goals (user_id, category, weekly_target)
			 VALUES ($1,$2,$3)
			 ON CONFLICT (user_id, category) DO NOTHING`,
			userID, string(g.Category), g.WeeklyTarget)
		if err != nil {
			return fmt.Errorf("seeding goal for %s: %w", g.Category, err)
		}
	}
	return nil
}
