// Package activity abstracts the source of daily metrics and workout
// records. The server's own database is the usual source; the Cached
// wrapper keeps last-known values so a source outage degrades to stale
// data instead of an empty dashboard.
package activity

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/storage"
)

// Source supplies raw activity data. Read-only to the rest of the system.
type Source interface {
	TodayMetrics(ctx context.Context) (models.DailyMetrics, error)
	WorkoutsBetween(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error)
}

// DBSource reads activity data for one user from the database.
type DBSource struct {
	db     *storage.DB
	userID int
	now    func() time.Time
}

// NewDBSource creates a database-backed source for the given user.
func NewDBSource(db *storage.DB, userID int) *DBSource {
	return &DBSource{db: db, userID: userID, now: time.Now}
}

func (s *DBSource) TodayMetrics(ctx context.Context) (models.DailyMetrics, error) {
	return s.db.DailyMetricsFor(ctx, s.userID, s.now())
}

func (s *DBSource) WorkoutsBetween(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	return s.db.WorkoutsBetween(ctx, start, end, s.userID, "")
}

// Cached wraps a Source and remembers the last successful result. When the
// underlying source fails, the cached values are returned along with an
// error wrapping models.ErrDataUnavailable, letting callers render stale
// data with a warning instead of failing outright.
type Cached struct {
	src Source

	mu           sync.Mutex
	lastMetrics  *models.DailyMetrics
	lastStart    time.Time
	lastEnd      time.Time
	lastWorkouts []models.WorkoutRecord
}

// NewCached wraps src with a last-known-value cache.
func NewCached(src Source) *Cached {
	return &Cached{src: src}
}

func (c *Cached) TodayMetrics(ctx context.Context) (models.DailyMetrics, error) {
	m, err := c.src.TodayMetrics(ctx)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		if c.lastMetrics != nil {
			return *c.lastMetrics, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
		}
		return models.DailyMetrics{}, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	c.lastMetrics = &m
	return m, nil
}

func (c *Cached) WorkoutsBetween(ctx context.Context, start, end time.Time) ([]models.WorkoutRecord, error) {
	w, err := c.src.WorkoutsBetween(ctx, start, end)
	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		// The cache holds the last successful query's range; serving it
		// for a different [start, end) would be wrong, not just stale.
		if start.Equal(c.lastStart) && end.Equal(c.lastEnd) {
			return c.lastWorkouts, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	c.lastStart, c.lastEnd = start, end
	c.lastWorkouts = w
	return w, nil
}
