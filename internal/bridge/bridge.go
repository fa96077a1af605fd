// Package bridge synchronizes a denormalized snapshot of streak and
// activity data into shared storage for widget and complication processes.
// The storage is an eventually-consistent key-value blob: last writer wins,
// readers tolerate lag up to one refresh interval.
package bridge

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stridetrack/stridetrack/internal/models"
)

// SnapshotStore reads and writes the shared widget snapshot.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap models.WidgetSnapshot) error
	// Load returns the latest snapshot. A missing or unreadable snapshot
	// returns an error wrapping models.ErrStaleSnapshot.
	Load(ctx context.Context) (models.WidgetSnapshot, error)
	Close() error
}

// SnapshotFunc produces the current snapshot from the source of truth.
type SnapshotFunc func(ctx context.Context) (models.WidgetSnapshot, error)

// Refresher periodically writes snapshots to the store and exposes an
// explicit save trigger for post-ingest refreshes. It enforces the
// invariant that lastUpdated never decreases across writes.
type Refresher struct {
	store    SnapshotStore
	snapshot SnapshotFunc
	interval time.Duration
	log      *slog.Logger

	mu          sync.Mutex
	lastWritten int64
}

// NewRefresher creates a refresher. Interval zero defaults to 30 minutes,
// the complication timeline budget.
func NewRefresher(store SnapshotStore, snapshot SnapshotFunc, interval time.Duration, log *slog.Logger) *Refresher {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Refresher{store: store, snapshot: snapshot, interval: interval, log: log}
}

// Run writes snapshots on a fixed ticker until ctx is cancelled. Errors
// are logged and retried on the next tick; a widget lagging one interval
// is acceptable, a dead refresher is not.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.SaveNow(ctx); err != nil {
				r.log.Warn("periodic snapshot save failed", "error", err)
			}
		}
	}
}

// SaveNow builds and writes a snapshot immediately. Called after data
// loads and ingest, and by the periodic ticker.
func (r *Refresher) SaveNow(ctx context.Context) error {
	snap, err := r.snapshot(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if snap.LastUpdated < r.lastWritten {
		// Clock went backwards between builds; hold the previous stamp
		// so readers see a non-decreasing lastUpdated.
		snap.LastUpdated = r.lastWritten
	}
	r.lastWritten = snap.LastUpdated
	r.mu.Unlock()

	if err := r.store.Save(ctx, snap); err != nil {
		return err
	}
	r.log.Debug("widget snapshot saved", "lastUpdated", snap.LastUpdated)
	return nil
}
