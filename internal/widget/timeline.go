// Package widget is the read side of the snapshot bridge: it turns the
// shared snapshot into timeline entries for complication rendering. It has
// no path to the activity source; if the snapshot is unreadable it renders
// placeholder data and never fails.
package widget

import (
	"context"
	"log/slog"
	"time"

	"github.com/stridetrack/stridetrack/internal/bridge"
	"github.com/stridetrack/stridetrack/internal/models"
)

// RefreshInterval is how often the timeline regenerates. The host also
// regenerates immediately after an app-triggered reload.
const RefreshInterval = 30 * time.Minute

// TimelineEntry is one renderable complication state.
type TimelineEntry struct {
	Snapshot     models.WidgetSnapshot `json:"snapshot"`
	Placeholder  bool                  `json:"placeholder"`
	GeneratedAt  time.Time             `json:"generated_at"`
	RefreshAfter time.Time             `json:"refresh_after"`
}

// Placeholder is the fixture rendered when no snapshot exists yet, sized
// so previews and the widget gallery look lived-in.
func Placeholder() models.WidgetSnapshot {
	return models.WidgetSnapshot{
		MasterStreak:   7,
		LiftsStreak:    12,
		CardioStreak:   9,
		RecoveryStreak: 7,

		LiftsCompleted: 2, LiftsGoal: 4,
		CardioCompleted: 1, CardioGoal: 3,
		RecoveryCompleted: 1, RecoveryGoal: 2,

		TodaySteps:    6500,
		StepsGoal:     10000,
		TodayCalories: 450,
	}
}

// TimelineProvider builds timeline entries from a snapshot store.
type TimelineProvider struct {
	store bridge.SnapshotStore
	log   *slog.Logger
	now   func() time.Time
}

// NewTimelineProvider creates a provider reading from store.
func NewTimelineProvider(store bridge.SnapshotStore, log *slog.Logger) *TimelineProvider {
	return &TimelineProvider{store: store, log: log, now: time.Now}
}

// Entry returns the current timeline entry. An unreadable or absent
// snapshot is downgraded to the placeholder; the widget surface must
// never crash over storage trouble.
func (p *TimelineProvider) Entry(ctx context.Context) TimelineEntry {
	now := p.now()
	entry := TimelineEntry{
		GeneratedAt:  now,
		RefreshAfter: now.Add(RefreshInterval),
	}

	snap, err := p.store.Load(ctx)
	if err != nil {
		p.log.Warn("snapshot unreadable, rendering placeholder", "error", err)
		entry.Snapshot = Placeholder()
		entry.Placeholder = true
		return entry
	}
	entry.Snapshot = snap
	return entry
}
