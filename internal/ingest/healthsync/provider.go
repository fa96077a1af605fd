// Package healthsync processes activity export payloads pushed by the
// phone app: daily metric series plus completed workouts.
package healthsync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/stridetrack/stridetrack/internal/ingest"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/storage"
)

// Provider ingests sync payloads into storage.
type Provider struct {
	db  *storage.DB
	log *slog.Logger
}

// NewProvider creates a new healthsync ingest provider.
func NewProvider(db *storage.DB, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest processes a sync payload and stores accepted data.
func (p *Provider) Ingest(ctx context.Context, payload *models.SyncPayload, userID int) (*ingest.Result, error) {
	result := &ingest.Result{}

	if len(payload.Data.Metrics) > 0 {
		if err := p.processMetrics(ctx, payload.Data.Metrics, userID, result); err != nil {
			return result, fmt.Errorf("processing metrics: %w", err)
		}
	}

	if len(payload.Data.Workouts) > 0 {
		if err := p.processWorkouts(ctx, payload.Data.Workouts, userID, result); err != nil {
			return result, fmt.Errorf("processing workouts: %w", err)
		}
	}

	if len(result.RejectedNames) > 0 {
		result.Message = fmt.Sprintf(
			"Some metrics were rejected because they are not tracked: %v. "+
				"Tracked metrics are step_count, active_energy, and distance_walking_running.",
			result.RejectedNames)
	}

	return result, nil
}

func (p *Provider) processMetrics(ctx context.Context, metrics []models.SyncMetric, userID int, result *ingest.Result) error {
	// Collapse all series into per-day rows before writing.
	type dayKey struct {
		year  int
		month time.Month
		day   int
	}
	days := map[dayKey]*models.DailyMetrics{}
	rejectedSet := map[string]bool{}

	for _, m := range metrics {
		switch m.Name {
		case models.MetricSteps, models.MetricActiveEnergy, models.MetricDistance:
		default:
			if !rejectedSet[m.Name] {
				result.RejectedNames = append(result.RejectedNames, m.Name)
				rejectedSet[m.Name] = true
			}
			result.MetricsRejected += len(m.Data)
			continue
		}

		for _, point := range m.Data {
			result.MetricPointsReceived++
			if point.Qty < 0 {
				p.log.Warn("skipping negative data point", "metric", m.Name, "qty", point.Qty)
				continue
			}

			y, mo, d := point.Date.Date()
			key := dayKey{y, mo, d}
			row, ok := days[key]
			if !ok {
				row = &models.DailyMetrics{Day: time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)}
				days[key] = row
			}

			switch m.Name {
			case models.MetricSteps:
				row.Steps += int(point.Qty)
			case models.MetricActiveEnergy:
				row.CaloriesBurned += int(point.Qty)
			case models.MetricDistance:
				row.DistanceMiles += point.Qty
			}
		}
	}

	for _, row := range days {
		if err := p.db.UpsertDailyMetrics(ctx, userID, *row); err != nil {
			return fmt.Errorf("upserting day %s: %w", row.Day.Format("2006-01-02"), err)
		}
		result.MetricDaysUpserted++
	}
	return nil
}

func (p *Provider) processWorkouts(ctx context.Context, workouts []models.SyncWorkout, userID int, result *ingest.Result) error {
	for _, w := range workouts {
		result.WorkoutsReceived++

		rec, err := convertWorkout(w, userID)
		if err != nil {
			p.log.Warn("skipping workout", "name", w.Name, "error", err)
			result.WorkoutsSkipped++
			continue
		}

		inserted, err := p.db.InsertWorkout(ctx, *rec)
		if err != nil {
			return fmt.Errorf("inserting workout %q: %w", w.Name, err)
		}
		if inserted {
			result.WorkoutsInserted++
		} else {
			result.WorkoutsSkipped++
		}
	}
	return nil
}

// convertWorkout maps a sync workout to a domain record, classifying its
// category and deriving the duration when the export omits it.
func convertWorkout(w models.SyncWorkout, userID int) (*models.WorkoutRecord, error) {
	if w.Name == "" {
		return nil, fmt.Errorf("workout without a name")
	}
	if w.Start.IsZero() {
		return nil, fmt.Errorf("workout %q without a start time", w.Name)
	}

	duration := time.Duration(w.Duration * float64(time.Second))
	if duration <= 0 && !w.End.IsZero() {
		duration = w.End.Sub(w.Start.Time)
	}
	if duration < 0 {
		return nil, fmt.Errorf("workout %q ends before it starts", w.Name)
	}

	category := models.ClassifyWorkout(w.Name)
	if w.Category != "" {
		parsed, err := models.ParseCategory(w.Category)
		if err != nil {
			return nil, err
		}
		category = parsed
	}

	source := w.Source
	if source == "" {
		source = "healthsync"
	}

	return &models.WorkoutRecord{
		ID:        uuid.New(),
		UserID:    userID,
		Category:  category,
		Name:      w.Name,
		StartedAt: w.Start.Time,
		Duration:  duration,
		Source:    source,
	}, nil
}
