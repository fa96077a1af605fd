package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SyncTime handles the phone export date format: "2006-01-02 15:04:05 -0700".
// Also handles date-only format "2006-01-02" used for daily aggregates.
type SyncTime struct {
	time.Time
}

const (
	SyncTimeLayout     = "2006-01-02 15:04:05 -0700"
	SyncDateOnlyLayout = "2006-01-02"
)

func (t *SyncTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	return t.Parse(s)
}

func (t SyncTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(SyncTimeLayout))
}

// Parse parses an export time string, trying full datetime first, then date-only.
func (t *SyncTime) Parse(s string) error {
	parsed, err := time.Parse(SyncTimeLayout, s)
	if err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err2 := time.Parse(SyncDateOnlyLayout, s)
	if err2 == nil {
		t.Time = parsed
		return nil
	}
	return fmt.Errorf("cannot parse sync time %q: %w", s, err)
}

// SyncPayload is the top-level JSON structure pushed by the phone app.
type SyncPayload struct {
	Data SyncData `json:"data"`
}

// SyncData carries daily metric series and completed workouts.
type SyncData struct {
	Metrics  []SyncMetric  `json:"metrics"`
	Workouts []SyncWorkout `json:"workouts"`
}

// SyncMetric is one metric series (steps, active_energy, distance).
type SyncMetric struct {
	Name  string            `json:"name"`
	Units string            `json:"units"`
	Data  []SyncMetricPoint `json:"data"`
}

// SyncMetricPoint is a single daily quantity sample.
type SyncMetricPoint struct {
	Date SyncTime `json:"date"`
	Qty  float64  `json:"qty"`
}

// SyncWorkout is one completed workout session from the export.
type SyncWorkout struct {
	Name     string   `json:"name"`
	Start    SyncTime `json:"start"`
	End      SyncTime `json:"end"`
	Duration float64  `json:"duration,omitempty"` // seconds; derived from start/end when absent
	Category string   `json:"category,omitempty"` // optional explicit override
	Source   string   `json:"source,omitempty"`
}

// Metric names accepted from the export. Everything else is rejected so a
// misconfigured phone automation cannot bloat the daily_metrics table.
const (
	MetricSteps        = "step_count"
	MetricActiveEnergy = "active_energy"
	MetricDistance     = "distance_walking_running"
)
