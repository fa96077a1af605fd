package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	MetricPointsReceived int      `json:"metric_points_received"`
	MetricDaysUpserted   int      `json:"metric_days_upserted"`
	MetricsRejected      int      `json:"metrics_rejected"`
	RejectedNames        []string `json:"rejected_names,omitempty"`

	WorkoutsReceived int `json:"workouts_received"`
	WorkoutsInserted int `json:"workouts_inserted"`
	WorkoutsSkipped  int `json:"workouts_skipped"`

	Message string `json:"message,omitempty"`
}
