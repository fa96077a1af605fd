package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/storage"
	"github.com/stridetrack/stridetrack/internal/streak"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var payload models.SyncPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := s.sync.Ingest(r.Context(), &payload, s.userID)
	durationMs := int(time.Since(started).Milliseconds())
	if err != nil {
		s.log.Error("ingest error", "error", err)
		msg := err.Error()
		s.recordSyncLog(r, storage.SyncLog{
			UserID: s.userID, Source: "healthsync", Status: "error",
			DurationMs: &durationMs, ErrorMessage: &msg,
		})
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": msg})
		return
	}

	s.recordSyncLog(r, storage.SyncLog{
		UserID: s.userID, Source: "healthsync", Status: "ok",
		MetricDays:       result.MetricDaysUpserted,
		WorkoutsReceived: result.WorkoutsReceived,
		WorkoutsInserted: result.WorkoutsInserted,
		DurationMs:       &durationMs,
	})

	// New data changes streaks and the widget; recompute right away.
	if err := s.tracker.Refresh(r.Context()); err != nil {
		s.log.Warn("post-ingest refresh failed", "error", err)
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) recordSyncLog(r *http.Request, entry storage.SyncLog) {
	if _, err := s.db.InsertSyncLog(r.Context(), entry); err != nil {
		s.log.Warn("recording sync log", "error", err)
	}
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	weekStart := streak.WeekStart(now)

	goals, err := s.db.GetGoals(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	workouts, err := s.db.WorkoutsBetween(r.Context(), weekStart, now, s.userID, "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"weekStart": weekStart.Format("2006-01-02"),
		"progress":  streak.ComputeProgress(workouts, goals),
	})
}

func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	state, err := s.db.GetStreakState(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleTodayMetrics(w http.ResponseWriter, r *http.Request) {
	today, err := s.db.DailyMetricsFor(r.Context(), s.userID, time.Now())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, today)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var category models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err = models.ParseCategory(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	workouts, err := s.db.WorkoutsBetween(r.Context(), start, end, s.userID, category)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleGetWorkout(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}

	workout, err := s.db.GetWorkout(r.Context(), workoutID, s.userID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleRecordWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string    `json:"name"`
		Category  string    `json:"category"`
		StartedAt time.Time `json:"startedAt"`
		Duration  int       `json:"durationSeconds"`
		Source    string    `json:"source"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name required"})
		return
	}
	if req.StartedAt.IsZero() {
		req.StartedAt = time.Now()
	}
	if req.Duration < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "durationSeconds must not be negative"})
		return
	}

	var category models.Category
	if req.Category != "" {
		var err error
		category, err = models.ParseCategory(req.Category)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}

	source := req.Source
	if source == "" {
		source = "api"
	}
	rec := models.WorkoutRecord{
		UserID:    s.userID,
		Category:  category,
		Name:      req.Name,
		StartedAt: req.StartedAt,
		Duration:  time.Duration(req.Duration) * time.Second,
		Source:    source,
	}

	inserted, err := s.tracker.RecordWorkout(r.Context(), rec)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	status := http.StatusCreated
	if !inserted {
		status = http.StatusOK // duplicate, already recorded
	}
	writeJSON(w, status, map[string]bool{"inserted": inserted})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tracker.Snapshot(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.GetDataStats(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleSyncLogs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	logs, err := s.db.QuerySyncLogs(r.Context(), s.userID, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: current week
		end = time.Now()
		start = streak.WeekStart(end)
		return
	}

	start, err = parseTimeParam(startStr, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = parseTimeParam(endStr, true)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return
}

func parseTimeParam(s string, endOfDay bool) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse time %q", s)
	}
	if endOfDay {
		t = t.Add(24 * time.Hour)
	}
	return t, nil
}
