package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stridetrack/stridetrack/internal/models"
)

func (s *Server) handleGetGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.db.GetGoals(r.Context(), s.userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handlePutGoal(w http.ResponseWriter, r *http.Request) {
	category, err := models.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	var req struct {
		WeeklyTarget int `json:"weekly_target"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.WeeklyTarget <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weekly_target must be positive"})
		return
	}

	goal := models.CategoryGoal{Category: category, WeeklyTarget: req.WeeklyTarget}
	if err := s.db.PutGoal(r.Context(), s.userID, goal); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// A changed goal can flip this week's completion state.
	if err := s.tracker.Refresh(r.Context()); err != nil {
		s.log.Warn("post-goal refresh failed", "error", err)
	}

	writeJSON(w, http.StatusOK, goal)
}
