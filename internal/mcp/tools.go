package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/streak"
)

// defaultTimeRange returns start/end defaulting to the current week.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = streak.WeekStart(end)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetWeeklyProgress = mcp.NewTool("get_weekly_progress",
	mcp.WithDescription("Get this week's goal completion per category (strength, cardio, recovery): workouts completed vs weekly target, and whether each goal is met."),
)

var toolGetStreaks = mcp.NewTool("get_streaks",
	mcp.WithDescription("Get the current streak counters: master streak (all goals met in consecutive weeks) and per-category streaks."),
)

var toolGetTodayMetrics = mcp.NewTool("get_today_metrics",
	mcp.WithDescription("Get today's activity totals: steps, active calories burned, and walking/running distance in miles."),
)

var toolGetWorkouts = mcp.NewTool("get_workouts",
	mcp.WithDescription("Query workout history with optional category filter. Returns name, category, start time, duration, and source for each workout."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to the start of the current week.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("category", mcp.Description("Filter by category"), mcp.Enum("strength", "cardio", "recovery")),
)

var toolGetGoals = mcp.NewTool("get_goals",
	mcp.WithDescription("Get the configured weekly workout targets per category."),
)

var toolGetDataStats = mcp.NewTool("get_data_stats",
	mcp.WithDescription("Get database statistics: total workouts by category, tracked days, and the overall date range of stored data."),
)

// --- Tool handlers ---

func (h *handlers) getWeeklyProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	now := time.Now()
	weekStart := streak.WeekStart(now)

	goals, err := h.ds.GetGoals(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_weekly_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	workouts, err := h.ds.WorkoutsBetween(ctx, weekStart, now, uid, "")
	if err != nil {
		h.log.Error("mcp get_weekly_progress", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(map[string]any{
		"weekStart": weekStart.Format("2006-01-02"),
		"progress":  streak.ComputeProgress(workouts, goals),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getStreaks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	state, err := h.ds.GetStreakState(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_streaks", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(state)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getTodayMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	today, err := h.ds.DailyMetricsFor(ctx, uid, time.Now())
	if err != nil {
		h.log.Error("mcp get_today_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(today)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	var category models.Category
	if raw := req.GetString("category", ""); raw != "" {
		category, err = models.ParseCategory(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	uid := UserIDFromContext(ctx)
	workouts, err := h.ds.WorkoutsBetween(ctx, start, end, uid, category)
	if err != nil {
		h.log.Error("mcp get_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getGoals(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	goals, err := h.ds.GetGoals(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_goals", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(goals)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getDataStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	stats, err := h.ds.GetDataStats(ctx, uid)
	if err != nil {
		h.log.Error("mcp get_data_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) snapshotResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := h.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
