// Package mcp exposes the activity data over the Model Context Protocol so
// assistants can answer questions about streaks, goals, and workouts.
package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stridetrack/stridetrack/internal/models"
	"github.com/stridetrack/stridetrack/internal/storage"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	GetGoals(ctx context.Context, userID int) ([]models.CategoryGoal, error)
	WorkoutsBetween(ctx context.Context, start, end time.Time, userID int, category models.Category) ([]models.WorkoutRecord, error)
	DailyMetricsFor(ctx context.Context, userID int, day time.Time) (models.DailyMetrics, error)
	GetStreakState(ctx context.Context, userID int) (models.StreakState, error)
	GetDataStats(ctx context.Context, userID int) (*storage.DataStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// SnapshotFunc produces the current widget snapshot.
type SnapshotFunc func(ctx context.Context) (models.WidgetSnapshot, error)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, snapshot SnapshotFunc, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("StrideTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("StrideTrack activity tracking server. Query workout streaks, weekly category goals, daily activity metrics, and workout history. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, snapshot: snapshot, log: log}

	s.AddTools(
		server.ServerTool{Tool: toolGetWeeklyProgress, Handler: h.getWeeklyProgress},
		server.ServerTool{Tool: toolGetStreaks, Handler: h.getStreaks},
		server.ServerTool{Tool: toolGetTodayMetrics, Handler: h.getTodayMetrics},
		server.ServerTool{Tool: toolGetWorkouts, Handler: h.getWorkouts},
		server.ServerTool{Tool: toolGetGoals, Handler: h.getGoals},
		server.ServerTool{Tool: toolGetDataStats, Handler: h.getDataStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resSnapshot, Handler: h.snapshotResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds       DataSource
	snapshot SnapshotFunc
	log      *slog.Logger
}

var resSnapshot = mcp.NewResource(
	"stridetrack://snapshot",
	"Widget Snapshot",
	mcp.WithResourceDescription("The current widget snapshot: streak counters, weekly goal completion, and today's step and calorie totals"),
	mcp.WithMIMEType("application/json"),
)
