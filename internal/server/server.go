package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stridetrack/stridetrack/internal/ingest/healthsync"
	"github.com/stridetrack/stridetrack/internal/messaging"
	"github.com/stridetrack/stridetrack/internal/storage"
	"github.com/stridetrack/stridetrack/internal/tracker"
)

// AuthConfig carries the credentials the HTTP layer validates against.
type AuthConfig struct {
	APIKey    string
	JWTSecret string
	TokenTTL  time.Duration
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      *storage.DB
	sync    *healthsync.Provider
	tracker *tracker.Service
	hub     *messaging.Hub
	auth    AuthConfig
	userID  int
	log     *slog.Logger
	router  chi.Router
}

// New creates a new Server with all routes configured.
func New(db *storage.DB, sync *healthsync.Provider, svc *tracker.Service, hub *messaging.Hub, auth AuthConfig, userID int, log *slog.Logger) *Server {
	s := &Server{
		db:      db,
		sync:    sync,
		tracker: svc,
		hub:     hub,
		auth:    auth,
		userID:  userID,
		log:     log,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/api/v1/health", s.handleHealth)

	// Ingest endpoint (API key required)
	s.router.Route("/api/v1/ingest", func(r chi.Router) {
		r.Use(APIKeyAuth(s.auth.APIKey))
		r.Post("/", s.handleIngest)
	})

	// Session token exchange (API key in, JWT out)
	s.router.With(APIKeyAuth(s.auth.APIKey)).Post("/api/v1/auth/token", s.handleAuthToken)

	// Dashboard API endpoints (bearer token; tsnet deployments may run
	// with auth disabled since the tailnet gates access)
	s.router.Group(func(r chi.Router) {
		r.Use(BearerAuth(s.auth.JWTSecret))
		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/progress", s.handleProgress)
		r.Get("/api/v1/streaks", s.handleStreaks)
		r.Get("/api/v1/metrics/today", s.handleTodayMetrics)
		r.Get("/api/v1/workouts", s.handleQueryWorkouts)
		r.Get("/api/v1/workouts/{id}", s.handleGetWorkout)
		r.Post("/api/v1/workouts", s.handleRecordWorkout)
		r.Get("/api/v1/snapshot", s.handleSnapshot)
		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/synclogs", s.handleSyncLogs)
		r.Get("/api/v1/goals", s.handleGetGoals)
		r.Put("/api/v1/goals/{category}", s.handlePutGoal)
	})

	// Companion messaging channel
	s.router.Get("/api/v1/ws", s.hub.ServeWS)
}
