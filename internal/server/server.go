// Package server provides the HTTP server for the RepCoach exercise tracking system.
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ayusman/repcoach/internal/notify"
	"github.com/ayusman/repcoach/internal/server/api"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Runner    *session.Runner
	Notifier  *notify.Notifier
}

// Server represents the HTTP server for the RepCoach application.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
	live   *LiveHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.Handle("/api/exercises", api.NewExercisesHandler())
	s.mux.Handle("/api/trace", NewTraceHandler())

	// Register the live WebSocket endpoint if a session runner is configured
	if s.config.Runner != nil {
		s.live = NewLiveHandler()
		s.config.Runner.OnPhase = func(phase session.Phase) {
			s.live.Publish("phase", map[string]any{"phase": string(phase)})
		}
		s.mux.Handle("/ws/live", s.live)
	}

	// Register persistence-backed handlers if Store is configured
	if s.config.Store != nil {
		workoutHandler := api.NewWorkoutHandler(s.config.Store, s.config.Runner)
		workoutHandler.Notifier = s.config.Notifier
		if s.live != nil {
			workoutHandler.Publisher = s.live
		}
		exportHandler := api.NewExportHandler(s.config.Store)

		// Use a wrapper to route between workout and export handlers
		workoutRouter := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Check if this is an export request: /api/workouts/export
			if strings.HasSuffix(r.URL.Path, "/export") {
				exportHandler.ServeHTTP(w, r)
				return
			}
			workoutHandler.ServeHTTP(w, r)
		})

		s.mux.Handle("/api/workouts", workoutRouter)
		s.mux.Handle("/api/workouts/", workoutRouter)
		s.mux.Handle("/api/stats", api.NewStatsHandler(s.config.Store))
		s.mux.Handle("/api/achievements", api.NewAchievementsHandler(s.config.Store))
		s.mux.Handle("/api/progress", api.NewProgressHandler(s.config.Store))
		s.mux.Handle("/api/settings", api.NewSettingsHandler(s.config.Store))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status":     "ok",
		"uptime":     uptime.String(),
		"classifier": s.config.Runner != nil && s.config.Runner.HasClassifier(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
