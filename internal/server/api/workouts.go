// Package api provides HTTP API handlers for the RepCoach exercise tracking system.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/repcoach/internal/coach"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/notify"
	"github.com/ayusman/repcoach/internal/session"
	"github.com/ayusman/repcoach/internal/signal"
	"github.com/ayusman/repcoach/internal/store"
)

// Publisher pushes live events to connected clients.
type Publisher interface {
	Publish(kind string, data any)
}

// WorkoutHandler handles HTTP requests for workout resources.
type WorkoutHandler struct {
	store  *store.Store
	runner *session.Runner

	// Notifier, when set, receives events for completed workouts,
	// unlocked achievements and level ups.
	Notifier *notify.Notifier
	// Publisher, when set, receives completed workouts for live clients.
	Publisher Publisher
}

// NewWorkoutHandler creates a new WorkoutHandler with the given store and session runner.
func NewWorkoutHandler(s *store.Store, runner *session.Runner) *WorkoutHandler {
	return &WorkoutHandler{store: s, runner: runner}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *WorkoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/workouts or /api/workouts/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/workouts")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		// Collection endpoint: /api/workouts
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	// Item endpoint: /api/workouts/{id}
	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createWorkoutRequest struct {
	Exercise     string  `json:"exercise"`
	DurationSec  float64 `json:"duration_sec"`
	SampleRateHz float64 `json:"sample_rate_hz"`
	NoiseLevel   float64 `json:"noise_level"`
	Seed         int64   `json:"seed"`
	AutoDetect   bool    `json:"auto_detect"`
	Notes        string  `json:"notes"`
}

type workoutResponse struct {
	ID           string   `json:"id"`
	Exercise     string   `json:"exercise"`
	Repetitions  int      `json:"repetitions"`
	DurationSec  float64  `json:"duration_sec"`
	Score        float64  `json:"score"`
	Regularity   float64  `json:"regularity"`
	Speed        float64  `json:"speed"`
	Feedback     string   `json:"feedback"`
	Notes        string   `json:"notes,omitempty"`
	DetectedByAI bool     `json:"detected_by_ai"`
	AIConfidence *float64 `json:"ai_confidence,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

type createWorkoutResponse struct {
	Workout    workoutResponse      `json:"workout"`
	Feedback   []coach.Message      `json:"feedback"`
	XPEarned   int                  `json:"xp_earned"`
	Level      int                  `json:"level"`
	LevelTitle string               `json:"level_title"`
	LeveledUp  bool                 `json:"leveled_up"`
	Unlocked   []achievementSummary `json:"unlocked_achievements"`
}

type achievementSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Icon     string `json:"icon"`
	XPReward int    `json:"xp_reward"`
}

type listWorkoutsResponse struct {
	Workouts []workoutResponse `json:"workouts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Workout to a workoutResponse.
func toResponse(w *store.Workout) workoutResponse {
	return workoutResponse{
		ID:           w.ID,
		Exercise:     w.Exercise,
		Repetitions:  w.Repetitions,
		DurationSec:  w.DurationSec,
		Score:        w.Score,
		Regularity:   w.Regularity,
		Speed:        w.Speed,
		Feedback:     w.Feedback,
		Notes:        w.Notes,
		DetectedByAI: w.DetectedByAI,
		AIConfidence: w.AIConfidence,
		CreatedAt:    w.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// create handles POST /api/workouts. It runs a full workout session for
// the requested exercise, persists the result and folds it into the
// user profile.
func (h *WorkoutHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusServiceUnavailable, "Session runner not configured")
		return
	}

	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Exercise == "" {
		writeError(w, http.StatusBadRequest, "Exercise is required")
		return
	}

	ex, err := exercise.Parse(req.Exercise)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.runner.Run(session.Request{
		Exercise:     ex,
		DurationSec:  req.DurationSec,
		SampleRateHz: req.SampleRateHz,
		NoiseLevel:   req.NoiseLevel,
		Seed:         req.Seed,
		AutoDetect:   req.AutoDetect,
	})
	if err != nil {
		var validationErr *signal.ValidationError
		var dataErr *signal.InsufficientDataError
		if errors.As(err, &validationErr) || errors.As(err, &dataErr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to run workout session")
		return
	}

	result := outcome.Result
	workout := &store.Workout{
		ID:           uuid.New().String(),
		Exercise:     string(result.Exercise),
		Repetitions:  result.Repetitions,
		DurationSec:  result.DurationSec,
		Score:        result.Score,
		Regularity:   result.Regularity,
		Speed:        result.Speed,
		Feedback:     strings.Join(coach.Texts(outcome.Feedback), "\n"),
		Notes:        req.Notes,
		DetectedByAI: result.AIDetected,
		AIConfidence: result.Confidence,
		CreatedAt:    time.Now(),
	}

	if err := h.store.Workouts().Create(workout); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save workout")
		return
	}

	delta, err := h.store.Stats().ApplyWorkout(workout.Score, workout.DurationSec, workout.CreatedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update stats")
		return
	}

	unlocked, err := h.store.Achievements().CheckUnlocks(workout.CreatedAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check achievements")
		return
	}

	response := createWorkoutResponse{
		Workout:    toResponse(workout),
		Feedback:   outcome.Feedback,
		XPEarned:   delta.XPEarned,
		Level:      delta.Stats.Level,
		LevelTitle: store.LevelTitle(delta.Stats.Level),
		LeveledUp:  delta.LeveledUp,
		Unlocked:   make([]achievementSummary, 0, len(unlocked)),
	}
	for _, a := range unlocked {
		response.Unlocked = append(response.Unlocked, achievementSummary{
			ID:       a.ID,
			Name:     a.Name,
			Icon:     a.Icon,
			XPReward: a.XPReward,
		})
	}

	if h.Publisher != nil {
		h.Publisher.Publish("workout", response.Workout)
	}
	if h.Notifier != nil {
		go h.dispatchEvents(workout, delta, unlocked)
	}

	writeJSON(w, http.StatusCreated, response)
}

// dispatchEvents sends notify events for a saved workout.
func (h *WorkoutHandler) dispatchEvents(w *store.Workout, delta *store.StatsDelta, unlocked []store.Achievement) {
	h.Notifier.Dispatch(notify.Event{
		Type:  notify.EventWorkoutCompleted,
		Title: "Workout complete",
		Body:  fmt.Sprintf("%d reps of %s, score %.0f (+%d XP)", w.Repetitions, w.Exercise, w.Score, delta.XPEarned),
		At:    w.CreatedAt,
	})

	for _, a := range unlocked {
		h.Notifier.Dispatch(notify.Event{
			Type:  notify.EventAchievementUnlocked,
			Title: fmt.Sprintf("Achievement unlocked: %s %s", a.Icon, a.Name),
			Body:  fmt.Sprintf("%s (+%d XP)", a.Description, a.XPReward),
			At:    w.CreatedAt,
		})
	}

	if delta.LeveledUp {
		h.Notifier.Dispatch(notify.Event{
			Type:  notify.EventLevelUp,
			Title: fmt.Sprintf("Level %d reached!", delta.Stats.Level),
			Body:  fmt.Sprintf("You are now %s rank", store.LevelTitle(delta.Stats.Level)),
			At:    w.CreatedAt,
		})
	}
}

// list handles GET /api/workouts with optional exercise, since and limit filters.
func (h *WorkoutHandler) list(w http.ResponseWriter, r *http.Request) {
	var filter store.WorkoutFilter

	if ex := r.URL.Query().Get("exercise"); ex != "" {
		parsed, err := exercise.Parse(ex)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Exercise = string(parsed)
	}

	if since := r.URL.Query().Get("since"); since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid since timestamp, expected RFC 3339")
			return
		}
		filter.Since = parsed
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		parsed, err := strconv.Atoi(limit)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		filter.Limit = parsed
	}

	workouts, err := h.store.Workouts().List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	response := listWorkoutsResponse{
		Workouts: make([]workoutResponse, 0, len(workouts)),
	}
	for _, workout := range workouts {
		response.Workouts = append(response.Workouts, toResponse(workout))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/workouts/{id} and returns a single workout.
func (h *WorkoutHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	workout, err := h.store.Workouts().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get workout")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(workout))
}

// delete handles DELETE /api/workouts/{id} and removes a workout.
func (h *WorkoutHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Workouts().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Workout not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete workout")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
