package api

import (
	"net/http"
	"time"

	"github.com/ayusman/repcoach/internal/coach"
	"github.com/ayusman/repcoach/internal/exercise"
	"github.com/ayusman/repcoach/internal/store"
)

// ProgressHandler serves trend analysis over the workout history.
type ProgressHandler struct {
	store *store.Store
}

// NewProgressHandler creates a new ProgressHandler with the given store.
func NewProgressHandler(s *store.Store) *ProgressHandler {
	return &ProgressHandler{store: s}
}

type progressResponse struct {
	coach.Progress
	DailyTip string `json:"daily_tip"`
}

// ServeHTTP handles GET /api/progress with an optional exercise filter.
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var filter store.WorkoutFilter
	if ex := r.URL.Query().Get("exercise"); ex != "" {
		parsed, err := exercise.Parse(ex)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter.Exercise = string(parsed)
	}

	workouts, err := h.store.Workouts().List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	history := make([]coach.Summary, 0, len(workouts))
	for _, workout := range workouts {
		history = append(history, coach.Summary{
			Exercise:  exercise.Type(workout.Exercise),
			Score:     workout.Score,
			CreatedAt: workout.CreatedAt,
		})
	}

	response := progressResponse{
		Progress: *coach.AssessProgress(history),
		DailyTip: coach.DailyTip(time.Now()),
	}

	writeJSON(w, http.StatusOK, response)
}
