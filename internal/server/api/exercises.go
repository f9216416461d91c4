package api

import (
	"net/http"

	"github.com/ayusman/repcoach/internal/exercise"
)

// ExercisesHandler serves the supported exercise catalog.
type ExercisesHandler struct{}

// NewExercisesHandler creates a new ExercisesHandler.
func NewExercisesHandler() *ExercisesHandler {
	return &ExercisesHandler{}
}

type exerciseResponse struct {
	Name             string  `json:"name"`
	DisplayName      string  `json:"display_name"`
	TargetCadenceSec float64 `json:"target_cadence_sec"`
}

type listExercisesResponse struct {
	Exercises []exerciseResponse `json:"exercises"`
}

// ServeHTTP handles GET /api/exercises.
func (h *ExercisesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := listExercisesResponse{
		Exercises: make([]exerciseResponse, 0, len(exercise.All())),
	}
	for _, t := range exercise.All() {
		entry := exerciseResponse{
			Name:        string(t),
			DisplayName: t.DisplayName(),
		}
		if profile, ok := exercise.ProfileFor(t); ok {
			entry.TargetCadenceSec = profile.TargetCadenceSec
		}
		response.Exercises = append(response.Exercises, entry)
	}

	writeJSON(w, http.StatusOK, response)
}
