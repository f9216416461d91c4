package api

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ayusman/repcoach/internal/store"
)

// ExportHandler streams the workout history as a CSV download.
type ExportHandler struct {
	store *store.Store
}

// NewExportHandler creates a new ExportHandler with the given store.
func NewExportHandler(s *store.Store) *ExportHandler {
	return &ExportHandler{store: s}
}

// ServeHTTP handles GET /api/workouts/export.
func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	workouts, err := h.store.Workouts().List(store.WorkoutFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list workouts")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="workouts.csv"`)

	cw := csv.NewWriter(w)
	cw.Write([]string{
		"id", "exercise", "repetitions", "duration_sec", "score",
		"regularity", "speed", "detected_by_ai", "created_at",
	})

	for _, workout := range workouts {
		cw.Write([]string{
			workout.ID,
			workout.Exercise,
			strconv.Itoa(workout.Repetitions),
			fmt.Sprintf("%.2f", workout.DurationSec),
			fmt.Sprintf("%.1f", workout.Score),
			fmt.Sprintf("%.1f", workout.Regularity),
			fmt.Sprintf("%.2f", workout.Speed),
			strconv.FormatBool(workout.DetectedByAI),
			workout.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	cw.Flush()
}
