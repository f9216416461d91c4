package api

import (
	"net/http"

	"github.com/ayusman/repcoach/internal/store"
)

// StatsHandler serves the aggregate user profile.
type StatsHandler struct {
	store *store.Store
}

// NewStatsHandler creates a new StatsHandler with the given store.
func NewStatsHandler(s *store.Store) *StatsHandler {
	return &StatsHandler{store: s}
}

type statsResponse struct {
	TotalWorkouts int     `json:"total_workouts"`
	TotalTimeSec  float64 `json:"total_time_sec"`
	XP            int     `json:"xp"`
	Level         int     `json:"level"`
	LevelTitle    string  `json:"level_title"`
	XPIntoLevel   int     `json:"xp_into_level"`
	XPForNext     int     `json:"xp_for_next_level"`
	CurrentStreak int     `json:"current_streak"`
	BestStreak    int     `json:"best_streak"`
}

// ServeHTTP handles GET /api/stats.
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	stats, err := h.store.Stats().Get()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	response := statsResponse{
		TotalWorkouts: stats.TotalWorkouts,
		TotalTimeSec:  stats.TotalTimeSec,
		XP:            stats.XP,
		Level:         stats.Level,
		LevelTitle:    store.LevelTitle(stats.Level),
		CurrentStreak: stats.CurrentStreak,
		BestStreak:    stats.BestStreak,
	}

	// Progress within the current level. At the cap the bar stays full.
	if stats.Level < store.MaxLevel {
		response.XPIntoLevel = stats.XP - (stats.Level-1)*store.XPPerLevel
		response.XPForNext = store.XPPerLevel
	} else {
		response.XPIntoLevel = store.XPPerLevel
		response.XPForNext = store.XPPerLevel
	}

	writeJSON(w, http.StatusOK, response)
}
