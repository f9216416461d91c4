package api

import (
	"net/http"

	"github.com/ayusman/repcoach/internal/store"
)

// AchievementsHandler serves the achievement catalog with unlock state.
type AchievementsHandler struct {
	store *store.Store
}

// NewAchievementsHandler creates a new AchievementsHandler with the given store.
func NewAchievementsHandler(s *store.Store) *AchievementsHandler {
	return &AchievementsHandler{store: s}
}

type achievementResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	XPReward    int    `json:"xp_reward"`
	Unlocked    bool   `json:"unlocked"`
	UnlockedAt  string `json:"unlocked_at,omitempty"`
}

type listAchievementsResponse struct {
	Achievements []achievementResponse `json:"achievements"`
	Unlocked     int                   `json:"unlocked_count"`
	Total        int                   `json:"total"`
}

// ServeHTTP handles GET /api/achievements.
func (h *AchievementsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	statuses, err := h.store.Achievements().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list achievements")
		return
	}

	response := listAchievementsResponse{
		Achievements: make([]achievementResponse, 0, len(statuses)),
		Total:        len(statuses),
	}

	for _, status := range statuses {
		entry := achievementResponse{
			ID:          status.ID,
			Name:        status.Name,
			Description: status.Description,
			Icon:        status.Icon,
			XPReward:    status.XPReward,
			Unlocked:    status.Unlocked,
		}
		if status.UnlockedAt != nil {
			entry.UnlockedAt = status.UnlockedAt.Format("2006-01-02T15:04:05Z07:00")
		}
		if status.Unlocked {
			response.Unlocked++
		}
		response.Achievements = append(response.Achievements, entry)
	}

	writeJSON(w, http.StatusOK, response)
}
