package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/arena/internal/domain/achievement"
)

// AchievementDependencies defines the achievement read operations.
type AchievementDependencies interface {
	Achievements(ctx context.Context, subjectID string) ([]achievement.Unlocked, error)
}

// AchievementsHandler handles achievement and catalog requests.
type AchievementsHandler struct {
	deps AchievementDependencies
}

// NewAchievementsHandler creates a new achievements handler.
func NewAchievementsHandler(deps AchievementDependencies) *AchievementsHandler {
	return &AchievementsHandler{deps: deps}
}

// HandleGetAchievements handles GET /achievements/{subject} requests.
func (h *AchievementsHandler) HandleGetAchievements(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_achievements"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	subject := strings.TrimPrefix(r.URL.Path, "/achievements/")
	if subject == "" || strings.Contains(subject, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	list, err := h.deps.Achievements(r.Context(), subject)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if list == nil {
		list = []achievement.Unlocked{}
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetCatalog handles GET /catalog requests.
func (h *AchievementsHandler) HandleGetCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, achievement.Catalog())
}
