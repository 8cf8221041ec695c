package api

import (
	"context"
	"net/http"
	"time"

	service "github.com/okian/arena/internal/app"
)

// StreakDependencies defines the leader streak operation.
type StreakDependencies interface {
	CurrentStreak(ctx context.Context, year int, month time.Month) (service.StreakView, error)
}

// StreakHandler handles streak requests.
type StreakHandler struct {
	deps StreakDependencies
}

// NewStreakHandler creates a new streak handler.
func NewStreakHandler(deps StreakDependencies) *StreakHandler {
	return &StreakHandler{deps: deps}
}

// HandleGetStreak handles GET /streak?year=&month= requests. Polling is
// safe: a streak is celebrated at most once.
func (h *StreakHandler) HandleGetStreak(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_streak"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.CurrentStreak(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
