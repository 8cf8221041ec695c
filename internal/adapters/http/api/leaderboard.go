package api

import (
	"context"
	"net/http"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/ranking"
)

// LeaderboardDependencies defines the individual ranking operation.
type LeaderboardDependencies interface {
	IndividualStandings(ctx context.Context, p model.Period) ([]ranking.RankedEntry, []points.Warning, error)
}

// LeaderboardHandler handles individual leaderboard requests.
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

type leaderboardResponse struct {
	Period   model.Period          `json:"period"`
	Entries  []ranking.RankedEntry `json:"entries"`
	Warnings []points.Warning      `json:"warnings,omitempty"`
}

// HandleGetLeaderboard handles GET /leaderboard?period=2025-03&limit=N requests.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	p, err := model.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	limit, err := parseLimit(r, h.maxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "limit_exceeded", WrapKind(op, ErrBadRequest, err))
		return
	}

	entries, warnings, err := h.deps.IndividualStandings(r.Context(), p)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{Period: p, Entries: entries, Warnings: warnings})
}
