package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/model"
)

// StandingsDependencies defines the team ranking operations.
type StandingsDependencies interface {
	Standings(ctx context.Context, p model.Period) (service.Standings, error)
	MonthlyLeaders(ctx context.Context, year int, upto time.Month) ([]model.MonthlyLeader, error)
}

// StandingsHandler handles team standings requests.
type StandingsHandler struct {
	deps     StandingsDependencies
	maxLimit int
}

// NewStandingsHandler creates a new standings handler.
func NewStandingsHandler(deps StandingsDependencies, maxLimit int) *StandingsHandler {
	return &StandingsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetStandings handles GET /standings?period=2025-03&limit=N requests.
func (h *StandingsHandler) HandleGetStandings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_standings"
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

	st, err := h.deps.Standings(r.Context(), p)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if len(st.Rows) > limit {
		st.Rows = st.Rows[:limit]
	}
	writeJSON(w, http.StatusOK, st)
}

// HandleGetLeaders handles GET /leaders?year=2025&month=5 requests.
func (h *StandingsHandler) HandleGetLeaders(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaders"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	year, month, err := yearMonth(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	leaders, err := h.deps.MonthlyLeaders(r.Context(), year, month)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, leaders)
}

// parseLimit reads ?limit, defaulting to and capped by maxLimit.
func parseLimit(r *http.Request, maxLimit int) (int, error) {
	n, err := queryInt(r, "limit", maxLimit)
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, errors.New("limit must be positive")
	}
	if n > maxLimit {
		return 0, errors.New("limit exceeds maximum")
	}
	return n, nil
}

// yearMonth reads ?year and ?month, defaulting to the current month.
func yearMonth(r *http.Request) (int, time.Month, error) {
	now := time.Now().UTC()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		return 0, 0, err
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil {
		return 0, 0, err
	}
	if month < 1 || month > 12 {
		return 0, 0, errors.New("month must be between 1 and 12")
	}
	return year, time.Month(month), nil
}
