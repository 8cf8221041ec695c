// Package api exposes the scoring engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/okian/arena/internal/adapters/repository"
	service "github.com/okian/arena/internal/app"
)

// Dependencies required by HTTP handlers. Each handler only sees the slice
// it needs.
type Dependencies interface {
	StandingsDependencies
	LeaderboardDependencies
	PacingDependencies
	StreakDependencies
	AchievementDependencies
	EvaluationDependencies
	RecordDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler       *HealthHandler
	statsHandler        *StatsHandler
	standingsHandler    *StandingsHandler
	leaderboardHandler  *LeaderboardHandler
	pacingHandler       *PacingHandler
	streakHandler       *StreakHandler
	achievementsHandler *AchievementsHandler
	evaluationsHandler  *EvaluationsHandler
	recordsHandler      *RecordsHandler
}

// NewServer creates a new API server with all handlers. maxLimit caps the
// limit query parameter of ranked listings.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:       NewHealthHandler(),
		statsHandler:        NewStatsHandler(statsProvider),
		standingsHandler:    NewStandingsHandler(deps, maxLimit),
		leaderboardHandler:  NewLeaderboardHandler(deps, maxLimit),
		pacingHandler:       NewPacingHandler(deps),
		streakHandler:       NewStreakHandler(deps),
		achievementsHandler: NewAchievementsHandler(deps),
		evaluationsHandler:  NewEvaluationsHandler(deps),
		recordsHandler:      NewRecordsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/leaders", MetricsMiddleware(s.standingsHandler.HandleGetLeaders, "leaders"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/pacing/", MetricsMiddleware(s.pacingHandler.HandleGetPacing, "pacing"))
	mux.HandleFunc("/streak", MetricsMiddleware(s.streakHandler.HandleGetStreak, "streak"))
	mux.HandleFunc("/catalog", MetricsMiddleware(s.achievementsHandler.HandleGetCatalog, "catalog"))
	mux.HandleFunc("/achievements/", MetricsMiddleware(s.achievementsHandler.HandleGetAchievements, "achievements"))
	mux.HandleFunc("/evaluations", MetricsMiddleware(s.evaluationsHandler.HandlePostEvaluation, "evaluations"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.recordsHandler.HandlePostTeam, "teams"))
	mux.HandleFunc("/records", MetricsMiddleware(s.recordsHandler.HandlePostRecord, "records"))
	mux.HandleFunc("/cards", MetricsMiddleware(s.recordsHandler.HandlePostCard, "cards"))
	mux.HandleFunc("/goals", MetricsMiddleware(s.recordsHandler.HandlePostGoal, "goals"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service and store errors to a status code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, repository.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrGoalNotSet), errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", WrapKind(op, ErrNotFound, err))
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "conflict", WrapKind(op, ErrConflict, err))
	case errors.Is(err, service.ErrBackpressure):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", WrapKind(op, ErrUnavailable, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New("invalid " + name)
	}
	return v, nil
}
