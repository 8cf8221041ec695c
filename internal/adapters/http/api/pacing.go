package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/pacing"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// PacingDependencies defines the pacing operation.
type PacingDependencies interface {
	Pacing(ctx context.Context, req service.PacingRequest) (pacing.Snapshot, error)
}

// PacingHandler handles goal pacing requests.
type PacingHandler struct {
	deps PacingDependencies
}

// NewPacingHandler creates a new pacing handler.
func NewPacingHandler(deps PacingDependencies) *PacingHandler {
	return &PacingHandler{deps: deps}
}

// HandleGetPacing handles GET /pacing/{subject}?goal=&year=&month=&today=
// requests. Without goal the stored monthly goal is used.
func (h *PacingHandler) HandleGetPacing(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pacing"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	subject := strings.TrimPrefix(r.URL.Path, "/pacing/")
	if subject == "" || strings.Contains(subject, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	req, err := pacingRequest(r, subject)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	snap, err := h.deps.Pacing(r.Context(), req)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func pacingRequest(r *http.Request, subject string) (service.PacingRequest, error) {
	q := r.URL.Query()
	req := service.PacingRequest{SubjectID: subject}

	if raw := q.Get("goal"); raw != "" {
		goal, err := decimal.NewFromString(raw)
		if err != nil {
			return req, errors.New("invalid goal")
		}
		req.Goal = &goal
	}
	if raw := q.Get("today"); raw != "" {
		today, err := time.Parse(dateLayout, raw)
		if err != nil {
			return req, errors.New("invalid today; must be YYYY-MM-DD")
		}
		req.Today = today
	}

	year, err := queryInt(r, "year", 0)
	if err != nil {
		return req, err
	}
	month, err := queryInt(r, "month", 0)
	if err != nil {
		return req, err
	}
	if month < 0 || month > 12 {
		return req, errors.New("month must be between 1 and 12")
	}
	req.Year = year
	req.Month = time.Month(month)
	return req, nil
}
