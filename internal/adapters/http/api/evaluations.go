package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/arena/internal/app"
	"github.com/okian/arena/internal/domain/model"
)

// EvaluationDependencies defines how evaluations are requested.
type EvaluationDependencies interface {
	RequestEvaluation(ctx context.Context, req service.EvaluationRequest) (model.EvaluationJob, bool, error)
}

// EvaluationsHandler handles evaluation requests.
type EvaluationsHandler struct {
	deps EvaluationDependencies
}

// NewEvaluationsHandler creates a new evaluations handler.
func NewEvaluationsHandler(deps EvaluationDependencies) *EvaluationsHandler {
	return &EvaluationsHandler{deps: deps}
}

// evaluationRequest is the body of POST /evaluations.
type evaluationRequest struct {
	SubjectID string `json:"subject_id"`
	TeamID    string `json:"team_id"`
	Period    string `json:"period"`
}

func (e evaluationRequest) validate() (model.Period, error) {
	if strings.TrimSpace(e.SubjectID) == "" {
		return model.Period{}, errors.New("missing subject_id")
	}
	if strings.TrimSpace(e.Period) == "" {
		return model.Period{}, errors.New("missing period")
	}
	return model.ParsePeriod(e.Period)
}

type evaluationResponse struct {
	Status    string `json:"status"`
	JobID     string `json:"job_id,omitempty"`
	Coalesced bool   `json:"coalesced"`
}

// HandlePostEvaluation handles POST /evaluations requests. A request for a
// subject and period that is already pending is acknowledged as coalesced.
func (h *EvaluationsHandler) HandlePostEvaluation(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	period, err := req.validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	job, coalesced, err := h.deps.RequestEvaluation(r.Context(), service.EvaluationRequest{
		SubjectID: req.SubjectID,
		TeamID:    req.TeamID,
		Period:    period,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if coalesced {
		writeJSON(w, http.StatusOK, evaluationResponse{Status: "pending", Coalesced: true})
		return
	}
	writeJSON(w, http.StatusAccepted, evaluationResponse{Status: "accepted", JobID: job.ID})
}
