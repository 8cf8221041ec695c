package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/shopspring/decimal"
)

// RecordDependencies defines the ingestion operations.
type RecordDependencies interface {
	PutTeam(ctx context.Context, t model.Team) error
	AddRecord(ctx context.Context, r model.ActivityRecord) error
	AddCard(ctx context.Context, c model.CardEvent) error
	SetGoal(ctx context.Context, subjectID string, year int, month time.Month, amount decimal.Decimal) error
}

// RecordsHandler handles ingestion of teams, records, cards and goals.
type RecordsHandler struct {
	deps RecordDependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps RecordDependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

type teamRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type referralBody struct {
	Collected      int `json:"collected"`
	ToConsultation int `json:"to_consultation"`
	ToSurgery      int `json:"to_surgery"`
}

type otherBody struct {
	Unilovers         int `json:"unilovers"`
	Ambassadors       int `json:"ambassadors"`
	InstagramMentions int `json:"instagram_mentions"`
}

// recordRequest is the body of POST /records. Only the fields of the
// category are read.
type recordRequest struct {
	ID                  string           `json:"id"`
	SubjectID           string           `json:"subject_id"`
	TeamID              string           `json:"team_id"`
	Category            string           `json:"category"`
	OccurredOn          string           `json:"occurred_on"`
	Amount              *decimal.Decimal `json:"amount,omitempty"`
	Score               *int             `json:"score,omitempty"`
	CitedMember         bool             `json:"cited_member,omitempty"`
	Kind                string           `json:"kind,omitempty"`
	Referral            *referralBody    `json:"referral,omitempty"`
	AttributedSubjectID string           `json:"attributed_subject_id,omitempty"`
	Other               *otherBody       `json:"other,omitempty"`
}

func (req recordRequest) toModel() (model.ActivityRecord, error) {
	on, err := time.Parse(dateLayout, req.OccurredOn)
	if err != nil {
		return model.ActivityRecord{}, errors.New("invalid occurred_on; must be YYYY-MM-DD")
	}
	category := model.Category(req.Category)
	if !knownCategory(category) {
		return model.ActivityRecord{}, errors.New("unknown category")
	}

	rec := model.ActivityRecord{
		ID:          req.ID,
		SubjectID:   req.SubjectID,
		TeamID:      req.TeamID,
		Category:    category,
		OccurredOn:  on,
		Amount:      req.Amount,
		Score:       req.Score,
		CitedMember: req.CitedMember,
		Kind:        model.TestimonialKind(req.Kind),

		AttributedSubjectID: req.AttributedSubjectID,
	}
	if req.Referral != nil {
		rec.Referral = &model.ReferralCounts{
			Collected:      req.Referral.Collected,
			ToConsultation: req.Referral.ToConsultation,
			ToSurgery:      req.Referral.ToSurgery,
		}
	}
	if req.Other != nil {
		rec.Other = &model.OtherCounts{
			Unilovers:         req.Other.Unilovers,
			Ambassadors:       req.Other.Ambassadors,
			InstagramMentions: req.Other.InstagramMentions,
		}
	}
	return rec, nil
}

func knownCategory(c model.Category) bool {
	for _, k := range model.Categories {
		if c == k {
			return true
		}
	}
	return false
}

type cardRequest struct {
	ID       string `json:"id"`
	TeamID   string `json:"team_id"`
	Kind     string `json:"kind"`
	IssuedOn string `json:"issued_on"`
}

type goalRequest struct {
	SubjectID string          `json:"subject_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
}

type createdResponse struct {
	Status string `json:"status"`
	ID     string `json:"id"`
}

// HandlePostTeam handles POST /teams requests.
func (h *RecordsHandler) HandlePostTeam(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_team"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req teamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.PutTeam(r.Context(), model.Team{ID: req.ID, Name: req.Name}); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{Status: "ok", ID: req.ID})
}

// HandlePostRecord handles POST /records requests.
func (h *RecordsHandler) HandlePostRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_record"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	rec, err := req.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.AddRecord(r.Context(), rec); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Status: "created", ID: rec.ID})
}

// HandlePostCard handles POST /cards requests.
func (h *RecordsHandler) HandlePostCard(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_card"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req cardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	on, err := time.Parse(dateLayout, req.IssuedOn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("invalid issued_on; must be YYYY-MM-DD")))
		return
	}
	c := model.CardEvent{ID: req.ID, TeamID: req.TeamID, Kind: model.CardKind(req.Kind), IssuedOn: on}
	if err := h.deps.AddCard(r.Context(), c); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, createdResponse{Status: "created", ID: c.ID})
}

// HandlePostGoal handles POST /goals requests.
func (h *RecordsHandler) HandlePostGoal(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_goal"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetGoal(r.Context(), req.SubjectID, req.Year, time.Month(req.Month), req.Amount); err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, createdResponse{Status: "ok", ID: req.SubjectID})
}
