package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/pacing"
	"github.com/okian/arena/pkg/metrics"
	"github.com/shopspring/decimal"
)

// PacingRequest selects the subject and month to project.
type PacingRequest struct {
	SubjectID string
	// Goal overrides the stored monthly goal when set.
	Goal  *decimal.Decimal
	Year  int
	Month time.Month
	// Today defaults to the service clock.
	Today time.Time
}

// Pacing projects a subject's month-end revenue against the goal.
func (s *Service) Pacing(ctx context.Context, req PacingRequest) (pacing.Snapshot, error) {
	if req.SubjectID == "" {
		return pacing.Snapshot{}, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if req.Today.IsZero() {
		req.Today = s.now()
	}
	if req.Year == 0 {
		req.Year = req.Today.Year()
	}
	if req.Month == 0 {
		req.Month = req.Today.Month()
	}
	period := model.MonthPeriod(req.Year, req.Month)
	if err := period.Validate(); err != nil {
		return pacing.Snapshot{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	goal, err := s.goal(ctx, req.SubjectID, req.Year, req.Month, req.Goal)
	if err != nil {
		return pacing.Snapshot{}, err
	}

	revenue, err := s.monthRevenue(ctx, req.SubjectID, period)
	if err != nil {
		return pacing.Snapshot{}, err
	}

	snap := pacing.Compute(pacing.Input{
		SubjectID: req.SubjectID,
		Goal:      goal,
		Revenue:   revenue,
		Today:     req.Today,
		Month:     req.Month,
		Year:      req.Year,
	})
	metrics.RecordPacingStatus(string(snap.Status))
	return snap, nil
}

func (s *Service) goal(ctx context.Context, subjectID string, year int, month time.Month, override *decimal.Decimal) (decimal.Decimal, error) {
	if override != nil {
		if override.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: goal must not be negative", ErrInvalidRequest)
		}
		return *override, nil
	}
	goal, err := s.store.Goal(ctx, subjectID, year, month)
	if errors.Is(err, repository.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("%w: %s %04d-%02d", ErrGoalNotSet, subjectID, year, int(month))
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("load goal: %w", err)
	}
	return goal, nil
}

// monthRevenue returns the well-formed revenue records of a subject.
func (s *Service) monthRevenue(ctx context.Context, subjectID string, p model.Period) ([]model.DailyRevenue, error) {
	from, to := p.Window()
	records, err := s.store.Records(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	var out []model.DailyRevenue
	for _, r := range records {
		if r.Category != model.CategoryRevenue || r.CreditedSubject() != subjectID {
			continue
		}
		if r.Amount == nil || r.Amount.IsNegative() {
			continue
		}
		out = append(out, model.DailyRevenue{Date: r.OccurredOn, Amount: *r.Amount})
	}
	return out, nil
}
