package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/pkg/logger"
	"github.com/shopspring/decimal"
)

// PutTeam registers or renames a team.
func (s *Service) PutTeam(ctx context.Context, t model.Team) error {
	if t.ID == "" {
		return fmt.Errorf("%w: team id is required", ErrInvalidRequest)
	}
	return s.store.PutTeam(ctx, t)
}

// AddRecord stores an activity record and, when the service is running,
// queues an evaluation of the credited subject for the record's month.
func (s *Service) AddRecord(ctx context.Context, r model.ActivityRecord) error {
	if err := repository.ValidateRecord(r); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := s.store.AddRecord(ctx, r); err != nil {
		return err
	}
	s.followUp(ctx, r.CreditedSubject(), r.TeamID, r.OccurredOn)
	return nil
}

// AddCard stores a card event.
func (s *Service) AddCard(ctx context.Context, c model.CardEvent) error {
	if err := repository.ValidateCard(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return s.store.AddCard(ctx, c)
}

// SetGoal stores a subject's monthly revenue goal.
func (s *Service) SetGoal(ctx context.Context, subjectID string, year int, month time.Month, amount decimal.Decimal) error {
	if subjectID == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if err := model.MonthPeriod(year, month).Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if amount.IsNegative() {
		return fmt.Errorf("%w: goal must not be negative", ErrInvalidRequest)
	}
	return s.store.SetGoal(ctx, subjectID, year, month, amount)
}

// followUp requests a best-effort evaluation after new activity.
func (s *Service) followUp(ctx context.Context, subjectID, teamID string, on time.Time) {
	req := EvaluationRequest{
		SubjectID: subjectID,
		TeamID:    teamID,
		Period:    model.MonthPeriod(on.Year(), on.Month()),
	}
	_, _, err := s.RequestEvaluation(ctx, req)
	switch {
	case err == nil, errors.Is(err, ErrNotStarted):
	default:
		s.logger.Warn(ctx, "follow-up evaluation not queued",
			logger.String("subject", subjectID),
			logger.Error(err),
		)
	}
}
