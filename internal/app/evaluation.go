package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/okian/arena/internal/adapters/mq/queue"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/pacing"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
	"github.com/shopspring/decimal"
)

// EvaluationRequest asks for a subject's achievements to be re-checked.
type EvaluationRequest struct {
	SubjectID string       `json:"subjectId"`
	TeamID    string       `json:"teamId,omitempty"`
	Period    model.Period `json:"period"`
}

// RequestEvaluation queues an evaluation. A request for a subject and
// period that is already pending is coalesced into the pending job and
// reports coalesced=true.
func (s *Service) RequestEvaluation(ctx context.Context, req EvaluationRequest) (job model.EvaluationJob, coalesced bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.EvaluationJob{}, false, ErrNotStarted
	}
	if req.SubjectID == "" {
		return model.EvaluationJob{}, false, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	if err := req.Period.Validate(); err != nil {
		return model.EvaluationJob{}, false, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	job = model.EvaluationJob{
		ID:          uuid.NewString(),
		SubjectID:   req.SubjectID,
		TeamID:      req.TeamID,
		Period:      req.Period,
		RequestedAt: s.now().UTC(),
	}

	key := job.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordEvaluationCoalesced()
		s.logger.Debug(ctx, "evaluation already pending", logger.String("key", key))
		return job, true, nil
	}

	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.deduper.Unrecord(ctx, key)
		if errors.Is(err, queue.ErrFull) {
			return model.EvaluationJob{}, false, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return model.EvaluationJob{}, false, fmt.Errorf("enqueue evaluation: %w", err)
	}
	return job, false, nil
}

// subjectMetrics are the figures the threshold helpers are checked against.
type subjectMetrics struct {
	teamID    string
	revenue   decimal.Decimal
	referrals int
	gold      int
	promoters int
}

// Evaluate recomputes a subject's metrics for the job's period and runs
// every threshold helper. It returns the newly granted types; on failure
// the grants that did succeed are returned with the error.
func (s *Service) Evaluate(ctx context.Context, j model.EvaluationJob) ([]achievement.Type, error) {
	from, to := j.Period.Window()
	records, err := s.store.Records(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}

	m := collectMetrics(records, j.SubjectID)
	subject := achievement.Subject{SubjectID: j.SubjectID, TeamID: j.TeamID, Period: j.Period}
	if subject.TeamID == "" {
		subject.TeamID = m.teamID
	}

	var (
		granted []achievement.Type
		errs    []error
	)
	collect := func(types []achievement.Type, err error) {
		granted = append(granted, types...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(s.engine.CheckSales(ctx, subject, m.revenue))
	collect(s.engine.CheckReferrals(ctx, subject, m.referrals))
	collect(s.engine.CheckTestimonials(ctx, subject, m.gold))
	collect(s.engine.CheckNPS(ctx, subject, m.promoters))

	// Goal and daily streak are monthly notions.
	if j.Period.Kind == model.PeriodMonth {
		snap, ok, err := s.monthSnapshot(ctx, j.SubjectID, j.Period, records)
		switch {
		case err != nil:
			errs = append(errs, err)
		case ok:
			collect(s.engine.CheckStreak(ctx, subject, snap.DailyHitStreak))
			collect(s.engine.CheckGoal(ctx, subject, snap.MonthProgress))
		}
	}

	return granted, errors.Join(errs...)
}

// monthSnapshot computes pacing as of today clamped into the month. It
// reports false when the subject has no goal for the month.
func (s *Service) monthSnapshot(ctx context.Context, subjectID string, p model.Period, records []model.ActivityRecord) (pacing.Snapshot, bool, error) {
	goal, err := s.goal(ctx, subjectID, p.Year, p.Month, nil)
	if errors.Is(err, ErrGoalNotSet) {
		return pacing.Snapshot{}, false, nil
	}
	if err != nil {
		return pacing.Snapshot{}, false, err
	}

	from, to := p.Window()
	today := model.Date(s.now())
	switch {
	case today.Before(from):
		today = from
	case today.After(to):
		today = to
	}

	var revenue []model.DailyRevenue
	for _, r := range records {
		if r.Category == model.CategoryRevenue && r.CreditedSubject() == subjectID && r.Amount != nil && !r.Amount.IsNegative() {
			revenue = append(revenue, model.DailyRevenue{Date: r.OccurredOn, Amount: *r.Amount})
		}
	}

	return pacing.Compute(pacing.Input{
		SubjectID: subjectID,
		Goal:      goal,
		Revenue:   revenue,
		Today:     today,
		Month:     p.Month,
		Year:      p.Year,
	}), true, nil
}

// collectMetrics sums the well-formed records credited to subjectID.
func collectMetrics(records []model.ActivityRecord, subjectID string) subjectMetrics {
	m := subjectMetrics{revenue: decimal.Zero}
	for _, r := range records {
		if r.CreditedSubject() != subjectID {
			continue
		}
		if m.teamID == "" {
			m.teamID = r.TeamID
		}
		switch r.Category {
		case model.CategoryRevenue:
			if r.Amount != nil && !r.Amount.IsNegative() {
				m.revenue = m.revenue.Add(*r.Amount)
			}
		case model.CategoryReferral:
			if r.Referral != nil && r.Referral.Collected > 0 {
				m.referrals += r.Referral.Collected
			}
		case model.CategoryTestimonial:
			if r.Kind == model.TestimonialGold {
				m.gold++
			}
		case model.CategoryNPS:
			if r.Score != nil && *r.Score >= 9 && *r.Score <= 10 {
				m.promoters++
			}
		}
	}
	return m
}
