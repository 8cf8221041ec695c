package achievement

import (
	"context"

	"github.com/shopspring/decimal"
)

type tier struct {
	threshold int64
	typ       Type
}

var (
	salesTiers = []tier{ //nolint:gochecknoglobals // fixed thresholds
		{10_000, Sales10K},
		{50_000, Sales50K},
		{100_000, Sales100K},
	}
	referralTiers = []tier{ //nolint:gochecknoglobals // fixed thresholds
		{1, Referral1},
		{5, Referral5},
		{10, Referral10},
	}
	streakTiers = []tier{ //nolint:gochecknoglobals // fixed thresholds
		{3, Streak3},
		{5, Streak5},
		{7, Streak7},
		{10, Streak10},
	}
	goalTiers = []tier{ //nolint:gochecknoglobals // fixed thresholds, percent of goal
		{100, Goal100},
		{120, Goal120},
	}
	testimonialTiers = []tier{{1, TestimonialGold1}} //nolint:gochecknoglobals // fixed thresholds
	npsTiers         = []tier{{5, NPSPromoter5}}     //nolint:gochecknoglobals // fixed thresholds
)

// CheckSales grants the sales tiers reached by revenue.
func (e *Engine) CheckSales(ctx context.Context, s Subject, revenue decimal.Decimal) ([]Type, error) {
	return e.check(ctx, s, salesTiers, func(threshold int64) bool {
		return revenue.GreaterThanOrEqual(decimal.NewFromInt(threshold))
	})
}

// CheckReferrals grants the referral tiers reached by count.
func (e *Engine) CheckReferrals(ctx context.Context, s Subject, count int) ([]Type, error) {
	return e.check(ctx, s, referralTiers, atLeast(int64(count)))
}

// CheckStreak grants the streak tiers reached by a run of days.
func (e *Engine) CheckStreak(ctx context.Context, s Subject, days int) ([]Type, error) {
	return e.check(ctx, s, streakTiers, atLeast(int64(days)))
}

// CheckGoal grants the goal tiers reached by progress, in percent.
func (e *Engine) CheckGoal(ctx context.Context, s Subject, progressPercent float64) ([]Type, error) {
	return e.check(ctx, s, goalTiers, func(threshold int64) bool {
		return progressPercent >= float64(threshold)
	})
}

// CheckTestimonials grants the gold testimonial tier.
func (e *Engine) CheckTestimonials(ctx context.Context, s Subject, gold int) ([]Type, error) {
	return e.check(ctx, s, testimonialTiers, atLeast(int64(gold)))
}

// CheckNPS grants the promoter tier reached by the number of 9 and 10 scores.
func (e *Engine) CheckNPS(ctx context.Context, s Subject, promoters int) ([]Type, error) {
	return e.check(ctx, s, npsTiers, atLeast(int64(promoters)))
}

// check calls TryGrant once per crossed tier and returns what was newly
// granted. On error it returns the grants made so far.
func (e *Engine) check(ctx context.Context, s Subject, tiers []tier, reached func(int64) bool) ([]Type, error) {
	var granted []Type
	for _, t := range tiers {
		if !reached(t.threshold) {
			continue
		}
		ok, err := e.TryGrant(ctx, s, t.typ)
		if err != nil {
			return granted, err
		}
		if ok {
			granted = append(granted, t.typ)
		}
	}
	return granted, nil
}

func atLeast(v int64) func(int64) bool {
	return func(threshold int64) bool { return v >= threshold }
}
