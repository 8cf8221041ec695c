// Package points turns activity records and card events into point totals.
package points

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Default rule constants.
const (
	defaultRevenueUnit   = 10_000
	defaultNPSCitedBonus = 10
)

// TestimonialPoints maps each testimonial kind to its value.
type TestimonialPoints struct {
	Google int `koanf:"google"`
	Video  int `koanf:"video"`
	Gold   int `koanf:"gold"`
}

// ReferralWeights are the per-counter values of the referral funnel.
type ReferralWeights struct {
	Collected    int `koanf:"collected"`
	Consultation int `koanf:"consultation"`
	Surgery      int `koanf:"surgery"`
}

// OtherWeights are the per-counter values of the secondary indicators.
type OtherWeights struct {
	Unilovers   int `koanf:"unilovers"`
	Ambassadors int `koanf:"ambassadors"`
	Mentions    int `koanf:"mentions"`
}

// RuleTable holds every scoring constant. It is injected by the host at
// startup and never mutated by this package.
type RuleTable struct {
	// RevenueUnit is the currency amount worth one point.
	RevenueUnit decimal.Decimal

	// NPSScore is indexed by the 0-10 survey score.
	NPSScore      [11]int
	NPSCitedBonus int

	Testimonial TestimonialPoints
	Referral    ReferralWeights
	Other       OtherWeights
}

// DefaultRules returns the competition's standard rule table.
func DefaultRules() RuleTable {
	var nps [11]int
	nps[9] = 3
	nps[10] = 5
	return RuleTable{
		RevenueUnit:   decimal.NewFromInt(defaultRevenueUnit),
		NPSScore:      nps,
		NPSCitedBonus: defaultNPSCitedBonus,
		Testimonial:   TestimonialPoints{Google: 10, Video: 20, Gold: 40},
		Referral:      ReferralWeights{Collected: 5, Consultation: 15, Surgery: 30},
		Other:         OtherWeights{Unilovers: 5, Ambassadors: 50, Mentions: 2},
	}
}

// Validate rejects tables that would yield negative or undefined points.
func (r RuleTable) Validate() error {
	if !r.RevenueUnit.IsPositive() {
		return fmt.Errorf("%w: revenue unit must be positive, got %s", ErrInvalidRules, r.RevenueUnit)
	}
	for score, v := range r.NPSScore {
		if v < 0 {
			return fmt.Errorf("%w: nps score %d has negative value %d", ErrInvalidRules, score, v)
		}
	}
	values := []int{
		r.NPSCitedBonus,
		r.Testimonial.Google, r.Testimonial.Video, r.Testimonial.Gold,
		r.Referral.Collected, r.Referral.Consultation, r.Referral.Surgery,
		r.Other.Unilovers, r.Other.Ambassadors, r.Other.Mentions,
	}
	for _, v := range values {
		if v < 0 {
			return fmt.Errorf("%w: negative weight %d", ErrInvalidRules, v)
		}
	}
	return nil
}
