package points

import (
	"github.com/okian/arena/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Breakdown is the typed points total of one subject. TotalPoints is always
// the sum of every other field.
type Breakdown struct {
	RevenuePoints     int `json:"revenuePoints"`
	NPSPoints         int `json:"npsPoints"`
	TestimonialPoints int `json:"testimonialPoints"`
	ReferralPoints    int `json:"referralPoints"`
	OtherPoints       int `json:"otherPoints"`
	CardModifier      int `json:"cardModifier"`
	TotalPoints       int `json:"totalPoints"`
}

func (b Breakdown) sum() int {
	return b.RevenuePoints + b.NPSPoints + b.TestimonialPoints + b.ReferralPoints + b.OtherPoints + b.CardModifier
}

// WithCardModifier returns a copy carrying modifier and a recomputed total.
func (b Breakdown) WithCardModifier(modifier int) Breakdown {
	b.CardModifier = modifier
	b.TotalPoints = b.sum()
	return b
}

// Sum adds breakdowns field by field.
func Sum(parts ...Breakdown) Breakdown {
	var out Breakdown
	for _, p := range parts {
		out.RevenuePoints += p.RevenuePoints
		out.NPSPoints += p.NPSPoints
		out.TestimonialPoints += p.TestimonialPoints
		out.ReferralPoints += p.ReferralPoints
		out.OtherPoints += p.OtherPoints
		out.CardModifier += p.CardModifier
	}
	out.TotalPoints = out.sum()
	return out
}

// RevenuePoints floors total/unit; fractional units never earn a point.
func RevenuePoints(total, unit decimal.Decimal) int {
	if !unit.IsPositive() || !total.IsPositive() {
		return 0
	}
	return int(total.Div(unit).Floor().IntPart())
}

// ComputeBreakdown scores records against rules. Malformed records are
// skipped and reported as warnings; they never abort the computation.
// The card modifier is left at zero.
func ComputeBreakdown(records []model.ActivityRecord, rules RuleTable) (Breakdown, []Warning) {
	var (
		b        Breakdown
		warnings []Warning
		revenue  = decimal.Zero
	)

	for i := range records {
		r := &records[i]
		if reason := malformed(r); reason != "" {
			warnings = append(warnings, Warning{RecordID: r.ID, Category: string(r.Category), Reason: reason})
			continue
		}

		switch r.Category {
		case model.CategoryRevenue:
			revenue = revenue.Add(*r.Amount)
		case model.CategoryNPS:
			b.NPSPoints += rules.NPSScore[*r.Score]
			// The bonus applies whatever the score.
			if r.CitedMember {
				b.NPSPoints += rules.NPSCitedBonus
			}
		case model.CategoryTestimonial:
			b.TestimonialPoints += testimonialValue(r.Kind, rules.Testimonial)
		case model.CategoryReferral:
			b.ReferralPoints += r.Referral.Collected*rules.Referral.Collected +
				r.Referral.ToConsultation*rules.Referral.Consultation +
				r.Referral.ToSurgery*rules.Referral.Surgery
		case model.CategoryOther:
			b.OtherPoints += r.Other.Unilovers*rules.Other.Unilovers +
				r.Other.Ambassadors*rules.Other.Ambassadors +
				r.Other.InstagramMentions*rules.Other.Mentions
		}
	}

	b.RevenuePoints = RevenuePoints(revenue, rules.RevenueUnit)
	b.TotalPoints = b.sum()
	return b, warnings
}

// ComputeForPeriod scores the records credited to subjectID inside period.
func ComputeForPeriod(records []model.ActivityRecord, subjectID string, period model.Period, rules RuleTable) (Breakdown, []Warning) {
	selected := make([]model.ActivityRecord, 0, len(records))
	for _, r := range records {
		if r.CreditedSubject() == subjectID && period.Contains(r.OccurredOn) {
			selected = append(selected, r)
		}
	}
	return ComputeBreakdown(selected, rules)
}

// ComputeCardModifier sums the signed value of every card. There is no
// clamping.
func ComputeCardModifier(events []model.CardEvent) int {
	total := 0
	for _, e := range events {
		total += e.Kind.Points()
	}
	return total
}

func testimonialValue(kind model.TestimonialKind, t TestimonialPoints) int {
	switch kind {
	case model.TestimonialGoogle:
		return t.Google
	case model.TestimonialVideo:
		return t.Video
	case model.TestimonialGold:
		return t.Gold
	}
	return 0
}

// malformed returns why r cannot be scored, or "" when it can.
func malformed(r *model.ActivityRecord) string {
	switch r.Category {
	case model.CategoryRevenue:
		if r.Amount == nil {
			return "missing amount"
		}
		if r.Amount.IsNegative() {
			return "negative amount"
		}
	case model.CategoryNPS:
		if r.Score == nil {
			return "missing score"
		}
		if *r.Score < 0 || *r.Score > 10 {
			return "score out of range 0-10"
		}
	case model.CategoryTestimonial:
		if !r.Kind.Valid() {
			return "unknown testimonial kind"
		}
	case model.CategoryReferral:
		if r.Referral == nil {
			return "missing referral counters"
		}
		if r.Referral.Collected < 0 || r.Referral.ToConsultation < 0 || r.Referral.ToSurgery < 0 {
			return "negative referral counter"
		}
	case model.CategoryOther:
		if r.Other == nil {
			return "missing indicator counters"
		}
		if r.Other.Unilovers < 0 || r.Other.Ambassadors < 0 || r.Other.InstagramMentions < 0 {
			return "negative indicator counter"
		}
	default:
		return "unknown category"
	}
	return ""
}
