// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category identifies which scoring rule applies to an activity record.
type Category string

const (
	CategoryRevenue     Category = "revenue"
	CategoryNPS         Category = "nps"
	CategoryTestimonial Category = "testimonial"
	CategoryReferral    Category = "referral"
	CategoryOther       Category = "other"
)

// Categories lists every category in breakdown order.
var Categories = []Category{
	CategoryRevenue,
	CategoryNPS,
	CategoryTestimonial,
	CategoryReferral,
	CategoryOther,
}

// TestimonialKind is the medium a testimonial was collected in.
type TestimonialKind string

const (
	TestimonialGoogle TestimonialKind = "google"
	TestimonialVideo  TestimonialKind = "video"
	TestimonialGold   TestimonialKind = "gold"
)

// Valid reports whether k is one of the known testimonial kinds.
func (k TestimonialKind) Valid() bool {
	switch k {
	case TestimonialGoogle, TestimonialVideo, TestimonialGold:
		return true
	}
	return false
}

// ReferralCounts are the funnel counters of a referral record.
type ReferralCounts struct {
	Collected      int
	ToConsultation int
	ToSurgery      int
}

// OtherCounts are the secondary indicators tracked per subject.
type OtherCounts struct {
	Unilovers         int
	Ambassadors       int
	InstagramMentions int
}

// ActivityRecord is one immutable fact produced by the record source.
// Only the fields of its Category are meaningful; a missing required
// field makes the record malformed.
type ActivityRecord struct {
	ID         string
	SubjectID  string
	TeamID     string
	Category   Category
	OccurredOn time.Time

	// revenue
	Amount *decimal.Decimal

	// nps
	Score       *int
	CitedMember bool

	// testimonial
	Kind TestimonialKind

	// referral; credited to AttributedSubjectID when set
	Referral            *ReferralCounts
	AttributedSubjectID string

	// other
	Other *OtherCounts
}

// CreditedSubject returns the subject the record's points belong to.
func (r ActivityRecord) CreditedSubject() string {
	if r.AttributedSubjectID != "" {
		return r.AttributedSubjectID
	}
	return r.SubjectID
}

// CardKind is the colour of a disciplinary card.
type CardKind string

const (
	CardBlue   CardKind = "blue"
	CardWhite  CardKind = "white"
	CardYellow CardKind = "yellow"
	CardRed    CardKind = "red"
)

// Points returns the fixed signed value of the card. Unknown kinds are worth 0.
func (k CardKind) Points() int {
	switch k {
	case CardBlue:
		return 20
	case CardWhite:
		return 10
	case CardYellow:
		return -15
	case CardRed:
		return -40
	}
	return 0
}

// CardEvent is a card issued to a team.
type CardEvent struct {
	ID       string
	TeamID   string
	Kind     CardKind
	IssuedOn time.Time
}

// Team is a competing team.
type Team struct {
	ID   string
	Name string
}

// MonthlyLeader is the team that finished a month in first place.
type MonthlyLeader struct {
	Month    time.Month `json:"month"`
	Year     int        `json:"year"`
	TeamID   string     `json:"teamId"`
	TeamName string     `json:"teamName"`
}

// DailyRevenue is a revenue amount booked on a date.
type DailyRevenue struct {
	Date   time.Time
	Amount decimal.Decimal
}

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
