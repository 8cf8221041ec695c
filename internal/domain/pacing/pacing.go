// Package pacing projects month-end revenue against a monthly goal.
package pacing

import (
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Status is the four-level pacing classification.
type Status string

const (
	StatusExcellent Status = "excellent"
	StatusGood      Status = "good"
	StatusWarning   Status = "warning"
	StatusCritical  Status = "critical"
)

// Hit-streak constants.
const (
	hitStreakLookbackDays = 10
	hitStreakRatio        = 0.7
)

// Input is everything Compute needs for one subject and month.
type Input struct {
	SubjectID string
	Goal      decimal.Decimal
	// Revenue outside the month is ignored.
	Revenue []model.DailyRevenue
	Today   time.Time
	Month   time.Month
	Year    int
}

// Snapshot is the derived pacing state. It is recomputed per request and
// never stored.
type Snapshot struct {
	SubjectID             string  `json:"subjectId"`
	MonthlyGoal           float64 `json:"monthlyGoal"`
	RevenueToDate         float64 `json:"revenueToDate"`
	BusinessDaysElapsed   int     `json:"businessDaysElapsed"`
	BusinessDaysRemaining int     `json:"businessDaysRemaining"`
	TotalBusinessDays     int     `json:"totalBusinessDays"`

	IdealDailyRate    float64 `json:"idealDailyRate"`
	ExpectedByNow     float64 `json:"expectedByNow"`
	Variance          float64 `json:"variance"`
	VariancePercent   float64 `json:"variancePercent"`
	DailyAverage      float64 `json:"dailyAverage"`
	ProjectedTotal    float64 `json:"projectedTotal"`
	ProjectedProgress float64 `json:"projectedProgress"`
	MonthProgress     float64 `json:"monthProgress"`
	DailyNeededToday  float64 `json:"dailyNeededToday"`
	Status            Status  `json:"status"`

	// DailyHitStreak counts consecutive recent business days at or above
	// 70% of the ideal daily rate.
	DailyHitStreak int `json:"dailyHitStreak"`
}

// Compute derives the pacing snapshot. Every ratio with a zero denominator
// yields 0, except DailyNeededToday which asks for the whole remainder.
func Compute(in Input) Snapshot {
	monthStart := time.Date(in.Year, in.Month, 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)
	today := model.Date(in.Today)

	total := CountBusinessDays(monthStart, monthEnd)
	elapsed := CountBusinessDays(monthStart, minDate(today.AddDate(0, 0, -1), monthEnd))
	remaining := CountBusinessDays(maxDate(today, monthStart), monthEnd)

	byDay := make(map[time.Time]decimal.Decimal)
	revenueToDate := decimal.Zero
	for _, r := range in.Revenue {
		d := model.Date(r.Date)
		if d.Before(monthStart) || d.After(monthEnd) {
			continue
		}
		revenueToDate = revenueToDate.Add(r.Amount)
		byDay[d] = byDay[d].Add(r.Amount)
	}

	goal := in.Goal.InexactFloat64()
	revenue := revenueToDate.InexactFloat64()

	s := Snapshot{
		SubjectID:             in.SubjectID,
		MonthlyGoal:           goal,
		RevenueToDate:         revenue,
		BusinessDaysElapsed:   elapsed,
		BusinessDaysRemaining: remaining,
		TotalBusinessDays:     total,
	}

	s.IdealDailyRate = safeDiv(goal, float64(total))
	s.ExpectedByNow = s.IdealDailyRate * float64(elapsed)
	s.Variance = revenue - s.ExpectedByNow
	s.VariancePercent = safeDiv(s.Variance, s.ExpectedByNow) * 100
	s.DailyAverage = safeDiv(revenue, float64(elapsed))
	s.ProjectedTotal = s.DailyAverage * float64(total)
	s.ProjectedProgress = safeDiv(s.ProjectedTotal, goal) * 100
	s.MonthProgress = safeDiv(revenue, goal) * 100

	missing := goal - revenue
	if missing < 0 {
		missing = 0
	}
	if remaining > 0 {
		s.DailyNeededToday = missing / float64(remaining)
	} else {
		s.DailyNeededToday = missing
	}

	s.Status = Classify(s.MonthProgress, s.ProjectedProgress, s.VariancePercent)
	s.DailyHitStreak = hitStreak(byDay, today, s.IdealDailyRate)
	return s
}

// Classify maps progress figures to a status; the first matching rule wins.
func Classify(monthProgress, projectedProgress, variancePercent float64) Status {
	switch {
	case monthProgress >= 100 || (projectedProgress >= 100 && variancePercent >= 0):
		return StatusExcellent
	case projectedProgress >= 90 || variancePercent >= -10:
		return StatusGood
	case projectedProgress >= 70 || variancePercent >= -25:
		return StatusWarning
	default:
		return StatusCritical
	}
}

// hitStreak walks back from today over at most ten calendar days, skipping
// weekends, and stops at the first business day below the threshold.
func hitStreak(byDay map[time.Time]decimal.Decimal, today time.Time, idealDailyRate float64) int {
	if idealDailyRate <= 0 {
		return 0
	}
	threshold := decimal.NewFromFloat(idealDailyRate * hitStreakRatio)

	streak := 0
	for i := 0; i < hitStreakLookbackDays; i++ {
		d := today.AddDate(0, 0, -i)
		if !IsBusinessDay(d) {
			continue
		}
		if byDay[d].LessThan(threshold) {
			break
		}
		streak++
	}
	return streak
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}
