package pacing_test

import (
	"math"
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/pacing"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func day(m time.Month, d int) time.Time {
	return time.Date(2021, m, d, 0, 0, 0, 0, time.UTC)
}

func rev(t time.Time, amount int64) model.DailyRevenue {
	return model.DailyRevenue{Date: t, Amount: decimal.NewFromInt(amount)}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestCountBusinessDays(t *testing.T) {
	Convey("Given February 2021", t, func() {
		Convey("Then it has exactly twenty business days", func() {
			So(pacing.CountBusinessDays(day(2, 1), day(2, 28)), ShouldEqual, 20)
		})

		Convey("Then an inverted range is empty", func() {
			So(pacing.CountBusinessDays(day(2, 10), day(2, 9)), ShouldEqual, 0)
		})

		Convey("Then a weekend is not a business day", func() {
			So(pacing.IsBusinessDay(day(2, 6)), ShouldBeFalse)
			So(pacing.IsBusinessDay(day(2, 8)), ShouldBeTrue)
		})
	})
}

func TestCompute(t *testing.T) {
	Convey("Given a 300 000 goal halfway through a 20 business day month", t, func() {
		s := pacing.Compute(pacing.Input{
			SubjectID: "ana",
			Goal:      decimal.NewFromInt(300_000),
			Revenue:   []model.DailyRevenue{rev(day(2, 3), 70_000), rev(day(2, 10), 50_000)},
			Today:     day(2, 15),
			Month:     time.February,
			Year:      2021,
		})

		Convey("Then the day counts split the month", func() {
			So(s.TotalBusinessDays, ShouldEqual, 20)
			So(s.BusinessDaysElapsed, ShouldEqual, 10)
			So(s.BusinessDaysRemaining, ShouldEqual, 10)
		})

		Convey("Then the variance is -20% and the status is warning", func() {
			So(s.RevenueToDate, ShouldEqual, 120_000)
			So(s.IdealDailyRate, ShouldEqual, 15_000)
			So(s.ExpectedByNow, ShouldEqual, 150_000)
			So(s.Variance, ShouldEqual, -30_000)
			So(approx(s.VariancePercent, -20), ShouldBeTrue)
			So(s.Status, ShouldEqual, pacing.StatusWarning)
		})

		Convey("Then the projection follows the realized average", func() {
			So(s.DailyAverage, ShouldEqual, 12_000)
			So(s.ProjectedTotal, ShouldEqual, 240_000)
			So(approx(s.ProjectedProgress, 80), ShouldBeTrue)
			So(approx(s.MonthProgress, 40), ShouldBeTrue)
			So(s.DailyNeededToday, ShouldEqual, 18_000)
		})
	})

	Convey("Given the first day of the month with no revenue", t, func() {
		s := pacing.Compute(pacing.Input{
			Goal:  decimal.NewFromInt(10_000),
			Today: day(2, 1),
			Month: time.February,
			Year:  2021,
		})

		Convey("Then the zero guards yield zeros", func() {
			So(s.BusinessDaysElapsed, ShouldEqual, 0)
			So(s.DailyAverage, ShouldEqual, 0)
			So(s.ProjectedProgress, ShouldEqual, 0)
			So(s.VariancePercent, ShouldEqual, 0)
			So(s.DailyHitStreak, ShouldEqual, 0)
		})
	})

	Convey("Given a zero goal", t, func() {
		s := pacing.Compute(pacing.Input{Goal: decimal.Zero, Today: day(2, 15), Month: time.February, Year: 2021})

		Convey("Then progress ratios are zero", func() {
			So(s.ProjectedProgress, ShouldEqual, 0)
			So(s.MonthProgress, ShouldEqual, 0)
			So(s.IdealDailyRate, ShouldEqual, 0)
		})
	})

	Convey("Given today after the month has ended", t, func() {
		s := pacing.Compute(pacing.Input{
			Goal:    decimal.NewFromInt(20_000),
			Revenue: []model.DailyRevenue{rev(day(2, 26), 5_000)},
			Today:   day(3, 5),
			Month:   time.February,
			Year:    2021,
		})

		Convey("Then nothing remains and the whole gap is due today", func() {
			So(s.BusinessDaysElapsed, ShouldEqual, 20)
			So(s.BusinessDaysRemaining, ShouldEqual, 0)
			So(s.DailyNeededToday, ShouldEqual, 15_000)
		})
	})

	Convey("Given revenue outside the month", t, func() {
		s := pacing.Compute(pacing.Input{
			Goal:    decimal.NewFromInt(20_000),
			Revenue: []model.DailyRevenue{rev(day(1, 29), 99_000), rev(day(2, 2), 1_000)},
			Today:   day(2, 15),
			Month:   time.February,
			Year:    2021,
		})
		So(s.RevenueToDate, ShouldEqual, 1_000)
	})

	Convey("Given the goal already met", t, func() {
		s := pacing.Compute(pacing.Input{
			Goal:    decimal.NewFromInt(10_000),
			Revenue: []model.DailyRevenue{rev(day(2, 2), 12_000)},
			Today:   day(2, 15),
			Month:   time.February,
			Year:    2021,
		})
		So(s.Status, ShouldEqual, pacing.StatusExcellent)
		So(s.DailyNeededToday, ShouldEqual, 0)
	})
}

func TestDailyHitStreak(t *testing.T) {
	Convey("Given a 20 000 goal (1 000 ideal per business day)", t, func() {
		in := pacing.Input{Goal: decimal.NewFromInt(20_000), Today: day(2, 16), Month: time.February, Year: 2021}

		Convey("When the last three business days hit 70% across a weekend", func() {
			in.Revenue = []model.DailyRevenue{
				rev(day(2, 16), 700),
				rev(day(2, 15), 900),
				rev(day(2, 12), 2_000),
				rev(day(2, 11), 100),
				rev(day(2, 10), 5_000),
			}
			s := pacing.Compute(in)

			Convey("Then the streak stops at the first miss", func() {
				So(s.DailyHitStreak, ShouldEqual, 3)
			})
		})

		Convey("When every business day in the lookback hits", func() {
			for d := 1; d <= 16; d++ {
				in.Revenue = append(in.Revenue, rev(day(2, d), 1_000))
			}
			s := pacing.Compute(in)

			Convey("Then the ten calendar day window caps it", func() {
				// Feb 7..16: weekdays 8,9,10,11,12,15,16.
				So(s.DailyHitStreak, ShouldEqual, 7)
			})
		})

		Convey("When every day of the month hits", func() {
			for d := 1; d <= 28; d++ {
				in.Revenue = append(in.Revenue, rev(day(2, d), 1_000))
			}

			Convey("Then the streak never exceeds eight business days", func() {
				longest := 0
				for d := 1; d <= 28; d++ {
					in.Today = day(2, d)
					longest = max(longest, pacing.Compute(in).DailyHitStreak)
				}
				So(longest, ShouldEqual, 8)

				// Feb 3..12: weekdays 3,4,5,8,9,10,11,12.
				in.Today = day(2, 12)
				So(pacing.Compute(in).DailyHitStreak, ShouldEqual, 8)
			})
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given progress figures", t, func() {
		So(pacing.Classify(100, 0, -50), ShouldEqual, pacing.StatusExcellent)
		So(pacing.Classify(50, 100, 0), ShouldEqual, pacing.StatusExcellent)
		So(pacing.Classify(50, 100, -1), ShouldEqual, pacing.StatusGood)
		So(pacing.Classify(50, 60, -10), ShouldEqual, pacing.StatusGood)
		So(pacing.Classify(50, 70, -40), ShouldEqual, pacing.StatusWarning)
		So(pacing.Classify(50, 10, -25), ShouldEqual, pacing.StatusWarning)
		So(pacing.Classify(10, 69, -26), ShouldEqual, pacing.StatusCritical)
	})
}
