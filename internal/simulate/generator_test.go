package simulate_test

import (
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/simulate"
	. "github.com/smartystreets/goconvey/convey"
)

func testConfig() *simulate.Config {
	return &simulate.Config{
		Period:  model.MonthPeriod(2024, time.February),
		Teams:   4,
		Members: 3,
		Records: 300,
		Cards:   12,
		Seed:    7,
		Workers: 4,
		Timeout: 5 * time.Second,
		Rules:   points.DefaultRules(),
	}
}

func TestGenerate(t *testing.T) {
	Convey("Given a simulation config", t, func() {
		cfg := testConfig()

		Convey("When generating a dataset", func() {
			ds, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then it has the requested shape", func() {
				So(ds.Teams, ShouldHaveLength, 4)
				So(ds.Records, ShouldHaveLength, 300)
				So(ds.Cards, ShouldHaveLength, 12)
				for _, t := range ds.Teams {
					So(ds.Members[t.ID], ShouldHaveLength, 3)
				}
			})

			Convey("And everything falls inside the period", func() {
				for _, r := range ds.Records {
					So(cfg.Period.Contains(r.OccurredOn), ShouldBeTrue)
				}
				for _, c := range ds.Cards {
					So(cfg.Period.Contains(c.IssuedOn), ShouldBeTrue)
				}
			})

			Convey("And every record is well formed", func() {
				_, warnings := points.ComputeBreakdown(ds.Records, cfg.Rules)
				So(warnings, ShouldBeEmpty)
			})

			Convey("And attributed referrals stay within the team", func() {
				for _, r := range ds.Records {
					if r.AttributedSubjectID == "" {
						continue
					}
					So(ds.Members[r.TeamID], ShouldContain, r.AttributedSubjectID)
				}
			})
		})

		Convey("When generating twice with the same seed", func() {
			a, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)
			b, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then values and IDs repeat", func() {
				for i := range a.Records {
					So(a.Records[i].ID, ShouldEqual, b.Records[i].ID)
					So(a.Records[i].SubjectID, ShouldEqual, b.Records[i].SubjectID)
					So(a.Records[i].Category, ShouldEqual, b.Records[i].Category)
					So(a.Records[i].OccurredOn, ShouldEqual, b.Records[i].OccurredOn)
				}
				for i := range a.Cards {
					So(a.Cards[i].ID, ShouldEqual, b.Cards[i].ID)
				}
			})
		})

		Convey("When generating with another seed", func() {
			a, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)
			cfg.Seed++
			b, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then the IDs differ", func() {
				So(a.Records[0].ID, ShouldNotEqual, b.Records[0].ID)
				So(a.Cards[0].ID, ShouldNotEqual, b.Cards[0].ID)
			})
		})

		Convey("When generating a dataset", func() {
			ds, err := simulate.Generate(cfg)
			So(err, ShouldBeNil)

			Convey("Then no two IDs collide", func() {
				seen := make(map[string]bool, len(ds.Records)+len(ds.Cards))
				for _, r := range ds.Records {
					So(seen[r.ID], ShouldBeFalse)
					seen[r.ID] = true
				}
				for _, c := range ds.Cards {
					So(seen[c.ID], ShouldBeFalse)
					seen[c.ID] = true
				}
			})
		})

		Convey("When the period is invalid", func() {
			cfg.Period = model.Period{Kind: model.PeriodMonth, Year: 2024}
			_, err := simulate.Generate(cfg)
			So(err, ShouldNotBeNil)
		})

		Convey("When there are no teams", func() {
			cfg.Teams = 0
			_, err := simulate.Generate(cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
