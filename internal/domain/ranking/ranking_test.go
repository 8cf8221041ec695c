package ranking_test

import (
	"testing"

	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func bd(revenue, other int) points.Breakdown {
	return points.Sum(points.Breakdown{RevenuePoints: revenue, OtherPoints: other})
}

func ids(entries []ranking.RankedEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.SubjectID
	}
	return out
}

func TestRankTeams(t *testing.T) {
	Convey("Given team breakdowns and card modifiers", t, func() {
		breakdowns := map[string]points.Breakdown{
			"alpha": bd(10, 20),
			"beta":  bd(5, 40),
			"gamma": bd(1, 1),
		}
		modifiers := map[string]int{"gamma": 50, "beta": -15}

		entries := ranking.RankTeams(breakdowns, modifiers)

		Convey("Then modifiers are applied before sorting", func() {
			So(ids(entries), ShouldResemble, []string{"gamma", "alpha", "beta"})
			So(entries[0].Breakdown.TotalPoints, ShouldEqual, 52)
			So(entries[0].Breakdown.CardModifier, ShouldEqual, 50)
			So(entries[2].Breakdown.TotalPoints, ShouldEqual, 30)
		})

		Convey("And ranks are 1-based positions", func() {
			So(entries[0].Rank, ShouldEqual, 1)
			So(entries[1].Rank, ShouldEqual, 2)
			So(entries[2].Rank, ShouldEqual, 3)
		})
	})

	Convey("Given two teams tied on total", t, func() {
		breakdowns := map[string]points.Breakdown{
			"zeta": bd(30, 0),
			"beta": bd(10, 20),
		}

		Convey("Then the higher revenue team wins regardless of map order", func() {
			for i := 0; i < 50; i++ {
				entries := ranking.RankTeams(breakdowns, nil)
				So(ids(entries), ShouldResemble, []string{"zeta", "beta"})
				So(entries[1].Tied, ShouldBeTrue)
				So(entries[1].Rank, ShouldEqual, 2)
			}
		})
	})

	Convey("Given teams tied on total and revenue", t, func() {
		breakdowns := map[string]points.Breakdown{
			"c": bd(10, 5),
			"a": bd(10, 5),
			"b": bd(10, 5),
			"d": bd(1, 1),
		}
		entries := ranking.RankTeams(breakdowns, nil)

		Convey("Then team ID breaks the tie and positions keep advancing", func() {
			So(ids(entries), ShouldResemble, []string{"a", "b", "c", "d"})
			So(entries[0].Tied, ShouldBeFalse)
			So(entries[2].Tied, ShouldBeTrue)
			So(entries[3].Rank, ShouldEqual, 4)
			So(entries[3].Tied, ShouldBeFalse)
		})
	})

	Convey("Given a team with only cards", t, func() {
		entries := ranking.RankTeams(map[string]points.Breakdown{"a": bd(1, 0)}, map[string]int{"ghost": -40})

		Convey("Then it is ranked with a negative total", func() {
			So(ids(entries), ShouldResemble, []string{"a", "ghost"})
			So(entries[1].Breakdown.TotalPoints, ShouldEqual, -40)
		})
	})

	Convey("Given nothing to rank", t, func() {
		entries := ranking.RankTeams(nil, nil)
		So(entries, ShouldBeEmpty)
		_, ok := ranking.Leader(entries)
		So(ok, ShouldBeFalse)
	})
}
