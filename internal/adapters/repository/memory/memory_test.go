package memory_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/adapters/repository/memory"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func grant(subject string, t achievement.Type) achievement.Unlocked {
	return achievement.Unlocked{ID: subject + string(t), SubjectID: subject, Type: t, Period: "2025-03", GrantedAt: date(3, 1)}
}

func TestRecords(t *testing.T) {
	Convey("Given a store with records across two months", t, func() {
		ctx := context.Background()
		s := memory.New()
		amount := decimal.NewFromInt(100)
		So(s.AddRecord(ctx, model.ActivityRecord{ID: "r2", SubjectID: "ana", Category: model.CategoryRevenue, OccurredOn: date(3, 10), Amount: &amount}), ShouldBeNil)
		So(s.AddRecord(ctx, model.ActivityRecord{ID: "r1", SubjectID: "ana", Category: model.CategoryRevenue, OccurredOn: date(3, 10), Amount: &amount}), ShouldBeNil)
		So(s.AddRecord(ctx, model.ActivityRecord{ID: "r3", SubjectID: "bob", Category: model.CategoryRevenue, OccurredOn: date(4, 1), Amount: &amount}), ShouldBeNil)

		Convey("When querying March", func() {
			got, err := s.Records(ctx, date(3, 1), date(3, 31))

			Convey("Then records come back ordered by date then id", func() {
				So(err, ShouldBeNil)
				So(got, ShouldHaveLength, 2)
				So(got[0].ID, ShouldEqual, "r1")
				So(got[1].ID, ShouldEqual, "r2")
			})
		})

		Convey("When a record id is reused", func() {
			err := s.AddRecord(ctx, model.ActivityRecord{ID: "r1", SubjectID: "ana", OccurredOn: date(3, 11)})
			So(errors.Is(err, repository.ErrDuplicate), ShouldBeTrue)
		})

		Convey("When a record has no subject", func() {
			err := s.AddRecord(ctx, model.ActivityRecord{ID: "r9", OccurredOn: date(3, 11)})
			So(errors.Is(err, repository.ErrInvalidRecord), ShouldBeTrue)
		})
	})
}

func TestCardsAndGoals(t *testing.T) {
	Convey("Given cards and a goal", t, func() {
		ctx := context.Background()
		s := memory.New()
		So(s.PutTeam(ctx, model.Team{ID: "red", Name: "Red"}), ShouldBeNil)
		So(s.AddCard(ctx, model.CardEvent{ID: "c1", TeamID: "red", Kind: model.CardBlue, IssuedOn: date(3, 2)}), ShouldBeNil)
		So(s.AddCard(ctx, model.CardEvent{ID: "c2", TeamID: "red", Kind: model.CardRed, IssuedOn: date(5, 2)}), ShouldBeNil)
		So(s.SetGoal(ctx, "ana", 2025, time.March, decimal.NewFromInt(50_000)), ShouldBeNil)

		cards, err := s.Cards(ctx, date(3, 1), date(3, 31))
		So(err, ShouldBeNil)
		So(cards, ShouldHaveLength, 1)

		teams, _ := s.Teams(ctx)
		So(teams, ShouldResemble, []model.Team{{ID: "red", Name: "Red"}})

		g, err := s.Goal(ctx, "ana", 2025, time.March)
		So(err, ShouldBeNil)
		So(g.Equal(decimal.NewFromInt(50_000)), ShouldBeTrue)

		_, err = s.Goal(ctx, "ana", 2025, time.April)
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}

func TestAchievements(t *testing.T) {
	Convey("Given an empty store", t, func() {
		ctx := context.Background()
		s := memory.New()

		Convey("When the same triple is inserted twice", func() {
			So(s.Insert(ctx, grant("ana", achievement.Sales10K)), ShouldBeNil)
			err := s.Insert(ctx, grant("ana", achievement.Sales10K))

			Convey("Then the second insert is rejected", func() {
				So(errors.Is(err, achievement.ErrAlreadyGranted), ShouldBeTrue)
				ok, _ := s.Exists(ctx, "ana", achievement.Sales10K, "2025-03")
				So(ok, ShouldBeTrue)
				list, _ := s.List(ctx, "ana")
				So(list, ShouldHaveLength, 1)
			})
		})

		Convey("When many goroutines insert the same triple", func() {
			var ok atomic.Int64
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if s.Insert(ctx, grant("ana", achievement.Goal100)) == nil {
						ok.Add(1)
					}
				}()
			}
			wg.Wait()
			So(ok.Load(), ShouldEqual, 1)
		})

		Convey("When a subscriber is listening", func() {
			ch, cancel := s.Subscribe()
			So(s.Insert(ctx, grant("bob", achievement.Referral1)), ShouldBeNil)

			Convey("Then it receives the grant", func() {
				select {
				case a := <-ch:
					So(a.SubjectID, ShouldEqual, "bob")
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})

			Convey("Then cancel closes the channel", func() {
				<-ch
				cancel()
				cancel()
				_, open := <-ch
				So(open, ShouldBeFalse)
			})
		})
	})
}

func TestCelebrations(t *testing.T) {
	Convey("Given a streak record", t, func() {
		ctx := context.Background()
		s := memory.New()
		rec := streak.Record{TeamID: "red", TeamName: "Red", ConsecutiveWins: 3, Months: []time.Month{1, 2, 3}, Year: 2025}

		first, err := s.MarkCelebrated(ctx, rec.Key())
		So(err, ShouldBeNil)
		So(first, ShouldBeTrue)
		again, _ := s.MarkCelebrated(ctx, rec.Key())
		So(again, ShouldBeFalse)

		So(s.SaveStreak(ctx, rec), ShouldBeNil)
		rec.ConsecutiveWins = 4
		rec.Months = append(rec.Months, 4)
		So(s.SaveStreak(ctx, rec), ShouldBeNil)

		got, err := s.Streak(ctx, "red", 2025)
		So(err, ShouldBeNil)
		So(got.ConsecutiveWins, ShouldEqual, 4)
		So(got.Months, ShouldResemble, []time.Month{1, 2, 3, 4})

		_, err = s.Streak(ctx, "blue", 2025)
		So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
	})
}
