package streak_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/streak"
	. "github.com/smartystreets/goconvey/convey"
)

func leader(year int, month time.Month, team string) model.MonthlyLeader {
	return model.MonthlyLeader{Year: year, Month: month, TeamID: team, TeamName: "Team " + team}
}

func TestDetectCurrentStreak(t *testing.T) {
	Convey("Given a leader history", t, func() {
		Convey("When another team interrupts the run", func() {
			rec, ok := streak.DetectCurrentStreak([]model.MonthlyLeader{
				leader(2025, 1, "A"), leader(2025, 2, "A"), leader(2025, 3, "B"), leader(2025, 4, "A"),
			})

			Convey("Then only the latest month counts", func() {
				So(ok, ShouldBeTrue)
				So(rec.TeamID, ShouldEqual, "A")
				So(rec.ConsecutiveWins, ShouldEqual, 1)
				So(rec.Months, ShouldResemble, []time.Month{time.April})
				So(rec.Year, ShouldEqual, 2025)
			})
		})

		Convey("When the same team leads four months in a row", func() {
			rec, _ := streak.DetectCurrentStreak([]model.MonthlyLeader{
				leader(2025, 2, "B"), leader(2025, 3, "A"), leader(2025, 4, "A"), leader(2025, 5, "A"), leader(2025, 6, "A"),
			})

			Convey("Then the months are returned in ascending order", func() {
				So(rec.ConsecutiveWins, ShouldEqual, 4)
				So(rec.Months, ShouldResemble, []time.Month{3, 4, 5, 6})
				So(rec.TeamName, ShouldEqual, "Team A")
			})
		})

		Convey("When a month is missing", func() {
			rec, _ := streak.DetectCurrentStreak([]model.MonthlyLeader{
				leader(2025, 1, "A"), leader(2025, 2, "A"), leader(2025, 4, "A"),
			})

			Convey("Then the gap breaks the run", func() {
				So(rec.ConsecutiveWins, ShouldEqual, 1)
				So(rec.Months, ShouldResemble, []time.Month{time.April})
			})
		})

		Convey("When the run crosses a year boundary", func() {
			rec, _ := streak.DetectCurrentStreak([]model.MonthlyLeader{
				leader(2024, 12, "A"), leader(2025, 1, "A"),
			})
			So(rec.ConsecutiveWins, ShouldEqual, 2)
			So(rec.Year, ShouldEqual, 2025)
		})

		Convey("When there is no history", func() {
			_, ok := streak.DetectCurrentStreak(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

type fakeCelebrations struct {
	mu      sync.Mutex
	keys    map[streak.Key]bool
	saved   []streak.Record
	markErr error
	saveErr error
}

func (f *fakeCelebrations) MarkCelebrated(_ context.Context, key streak.Key) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.keys == nil {
		f.keys = make(map[streak.Key]bool)
	}
	if f.keys[key] {
		return false, nil
	}
	f.keys[key] = true
	return true, nil
}

func (f *fakeCelebrations) SaveStreak(_ context.Context, rec streak.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		err := f.saveErr
		f.saveErr = nil
		return err
	}
	f.saved = append(f.saved, rec)
	return nil
}

func TestCelebrate(t *testing.T) {
	ctx := context.Background()
	rec := streak.Record{TeamID: "A", ConsecutiveWins: 3, Months: []time.Month{4, 5, 6}, Year: 2025}

	Convey("Given a celebration store", t, func() {
		store := &fakeCelebrations{}
		calls := 0
		fn := func(context.Context, streak.Record) error { calls++; return nil }

		Convey("When the same streak is detected on every poll", func() {
			first, err1 := streak.Celebrate(ctx, store, rec, 3, fn)
			second, err2 := streak.Celebrate(ctx, store, rec, 3, fn)

			Convey("Then the side effect runs once", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(first, ShouldBeTrue)
				So(second, ShouldBeFalse)
				So(calls, ShouldEqual, 1)
				So(len(store.saved), ShouldEqual, 2)
			})
		})

		Convey("When the streak grows", func() {
			_, _ = streak.Celebrate(ctx, store, rec, 3, fn)
			longer := rec
			longer.ConsecutiveWins = 4
			again, err := streak.Celebrate(ctx, store, longer, 3, fn)

			Convey("Then the new value is celebrated too", func() {
				So(err, ShouldBeNil)
				So(again, ShouldBeTrue)
				So(calls, ShouldEqual, 2)
			})
		})

		Convey("When the streak is below the threshold", func() {
			short := rec
			short.ConsecutiveWins = 2
			ok, err := streak.Celebrate(ctx, store, short, 3, fn)
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
			So(calls, ShouldEqual, 0)
		})

		Convey("When saving the streak fails once", func() {
			store.saveErr = errors.New("db down")
			ok, err := streak.Celebrate(ctx, store, rec, 3, fn)
			retried, retryErr := streak.Celebrate(ctx, store, rec, 3, fn)

			Convey("Then the next poll saves it and celebrates", func() {
				So(err, ShouldNotBeNil)
				So(ok, ShouldBeFalse)
				So(retryErr, ShouldBeNil)
				So(retried, ShouldBeTrue)
				So(store.saved, ShouldResemble, []streak.Record{rec})
				So(calls, ShouldEqual, 1)
			})
		})

		Convey("When the store fails", func() {
			store.markErr = errors.New("db down")
			ok, err := streak.Celebrate(ctx, store, rec, 3, fn)
			So(ok, ShouldBeFalse)
			So(err, ShouldNotBeNil)
			So(calls, ShouldEqual, 0)
		})
	})
}
