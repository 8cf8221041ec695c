package sqlstore_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/adapters/repository/sqlstore"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	s, err := sqlstore.Open(context.Background(), sqlstore.Config{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := t.TempDir() + "/arena.db"
	ctx := context.Background()

	s, err := sqlstore.Open(ctx, sqlstore.Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	require.NoError(t, s.PutTeam(ctx, model.Team{ID: "red", Name: "Red"}))
	require.NoError(t, s.Close())

	s, err = sqlstore.Open(ctx, sqlstore.Config{Driver: "sqlite", Path: path})
	require.NoError(t, err)
	defer s.Close()

	teams, err := s.Teams(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Team{{ID: "red", Name: "Red"}}, teams)
}

func TestRecordRoundTrip(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	amount := decimal.RequireFromString("45231.50")
	score := 10
	records := []model.ActivityRecord{
		{ID: "rev", SubjectID: "ana", TeamID: "red", Category: model.CategoryRevenue, OccurredOn: date(3, 3), Amount: &amount},
		{ID: "nps", SubjectID: "ana", TeamID: "red", Category: model.CategoryNPS, OccurredOn: date(3, 4), Score: &score, CitedMember: true},
		{ID: "tst", SubjectID: "ana", TeamID: "red", Category: model.CategoryTestimonial, OccurredOn: date(3, 5), Kind: model.TestimonialGold},
		{ID: "ref", SubjectID: "ana", TeamID: "red", Category: model.CategoryReferral, OccurredOn: date(3, 6),
			Referral: &model.ReferralCounts{Collected: 2, ToConsultation: 1}, AttributedSubjectID: "bob"},
		{ID: "oth", SubjectID: "ana", TeamID: "red", Category: model.CategoryOther, OccurredOn: date(3, 7),
			Other: &model.OtherCounts{Unilovers: 1, InstagramMentions: 3}},
		{ID: "apr", SubjectID: "ana", TeamID: "red", Category: model.CategoryRevenue, OccurredOn: date(4, 1), Amount: &amount},
	}
	for _, r := range records {
		require.NoError(t, s.AddRecord(ctx, r))
	}

	got, err := s.Records(ctx, date(3, 1), date(3, 31))
	require.NoError(t, err)
	require.Len(t, got, 5)

	assert.True(t, got[0].Amount.Equal(amount))
	assert.Equal(t, date(3, 3), got[0].OccurredOn)
	assert.Equal(t, 10, *got[1].Score)
	assert.True(t, got[1].CitedMember)
	assert.Nil(t, got[1].Amount)
	assert.Equal(t, model.TestimonialGold, got[2].Kind)
	assert.Equal(t, &model.ReferralCounts{Collected: 2, ToConsultation: 1}, got[3].Referral)
	assert.Equal(t, "bob", got[3].CreditedSubject())
	assert.Equal(t, &model.OtherCounts{Unilovers: 1, InstagramMentions: 3}, got[4].Other)
	assert.Nil(t, got[4].Referral)

	err = s.AddRecord(ctx, records[0])
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	err = s.AddRecord(ctx, model.ActivityRecord{ID: "x", OccurredOn: date(3, 1)})
	assert.ErrorIs(t, err, repository.ErrInvalidRecord)
}

func TestCardsAndGoals(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddCard(ctx, model.CardEvent{ID: "c1", TeamID: "red", Kind: model.CardYellow, IssuedOn: date(3, 9)}))
	require.NoError(t, s.AddCard(ctx, model.CardEvent{ID: "c2", TeamID: "red", Kind: model.CardBlue, IssuedOn: date(2, 9)}))
	assert.ErrorIs(t, s.AddCard(ctx, model.CardEvent{ID: "c1", TeamID: "red", Kind: model.CardRed, IssuedOn: date(3, 9)}), repository.ErrDuplicate)

	cards, err := s.Cards(ctx, date(3, 1), date(3, 31))
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, model.CardYellow, cards[0].Kind)

	_, err = s.Goal(ctx, "ana", 2025, time.March)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.SetGoal(ctx, "ana", 2025, time.March, decimal.NewFromInt(40_000)))
	require.NoError(t, s.SetGoal(ctx, "ana", 2025, time.March, decimal.NewFromInt(50_000)))
	g, err := s.Goal(ctx, "ana", 2025, time.March)
	require.NoError(t, err)
	assert.True(t, g.Equal(decimal.NewFromInt(50_000)))
}

func TestAchievementUniqueness(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	engine := achievement.NewEngine(s)
	subject := achievement.Subject{SubjectID: "ana", TeamID: "red", Period: model.MonthPeriod(2025, time.March)}

	feed, cancel := s.Subscribe()
	defer cancel()

	first, err := engine.TryGrant(ctx, subject, achievement.Sales10K)
	require.NoError(t, err)
	second, err := engine.TryGrant(ctx, subject, achievement.Sales10K)
	require.NoError(t, err)

	assert.True(t, first)
	assert.False(t, second)

	list, err := s.List(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2025-03", list[0].Period)
	assert.Equal(t, achievement.CategorySales, list[0].Category)

	select {
	case a := <-feed:
		assert.Equal(t, list[0].ID, a.ID)
	case <-time.After(time.Second):
		t.Fatal("grant not published")
	}

	dup := list[0]
	dup.ID = "another-id"
	assert.ErrorIs(t, s.Insert(ctx, dup), achievement.ErrAlreadyGranted)
}

func TestAchievementConcurrentGrants(t *testing.T) {
	s := openStore(t)
	engine := achievement.NewEngine(s)
	subject := achievement.Subject{SubjectID: "ana", Period: model.YearPeriod(2025)}

	var wins atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := engine.TryGrant(context.Background(), subject, achievement.Goal120)
			if err == nil && ok {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), wins.Load())
	list, err := s.List(context.Background(), "ana")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCelebrationsAndStreaks(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	rec := streak.Record{TeamID: "red", TeamName: "Red", ConsecutiveWins: 3, Months: []time.Month{1, 2, 3}, Year: 2025}

	var calls int
	fn := func(context.Context, streak.Record) error { calls++; return nil }

	done, err := streak.Celebrate(ctx, s, rec, 3, fn)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = streak.Celebrate(ctx, s, rec, 3, fn)
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 1, calls)

	got, err := s.Streak(ctx, "red", 2025)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	_, err = s.Streak(ctx, "red", 2024)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
