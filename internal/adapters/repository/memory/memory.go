// Package memory is an in-process implementation of repository.Store for
// tests and single-node development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/shopspring/decimal"
)

type grantKey struct {
	subjectID string
	typ       achievement.Type
	period    string
}

type goalKey struct {
	subjectID string
	year      int
	month     time.Month
}

type streakKey struct {
	teamID string
	year   int
}

// Store keeps everything in maps guarded by one lock.
type Store struct {
	mu sync.RWMutex

	teams     map[string]model.Team
	records   []model.ActivityRecord
	recordIDs map[string]struct{}
	cards     []model.CardEvent
	cardIDs   map[string]struct{}
	goals     map[goalKey]decimal.Decimal

	grants     map[grantKey]achievement.Unlocked
	celebrated map[streak.Key]struct{}
	streaks    map[streakKey]streak.Record

	feed *repository.Feed
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New(opts ...repository.FeedOption) *Store {
	return &Store{
		teams:      make(map[string]model.Team),
		recordIDs:  make(map[string]struct{}),
		cardIDs:    make(map[string]struct{}),
		goals:      make(map[goalKey]decimal.Decimal),
		grants:     make(map[grantKey]achievement.Unlocked),
		celebrated: make(map[streak.Key]struct{}),
		streaks:    make(map[streakKey]streak.Record),
		feed:       repository.NewFeed(opts...),
	}
}

// PutTeam inserts or renames a team.
func (s *Store) PutTeam(_ context.Context, t model.Team) error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing team id", repository.ErrInvalidRecord)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
	return nil
}

// Teams returns every team ordered by ID.
func (s *Store) Teams(_ context.Context) ([]model.Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Team, 0, len(s.teams))
	for _, t := range s.teams {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AddRecord appends an activity record.
func (s *Store) AddRecord(_ context.Context, r model.ActivityRecord) error {
	if err := repository.ValidateRecord(r); err != nil {
		return err
	}
	r.OccurredOn = model.Date(r.OccurredOn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recordIDs[r.ID]; ok {
		return fmt.Errorf("%w: record %s", repository.ErrDuplicate, r.ID)
	}
	s.recordIDs[r.ID] = struct{}{}
	s.records = append(s.records, r)
	return nil
}

// Records returns records dated within [from, to].
func (s *Store) Records(_ context.Context, from, to time.Time) ([]model.ActivityRecord, error) {
	from, to = model.Date(from), model.Date(to)

	s.mu.RLock()
	var out []model.ActivityRecord
	for _, r := range s.records {
		if !r.OccurredOn.Before(from) && !r.OccurredOn.After(to) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredOn.Equal(out[j].OccurredOn) {
			return out[i].OccurredOn.Before(out[j].OccurredOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AddCard appends a card event.
func (s *Store) AddCard(_ context.Context, c model.CardEvent) error {
	if err := repository.ValidateCard(c); err != nil {
		return err
	}
	c.IssuedOn = model.Date(c.IssuedOn)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cardIDs[c.ID]; ok {
		return fmt.Errorf("%w: card %s", repository.ErrDuplicate, c.ID)
	}
	s.cardIDs[c.ID] = struct{}{}
	s.cards = append(s.cards, c)
	return nil
}

// Cards returns card events issued within [from, to].
func (s *Store) Cards(_ context.Context, from, to time.Time) ([]model.CardEvent, error) {
	from, to = model.Date(from), model.Date(to)

	s.mu.RLock()
	var out []model.CardEvent
	for _, c := range s.cards {
		if !c.IssuedOn.Before(from) && !c.IssuedOn.After(to) {
			out = append(out, c)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].IssuedOn.Equal(out[j].IssuedOn) {
			return out[i].IssuedOn.Before(out[j].IssuedOn)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// SetGoal replaces the monthly goal of a subject.
func (s *Store) SetGoal(_ context.Context, subjectID string, year int, month time.Month, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[goalKey{subjectID, year, month}] = amount
	return nil
}

// Goal returns the monthly goal of a subject.
func (s *Store) Goal(_ context.Context, subjectID string, year int, month time.Month) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[goalKey{subjectID, year, month}]
	if !ok {
		return decimal.Zero, repository.ErrNotFound
	}
	return g, nil
}

// Exists reports whether the triple was granted.
func (s *Store) Exists(_ context.Context, subjectID string, t achievement.Type, period string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.grants[grantKey{subjectID, t, period}]
	return ok, nil
}

// Insert records a grant and notifies subscribers. A second insert of the
// same triple returns achievement.ErrAlreadyGranted.
func (s *Store) Insert(_ context.Context, a achievement.Unlocked) error {
	k := grantKey{a.SubjectID, a.Type, a.Period}

	s.mu.Lock()
	if _, ok := s.grants[k]; ok {
		s.mu.Unlock()
		return achievement.ErrAlreadyGranted
	}
	s.grants[k] = a
	s.mu.Unlock()

	s.feed.Publish(a)
	return nil
}

// List returns a subject's achievements, oldest first.
func (s *Store) List(_ context.Context, subjectID string) ([]achievement.Unlocked, error) {
	s.mu.RLock()
	var out []achievement.Unlocked
	for k, a := range s.grants {
		if k.subjectID == subjectID {
			out = append(out, a)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].GrantedAt.Equal(out[j].GrantedAt) {
			return out[i].GrantedAt.Before(out[j].GrantedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// MarkCelebrated records key and reports whether it was new.
func (s *Store) MarkCelebrated(_ context.Context, key streak.Key) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.celebrated[key]; ok {
		return false, nil
	}
	s.celebrated[key] = struct{}{}
	return true, nil
}

// SaveStreak overwrites the streak of the record's team and year.
func (s *Store) SaveStreak(_ context.Context, rec streak.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Months = append([]time.Month(nil), rec.Months...)
	s.streaks[streakKey{rec.TeamID, rec.Year}] = rec
	return nil
}

// Streak returns the saved streak of a team for a year.
func (s *Store) Streak(_ context.Context, teamID string, year int) (streak.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.streaks[streakKey{teamID, year}]
	if !ok {
		return streak.Record{}, repository.ErrNotFound
	}
	return rec, nil
}

// Subscribe returns a feed of newly inserted achievements.
func (s *Store) Subscribe() (<-chan achievement.Unlocked, func()) {
	return s.feed.Subscribe()
}

// Close ends every feed subscription.
func (s *Store) Close() error {
	s.feed.Close()
	return nil
}
