// Package achievement grants one-time, point-valued unlocks when a subject
// crosses a threshold within a period.
package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/arena/internal/domain/model"
)

// Observer is notified about grant outcomes. Implementations must be safe
// for concurrent use.
type Observer interface {
	Granted(a Unlocked)
	// Duplicate is called when the triple already existed. race is true
	// when the store rejected the insert after a negative existence check.
	Duplicate(t Type, race bool)
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source used for GrantedAt.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithObserver registers an outcome observer.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// Engine performs check-then-insert grants against a Store. It holds no
// lock of its own; uniqueness is the store's job.
type Engine struct {
	store    Store
	now      func() time.Time
	observer Observer
}

// NewEngine returns an Engine backed by store.
func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Subject identifies who is being evaluated and for which period.
type Subject struct {
	SubjectID string
	TeamID    string
	Period    model.Period
}

// TryGrant grants t to the subject for the period unless it already exists.
// A duplicate is not an error: it reports false.
func (e *Engine) TryGrant(ctx context.Context, s Subject, t Type) (bool, error) {
	def, ok := Lookup(t)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if s.SubjectID == "" {
		return false, ErrMissingSubject
	}
	if err := s.Period.Validate(); err != nil {
		return false, err
	}
	period := s.Period.Key()

	exists, err := e.store.Exists(ctx, s.SubjectID, t, period)
	if err != nil {
		return false, fmt.Errorf("check %s for %s: %w", t, s.SubjectID, err)
	}
	if exists {
		e.duplicate(t, false)
		return false, nil
	}

	a := Unlocked{
		ID:          uuid.NewString(),
		SubjectID:   s.SubjectID,
		TeamID:      s.TeamID,
		Type:        t,
		Period:      period,
		Name:        def.Name,
		Description: def.Description,
		Points:      def.Points,
		Category:    def.Category,
		GrantedAt:   e.now().UTC(),
	}
	if err := e.store.Insert(ctx, a); err != nil {
		if errors.Is(err, ErrAlreadyGranted) {
			e.duplicate(t, true)
			return false, nil
		}
		return false, fmt.Errorf("insert %s for %s: %w", t, s.SubjectID, err)
	}

	if e.observer != nil {
		e.observer.Granted(a)
	}
	return true, nil
}

// Achievements lists what the subject has unlocked.
func (e *Engine) Achievements(ctx context.Context, subjectID string) ([]Unlocked, error) {
	return e.store.List(ctx, subjectID)
}

func (e *Engine) duplicate(t Type, race bool) {
	if e.observer != nil {
		e.observer.Duplicate(t, race)
	}
}
