package service

import (
	"context"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/okian/arena/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the persistence backend. The service does not close a
// store it was given.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
			s.ownsStore = false
		}
	}
}

// WithRules sets the scoring rule table.
func WithRules(rules points.RuleTable) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

// WithWorkerCount sets the number of evaluation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the evaluation queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithPendingLimit caps how many distinct evaluations are coalesced.
func WithPendingLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pendingLimit = n
		}
	}
}

// WithCelebrationMin sets the shortest team streak that is celebrated.
func WithCelebrationMin(wins int) Option {
	return func(s *Service) {
		if wins > 0 {
			s.celebrationMin = wins
		}
	}
}

// WithCelebrationHook runs fn once for each newly celebrated streak.
func WithCelebrationHook(fn func(ctx context.Context, rec streak.Record) error) Option {
	return func(s *Service) {
		s.onCelebrate = fn
	}
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
