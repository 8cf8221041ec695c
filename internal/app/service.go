// Package service wires the scoring engine to its stores, the evaluation
// queue and the workers. It implements the dependencies of the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/arena/internal/adapters/mq/queue"
	"github.com/okian/arena/internal/adapters/mq/worker"
	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/adapters/repository/memory"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/dedupe"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Default service configuration.
const (
	defaultQueueSize      = 1024
	defaultCelebrationMin = 3
)

// Service is the host application around the engine.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	ownsStore bool
	rules     points.RuleTable
	engine    *achievement.Engine
	deduper   dedupe.Deduper
	queue     *queue.InMemoryQueue
	pool      *worker.Pool

	// Configuration
	workerCount    int
	queueSize      int
	pendingLimit   int
	celebrationMin int
	onCelebrate    func(ctx context.Context, rec streak.Record) error
	now            func() time.Time

	// State
	started     bool
	cancel      context.CancelFunc
	unsubscribe func()
	announcer   chan struct{}

	logger logger.Logger
}

// New constructs a Service. Without WithStore it keeps everything in memory.
func New(opts ...Option) *Service {
	s := &Service{
		rules:          points.DefaultRules(),
		workerCount:    runtime.NumCPU(),
		queueSize:      defaultQueueSize,
		celebrationMin: defaultCelebrationMin,
		now:            time.Now,
		logger:         logger.Discard(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.store == nil {
		s.store = memory.New(repository.WithDropHandler(func(achievement.Unlocked) {
			metrics.RecordFeedDrop()
		}))
		s.ownsStore = true
	}
	if s.pendingLimit == 0 {
		s.pendingLimit = s.queueSize
	}

	s.engine = achievement.NewEngine(s.store,
		achievement.WithClock(s.now),
		achievement.WithObserver(metricsObserver{}),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.pendingLimit))
	return s
}

// Start creates the queue, starts the workers and the grant announcer.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if err := s.rules.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	s.logger.Info(ctx, "starting arena service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, s,
		worker.WithLogger(s.logger),
		// Release the key before records are read so activity stored
		// mid-evaluation queues a fresh job instead of coalescing.
		worker.WithOnStart(func(ctx context.Context, j worker.Job) {
			s.deduper.Unrecord(ctx, j.Key())
		}),
	)
	s.pool.Start(runCtx)

	feed, unsubscribe := s.store.Subscribe()
	s.unsubscribe = unsubscribe
	s.announcer = make(chan struct{})
	go s.announce(runCtx, feed, s.announcer)

	s.started = true
	s.logger.Info(ctx, "arena service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("pendingLimit", s.pendingLimit),
	)
	return nil
}

// Stop drains the queue, stops the workers and closes an owned store.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.logger.Info(ctx, "stopping arena service...")

	var firstErr error
	if err := s.pool.Shutdown(ctx); err != nil {
		firstErr = err
	}
	s.unsubscribe()
	<-s.announcer
	s.cancel()

	if s.ownsStore {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close store: %w", err)
		}
	}

	s.started = false
	s.logger.Info(ctx, "arena service stopped")
	return firstErr
}

// announce logs every achievement the store reports as newly inserted.
func (s *Service) announce(ctx context.Context, feed <-chan achievement.Unlocked, done chan<- struct{}) {
	defer close(done)
	for a := range feed {
		s.logger.Info(ctx, "achievement unlocked",
			logger.String("subject", a.SubjectID),
			logger.String("type", string(a.Type)),
			logger.String("period", a.Period),
			logger.Int("points", a.Points),
		)
	}
}

// Achievements lists what a subject has unlocked.
func (s *Service) Achievements(ctx context.Context, subjectID string) ([]achievement.Unlocked, error) {
	if subjectID == "" {
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	return s.engine.Achievements(ctx, subjectID)
}

// Rules returns the active rule table.
func (s *Service) Rules() points.RuleTable { return s.rules }

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"workerCount":    s.workerCount,
		"queueSize":      s.queueSize,
		"pendingLimit":   s.pendingLimit,
		"celebrationMin": s.celebrationMin,
		"pending":        s.deduper.Size(),
	}

	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["processed"] = s.pool.Processed()
		metrics.UpdateQueue(s.queue.Len(), s.queue.Cap())
	}
	return stats
}

// metricsObserver forwards engine outcomes to Prometheus.
type metricsObserver struct{}

func (metricsObserver) Granted(a achievement.Unlocked) {
	metrics.RecordAchievementGranted(string(a.Category))
}

func (metricsObserver) Duplicate(_ achievement.Type, race bool) {
	metrics.RecordAchievementDuplicate(race)
}
