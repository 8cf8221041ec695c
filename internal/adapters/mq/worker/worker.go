// Package worker runs achievement evaluations off the queue.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/arena/internal/adapters/mq/queue"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// Default worker configuration constants.
const (
	metricsUpdateInterval = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Evaluator re-checks every threshold for a job and returns the newly
// granted types.
type Evaluator interface {
	Evaluate(ctx context.Context, j Job) ([]achievement.Type, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs until stopped.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker evaluates jobs from a queue.
type InMemoryWorker struct {
	queue     Queue
	evaluator Evaluator
	name      string
	onStart   func(ctx context.Context, j Job)
	onDone    func(ctx context.Context, j Job)
	processed func()

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker.
func NewInMemoryWorker(q Queue, evaluator Evaluator, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		evaluator: evaluator,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Discard(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run processes jobs until ctx is cancelled, Shutdown is called or the
// queue is drained after Close.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "evaluation failed", logger.String("job", j.ID), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j Job) error {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
		if w.onDone != nil {
			w.onDone(ctx, j)
		}
		if w.processed != nil {
			w.processed()
		}
	}()

	if w.onStart != nil {
		w.onStart(ctx, j)
	}

	granted, err := w.evaluator.Evaluate(ctx, j)
	if err != nil {
		metrics.RecordEvaluation("error")
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		return fmt.Errorf("evaluate %s for %s: %w", j.Period.Key(), j.SubjectID, err)
	}

	if len(granted) == 0 {
		metrics.RecordEvaluation("none")
		return nil
	}
	metrics.RecordEvaluation("granted")
	w.logger.Info(ctx, "achievements granted",
		logger.String("subject", j.SubjectID),
		logger.String("period", j.Period.Key()),
		logger.Any("types", granted),
	)
	return nil
}

// Pool manages a fixed set of workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	processed atomic.Int64
	last      time.Time

	shutdown     chan struct{}
	shutdownOnce sync.Once

	logger logger.Logger
}

// NewPool creates workerCount workers. A count below 1 uses NumCPU.
func NewPool(workerCount int, q Queue, evaluator Evaluator, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	p := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    q,
		last:     time.Now(),
		shutdown: make(chan struct{}),
		logger:   logger.Discard(),
	}

	for i := 0; i < workerCount; i++ {
		wopts := append([]Option{}, opts...)
		wopts = append(wopts,
			WithName("worker-"+strconv.Itoa(i)),
			withProcessed(func() { p.processed.Add(1) }),
		)
		p.workers[i] = NewInMemoryWorker(q, evaluator, wopts...)
	}

	probe := &InMemoryWorker{logger: p.logger}
	for _, opt := range opts {
		opt(probe)
	}
	p.logger = probe.logger.Named("worker-pool")

	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerJobsPerSecond(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many jobs have finished since start.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Start runs every worker and the metrics updater.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	go p.startMetricsUpdater(ctx)
}

func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	var lastCount int64
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case now := <-ticker.C:
			count := p.processed.Load()
			if secs := now.Sub(p.last).Seconds(); secs > 0 {
				metrics.UpdateWorkerJobsPerSecond(float64(count-lastCount) / secs)
			}
			lastCount = count
			p.last = now
		}
	}
}

// Shutdown closes the queue, lets workers drain it and waits for them.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}
	p.shutdownOnce.Do(func() { close(p.shutdown) })

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
