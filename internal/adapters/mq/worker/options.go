package worker

import (
	"context"

	"github.com/okian/arena/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOnStart registers a callback run after a job is dequeued and before
// it is evaluated.
func WithOnStart(fn func(ctx context.Context, j Job)) Option {
	return func(w *InMemoryWorker) {
		w.onStart = fn
	}
}

// WithOnDone registers a callback run after every job, successful or not.
func WithOnDone(fn func(ctx context.Context, j Job)) Option {
	return func(w *InMemoryWorker) {
		w.onDone = fn
	}
}

// withProcessed registers a callback run after every job. The pool uses
// it for throughput metrics.
func withProcessed(fn func()) Option {
	return func(w *InMemoryWorker) {
		w.processed = fn
	}
}
