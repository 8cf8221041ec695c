package repository

import "github.com/okian/arena/internal/domain/achievement"

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithFeedBuffer sets the per-subscriber channel capacity.
func WithFeedBuffer(n int) FeedOption {
	return func(f *Feed) {
		if n > 0 {
			f.buffer = n
		}
	}
}

// WithDropHandler is called with each achievement a slow subscriber missed.
func WithDropHandler(fn func(achievement.Unlocked)) FeedOption {
	return func(f *Feed) {
		f.onDrop = fn
	}
}
