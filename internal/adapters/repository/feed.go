package repository

import (
	"sync"

	"github.com/okian/arena/internal/domain/achievement"
)

const defaultFeedBuffer = 64

// Feed fans newly granted achievements out to subscribers. Publish never
// blocks; a subscriber whose buffer is full misses the event.
type Feed struct {
	mu     sync.RWMutex
	subs   map[int]chan achievement.Unlocked
	nextID int
	buffer int
	onDrop func(achievement.Unlocked)
	closed bool
}

// NewFeed returns an empty feed.
func NewFeed(opts ...FeedOption) *Feed {
	f := &Feed{
		subs:   make(map[int]chan achievement.Unlocked),
		buffer: defaultFeedBuffer,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe registers a subscriber. The returned cancel func is idempotent
// and closes the channel.
func (f *Feed) Subscribe() (<-chan achievement.Unlocked, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ch := make(chan achievement.Unlocked, f.buffer)
	if f.closed {
		close(ch)
		return ch, func() {}
	}
	id := f.nextID
	f.nextID++
	f.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if c, ok := f.subs[id]; ok {
				delete(f.subs, id)
				close(c)
			}
		})
	}
}

// Publish delivers a to every subscriber.
func (f *Feed) Publish(a achievement.Unlocked) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, ch := range f.subs {
		select {
		case ch <- a:
		default:
			if f.onDrop != nil {
				f.onDrop(a)
			}
		}
	}
}

// Subscribers returns the number of live subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}

// Close ends every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for id, ch := range f.subs {
		delete(f.subs, id)
		close(ch)
	}
}
