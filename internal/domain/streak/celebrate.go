package streak

import (
	"context"
	"fmt"
)

// CelebrationStore persists celebration keys so a streak is celebrated at
// most once across restarts and concurrent viewers.
type CelebrationStore interface {
	// MarkCelebrated records key and reports whether it was newly recorded.
	MarkCelebrated(ctx context.Context, key Key) (bool, error)

	// SaveStreak overwrites the stored streak of the record's team and year.
	SaveStreak(ctx context.Context, rec Record) error
}

// Celebrate runs fn at most once per (team, wins, year) for streaks of at
// least minWins. The streak row is saved on every call that qualifies, so a
// failed save is retried by the next poll. It reports whether this call
// performed the celebration.
func Celebrate(ctx context.Context, store CelebrationStore, rec Record, minWins int, fn func(context.Context, Record) error) (bool, error) {
	if rec.ConsecutiveWins < minWins || rec.ConsecutiveWins == 0 {
		return false, nil
	}

	if err := store.SaveStreak(ctx, rec); err != nil {
		return false, fmt.Errorf("save streak: %w", err)
	}

	first, err := store.MarkCelebrated(ctx, rec.Key())
	if err != nil {
		return false, fmt.Errorf("mark celebrated: %w", err)
	}
	if !first {
		return false, nil
	}

	if fn != nil {
		if err := fn(ctx, rec); err != nil {
			return true, err
		}
	}
	return true, nil
}
