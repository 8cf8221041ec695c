// Package repository defines the record source and sink contracts shared
// by the memory and SQL stores, plus the grant feed.
package repository

import (
	"context"
	"time"

	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/shopspring/decimal"
)

// RecordSource returns the facts the engine computes over. Ranges are
// inclusive calendar dates and results are ordered by date then ID.
type RecordSource interface {
	Teams(ctx context.Context) ([]model.Team, error)
	Records(ctx context.Context, from, to time.Time) ([]model.ActivityRecord, error)
	Cards(ctx context.Context, from, to time.Time) ([]model.CardEvent, error)

	// Goal returns ErrNotFound when no goal is set for the month.
	Goal(ctx context.Context, subjectID string, year int, month time.Month) (decimal.Decimal, error)
}

// RecordSink stores facts. Records are immutable once added; adding an
// existing ID fails.
type RecordSink interface {
	PutTeam(ctx context.Context, t model.Team) error
	AddRecord(ctx context.Context, r model.ActivityRecord) error
	AddCard(ctx context.Context, c model.CardEvent) error
	SetGoal(ctx context.Context, subjectID string, year int, month time.Month, amount decimal.Decimal) error
}

// Store is everything the service persists.
type Store interface {
	RecordSource
	RecordSink
	achievement.Store
	streak.CelebrationStore

	// Streak returns the saved streak of a team for a year.
	Streak(ctx context.Context, teamID string, year int) (streak.Record, error)

	// Subscribe returns a channel of newly inserted achievements and a
	// function that ends the subscription.
	Subscribe() (<-chan achievement.Unlocked, func())

	Close() error
}
