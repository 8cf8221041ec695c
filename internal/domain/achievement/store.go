package achievement

import (
	"context"
	"time"
)

// Unlocked is a granted achievement. At most one exists per
// (SubjectID, Type, Period).
type Unlocked struct {
	ID          string    `json:"id"`
	SubjectID   string    `json:"subjectId"`
	TeamID      string    `json:"teamId,omitempty"`
	Type        Type      `json:"type"`
	Period      string    `json:"period"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Points      int       `json:"points"`
	Category    Category  `json:"category"`
	GrantedAt   time.Time `json:"grantedAt"`
}

// Store is the durable set of granted achievements. Insert must enforce
// uniqueness of (SubjectID, Type, Period) and report a violation as
// ErrAlreadyGranted.
type Store interface {
	Exists(ctx context.Context, subjectID string, t Type, period string) (bool, error)
	Insert(ctx context.Context, a Unlocked) error
	List(ctx context.Context, subjectID string) ([]Unlocked, error)
}
