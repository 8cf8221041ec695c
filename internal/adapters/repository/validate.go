package repository

import (
	"fmt"

	"github.com/okian/arena/internal/domain/model"
)

// ValidateRecord checks the fields every store needs to index a record.
// Category specific fields are left to the points calculator, which skips
// malformed records with a warning.
func ValidateRecord(r model.ActivityRecord) error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case r.SubjectID == "":
		return fmt.Errorf("%w: %s: missing subject", ErrInvalidRecord, r.ID)
	case r.OccurredOn.IsZero():
		return fmt.Errorf("%w: %s: missing date", ErrInvalidRecord, r.ID)
	}
	return nil
}

// ValidateCard checks a card event before it is stored.
func ValidateCard(c model.CardEvent) error {
	switch {
	case c.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case c.TeamID == "":
		return fmt.Errorf("%w: %s: missing team", ErrInvalidRecord, c.ID)
	case c.IssuedOn.IsZero():
		return fmt.Errorf("%w: %s: missing date", ErrInvalidRecord, c.ID)
	}
	return nil
}
