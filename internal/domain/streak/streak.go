// Package streak detects runs of consecutive monthly wins by the same team.
package streak

import (
	"time"

	"github.com/okian/arena/internal/domain/model"
)

// Record is the currently active run ending at the most recent month.
type Record struct {
	TeamID          string       `json:"teamId"`
	TeamName        string       `json:"teamName"`
	ConsecutiveWins int          `json:"consecutiveWins"`
	Months          []time.Month `json:"months"`
	Year            int          `json:"year"`
}

// Key identifies a streak value for once-only side effects.
func (r Record) Key() Key {
	return Key{TeamID: r.TeamID, ConsecutiveWins: r.ConsecutiveWins, Year: r.Year}
}

// Key is the idempotency key of a celebration.
type Key struct {
	TeamID          string
	ConsecutiveWins int
	Year            int
}

// DetectCurrentStreak walks leaders backward from the most recent entry while
// the team stays the same and the months stay contiguous.
//
// leaders must be sorted ascending by (year, month) with at most one entry
// per month; the result is undefined otherwise. Any run length is returned,
// thresholds are left to the caller.
func DetectCurrentStreak(leaders []model.MonthlyLeader) (Record, bool) {
	if len(leaders) == 0 {
		return Record{}, false
	}

	last := len(leaders) - 1
	first := last
	for first > 0 {
		prev, cur := leaders[first-1], leaders[first]
		if prev.TeamID != cur.TeamID || !consecutive(prev, cur) {
			break
		}
		first--
	}

	run := leaders[first:]
	months := make([]time.Month, len(run))
	for i, l := range run {
		months[i] = l.Month
	}

	head := leaders[last]
	return Record{
		TeamID:          head.TeamID,
		TeamName:        head.TeamName,
		ConsecutiveWins: len(run),
		Months:          months,
		Year:            head.Year,
	}, true
}

// consecutive reports whether cur is the month right after prev, crossing
// year boundaries.
func consecutive(prev, cur model.MonthlyLeader) bool {
	return cur.Year*12+int(cur.Month) == prev.Year*12+int(prev.Month)+1
}
