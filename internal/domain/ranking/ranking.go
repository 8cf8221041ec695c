// Package ranking orders teams by their point totals.
//
// Ordering: total DESC, then revenue points DESC, then team ID ASC
// (deterministic). Input map iteration order never leaks into the result.
package ranking

import (
	"sort"

	"github.com/okian/arena/internal/domain/points"
)

// RankedEntry is one row of a standings table.
type RankedEntry struct {
	SubjectID string           `json:"subjectId"`
	Breakdown points.Breakdown `json:"breakdown"`
	// Rank is positional and 1-based; it advances across ties.
	Rank int `json:"rank"`
	// Tied is set when the total equals the previous entry's total.
	Tied bool `json:"tied"`
}

// RankTeams applies each team's card modifier and ranks the result. A team
// present only in modifiers is ranked with an empty breakdown.
func RankTeams(breakdowns map[string]points.Breakdown, modifiers map[string]int) []RankedEntry {
	entries := make([]RankedEntry, 0, len(breakdowns)+len(modifiers))
	for teamID, b := range breakdowns {
		entries = append(entries, RankedEntry{SubjectID: teamID, Breakdown: b.WithCardModifier(modifiers[teamID])})
	}
	for teamID, m := range modifiers {
		if _, ok := breakdowns[teamID]; ok {
			continue
		}
		entries = append(entries, RankedEntry{SubjectID: teamID, Breakdown: points.Breakdown{}.WithCardModifier(m)})
	}

	sortEntries(entries)
	assignPositionalRanks(entries)
	return entries
}

// RankSubjects ranks individual breakdowns without card modifiers.
func RankSubjects(breakdowns map[string]points.Breakdown) []RankedEntry {
	return RankTeams(breakdowns, nil)
}

// Leader returns the first entry, if any.
func Leader(entries []RankedEntry) (RankedEntry, bool) {
	if len(entries) == 0 {
		return RankedEntry{}, false
	}
	return entries[0], true
}

func less(a, b *RankedEntry) bool {
	if a.Breakdown.TotalPoints != b.Breakdown.TotalPoints {
		return a.Breakdown.TotalPoints > b.Breakdown.TotalPoints
	}
	if a.Breakdown.RevenuePoints != b.Breakdown.RevenuePoints {
		return a.Breakdown.RevenuePoints > b.Breakdown.RevenuePoints
	}
	return a.SubjectID < b.SubjectID
}

func sortEntries(entries []RankedEntry) {
	sort.Slice(entries, func(i, j int) bool {
		return less(&entries[i], &entries[j])
	})
}

// assignPositionalRanks numbers entries by position. Equal totals are
// flagged as tied but still consume a position.
func assignPositionalRanks(entries []RankedEntry) {
	for i := range entries {
		entries[i].Rank = i + 1
		entries[i].Tied = i > 0 && entries[i].Breakdown.TotalPoints == entries[i-1].Breakdown.TotalPoints
	}
}
