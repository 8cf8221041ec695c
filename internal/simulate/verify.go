package simulate

import (
	"fmt"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/ranking"
)

// StandingRow is the subset of a served standings row that is verified.
type StandingRow struct {
	SubjectID string           `json:"subjectId"`
	TeamName  string           `json:"teamName"`
	Breakdown points.Breakdown `json:"breakdown"`
	Rank      int              `json:"rank"`
	Tied      bool             `json:"tied"`
}

type standingsResponse struct {
	Rows []StandingRow `json:"rows"`
}

// Expected computes the standings ds should produce for p: every member is
// scored on its own, members are summed per team and cards are applied.
func Expected(ds Dataset, p model.Period, rules points.RuleTable) []ranking.RankedEntry {
	bySubject := make(map[string]map[string][]model.ActivityRecord)
	for _, r := range ds.Records {
		if r.TeamID == "" || !p.Contains(r.OccurredOn) {
			continue
		}
		members, ok := bySubject[r.TeamID]
		if !ok {
			members = make(map[string][]model.ActivityRecord)
			bySubject[r.TeamID] = members
		}
		members[r.CreditedSubject()] = append(members[r.CreditedSubject()], r)
	}

	breakdowns := make(map[string]points.Breakdown, len(ds.Teams))
	for _, t := range ds.Teams {
		breakdowns[t.ID] = points.Breakdown{}
	}
	for teamID, members := range bySubject {
		parts := make([]points.Breakdown, 0, len(members))
		for _, rs := range members {
			b, _ := points.ComputeBreakdown(rs, rules)
			parts = append(parts, b)
		}
		breakdowns[teamID] = points.Sum(parts...)
	}

	cards := make(map[string][]model.CardEvent)
	for _, c := range ds.Cards {
		if p.Contains(c.IssuedOn) {
			cards[c.TeamID] = append(cards[c.TeamID], c)
		}
	}
	modifiers := make(map[string]int, len(cards))
	for teamID, events := range cards {
		modifiers[teamID] = points.ComputeCardModifier(events)
	}
	return ranking.RankTeams(breakdowns, modifiers)
}

// Compare checks served rows against the expected ranking, row by row.
// It returns every mismatch found.
func Compare(expected []ranking.RankedEntry, got []StandingRow) []error {
	var errs []error
	if len(expected) != len(got) {
		errs = append(errs, fmt.Errorf("row count: expected %d, got %d", len(expected), len(got)))
	}
	for i := 0; i < len(expected) && i < len(got); i++ {
		want, row := expected[i], got[i]
		switch {
		case want.SubjectID != row.SubjectID:
			errs = append(errs, fmt.Errorf("rank %d: expected team %s, got %s", i+1, want.SubjectID, row.SubjectID))
		case want.Breakdown != row.Breakdown:
			errs = append(errs, fmt.Errorf("team %s: expected breakdown %+v, got %+v", want.SubjectID, want.Breakdown, row.Breakdown))
		case want.Rank != row.Rank || want.Tied != row.Tied:
			errs = append(errs, fmt.Errorf("team %s: expected rank %d (tied %t), got %d (tied %t)",
				want.SubjectID, want.Rank, want.Tied, row.Rank, row.Tied))
		}
	}
	return errs
}
