package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/points"
	"github.com/okian/arena/internal/domain/ranking"
	"github.com/okian/arena/internal/domain/streak"
	"github.com/okian/arena/pkg/logger"
	"github.com/okian/arena/pkg/metrics"
)

// StandingRow is a ranked team with its display name.
type StandingRow struct {
	ranking.RankedEntry
	TeamName string `json:"teamName"`
}

// Standings is the ranked table of a period.
type Standings struct {
	Period   model.Period     `json:"period"`
	Rows     []StandingRow    `json:"rows"`
	Warnings []points.Warning `json:"warnings,omitempty"`
}

// StreakView is the current streak and whether this call celebrated it.
type StreakView struct {
	Streak     streak.Record `json:"streak"`
	Found      bool          `json:"found"`
	Celebrated bool          `json:"celebrated"`
	Worthy     bool          `json:"worthy"`
}

// periodTable is the raw material of one period's standings.
type periodTable struct {
	entries  []ranking.RankedEntry
	warnings []points.Warning
	activity int
}

// Standings ranks every team for a period. Each team's breakdown is the sum
// of its members' breakdowns plus the team's card modifier.
func (s *Service) Standings(ctx context.Context, p model.Period) (Standings, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStandings(float64(time.Since(start).Milliseconds()))
	}()

	if err := p.Validate(); err != nil {
		return Standings{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	teams, err := s.store.Teams(ctx)
	if err != nil {
		return Standings{}, fmt.Errorf("load teams: %w", err)
	}
	table, err := s.teamTable(ctx, p, teams)
	if err != nil {
		return Standings{}, err
	}

	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}
	rows := make([]StandingRow, len(table.entries))
	for i, e := range table.entries {
		rows[i] = StandingRow{RankedEntry: e, TeamName: names[e.SubjectID]}
	}
	return Standings{Period: p, Rows: rows, Warnings: table.warnings}, nil
}

// IndividualStandings ranks subjects by their own breakdowns. Card
// modifiers belong to teams and are not applied.
func (s *Service) IndividualStandings(ctx context.Context, p model.Period) ([]ranking.RankedEntry, []points.Warning, error) {
	if err := p.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	from, to := p.Window()
	records, err := s.store.Records(ctx, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("load records: %w", err)
	}

	bySubject := make(map[string][]model.ActivityRecord)
	for _, r := range records {
		bySubject[r.CreditedSubject()] = append(bySubject[r.CreditedSubject()], r)
	}

	var warnings []points.Warning
	breakdowns := make(map[string]points.Breakdown, len(bySubject))
	for subject, rs := range bySubject {
		b, w := points.ComputeBreakdown(rs, s.rules)
		breakdowns[subject] = b
		warnings = append(warnings, w...)
	}
	s.reportWarnings(ctx, p, warnings)
	return ranking.RankSubjects(breakdowns), warnings, nil
}

// MonthlyLeaders returns the first placed team of every month from January
// up to and including upto. Months without any activity have no leader.
func (s *Service) MonthlyLeaders(ctx context.Context, year int, upto time.Month) ([]model.MonthlyLeader, error) {
	if upto < time.January || upto > time.December {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidRequest, upto)
	}

	teams, err := s.store.Teams(ctx)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	names := make(map[string]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	leaders := make([]model.MonthlyLeader, 0, int(upto))
	for m := time.January; m <= upto; m++ {
		table, err := s.teamTable(ctx, model.MonthPeriod(year, m), nil)
		if err != nil {
			return nil, err
		}
		if table.activity == 0 {
			continue
		}
		top, ok := ranking.Leader(table.entries)
		if !ok {
			continue
		}
		leaders = append(leaders, model.MonthlyLeader{
			Month:    m,
			Year:     year,
			TeamID:   top.SubjectID,
			TeamName: names[top.SubjectID],
		})
	}
	return leaders, nil
}

// CurrentStreak detects the active leader streak ending at month and
// celebrates it once when it is long enough.
func (s *Service) CurrentStreak(ctx context.Context, year int, month time.Month) (StreakView, error) {
	leaders, err := s.MonthlyLeaders(ctx, year, month)
	if err != nil {
		return StreakView{}, err
	}

	// The streak must end at the requested month to be current.
	if n := len(leaders); n == 0 || leaders[n-1].Month != month {
		return StreakView{}, nil
	}

	rec, ok := streak.DetectCurrentStreak(leaders)
	if !ok {
		return StreakView{}, nil
	}
	view := StreakView{Streak: rec, Found: true, Worthy: rec.ConsecutiveWins >= s.celebrationMin}

	celebrated, err := streak.Celebrate(ctx, s.store, rec, s.celebrationMin, s.celebrate)
	if err != nil {
		return view, fmt.Errorf("celebrate streak: %w", err)
	}
	view.Celebrated = celebrated
	return view, nil
}

// SavedStreak returns the persisted streak of a team, if any.
func (s *Service) SavedStreak(ctx context.Context, teamID string, year int) (streak.Record, bool, error) {
	rec, err := s.store.Streak(ctx, teamID, year)
	if errors.Is(err, repository.ErrNotFound) {
		return streak.Record{}, false, nil
	}
	if err != nil {
		return streak.Record{}, false, err
	}
	return rec, true, nil
}

func (s *Service) celebrate(ctx context.Context, rec streak.Record) error {
	metrics.RecordCelebration()
	s.logger.Info(ctx, "team streak celebrated",
		logger.String("team", rec.TeamID),
		logger.Int("wins", rec.ConsecutiveWins),
		logger.Int("year", rec.Year),
	)
	if s.onCelebrate != nil {
		return s.onCelebrate(ctx, rec)
	}
	return nil
}

// teamTable computes the ranked team entries of a period. Registered teams
// without activity are ranked with an empty breakdown.
func (s *Service) teamTable(ctx context.Context, p model.Period, teams []model.Team) (periodTable, error) {
	from, to := p.Window()
	records, err := s.store.Records(ctx, from, to)
	if err != nil {
		return periodTable{}, fmt.Errorf("load records: %w", err)
	}
	cards, err := s.store.Cards(ctx, from, to)
	if err != nil {
		return periodTable{}, fmt.Errorf("load cards: %w", err)
	}

	// team -> subject -> records
	grouped := make(map[string]map[string][]model.ActivityRecord)
	for _, r := range records {
		if r.TeamID == "" {
			continue
		}
		members, ok := grouped[r.TeamID]
		if !ok {
			members = make(map[string][]model.ActivityRecord)
			grouped[r.TeamID] = members
		}
		subject := r.CreditedSubject()
		members[subject] = append(members[subject], r)
	}

	var warnings []points.Warning
	breakdowns := make(map[string]points.Breakdown, len(grouped)+len(teams))
	for _, t := range teams {
		breakdowns[t.ID] = points.Breakdown{}
	}
	for teamID, members := range grouped {
		parts := make([]points.Breakdown, 0, len(members))
		for _, rs := range members {
			b, w := points.ComputeBreakdown(rs, s.rules)
			parts = append(parts, b)
			warnings = append(warnings, w...)
		}
		breakdowns[teamID] = points.Sum(parts...)
	}

	byTeam := make(map[string][]model.CardEvent)
	for _, c := range cards {
		byTeam[c.TeamID] = append(byTeam[c.TeamID], c)
	}
	modifiers := make(map[string]int, len(byTeam))
	for teamID, events := range byTeam {
		modifiers[teamID] = points.ComputeCardModifier(events)
	}

	s.reportWarnings(ctx, p, warnings)
	return periodTable{
		entries:  ranking.RankTeams(breakdowns, modifiers),
		warnings: warnings,
		activity: len(records) + len(cards),
	}, nil
}

func (s *Service) reportWarnings(ctx context.Context, p model.Period, warnings []points.Warning) {
	for _, w := range warnings {
		metrics.RecordMalformedRecord(w.Category)
		s.logger.Warn(ctx, "skipped malformed record",
			logger.String("period", p.Key()),
			logger.String("record", w.RecordID),
			logger.String("category", w.Category),
			logger.String("reason", w.Reason),
		)
	}
}
