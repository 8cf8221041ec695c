package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/streak"
)

// MarkCelebrated inserts the celebration key and reports whether this call
// created it.
func (s *Store) MarkCelebrated(ctx context.Context, key streak.Key) (bool, error) {
	_, err := s.exec(ctx,
		"INSERT INTO celebrated_streaks (team_id, consecutive_wins, streak_year, celebrated_at) VALUES (?, ?, ?, ?)",
		key.TeamID, key.ConsecutiveWins, key.Year, formatTimestamp(time.Now()))
	if isUniqueViolation(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert celebration: %w", err)
	}
	return true, nil
}

// SaveStreak overwrites the stored streak of the record's team and year.
func (s *Store) SaveStreak(ctx context.Context, rec streak.Record) error {
	return s.inTx(ctx, func(x *tx) error {
		if err := x.exec(ctx, "DELETE FROM team_streaks WHERE team_id = ? AND streak_year = ?", rec.TeamID, rec.Year); err != nil {
			return fmt.Errorf("delete streak: %w", err)
		}
		err := x.exec(ctx, `INSERT INTO team_streaks
				(team_id, streak_year, team_name, consecutive_wins, months, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			rec.TeamID, rec.Year, rec.TeamName, rec.ConsecutiveWins, formatMonths(rec.Months), formatTimestamp(time.Now()))
		if err != nil {
			return fmt.Errorf("insert streak: %w", err)
		}
		return nil
	})
}

// Streak returns the saved streak of a team for a year.
func (s *Store) Streak(ctx context.Context, teamID string, year int) (streak.Record, error) {
	rec := streak.Record{TeamID: teamID, Year: year}
	var months string
	err := s.queryRow(ctx,
		"SELECT team_name, consecutive_wins, months FROM team_streaks WHERE team_id = ? AND streak_year = ?",
		teamID, year).Scan(&rec.TeamName, &rec.ConsecutiveWins, &months)
	if errors.Is(err, sql.ErrNoRows) {
		return streak.Record{}, repository.ErrNotFound
	}
	if err != nil {
		return streak.Record{}, fmt.Errorf("query streak: %w", err)
	}
	if rec.Months, err = parseMonths(months); err != nil {
		return streak.Record{}, fmt.Errorf("streak %s/%d: %w", teamID, year, err)
	}
	return rec, nil
}

func formatMonths(months []time.Month) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = strconv.Itoa(int(m))
	}
	return strings.Join(parts, ",")
}

func parseMonths(s string) ([]time.Month, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]time.Month, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 12 {
			return nil, fmt.Errorf("bad month %q", p)
		}
		out[i] = time.Month(n)
	}
	return out, nil
}
