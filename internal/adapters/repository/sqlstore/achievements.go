package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/arena/internal/domain/achievement"
)

// Exists reports whether the triple was granted.
func (s *Store) Exists(ctx context.Context, subjectID string, t achievement.Type, period string) (bool, error) {
	var n int
	err := s.queryRow(ctx,
		"SELECT COUNT(*) FROM achievements WHERE subject_id = ? AND achievement_type = ? AND period_key = ?",
		subjectID, string(t), period).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query achievement: %w", err)
	}
	return n > 0, nil
}

// Insert stores a grant. The unique constraint on (subject, type, period)
// turns a concurrent duplicate into achievement.ErrAlreadyGranted.
func (s *Store) Insert(ctx context.Context, a achievement.Unlocked) error {
	_, err := s.exec(ctx, `INSERT INTO achievements (
			id, subject_id, team_id, achievement_type, period_key, name, description, points, category, granted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SubjectID, a.TeamID, string(a.Type), a.Period, a.Name, a.Description, a.Points, string(a.Category),
		formatTimestamp(a.GrantedAt),
	)
	if isUniqueViolation(err) {
		return achievement.ErrAlreadyGranted
	}
	if err != nil {
		return fmt.Errorf("insert achievement: %w", err)
	}
	s.feed.Publish(a)
	return nil
}

// List returns a subject's achievements, oldest first.
func (s *Store) List(ctx context.Context, subjectID string) ([]achievement.Unlocked, error) {
	rows, err := s.query(ctx, `SELECT
			id, subject_id, team_id, achievement_type, period_key, name, description, points, category, granted_at
		FROM achievements WHERE subject_id = ? ORDER BY granted_at, id`, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var out []achievement.Unlocked
	for rows.Next() {
		var (
			a                 achievement.Unlocked
			typ, cat, granted string
		)
		err := rows.Scan(&a.ID, &a.SubjectID, &a.TeamID, &typ, &a.Period, &a.Name, &a.Description, &a.Points, &cat, &granted)
		if err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.Type = achievement.Type(typ)
		a.Category = achievement.Category(cat)
		if a.GrantedAt, err = time.Parse(timestampLayout, granted); err != nil {
			return nil, fmt.Errorf("achievement %s: parse time: %w", a.ID, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
