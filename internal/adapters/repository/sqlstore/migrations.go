package sqlstore

import (
	"context"
	"fmt"

	"github.com/okian/arena/pkg/logger"
)

type migration struct {
	name       string
	statements []string
}

// The DDL sticks to types all three dialects accept. Dates are stored as
// YYYY-MM-DD strings and timestamps in a fixed-width UTC layout, so range
// filters and ordering work as string comparisons.
var migrations = []migration{ //nolint:gochecknoglobals // ordered schema history
	{
		name: "0001_records",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS teams (
				id VARCHAR(64) PRIMARY KEY,
				name VARCHAR(255) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS activity_records (
				id VARCHAR(64) PRIMARY KEY,
				subject_id VARCHAR(64) NOT NULL,
				team_id VARCHAR(64) NOT NULL DEFAULT '',
				category VARCHAR(32) NOT NULL,
				occurred_on VARCHAR(10) NOT NULL,
				amount VARCHAR(40),
				score INTEGER,
				cited_member INTEGER NOT NULL DEFAULT 0,
				kind VARCHAR(16) NOT NULL DEFAULT '',
				ref_collected INTEGER,
				ref_consultation INTEGER,
				ref_surgery INTEGER,
				attributed_subject_id VARCHAR(64) NOT NULL DEFAULT '',
				other_unilovers INTEGER,
				other_ambassadors INTEGER,
				other_mentions INTEGER
			)`,
			`CREATE TABLE IF NOT EXISTS card_events (
				id VARCHAR(64) PRIMARY KEY,
				team_id VARCHAR(64) NOT NULL,
				kind VARCHAR(16) NOT NULL,
				issued_on VARCHAR(10) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS monthly_goals (
				subject_id VARCHAR(64) NOT NULL,
				goal_year INTEGER NOT NULL,
				goal_month INTEGER NOT NULL,
				amount VARCHAR(40) NOT NULL,
				PRIMARY KEY (subject_id, goal_year, goal_month)
			)`,
		},
	},
	{
		name: "0002_achievements",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS achievements (
				id VARCHAR(64) PRIMARY KEY,
				subject_id VARCHAR(64) NOT NULL,
				team_id VARCHAR(64) NOT NULL DEFAULT '',
				achievement_type VARCHAR(64) NOT NULL,
				period_key VARCHAR(16) NOT NULL,
				name VARCHAR(255) NOT NULL,
				description VARCHAR(512) NOT NULL,
				points INTEGER NOT NULL,
				category VARCHAR(32) NOT NULL,
				granted_at VARCHAR(40) NOT NULL,
				CONSTRAINT uq_achievements_subject_type_period UNIQUE (subject_id, achievement_type, period_key)
			)`,
		},
	},
	{
		name: "0003_streaks",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS celebrated_streaks (
				team_id VARCHAR(64) NOT NULL,
				consecutive_wins INTEGER NOT NULL,
				streak_year INTEGER NOT NULL,
				celebrated_at VARCHAR(40) NOT NULL,
				PRIMARY KEY (team_id, consecutive_wins, streak_year)
			)`,
			`CREATE TABLE IF NOT EXISTS team_streaks (
				team_id VARCHAR(64) NOT NULL,
				streak_year INTEGER NOT NULL,
				team_name VARCHAR(255) NOT NULL,
				consecutive_wins INTEGER NOT NULL,
				months VARCHAR(64) NOT NULL,
				updated_at VARCHAR(40) NOT NULL,
				PRIMARY KEY (team_id, streak_year)
			)`,
		},
	},
}

// migrate applies pending migrations in order, each in its own transaction.
// MySQL commits DDL implicitly, so a failed migration there may be partial;
// every statement is idempotent to make a rerun safe.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.exec(ctx, s.dialect.CreateMigrationsTableQuery()); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	for _, m := range migrations {
		var count int
		if err := s.queryRow(ctx, "SELECT COUNT(*) FROM schema_migrations WHERE name = ?", m.name).Scan(&count); err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if count > 0 {
			continue
		}

		err := s.inTx(ctx, func(t *tx) error {
			for _, stmt := range m.statements {
				if err := t.exec(ctx, stmt); err != nil {
					return err
				}
			}
			return t.exec(ctx, "INSERT INTO schema_migrations (name) VALUES (?)", m.name)
		})
		if err != nil {
			return fmt.Errorf("apply migration %s: %w", m.name, err)
		}
		s.log.Info(ctx, "migration applied", logger.String("name", m.name), logger.String("dialect", s.dialect.Name()))
	}
	return nil
}
