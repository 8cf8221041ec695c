package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/model"
	"github.com/shopspring/decimal"
)

const (
	dateLayout      = "2006-01-02"
	timestampLayout = "2006-01-02T15:04:05.000000000Z"
)

func formatDate(t time.Time) string { return model.Date(t).Format(dateLayout) }

func formatTimestamp(t time.Time) string { return t.UTC().Format(timestampLayout) }

// PutTeam inserts or renames a team.
func (s *Store) PutTeam(ctx context.Context, t model.Team) error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing team id", repository.ErrInvalidRecord)
	}
	return s.inTx(ctx, func(x *tx) error {
		if err := x.exec(ctx, "DELETE FROM teams WHERE id = ?", t.ID); err != nil {
			return fmt.Errorf("delete team %s: %w", t.ID, err)
		}
		if err := x.exec(ctx, "INSERT INTO teams (id, name) VALUES (?, ?)", t.ID, t.Name); err != nil {
			return fmt.Errorf("insert team %s: %w", t.ID, err)
		}
		return nil
	})
}

// Teams returns every team ordered by ID.
func (s *Store) Teams(ctx context.Context) ([]model.Team, error) {
	rows, err := s.query(ctx, "SELECT id, name FROM teams ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query teams: %w", err)
	}
	defer rows.Close()

	var out []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// AddRecord stores an activity record. Reusing an ID returns
// repository.ErrDuplicate.
func (s *Store) AddRecord(ctx context.Context, r model.ActivityRecord) error {
	if err := repository.ValidateRecord(r); err != nil {
		return err
	}

	var amount sql.NullString
	if r.Amount != nil {
		amount = sql.NullString{String: r.Amount.String(), Valid: true}
	}
	var score sql.NullInt64
	if r.Score != nil {
		score = sql.NullInt64{Int64: int64(*r.Score), Valid: true}
	}
	var collected, consultation, surgery sql.NullInt64
	if r.Referral != nil {
		collected = nullInt(r.Referral.Collected)
		consultation = nullInt(r.Referral.ToConsultation)
		surgery = nullInt(r.Referral.ToSurgery)
	}
	var unilovers, ambassadors, mentions sql.NullInt64
	if r.Other != nil {
		unilovers = nullInt(r.Other.Unilovers)
		ambassadors = nullInt(r.Other.Ambassadors)
		mentions = nullInt(r.Other.InstagramMentions)
	}
	cited := 0
	if r.CitedMember {
		cited = 1
	}

	_, err := s.exec(ctx, `INSERT INTO activity_records (
			id, subject_id, team_id, category, occurred_on, amount, score, cited_member, kind,
			ref_collected, ref_consultation, ref_surgery, attributed_subject_id,
			other_unilovers, other_ambassadors, other_mentions
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.SubjectID, r.TeamID, string(r.Category), formatDate(r.OccurredOn), amount, score, cited, string(r.Kind),
		collected, consultation, surgery, r.AttributedSubjectID,
		unilovers, ambassadors, mentions,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: record %s", repository.ErrDuplicate, r.ID)
	}
	if err != nil {
		return fmt.Errorf("insert record %s: %w", r.ID, err)
	}
	return nil
}

// Records returns records dated within [from, to], ordered by date then ID.
func (s *Store) Records(ctx context.Context, from, to time.Time) ([]model.ActivityRecord, error) {
	rows, err := s.query(ctx, `SELECT
			id, subject_id, team_id, category, occurred_on, amount, score, cited_member, kind,
			ref_collected, ref_consultation, ref_surgery, attributed_subject_id,
			other_unilovers, other_ambassadors, other_mentions
		FROM activity_records
		WHERE occurred_on >= ? AND occurred_on <= ?
		ORDER BY occurred_on, id`,
		formatDate(from), formatDate(to),
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []model.ActivityRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (model.ActivityRecord, error) {
	var (
		r                                model.ActivityRecord
		category, occurred, kind         string
		amount                           sql.NullString
		score                            sql.NullInt64
		cited                            int
		collected, consultation, surgery sql.NullInt64
		unilovers, ambassadors, mentions sql.NullInt64
	)
	err := rows.Scan(
		&r.ID, &r.SubjectID, &r.TeamID, &category, &occurred, &amount, &score, &cited, &kind,
		&collected, &consultation, &surgery, &r.AttributedSubjectID,
		&unilovers, &ambassadors, &mentions,
	)
	if err != nil {
		return r, fmt.Errorf("scan record: %w", err)
	}

	r.Category = model.Category(category)
	r.Kind = model.TestimonialKind(kind)
	r.CitedMember = cited != 0
	if r.OccurredOn, err = time.Parse(dateLayout, occurred); err != nil {
		return r, fmt.Errorf("record %s: parse date: %w", r.ID, err)
	}
	if amount.Valid {
		d, err := decimal.NewFromString(amount.String)
		if err != nil {
			return r, fmt.Errorf("record %s: parse amount: %w", r.ID, err)
		}
		r.Amount = &d
	}
	if score.Valid {
		v := int(score.Int64)
		r.Score = &v
	}
	if collected.Valid || consultation.Valid || surgery.Valid {
		r.Referral = &model.ReferralCounts{
			Collected:      int(collected.Int64),
			ToConsultation: int(consultation.Int64),
			ToSurgery:      int(surgery.Int64),
		}
	}
	if unilovers.Valid || ambassadors.Valid || mentions.Valid {
		r.Other = &model.OtherCounts{
			Unilovers:         int(unilovers.Int64),
			Ambassadors:       int(ambassadors.Int64),
			InstagramMentions: int(mentions.Int64),
		}
	}
	return r, nil
}

// AddCard stores a card event.
func (s *Store) AddCard(ctx context.Context, c model.CardEvent) error {
	if err := repository.ValidateCard(c); err != nil {
		return err
	}
	_, err := s.exec(ctx, "INSERT INTO card_events (id, team_id, kind, issued_on) VALUES (?, ?, ?, ?)",
		c.ID, c.TeamID, string(c.Kind), formatDate(c.IssuedOn))
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: card %s", repository.ErrDuplicate, c.ID)
	}
	if err != nil {
		return fmt.Errorf("insert card %s: %w", c.ID, err)
	}
	return nil
}

// Cards returns card events issued within [from, to].
func (s *Store) Cards(ctx context.Context, from, to time.Time) ([]model.CardEvent, error) {
	rows, err := s.query(ctx, `SELECT id, team_id, kind, issued_on FROM card_events
		WHERE issued_on >= ? AND issued_on <= ? ORDER BY issued_on, id`,
		formatDate(from), formatDate(to))
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []model.CardEvent
	for rows.Next() {
		var (
			c          model.CardEvent
			kind, date string
		)
		if err := rows.Scan(&c.ID, &c.TeamID, &kind, &date); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Kind = model.CardKind(kind)
		if c.IssuedOn, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("card %s: parse date: %w", c.ID, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetGoal replaces the monthly goal of a subject.
func (s *Store) SetGoal(ctx context.Context, subjectID string, year int, month time.Month, amount decimal.Decimal) error {
	return s.inTx(ctx, func(x *tx) error {
		if err := x.exec(ctx, "DELETE FROM monthly_goals WHERE subject_id = ? AND goal_year = ? AND goal_month = ?",
			subjectID, year, int(month)); err != nil {
			return fmt.Errorf("delete goal: %w", err)
		}
		if err := x.exec(ctx, "INSERT INTO monthly_goals (subject_id, goal_year, goal_month, amount) VALUES (?, ?, ?, ?)",
			subjectID, year, int(month), amount.String()); err != nil {
			return fmt.Errorf("insert goal: %w", err)
		}
		return nil
	})
}

// Goal returns the monthly goal of a subject or repository.ErrNotFound.
func (s *Store) Goal(ctx context.Context, subjectID string, year int, month time.Month) (decimal.Decimal, error) {
	var raw string
	err := s.queryRow(ctx, "SELECT amount FROM monthly_goals WHERE subject_id = ? AND goal_year = ? AND goal_month = ?",
		subjectID, year, int(month)).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, repository.ErrNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("query goal: %w", err)
	}
	return decimal.NewFromString(raw)
}

func nullInt(v int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(v), Valid: true}
}
