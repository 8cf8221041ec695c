// Package sqlstore implements repository.Store on database/sql with
// SQLite, PostgreSQL and MySQL dialects. Uniqueness of grants and
// celebrations is enforced by table constraints, so several processes may
// share one database.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/okian/arena/internal/adapters/repository"
	"github.com/okian/arena/internal/domain/achievement"
	"github.com/okian/arena/pkg/logger"
)

// Config selects and addresses the database.
type Config struct {
	Driver string
	// Path is the SQLite file; empty means in-memory.
	Path string
	// URL is the PostgreSQL or MySQL connection string.
	URL string
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithFeedOptions configures the grant feed.
func WithFeedOptions(opts ...repository.FeedOption) Option {
	return func(s *Store) {
		s.feedOpts = append(s.feedOpts, opts...)
	}
}

// Store implements repository.Store.
type Store struct {
	db       *sql.DB
	dialect  Dialect
	log      logger.Logger
	feed     *repository.Feed
	feedOpts []repository.FeedOption
}

var _ repository.Store = (*Store)(nil)

// Open connects, configures the pool and migrates the schema.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dialect.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := dialect.ConfigureConnection(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("configure connection: %w", err)
	}
	if dialect.Name() == "sqlite" && (cfg.Path == "" || cfg.Path == memoryPath) {
		configureMemory(db)
	}

	s := &Store{db: db, dialect: dialect, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	s.feed = repository.NewFeed(s.feedOpts...)

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Dialect returns the active dialect.
func (s *Store) Dialect() Dialect { return s.dialect }

// Subscribe returns a feed of achievements inserted through this store.
func (s *Store) Subscribe() (<-chan achievement.Unlocked, func()) {
	return s.feed.Subscribe()
}

// Close ends feed subscriptions and closes the database.
func (s *Store) Close() error {
	s.feed.Close()
	return s.db.Close()
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.db.ExecContext(ctx, s.dialect.RewriteQuery(query), args...)
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.db.QueryContext(ctx, s.dialect.RewriteQuery(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.db.QueryRowContext(ctx, s.dialect.RewriteQuery(query), args...)
}

// tx wraps sql.Tx with placeholder rewriting.
type tx struct {
	*sql.Tx
	dialect Dialect
}

func (t *tx) exec(ctx context.Context, query string, args ...any) error {
	_, err := t.ExecContext(ctx, t.dialect.RewriteQuery(query), args...)
	return err
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(*tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(&tx{Tx: sqlTx, dialect: s.dialect}); err != nil {
		_ = sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
