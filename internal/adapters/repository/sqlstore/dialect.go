package sqlstore

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect isolates the differences between the supported SQL backends.
type Dialect interface {
	// Name is the config value selecting the dialect.
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN returns the data source name for the connection.
	DSN(cfg Config) string

	// RewriteQuery converts ? placeholders when the driver needs another
	// syntax.
	RewriteQuery(query string) string

	// ConfigureConnection applies pool and session settings.
	ConfigureConnection(db *sql.DB) error

	// CreateMigrationsTableQuery returns the DDL of the migration ledger.
	CreateMigrationsTableQuery() string
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, name)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
// Queries in this package never contain a literal question mark.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
