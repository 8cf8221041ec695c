// Package config defines service configuration and its defaults.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/arena/internal/domain/points"
	"github.com/shopspring/decimal"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DBDriver is sqlite, postgres, mysql or memory.
	DBDriver string `koanf:"db_driver"`
	// DBPath is the SQLite file. Empty means in-memory.
	DBPath string `koanf:"db_path"`
	// DBURL is the PostgreSQL or MySQL connection string.
	DBURL string `koanf:"db_url"`

	// QueueSize bounds the evaluation queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`
	// PendingLimit caps how many distinct evaluations are tracked for
	// coalescing. Zero means the queue size.
	PendingLimit int `koanf:"pending_limit"`

	// StreakCelebrationMin is the shortest team streak worth celebrating.
	StreakCelebrationMin int `koanf:"streak_celebration_min"`

	// MaxStandingsLimit caps GET /standings?limit.
	MaxStandingsLimit int `koanf:"max_standings_limit"`

	Rules Rules `koanf:"rules"`
}

// Rules is the configurable form of points.RuleTable.
type Rules struct {
	// RevenueUnit is a decimal string, the currency amount worth one point.
	RevenueUnit string `koanf:"revenue_unit"`
	// NPSScore holds the points of survey scores 0 through 10.
	NPSScore      []int `koanf:"nps_score"`
	NPSCitedBonus int   `koanf:"nps_cited_bonus"`

	Testimonial points.TestimonialPoints `koanf:"testimonial"`
	Referral    points.ReferralWeights   `koanf:"referral"`
	Other       points.OtherWeights      `koanf:"other"`
}

// Supported values.
var (
	drivers    = []string{"sqlite", "postgres", "mysql", "memory"}     //nolint:gochecknoglobals // allowed values
	logLevels  = []string{"debug", "info", "warn", "warning", "error"} //nolint:gochecknoglobals // allowed values
	logFormats = []string{"text", "json"}                              //nolint:gochecknoglobals // allowed values
)

// New creates a Config with defaults.
func New() *Config {
	def := points.DefaultRules()
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DBDriver:             "sqlite",
		DBPath:               "arena.db",
		QueueSize:            1024,
		WorkerCount:          runtime.NumCPU(),
		StreakCelebrationMin: 3,
		MaxStandingsLimit:    100,
		Rules: Rules{
			RevenueUnit:   def.RevenueUnit.String(),
			NPSScore:      def.NPSScore[:],
			NPSCitedBonus: def.NPSCitedBonus,
			Testimonial:   def.Testimonial,
			Referral:      def.Referral,
			Other:         def.Other,
		},
	}
}

// RuleTable converts the configured rules.
func (r Rules) RuleTable() (points.RuleTable, error) {
	unit, err := decimal.NewFromString(strings.TrimSpace(r.RevenueUnit))
	if err != nil {
		return points.RuleTable{}, fmt.Errorf("%w: rules.revenue_unit %q: %w", ErrInvalidConfig, r.RevenueUnit, err)
	}

	var nps [11]int
	if len(r.NPSScore) != len(nps) {
		return points.RuleTable{}, fmt.Errorf("%w: rules.nps_score needs %d entries, got %d", ErrInvalidConfig, len(nps), len(r.NPSScore))
	}
	copy(nps[:], r.NPSScore)

	t := points.RuleTable{
		RevenueUnit:   unit,
		NPSScore:      nps,
		NPSCitedBonus: r.NPSCitedBonus,
		Testimonial:   r.Testimonial,
		Referral:      r.Referral,
		Other:         r.Other,
	}
	if err := t.Validate(); err != nil {
		return points.RuleTable{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return t, nil
}

// Validate checks every field and returns a wrapped ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case !oneOf(c.DBDriver, drivers):
		return fmt.Errorf("%w: db_driver %q not in %v", ErrInvalidConfig, c.DBDriver, drivers)
	case (c.DBDriver == "postgres" || c.DBDriver == "mysql") && c.DBURL == "":
		return fmt.Errorf("%w: db_url is required for %s", ErrInvalidConfig, c.DBDriver)
	case !oneOf(c.LogLevel, logLevels):
		return fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	case !oneOf(c.LogFormat, logFormats):
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.PendingLimit < 0:
		return fmt.Errorf("%w: pending_limit must not be negative", ErrInvalidConfig)
	case c.StreakCelebrationMin < 1:
		return fmt.Errorf("%w: streak_celebration_min must be at least 1", ErrInvalidConfig)
	case c.MaxStandingsLimit < 1:
		return fmt.Errorf("%w: max_standings_limit must be positive", ErrInvalidConfig)
	}
	_, err := c.Rules.RuleTable()
	return err
}

func oneOf(v string, allowed []string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
