package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/arena/internal/config"
	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/simulate"
	"github.com/okian/arena/pkg/logger"
)

// Default configuration constants.
const (
	defaultTeams       = 8
	defaultMembers     = 5
	defaultRecords     = 2000
	defaultCards       = 40
	defaultWorkers     = 16
	defaultTimeout     = 10 * time.Second
	defaultSettle      = time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		period  = flag.String("period", time.Now().UTC().Format("2006-01"), "Month to fill, YYYY-MM")
		teams   = flag.Int("teams", defaultTeams, "Number of teams")
		members = flag.Int("members", defaultMembers, "Subjects per team")
		records = flag.Int("records", defaultRecords, "Activity records to generate")
		cards   = flag.Int("cards", defaultCards, "Card events to generate")
		seed    = flag.Uint64("seed", 1, "Generator seed")
		workers = flag.Int("workers", defaultWorkers, "Concurrent submitters")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		settle  = flag.Duration("settle", defaultSettle, "Pause before verification")
		verbose = flag.Bool("verbose", false, "Log every mismatch")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	// The rule table comes from the same sources the server reads.
	cfg, err := config.Load(context.Background())
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	if err := logger.Init(logger.WithFormat(logger.Format(cfg.LogFormat)), logger.WithLevel(cfg.LogLevel)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	rules, err := cfg.Rules.RuleTable()
	if err != nil {
		os.Stderr.WriteString("invalid rules: " + err.Error() + "\n")
		os.Exit(1)
	}

	p, err := model.ParsePeriod(*period)
	if err != nil || p.Kind != model.PeriodMonth {
		os.Stderr.WriteString("period must be YYYY-MM\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	if _, err := simulate.Run(ctx, &simulate.Config{
		BaseURL: *baseURL,
		Period:  p,
		Teams:   *teams,
		Members: *members,
		Records: *records,
		Cards:   *cards,
		Seed:    *seed,
		Workers: *workers,
		Timeout: *timeout,
		Settle:  *settle,
		Verbose: *verbose,
		Rules:   rules,
	}); err != nil {
		os.Stderr.WriteString("simulation failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
