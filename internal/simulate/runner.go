package simulate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/okian/arena/pkg/logger"
)

// ErrMismatch is returned when the served standings differ from the
// locally computed ones.
var ErrMismatch = errors.New("standings mismatch")

// Run executes a complete simulation against cfg.BaseURL.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("simulate")

	log.Info(ctx, "starting arena simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("period", cfg.Period.Key()),
		logger.Int("teams", cfg.Teams),
		logger.Int("records", cfg.Records),
		logger.Int("cards", cfg.Cards),
		logger.Int("workers", cfg.Workers),
	)

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if err := client.Get(ctx, "/healthz", nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate activity
	ds, err := Generate(cfg)
	if err != nil {
		return stats, err
	}
	stats.Generated = len(ds.Teams) + len(ds.Records) + len(ds.Cards)

	// Step 3: Register teams before anything refers to them
	teams := make([]request, len(ds.Teams))
	for i, t := range ds.Teams {
		teams[i] = request{path: "/teams", body: teamPayload{ID: t.ID, Name: t.Name}}
	}
	submitAll(ctx, client, cfg.Workers, teams, stats)

	// Step 4: Submit records and cards concurrently
	activity := make([]request, 0, len(ds.Records)+len(ds.Cards))
	for _, r := range ds.Records {
		activity = append(activity, request{path: "/records", body: toRecordPayload(r)})
	}
	for _, c := range ds.Cards {
		activity = append(activity, request{path: "/cards", body: toCardPayload(c)})
	}
	submitAll(ctx, client, cfg.Workers, activity, stats)
	if stats.Failed > 0 {
		log.Warn(ctx, "some submissions failed", logger.Int("failed", stats.Failed))
	}

	// Step 5: Let follow-up evaluations drain
	if cfg.Settle > 0 {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(cfg.Settle):
		}
	}

	// Step 6: Fetch and verify standings
	var served standingsResponse
	q := url.Values{"period": {cfg.Period.Key()}}
	if err := client.Get(ctx, "/standings?"+q.Encode(), &served); err != nil {
		return stats, fmt.Errorf("standings retrieval failed: %w", err)
	}
	stats.Rows = len(served.Rows)

	errs := Compare(Expected(ds, cfg.Period, cfg.Rules), served.Rows)
	stats.Mismatches = len(errs)
	for i, e := range errs {
		if i > 0 && !cfg.Verbose {
			break
		}
		log.Warn(ctx, "standings mismatch", logger.Error(e))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "simulation finished",
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("rows", stats.Rows),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
	)

	if len(errs) > 0 {
		return stats, fmt.Errorf("%w: %w", ErrMismatch, errors.Join(errs...))
	}
	return stats, nil
}
