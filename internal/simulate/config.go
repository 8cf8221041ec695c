// Package simulate drives a running arena server with generated activity
// and checks the standings it serves against a locally computed table.
package simulate

import (
	"time"

	"github.com/okian/arena/internal/domain/model"
	"github.com/okian/arena/internal/domain/points"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL string        // Base URL of the service
	Period  model.Period  // Month the generated activity falls in
	Teams   int           // Number of teams to register
	Members int           // Subjects per team
	Records int           // Activity records to generate
	Cards   int           // Card events to generate
	Seed    uint64        // Seed for the value generator
	Workers int           // Number of concurrent submitters
	Timeout time.Duration // HTTP request timeout
	Settle  time.Duration // Pause between submission and verification
	Verbose bool          // Log every mismatch instead of the first

	// Rules must match the server's rule table for verification to pass.
	Rules points.RuleTable
}

// Dataset is everything a run submits.
type Dataset struct {
	Teams   []model.Team
	Members map[string][]string // team ID -> subject IDs
	Records []model.ActivityRecord
	Cards   []model.CardEvent
}

// Stats holds run statistics.
type Stats struct {
	Generated  int
	Submitted  int
	Successful int
	Duplicate  int
	Failed     int
	Rows       int
	Mismatches int
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
}

// submitResult classifies one POST.
type submitResult int

const (
	resultSuccess submitResult = iota
	resultDuplicate
	resultFailed
)
