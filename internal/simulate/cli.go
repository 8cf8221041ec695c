package simulate

import "os"

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Arena Simulation Tool
=====================

Seeds a running arena server with generated teams, activity records and
cards, then checks the served standings against a locally computed table.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -period string
        Month to fill, YYYY-MM (default current month)
  -teams int
        Number of teams (default 8)
  -members int
        Subjects per team (default 5)
  -records int
        Activity records to generate (default 2000)
  -cards int
        Card events to generate (default 40)
  -seed uint
        Generator seed (default 1)
  -workers int
        Concurrent submitters (default 16)
  -timeout duration
        HTTP request timeout (default 10s)
  -settle duration
        Pause before verification (default 1s)
  -verbose
        Log every mismatch
  -help
        Show this help

The server must run with the default rule table, or with one supplied
through the same ARENA_ environment and config file, for the check to pass.
`)
}
