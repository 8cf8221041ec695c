package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PeriodKind is the granularity of a Period.
type PeriodKind string

const (
	PeriodMonth    PeriodKind = "month"
	PeriodSemester PeriodKind = "semester"
	PeriodYear     PeriodKind = "year"
)

// Period scopes which records count toward a score. Two periods are equal
// iff all fields match, so Period is usable as a map key.
type Period struct {
	Kind     PeriodKind
	Year     int
	Month    time.Month // PeriodMonth only
	Semester int        // PeriodSemester only, 1 or 2
}

// MonthPeriod returns the period covering one calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Kind: PeriodMonth, Year: year, Month: month}
}

// SemesterPeriod returns the period covering one half of a year.
func SemesterPeriod(year, semester int) Period {
	return Period{Kind: PeriodSemester, Year: year, Semester: semester}
}

// YearPeriod returns the period covering a calendar year.
func YearPeriod(year int) Period {
	return Period{Kind: PeriodYear, Year: year}
}

// Validate checks the period fields for its kind.
func (p Period) Validate() error {
	if p.Year <= 0 {
		return fmt.Errorf("%w: year %d", ErrInvalidPeriod, p.Year)
	}
	switch p.Kind {
	case PeriodMonth:
		if p.Month < time.January || p.Month > time.December {
			return fmt.Errorf("%w: month %d", ErrInvalidPeriod, p.Month)
		}
	case PeriodSemester:
		if p.Semester != 1 && p.Semester != 2 {
			return fmt.Errorf("%w: semester %d", ErrInvalidPeriod, p.Semester)
		}
	case PeriodYear:
	default:
		return fmt.Errorf("%w: kind %q", ErrInvalidPeriod, p.Kind)
	}
	return nil
}

// Window returns the inclusive first and last day of the period.
func (p Period) Window() (start, end time.Time) {
	switch p.Kind {
	case PeriodMonth:
		start = time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, -1)
	case PeriodSemester:
		first := time.January
		if p.Semester == 2 {
			first = time.July
		}
		start = time.Date(p.Year, first, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 6, -1)
	default:
		start = time.Date(p.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, time.Date(p.Year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}
}

// Contains reports whether the calendar day of t falls inside the window.
func (p Period) Contains(t time.Time) bool {
	start, end := p.Window()
	d := Date(t)
	return !d.Before(start) && !d.After(end)
}

// Key is the canonical string form: "2025-03", "2025-S1" or "2025".
func (p Period) Key() string {
	switch p.Kind {
	case PeriodMonth:
		return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
	case PeriodSemester:
		return fmt.Sprintf("%04d-S%d", p.Year, p.Semester)
	default:
		return fmt.Sprintf("%04d", p.Year)
	}
}

func (p Period) String() string { return p.Key() }

// ParsePeriod parses the output of Period.Key.
func ParsePeriod(s string) (Period, error) {
	s = strings.TrimSpace(s)
	yearPart, rest, hasRest := strings.Cut(s, "-")
	year, err := strconv.Atoi(yearPart)
	if err != nil {
		return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}

	var p Period
	switch {
	case !hasRest:
		p = YearPeriod(year)
	case strings.HasPrefix(rest, "S"):
		sem, err := strconv.Atoi(strings.TrimPrefix(rest, "S"))
		if err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
		}
		p = SemesterPeriod(year, sem)
	default:
		m, err := strconv.Atoi(rest)
		if err != nil {
			return Period{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
		}
		p = MonthPeriod(year, time.Month(m))
	}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// MarshalText encodes the period as its key.
func (p Period) MarshalText() ([]byte, error) {
	return []byte(p.Key()), nil
}

// UnmarshalText decodes a period key.
func (p *Period) UnmarshalText(b []byte) error {
	parsed, err := ParsePeriod(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}
