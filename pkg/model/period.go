package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Period represents a monthly target period as a single month index.
// Internally it is year*12 + (month-1), which makes ordering and lag
// arithmetic plain integer operations.
type Period int

// NewPeriod creates a Period from a calendar year and month (1-12).
func NewPeriod(year, month int) Period {
	return Period(year*12 + (month - 1))
}

// ParsePeriod parses a period in "2006-01" format.
func ParsePeriod(s string) (Period, error) {
	parts := strings.SplitN(strings.TrimSpace(s), "-", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid period %q: want YYYY-MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid period year %q: %w", parts[0], err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid period month %q: %w", parts[1], err)
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("invalid period month %d: must be 1-12", month)
	}
	return NewPeriod(year, month), nil
}

// Year returns the calendar year of the period.
func (p Period) Year() int {
	return int(p) / 12
}

// Month returns the calendar month (1-12) of the period.
func (p Period) Month() int {
	return int(p)%12 + 1
}

// Add returns the period n months later (or earlier for negative n).
func (p Period) Add(n int) Period {
	return p + Period(n)
}

// Before reports whether p is strictly earlier than q.
func (p Period) Before(q Period) bool {
	return p < q
}

// String formats the period as "2006-01".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year(), p.Month())
}

// PeriodRange returns all monthly periods from start to end inclusive.
func PeriodRange(start, end Period) []Period {
	if end < start {
		return nil
	}
	out := make([]Period, 0, int(end-start)+1)
	for p := start; p <= end; p++ {
		out = append(out, p)
	}
	return out
}
