// Package dateparse resolves date expressions for schedule dates.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/slackfocus/slackfocus/internal/output"
)

var (
	plusDaysPattern = regexp.MustCompile(`^\+(\d+)d$`)
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Resolve parses a date expression relative to the given reference time and
// returns the resulting date normalized to midnight in now's location.
// Supported expressions:
//   - today
//   - tomorrow
//   - +Nd (N days from now, N ≥ 0)
//   - YYYY-MM-DD (exact date; out-of-range month/day values are rejected)
//
// Anything else fails with a usage error carrying the offending input.
// Passing the reference time explicitly keeps resolution deterministic.
func Resolve(expr string, now time.Time) (time.Time, error) {
	input := strings.ToLower(strings.TrimSpace(expr))

	switch input {
	case "today":
		return midnight(now), nil
	case "tomorrow":
		return midnight(now.AddDate(0, 0, 1)), nil
	}

	if match := plusDaysPattern.FindStringSubmatch(input); match != nil {
		days, err := strconv.Atoi(match[1])
		if err != nil {
			return time.Time{}, output.ErrInvalidDate(expr)
		}
		return midnight(now.AddDate(0, 0, days)), nil
	}

	if datePattern.MatchString(input) {
		// time.Parse rejects out-of-range values like month 13 or day 32
		// instead of clamping them.
		t, err := time.ParseInLocation("2006-01-02", input, now.Location())
		if err != nil {
			return time.Time{}, output.ErrInvalidDate(expr)
		}
		return t, nil
	}

	return time.Time{}, output.ErrInvalidDate(expr)
}

// Format renders a resolved date back to YYYY-MM-DD.
func Format(t time.Time) string {
	return t.Format("2006-01-02")
}

// Midnight strips the time of day, keeping the location.
func Midnight(t time.Time) time.Time {
	return midnight(t)
}

func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
