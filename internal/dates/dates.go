// Package dates turns the loose date expressions found on news listings
// ("3 days ago", "Mar 4, 2024", RFC 1123 timestamps) into DD/MM/YYYY.
package dates

import (
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/araddon/dateparse"

	"github.com/IshaanNene/stocknews/internal/types"
)

// Normalizer converts raw date strings to types.DateLayout. It never fails;
// anything it cannot read becomes today's date.
type Normalizer struct {
	now      func() time.Time
	rollover bool
	logger   *slog.Logger
}

// yearlessLayouts are day-first forms such as "5 Jan" that dateparse
// rejects.
var yearlessLayouts = []string{"2 Jan", "2 January", "2 Jan.", "2 Jan,"}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithClock sets the source of "today".
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) { n.now = now }
}

// WithCalendarRollover makes "N days ago" use real calendar arithmetic
// instead of subtracting from the day of month.
func WithCalendarRollover(enabled bool) Option {
	return func(n *Normalizer) { n.rollover = enabled }
}

// WithLogger sets the logger used for parse diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) { n.logger = logger.With("component", "date_normalizer") }
}

// NewNormalizer creates a Normalizer.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		now:    time.Now,
		logger: slog.Default().With("component", "date_normalizer"),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize returns raw as DD/MM/YYYY.
func (n *Normalizer) Normalize(raw string) string {
	today := n.now()

	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if t, ok := parseAbsolute(trimmed, today); ok {
			return t.Format(types.DateLayout)
		}
	}

	lower := strings.ToLower(trimmed)
	switch {
	case strings.Contains(lower, "hour"), strings.Contains(lower, "minute"):
		return today.Format(types.DateLayout)
	case strings.Contains(lower, "day"):
		return n.daysAgo(today, lower).Format(types.DateLayout)
	}

	if trimmed != "" {
		n.logger.Debug("unrecognized date, using today", "raw", raw)
	}
	return today.Format(types.DateLayout)
}

// daysAgo reads every digit in s as one count. Without rollover the count
// is subtracted from the day of month, and a result below 1 yields today.
func (n *Normalizer) daysAgo(today time.Time, s string) time.Time {
	var digits strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			digits.WriteRune(r)
		}
	}
	days, err := strconv.Atoi(digits.String())
	if err != nil {
		return today
	}

	if n.rollover {
		return today.AddDate(0, 0, -days)
	}

	day := today.Day() - days
	if day < 1 {
		n.logger.Debug("day offset crosses month start, using today", "raw", s, "days", days)
		return today
	}
	return time.Date(today.Year(), today.Month(), day, 0, 0, 0, 0, today.Location())
}

// parseAbsolute reads a calendar date. Missing years are taken from today,
// so "Jan 5" and "5 Jan" both land in the current year.
func parseAbsolute(s string, today time.Time) (time.Time, bool) {
	t, err := dateparse.ParseIn(s, today.Location())
	if err != nil {
		t, err = parseYearless(s, today.Location())
		if err != nil {
			return time.Time{}, false
		}
	}
	if t.Year() == 0 {
		t = time.Date(today.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	}
	return t, true
}

func parseYearless(s string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range yearlessLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
