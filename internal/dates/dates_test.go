package dates

import (
	"testing"
	"time"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 15, 30, 0, 0, time.UTC)
	}
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(2024, time.January, 10)))

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"days ago", "3 days ago", "07/01/2024"},
		{"one day", "1 day ago", "09/01/2024"},
		{"hours ago", "5 hours ago", "10/01/2024"},
		{"minutes ago", "42 minutes ago", "10/01/2024"},
		{"mixed case", "2 HOURS AGO", "10/01/2024"},
		{"underflow", "15 days ago", "10/01/2024"},
		{"exactly to zero", "10 days ago", "10/01/2024"},
		{"day without digits", "yesterday", "10/01/2024"},
		{"digits concatenated", "1 day 2 hours", "10/01/2024"},
		{"weeks", "2 weeks ago", "10/01/2024"},
		{"empty", "", "10/01/2024"},
		{"garbage", "sometime soon", "10/01/2024"},
		{"iso", "2023-12-25", "25/12/2023"},
		{"rfc1123", "Mon, 04 Mar 2024 08:00:00 GMT", "04/03/2024"},
		{"month name", "March 4, 2024", "04/03/2024"},
		{"month day without year", "Jan 5", "05/01/2024"},
		{"late month without year", "Dec 25", "25/12/2024"},
		{"day month without year", "5 Jan", "05/01/2024"},
		{"day full month without year", "25 December", "25/12/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeCalendarRollover(t *testing.T) {
	n := NewNormalizer(
		WithClock(fixedClock(2024, time.January, 10)),
		WithCalendarRollover(true),
	)

	tests := []struct {
		raw  string
		want string
	}{
		{"3 days ago", "07/01/2024"},
		{"15 days ago", "26/12/2023"},
		{"10 days ago", "31/12/2023"},
		{"yesterday", "10/01/2024"},
	}
	for _, tt := range tests {
		if got := n.Normalize(tt.raw); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestNormalizeHourMinuteAlwaysToday(t *testing.T) {
	n := NewNormalizer(WithClock(fixedClock(2025, time.June, 1)))
	for _, raw := range []string{"an hour ago", "minute", "12 minutes, 3 days", "hours"} {
		if got := n.Normalize(raw); got != "01/06/2025" {
			t.Errorf("Normalize(%q) = %q, want today", raw, got)
		}
	}
}
