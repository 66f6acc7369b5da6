// Package window provides timestamp parsing and rolling-window helpers.
// All calculations are relative to a caller-supplied "now" so windows are
// rolling slices, never fixed calendar periods.
package window

import (
	"strings"
	"time"
)

// DateLayout is the canonical day-key layout used for score dates.
const DateLayout = "2006-01-02"

// timestampLayouts are tried in order when parsing recorded timestamps.
// History can be dirty, so parsing is best-effort.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Parse parses a recorded timestamp string. It returns false for anything
// unparseable; callers exclude such records from window calculations.
func Parse(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DayKey returns the UTC calendar-date key for a time.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Cutoff returns the instant `days` days before now.
func Cutoff(now time.Time, days int) time.Time {
	return now.Add(-time.Duration(days) * 24 * time.Hour)
}

// Within reports whether the recorded timestamp parses and falls at or
// after the cutoff.
func Within(ts string, cutoff time.Time) bool {
	t, ok := Parse(ts)
	return ok && !t.Before(cutoff)
}

// WithinLast reports whether the recorded timestamp parses and falls inside
// the trailing duration ending at now.
func WithinLast(ts string, now time.Time, d time.Duration) bool {
	return Within(ts, now.Add(-d))
}

// Days converts a duration to fractional days.
func Days(d time.Duration) float64 {
	return d.Seconds() / 86400
}
