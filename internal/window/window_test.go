package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseAcceptedLayouts(t *testing.T) {
	cases := []string{
		"2026-03-01T10:30:00Z",
		"2026-03-01T10:30:00+05:30",
		"2026-03-01T10:30:00.123456",
		"2026-03-01T10:30:00",
		"2026-03-01 10:30:00",
		"2026-03-01",
	}
	for _, ts := range cases {
		parsed, ok := Parse(ts)
		assert.True(t, ok, "expected %q to parse", ts)
		assert.Equal(t, time.UTC, parsed.Location())
	}
}

func TestParseRejectsDirtyHistory(t *testing.T) {
	for _, ts := range []string{"", "   ", "not-a-time", "03/01/2026", "1677655800"} {
		_, ok := Parse(ts)
		assert.False(t, ok, "expected %q to be rejected", ts)
	}
}

func TestParseNormalizesOffsetToUTC(t *testing.T) {
	parsed, ok := Parse("2026-03-01T10:30:00+02:00")
	assert.True(t, ok)
	assert.Equal(t, "2026-03-01T08:30:00Z", parsed.Format(time.RFC3339))
}

func TestWithin(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	cutoff := Cutoff(now, 30)

	assert.True(t, Within("2026-03-01T00:00:00Z", cutoff))
	assert.False(t, Within("2026-02-01T00:00:00Z", cutoff))
	assert.False(t, Within("garbage", cutoff), "unparseable timestamps are excluded, not raised")
}

func TestWithinLast(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	assert.True(t, WithinLast("2026-03-14T13:00:00Z", now, 48*time.Hour))
	assert.False(t, WithinLast("2026-03-13T11:00:00Z", now, 48*time.Hour))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "2026-03-15", DayKey(time.Date(2026, 3, 15, 23, 59, 0, 0, time.UTC)))
	// Offsets collapse to the UTC date.
	loc := time.FixedZone("IST", 5*3600+1800)
	assert.Equal(t, "2026-03-14", DayKey(time.Date(2026, 3, 15, 1, 0, 0, 0, loc)))
}
