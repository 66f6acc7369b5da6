package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatCurrency formats an amount as US dollars with thousands separators.
func FormatCurrency(amount float64) string {
	negative := amount < 0
	if negative {
		amount = -amount
	}

	s := strconv.FormatFloat(amount, 'f', 2, 64)
	parts := strings.SplitN(s, ".", 2)
	formatted := groupThousands(parts[0]) + "." + parts[1]

	if negative {
		return "-$" + formatted
	}
	return "$" + formatted
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatScore formats a behavioral score to one decimal place.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 1, 64)
}

// FormatPercent formats a percentage to one decimal place.
func FormatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// FormatSignedPercent formats a percentage with an explicit sign.
func FormatSignedPercent(value float64) string {
	if value > 0 {
		return fmt.Sprintf("+%.1f%%", value)
	}
	return fmt.Sprintf("%.1f%%", value)
}

// FormatDate formats a time as a calendar date.
func FormatDate(t time.Time) string {
	return t.Format("02-Jan-2006")
}

// FormatDateTime formats a time with date and clock.
func FormatDateTime(t time.Time) string {
	return t.Format("02-Jan-2006 15:04")
}

// FormatTimestamp formats a stored RFC3339 timestamp string for display.
// Unparseable values pass through unchanged.
func FormatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return FormatDateTime(t)
}

// FormatDaysLeft renders the remaining time on a challenge.
func FormatDaysLeft(expiresAt, now time.Time) string {
	remaining := expiresAt.Sub(now)
	if remaining <= 0 {
		return "expired"
	}
	days := int(remaining.Hours() / 24)
	if days == 0 {
		return "less than a day"
	}
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// TruncateString truncates a string to maxLen with ellipsis.
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// PadRight pads a string to the given length.
func PadRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

// ProgressBar renders a fixed-width textual progress bar for a percentage.
func ProgressBar(pct float64, width int) string {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	filled := int(pct / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", width-filled) + "]"
}
