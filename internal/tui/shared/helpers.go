package shared

import (
	"time"

	"github.com/joe/stage-builds/pkg/formatters"
)

// Formatting pass-throughs so screens depend on one package for display
// concerns.

// FormatBytes formats bytes into human-readable form (e.g., "1.5 MB").
func FormatBytes(bytes int64) string {
	return formatters.FormatBytes(bytes)
}

// FormatCount formats a count with thousands separators.
func FormatCount(count int64) string {
	return formatters.FormatCount(count)
}

// FormatDuration formats a duration rounded to whole seconds.
func FormatDuration(duration time.Duration) string {
	return formatters.FormatDuration(duration)
}

// FormatClock formats a wall-clock time as HH:MM:SS.
func FormatClock(t time.Time) string {
	return formatters.FormatClock(t)
}

// FormatPercent formats a percentage with one decimal place.
func FormatPercent(percent float64) string {
	return formatters.FormatPercent(percent)
}
