// Package formatters renders byte counts, file counts, durations, and
// percentages for the progress table and summaries.
package formatters

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatBytes renders a byte count in human-readable SI units ("1.5 MB").
func FormatBytes(bytes int64) string {
	if bytes < 0 {
		return "0 B"
	}

	return humanize.Bytes(uint64(bytes))
}

// FormatCount renders a count with thousands separators ("12,345").
func FormatCount(count int64) string {
	return humanize.Comma(count)
}

// FormatPercent renders a percentage with one decimal place ("42.3%").
func FormatPercent(percent float64) string {
	return fmt.Sprintf("%.1f%%", percent)
}

// FormatDuration renders a duration truncated to whole seconds ("1h2m3s").
// Sub-second durations render as "0s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	return d.Truncate(time.Second).String()
}

// FormatClock renders the wall-clock component of a timestamp ("15:04:05"),
// which is how the ETA is shown.
func FormatClock(t time.Time) string {
	return t.Format("15:04:05")
}
