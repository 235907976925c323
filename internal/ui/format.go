package ui

import (
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bamsammich/dirdiff/internal/stats"
)

// FormatCount renders n with English thousands separators.
func FormatCount(n int64) string {
	return message.NewPrinter(language.English).Sprintf("%d", n)
}

// FormatBytes renders a size in the binary units used across the tree view
// and the progress output.
func FormatBytes(b int64) string {
	return stats.FormatBytes(b)
}

// FormatRate renders a throughput in the same units as FormatBytes.
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec < 1 {
		return "0 B/s"
	}
	return stats.FormatBytes(int64(bytesPerSec)) + "/s"
}

// FormatDuration renders d rounded to whole seconds, e.g. "3m17s".
func FormatDuration(d time.Duration) string {
	return max(d, 0).Round(time.Second).String()
}

// FormatETA is FormatDuration with "--" when there is no estimate.
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return "--"
	}
	return FormatDuration(d)
}

// ProgressBar draws the copied share of p's bytes as width cells.
func ProgressBar(p stats.Progress, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(p.Fraction() * float64(width))
	return strings.Repeat("▪", filled) + strings.Repeat("□", width-filled)
}
