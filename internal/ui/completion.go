package ui

import (
	"fmt"

	"github.com/bamsammich/dirdiff/internal/stats"
)

// completionSummary builds a final summary line from a snapshot.
// Format: done ✓  files 48,917  skipped 12  size 2.1 GiB  avg 641.0 MiB/s  time 3m17s  errors 0
func completionSummary(snap stats.Snapshot) string {
	avgSpeed := 0.0
	if snap.Elapsed.Seconds() > 0 {
		avgSpeed = float64(snap.BytesCopied) / snap.Elapsed.Seconds()
	}

	failed := snap.FilesFailed + snap.DeleteFailed
	icon := "✓"
	if failed > 0 {
		icon = "✗"
	}

	base := fmt.Sprintf("done %s  files %s", icon, FormatCount(snap.FilesCopied))
	if snap.FilesSkipped > 0 {
		base += fmt.Sprintf("  skipped %s", FormatCount(snap.FilesSkipped))
	}
	if snap.Deleted > 0 {
		base += fmt.Sprintf("  deleted %s", FormatCount(snap.Deleted))
	}
	base += fmt.Sprintf("  size %s  avg %s  time %s  errors %d",
		FormatBytes(snap.BytesCopied),
		FormatRate(avgSpeed),
		FormatDuration(snap.Elapsed),
		failed,
	)
	return base
}
