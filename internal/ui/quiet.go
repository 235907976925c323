package ui

import "github.com/bamsammich/dirdiff/internal/stats"

// quietPresenter drains events and reports only failures in its summary.
type quietPresenter struct {
	stats *stats.Collector
}

func (p *quietPresenter) Run(events <-chan Event) error {
	for range events {
		// Totals are set on the collector directly by the engine.
	}
	return nil
}

func (p *quietPresenter) Summary() string {
	if p.stats == nil {
		return ""
	}
	snap := p.stats.Snapshot()
	if failed := snap.FilesFailed + snap.DeleteFailed; failed > 0 {
		return completionSummary(snap)
	}
	return ""
}
