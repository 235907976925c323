package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/bamsammich/dirdiff/internal/stats"
)

// plainPresenter outputs one line per entry to stdout, and periodic
// progress to stderr when not a TTY.
type plainPresenter struct {
	w     io.Writer
	errW  io.Writer
	stats *stats.Collector
	root  string
}

const plainProgressInterval = 5 * time.Second

func (p *plainPresenter) Run(events <-chan Event) error {
	ticker := time.NewTicker(plainProgressInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			p.handleEvent(ev)
		case <-ticker.C:
			p.stats.Tick()
			p.printProgress()
		}
	}
}

func (p *plainPresenter) handleEvent(ev Event) {
	path := StripRoot(p.root, ev.Path)
	switch ev.Type {
	case ScanComplete:
		fmt.Fprintf(p.w, "scanned %s  %s files  %s\n",
			ev.Path, FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case SyncStarted:
		fmt.Fprintf(p.w, "sync: %s  %s files  %s\n",
			path, FormatCount(ev.Total), FormatBytes(ev.TotalSize))
	case FileCompleted:
		fmt.Fprintf(p.w, "%s  %s\n", path, FormatBytes(ev.Size))
	case FileFailed:
		errMsg := "error"
		if ev.Error != nil {
			errMsg = ev.Error.Error()
		}
		fmt.Fprintf(p.w, "%s  %s\n", path, errMsg)
	case FileSkipped:
		fmt.Fprintf(p.w, "%s  skipped\n", path)
	case DeleteFile:
		fmt.Fprintf(p.w, "delete: %s\n", path)
	case DeleteFailed:
		fmt.Fprintf(p.w, "delete: %s  %v\n", path, ev.Error)
	}
}

func (p *plainPresenter) printProgress() {
	if p.errW == nil {
		return
	}
	prog := p.stats.Progress()
	if prog.TotalBytes > 0 {
		fmt.Fprintf(p.errW, "progress: %.0f%% %s/%s %s/%s files %s eta %s\n",
			prog.Fraction()*100,
			FormatBytes(prog.BytesCopied), FormatBytes(prog.TotalBytes),
			FormatCount(prog.ItemsCompleted), FormatCount(prog.TotalItems),
			FormatRate(p.stats.RollingSpeed(10)),
			FormatETA(p.stats.ETA()),
		)
		return
	}
	fmt.Fprintf(p.errW, "progress: %s copied %s files\n",
		FormatBytes(prog.BytesCopied),
		FormatCount(prog.ItemsCompleted),
	)
}

func (p *plainPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot())
}
