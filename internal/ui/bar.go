package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bamsammich/dirdiff/internal/stats"
)

// barPresenter prints a feed of finished entries above a one-line progress
// bar that redraws in place.
type barPresenter struct {
	w     io.Writer
	stats *stats.Collector
	root  string
	theme *Theme
	width int

	barDrawn    bool
	lastBarDraw time.Time
}

const (
	progressBarWidth = 20
	barMinInterval   = 50 * time.Millisecond
	barRedraw        = 100 * time.Millisecond
	feedReserve      = 24 // columns kept for the marker, size and status
)

func (p *barPresenter) Run(events <-chan Event) error {
	secTicker := time.NewTicker(time.Second)
	defer secTicker.Stop()
	redrawTicker := time.NewTicker(barRedraw)
	defer redrawTicker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				p.clearBar()
				return nil
			}
			p.handleEvent(ev)
			p.maybeDrawBar()
		case <-redrawTicker.C:
			p.drawBar()
		case <-secTicker.C:
			p.stats.Tick()
		}
	}
}

func (p *barPresenter) handleEvent(ev Event) {
	var line string
	switch ev.Type {
	case FileCompleted:
		line = fmt.Sprintf("%s  %s  %10s", p.theme.OK("✓"), p.styledPath(ev.Path), FormatBytes(ev.Size))
	case FileFailed:
		line = fmt.Sprintf("%s  %s  %v", p.theme.Fail("✗"), p.styledPath(ev.Path), ev.Error)
	case FileSkipped:
		line = fmt.Sprintf("–  %s  %10s  %s", p.styledPath(ev.Path), FormatBytes(ev.Size), p.theme.Muted("skipped"))
	case DeleteFile:
		line = fmt.Sprintf("×  %s  %s", p.styledPath(ev.Path), p.theme.Muted("deleted"))
	case DeleteFailed:
		line = fmt.Sprintf("%s  %s  %v", p.theme.Fail("✗"), p.styledPath(ev.Path), ev.Error)
	default:
		return
	}
	p.clearBar()
	fmt.Fprintln(p.w, line)
	p.drawBar()
}

func (p *barPresenter) maybeDrawBar() {
	if time.Since(p.lastBarDraw) < barMinInterval {
		return
	}
	p.drawBar()
}

func (p *barPresenter) drawBar() {
	prog := p.stats.Progress()
	p.clearBar()

	pct := prog.Fraction()
	fmt.Fprintf(p.w, " %3.0f%%  %s   %s / %s   %s / %s files   %s   eta %s\n",
		pct*100, ProgressBar(prog, progressBarWidth),
		FormatBytes(prog.BytesCopied), FormatBytes(prog.TotalBytes),
		FormatCount(prog.ItemsCompleted), FormatCount(prog.TotalItems),
		FormatRate(p.stats.RollingSpeed(10)),
		FormatETA(p.stats.ETA()),
	)
	p.barDrawn = true
	p.lastBarDraw = time.Now()
}

func (p *barPresenter) clearBar() {
	if !p.barDrawn {
		return
	}
	// Cursor up one line, clear to end of screen.
	fmt.Fprint(p.w, "\033[1A\033[J")
	p.barDrawn = false
}

func (p *barPresenter) Summary() string {
	return completionSummary(p.stats.Snapshot())
}

// styledPath returns the path relative to the presenter root with the
// directory portion muted so the file name stands out.
func (p *barPresenter) styledPath(path string) string {
	path = StripRoot(p.root, path)
	if p.width > feedReserve {
		path = truncPath(path, p.width-feedReserve)
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	if dir == "." || dir == "" {
		return base
	}
	return p.theme.Muted(dir+"/") + base
}

// truncPath shortens a path to fit within maxLen bytes, keeping the end.
// Cuts land on rune boundaries, so the result may be a little shorter.
func truncPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	if maxLen <= 3 {
		end := max(maxLen, 0)
		for end > 0 && !utf8.RuneStart(path[end]) {
			end--
		}
		return path[:end]
	}
	start := len(path) - maxLen + 3
	for start < len(path) && !utf8.RuneStart(path[start]) {
		start++
	}
	return "..." + path[start:]
}

// StripRoot removes a root prefix from a path, returning a clean relative path.
func StripRoot(root, path string) string {
	if root == "" {
		return path
	}
	if !strings.HasSuffix(root, string(filepath.Separator)) {
		root += string(filepath.Separator)
	}
	if strings.HasPrefix(path, root) {
		return path[len(root):]
	}
	return path
}
