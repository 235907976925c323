package ui

import (
	"io"

	"github.com/bamsammich/dirdiff/internal/stats"
)

// Presenter consumes events and displays progress.
type Presenter interface {
	// Run consumes events until the channel closes. Blocks until done.
	Run(events <-chan Event) error
	// Summary returns the final summary line.
	Summary() string
}

// Config configures a Presenter.
type Config struct {
	Writer    io.Writer
	ErrWriter io.Writer
	Stats     *stats.Collector
	Root      string // stripped from displayed paths
	Theme     *Theme
	Width     int // terminal columns; 0 disables path truncation
	IsTTY     bool
	Quiet     bool
}

// NewPresenter creates the appropriate presenter based on configuration.
//
//nolint:ireturn // factory function returns interface by design
func NewPresenter(cfg Config) Presenter {
	if cfg.Quiet {
		return &quietPresenter{stats: cfg.Stats}
	}
	if !cfg.IsTTY {
		return &plainPresenter{
			w:     cfg.Writer,
			errW:  cfg.ErrWriter,
			stats: cfg.Stats,
			root:  cfg.Root,
		}
	}
	return &barPresenter{
		w:     cfg.ErrWriter, // the bar redraws on stderr (the TTY)
		stats: cfg.Stats,
		root:  cfg.Root,
		theme: cfg.Theme,
		width: cfg.Width,
	}
}
