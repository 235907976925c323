package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dirdiff/internal/engine"
	"github.com/bamsammich/dirdiff/internal/event"
	"github.com/bamsammich/dirdiff/internal/filter"
	"github.com/bamsammich/dirdiff/internal/stats"
	"github.com/bamsammich/dirdiff/internal/ui"
)

type syncOpts struct {
	scan    scanFlags
	to      string
	resume  bool
	bwLimit string
	dryRun  bool
}

func newSyncCmd(g *globalOpts) *cobra.Command {
	o := &syncOpts{}
	cmd := &cobra.Command{
		Use:   "sync LEFT RIGHT REL",
		Short: "Copy one entry from one tree to the other",
		Long: `Copy the entry at REL (relative to both roots, "." for the whole tree)
from LEFT to RIGHT, or from RIGHT to LEFT with --to left. Whatever exists at
the destination is replaced. Both trees are rescanned afterwards.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd, g, o, args[0], args[1], args[2])
		},
	}

	addScanFlags(cmd.Flags(), &o.scan)
	cmd.Flags().StringVar(&o.to, "to", "right", "destination side: right or left")
	cmd.Flags().BoolVar(&o.resume, "resume", false, "skip files a previous interrupted sync already copied")
	cmd.Flags().StringVar(&o.bwLimit, "bwlimit", "", "bandwidth limit (e.g. 100M, 1G)")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "show what would be copied without writing")
	return cmd
}

func runSync(cmd *cobra.Command, g *globalOpts, o *syncOpts, left, right, rel string) error {
	dir, err := parseDirection(o.to)
	if err != nil {
		return err
	}
	scanOpts, err := o.scan.options(cmd, g.cfg.Defaults)
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("bwlimit") && g.cfg.Defaults.BWLimit != nil {
		o.bwLimit = *g.cfg.Defaults.BWLimit
	}
	var bwLimit int64
	if o.bwLimit != "" {
		bwLimit, err = filter.ParseSize(o.bwLimit)
		if err != nil {
			return fmt.Errorf("invalid --bwlimit: %w", err)
		}
	}

	src, dst := filepath.Join(left, rel), filepath.Join(right, rel)
	srcRoot := left
	if dir == engine.ToLeft {
		src, dst = dst, src
		srcRoot = right
	}

	syncCfg := engine.SyncConfig{
		Stats:   stats.NewCollector(),
		BWLimit: bwLimit,
		DryRun:  o.dryRun,
	}
	if o.dryRun {
		slog.Info("dry run mode")
	}

	var journal *engine.Journal
	if o.resume && !o.dryRun {
		journal, err = openJournal(src, dst)
		if err != nil {
			return err
		}
		syncCfg.Journal = journal
	}

	var sess *engine.Session
	runErr := withPresenter(g, &syncCfg, srcRoot, func(ctx context.Context) error {
		sess, err = newSession(left, right, scanOpts, syncCfg)
		if err != nil {
			return err
		}
		return sess.SyncPath(ctx, rel, dir)
	})
	if journal != nil {
		if err := journal.Close(); err != nil {
			slog.Warn("failed to close journal", "path", journal.Path(), "error", err)
		}
	}
	if runErr != nil {
		slog.Error("sync failed", "path", rel, "error", runErr)
		if syncCfg.Stats.Snapshot().FilesCopied > 0 {
			return &exitError{code: 1} // partial failure
		}
		return &exitError{code: 2}
	}

	if journal != nil {
		if err := journal.Remove(); err != nil {
			slog.Warn("failed to remove journal", "path", journal.Path(), "error", err)
		}
	}
	printRemaining(g, sess)
	return nil
}

// printRemaining reports the differences left after a change.
func printRemaining(g *globalOpts, sess *engine.Session) {
	if g.quiet || sess == nil || sess.Current() == nil {
		return
	}
	fmt.Fprintf(g.stderr, "remaining: %s\n", engine.Summarize(sess.Current()))
}

type deleteOpts struct {
	scan   scanFlags
	side   string
	dryRun bool
}

func newDeleteCmd(g *globalOpts) *cobra.Command {
	o := &deleteOpts{}
	cmd := &cobra.Command{
		Use:   "delete LEFT RIGHT REL",
		Short: "Remove one entry from one tree",
		Long: `Remove the entry at REL from the side chosen with --side, recursively
for a directory. Both trees are rescanned afterwards.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, g, o, args[0], args[1], args[2])
		},
	}

	addScanFlags(cmd.Flags(), &o.scan)
	cmd.Flags().StringVar(&o.side, "side", "", "side to delete from: left or right")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "show what would be deleted without removing it")
	_ = cmd.MarkFlagRequired("side") //nolint:errcheck // flag name is hardcoded
	return cmd
}

func runDelete(cmd *cobra.Command, g *globalOpts, o *deleteOpts, left, right, rel string) error {
	side, err := parseSide(o.side)
	if err != nil {
		return err
	}
	scanOpts, err := o.scan.options(cmd, g.cfg.Defaults)
	if err != nil {
		return err
	}

	root := left
	if side == engine.Right {
		root = right
	}
	syncCfg := engine.SyncConfig{Stats: stats.NewCollector(), DryRun: o.dryRun}

	var sess *engine.Session
	err = withPresenter(g, &syncCfg, root, func(ctx context.Context) error {
		sess, err = newSession(left, right, scanOpts, syncCfg)
		if err != nil {
			return err
		}
		return sess.DeletePath(ctx, rel, side)
	})
	if err != nil {
		slog.Error("delete failed", "path", rel, "error", err)
		return &exitError{code: 2}
	}
	printRemaining(g, sess)
	return nil
}

func newSession(left, right string, scanOpts engine.ScanOptions, syncCfg engine.SyncConfig) (*engine.Session, error) {
	return engine.NewSession(engine.SessionConfig{
		LeftRoot:  left,
		RightRoot: right,
		Scan:      scanOpts,
		Sync:      syncCfg,
	})
}

// withPresenter runs fn with cfg.Events feeding a progress presenter and
// prints the presenter's summary afterwards. Temp files left by an
// interrupted copy are removed before returning.
func withPresenter(g *globalOpts, cfg *engine.SyncConfig, root string, fn func(context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer engine.CleanupTmpFiles()

	events := make(chan event.Event, 256)
	cfg.Events = events

	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	isTTY, width := false, 0
	if f, ok := g.stderr.(*os.File); ok && ui.IsTTY(f.Fd()) {
		isTTY, width = true, ui.TermWidth(f.Fd())
	}
	presenter := ui.NewPresenter(ui.Config{
		Writer:    g.stdout,
		ErrWriter: g.stderr,
		Stats:     cfg.Stats,
		Root:      root,
		Theme:     ui.NewTheme(g.cfg.Theme, isTTY && !g.noColor),
		Width:     width,
		IsTTY:     isTTY,
		Quiet:     g.quiet,
	})

	var presenterErr error
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		presenterErr = presenter.Run(g.logEvents(events))
	}()

	err := fn(ctx)
	close(events)
	wg.Wait()
	if presenterErr != nil {
		fmt.Fprintf(g.stderr, "presenter: %v\n", presenterErr)
	}

	if summary := presenter.Summary(); summary != "" {
		fmt.Fprintln(g.stderr, summary)
	}
	return err
}

func openJournal(src, dst string) (*engine.Journal, error) {
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, err
	}
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return nil, err
	}
	j, err := engine.OpenJournal(absSrc, absDst)
	if err != nil {
		return nil, fmt.Errorf("open resume journal: %w", err)
	}
	slog.Debug("resume journal", "path", j.Path())
	return j, nil
}

func parseDirection(s string) (engine.Direction, error) {
	switch s {
	case "right", "":
		return engine.ToRight, nil
	case "left":
		return engine.ToLeft, nil
	default:
		return 0, fmt.Errorf("invalid --to %q (use right or left)", s)
	}
}

func parseSide(s string) (engine.Side, error) {
	switch s {
	case "left":
		return engine.Left, nil
	case "right":
		return engine.Right, nil
	default:
		return 0, fmt.Errorf("invalid --side %q (use left or right)", s)
	}
}
