package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dirdiff/internal/engine"
	"github.com/bamsammich/dirdiff/internal/tree"
	"github.com/bamsammich/dirdiff/internal/ui"
)

type diffOpts struct {
	scan        scanFlags
	verify      bool
	view        string
	changedOnly bool
	summary     bool
}

func newDiffCmd(g *globalOpts) *cobra.Command {
	o := &diffOpts{}
	cmd := &cobra.Command{
		Use:   "diff LEFT RIGHT",
		Short: "Show the differences between two directory trees",
		Long: `Scan LEFT and RIGHT, compare them and print the selected tree with a
status glyph per entry: + added, - removed, ~ modified, ! unreadable.

Exit status is 0 when the trees match, 1 when they differ and 2 on error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, g, o, args[0], args[1])
		},
	}

	addScanFlags(cmd.Flags(), &o.scan)
	cmd.Flags().BoolVar(&o.verify, "verify", false, "compare file contents (BLAKE3) when sizes match")
	cmd.Flags().StringVar(&o.view, "view", "unified", "tree to print: left, right or unified")
	cmd.Flags().BoolVar(&o.changedOnly, "changed-only", false, "print only entries that differ")
	cmd.Flags().BoolVar(&o.summary, "summary", false, "print only the summary line")
	return cmd
}

func runDiff(cmd *cobra.Command, g *globalOpts, o *diffOpts, left, right string) error {
	if !cmd.Flags().Changed("verify") && g.cfg.Defaults.Verify != nil {
		o.verify = *g.cfg.Defaults.Verify
	}
	if _, err := selectView(&engine.Snapshot{}, o.view); err != nil {
		return err
	}
	scanOpts, err := o.scan.options(cmd, g.cfg.Defaults)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess, err := engine.NewSession(engine.SessionConfig{
		LeftRoot:  left,
		RightRoot: right,
		Scan:      scanOpts,
		Compare:   engine.CompareOptions{VerifyContent: o.verify},
	})
	if err != nil {
		return err
	}
	snap, err := sess.Refresh(ctx)
	if err != nil {
		return err
	}

	sum := engine.Summarize(snap)
	if !o.summary {
		root, err := selectView(snap, o.view)
		if err != nil {
			return err
		}
		if root == nil {
			missing := left
			if o.view == "right" {
				missing = right
			}
			fmt.Fprintf(g.stderr, "%s does not exist\n", missing)
		}
		err = ui.RenderTree(g.stdout, root, ui.RenderOptions{
			ChangedOnly: o.changedOnly,
			Theme:       g.theme(),
		})
		if err != nil {
			return err
		}
	}
	if !g.quiet || o.summary {
		fmt.Fprintln(g.stdout, sum.String())
	}

	if sum.HasChanges() {
		return &exitError{code: 1}
	}
	return nil
}

func selectView(snap *engine.Snapshot, view string) (tree.Node, error) {
	switch view {
	case "left":
		return snap.Left, nil
	case "right":
		return snap.Right, nil
	case "unified", "":
		return snap.Unified, nil
	default:
		return nil, fmt.Errorf("invalid --view %q (use left, right or unified)", view)
	}
}
