package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bamsammich/dirdiff/internal/config"
	"github.com/bamsammich/dirdiff/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// globalOpts holds the persistent flags and the state they produce.
type globalOpts struct {
	verbose    bool
	quiet      bool
	noColor    bool
	logFile    string
	configFile string

	cfg       config.Config
	logCloser io.Closer
	stdout    io.Writer
	stderr    io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	rootCmd, g := newRootCmd(stdout, stderr)
	defer g.close()
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *globalOpts) {
	g := &globalOpts{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:           "dirdiff",
		Short:         "Compare two directory trees and reconcile them",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return g.setup()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetVersionTemplate("dirdiff {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "suppress all output except errors")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")
	pf.StringVar(&g.logFile, "log", "", "write structured JSON log to FILE")
	pf.StringVar(&g.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/dirdiff/config.toml)")

	rootCmd.AddCommand(newDiffCmd(g))
	rootCmd.AddCommand(newSyncCmd(g))
	rootCmd.AddCommand(newDeleteCmd(g))
	rootCmd.AddCommand(newDocsCmd())

	return rootCmd, g
}

// setup loads the config file and installs the default logger.
func (g *globalOpts) setup() error {
	var err error
	if g.configFile != "" {
		g.cfg, err = config.LoadFile(g.configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else if g.cfg, err = config.Load(); err != nil {
		slog.Warn("failed to load config", "error", err)
	}

	logLevel := slog.LevelWarn
	if g.verbose {
		logLevel = slog.LevelDebug
	} else if g.quiet {
		logLevel = slog.LevelError
	}
	textHandler := slog.NewTextHandler(g.stderr, &slog.HandlerOptions{
		Level: logLevel,
	})
	var logHandler slog.Handler = textHandler
	if g.logFile != "" {
		lf, err := os.Create(g.logFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		g.logCloser = lf
		jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
		logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
	}
	slog.SetDefault(slog.New(logHandler))
	return nil
}

func (g *globalOpts) close() {
	if g.logCloser != nil {
		g.logCloser.Close()
		g.logCloser = nil
	}
}

// color reports whether stdout output should be styled.
func (g *globalOpts) color() bool {
	if g.noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := g.stdout.(*os.File)
	return ok && ui.IsTTY(f.Fd())
}

func (g *globalOpts) theme() *ui.Theme {
	return ui.NewTheme(g.cfg.Theme, g.color())
}

// logEvents mirrors every event into the JSON log when --log is set and
// forwards it unchanged.
func (g *globalOpts) logEvents(events <-chan ui.Event) <-chan ui.Event {
	if g.logFile == "" {
		return events
	}
	teed := make(chan ui.Event, cap(events))
	go func() {
		defer close(teed)
		for ev := range events {
			attrs := []slog.Attr{
				slog.String("type", ev.Type.String()),
				slog.String("path", ev.Path),
				slog.Int64("size", ev.Size),
			}
			if ev.Error != nil {
				attrs = append(attrs, slog.String("error", ev.Error.Error()))
			}
			slog.LogAttrs(context.Background(), slog.LevelDebug, "dirdiff.event", attrs...)
			teed <- ev
		}
	}()
	return teed
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
