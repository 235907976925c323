package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/text/language"

	"github.com/bamsammich/dirdiff/internal/config"
	"github.com/bamsammich/dirdiff/internal/engine"
	"github.com/bamsammich/dirdiff/internal/filter"
)

// filterFlag is a custom pflag.Value that preserves CLI ordering of
// --exclude and --include rules by appending to a shared filter.Chain.
type filterFlag struct {
	chain   *filter.Chain
	include bool
}

func (*filterFlag) String() string { return "" }
func (*filterFlag) Type() string   { return "pattern" }

func (f *filterFlag) Set(val string) error {
	if f.include {
		return f.chain.AddInclude(val)
	}
	return f.chain.AddExclude(val)
}

// scanFlags are the flags shared by every command that scans both roots.
type scanFlags struct {
	hidden     bool
	system     bool
	locale     string
	filterFile string
	chain      *filter.Chain
}

func addScanFlags(fs *pflag.FlagSet, sf *scanFlags) {
	sf.chain = filter.NewChain()
	fs.BoolVar(&sf.hidden, "hidden", false, "include hidden (dot) entries")
	fs.BoolVar(&sf.system, "system", false, "include OS metadata entries such as .DS_Store")
	fs.StringVar(&sf.locale, "locale", "", "BCP 47 locale used to order entries (default: root collation)")
	fs.Var(&filterFlag{chain: sf.chain}, "exclude", "exclude entries matching PATTERN (repeatable)")
	fs.Var(&filterFlag{chain: sf.chain, include: true}, "include", "include entries matching PATTERN (repeatable)")
	fs.StringVar(&sf.filterFile, "filter", "", "read filter rules from FILE")
}

// options builds ScanOptions, letting config defaults fill flags the user
// did not set. Config excludes are appended after CLI rules so an explicit
// --include still wins.
func (sf *scanFlags) options(cmd *cobra.Command, defaults config.DefaultsConfig) (engine.ScanOptions, error) {
	applyConfigDefaults(cmd, defaults, sf)

	if sf.filterFile != "" {
		if err := sf.chain.LoadFile(sf.filterFile); err != nil {
			return engine.ScanOptions{}, fmt.Errorf("load filter file: %w", err)
		}
	}
	if err := sf.chain.AddExcludes(defaults.Exclude); err != nil {
		return engine.ScanOptions{}, fmt.Errorf("config exclude: %w", err)
	}

	opts := engine.ScanOptions{
		IncludeHidden: sf.hidden,
		IncludeSystem: sf.system,
	}
	if !sf.chain.Empty() {
		opts.Filter = sf.chain
	}
	if sf.locale != "" {
		tag, err := language.Parse(sf.locale)
		if err != nil {
			return engine.ScanOptions{}, fmt.Errorf("invalid --locale: %w", err)
		}
		opts.Locale = tag
	}
	return opts, nil
}

func applyConfigDefaults(cmd *cobra.Command, defaults config.DefaultsConfig, sf *scanFlags) {
	if !cmd.Flags().Changed("hidden") && defaults.Hidden != nil {
		sf.hidden = *defaults.Hidden
	}
	if !cmd.Flags().Changed("system") && defaults.System != nil {
		sf.system = *defaults.System
	}
	if !cmd.Flags().Changed("locale") && defaults.Locale != nil {
		sf.locale = *defaults.Locale
	}
}
