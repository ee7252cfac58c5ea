package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sherlock [path]",
		Short: "Find the config files hiding in a project",
		Long: `Sherlock hunts a directory tree for configuration files: dotenv files,
package manifests, YAML, TOML, JSON, INI and friends.

The hunt only descends a few levels (3 by default) because config files live
near the top of a project. Results are grouped by depth.

Examples:
  sherlock                       # Investigate the current directory
  sherlock ~/work/api -d 1       # Only the root and its direct children
  sherlock -o json .             # Machine-readable output
  sherlock -p '*.conf' -p Makefile
  sherlock -i                    # Browse findings with a file preview
  sherlock history               # Past investigations`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: bootstrap,
		RunE:              runHunt,
	}
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sherlock/config.yaml)")
	pf.BoolP("verbose", "v", false, "debug output on stderr")
	pf.BoolP("quiet", "q", false, "minimal output")

	f := rootCmd.Flags()
	f.IntP("depth", "d", config.DefaultMaxDepth, "how many directory levels below the root to examine")
	f.StringP("output", "o", "", "output format (pretty, plain, json, jsonl, yaml, toml, paths, null, tsv, csv, markdown, template)")
	f.String("template", "", "Go template used with -o template")
	f.StringArrayP("pattern", "p", nil, "file name pattern to look for (repeatable, replaces the default set)")
	f.StringSliceP("exclude", "e", nil, "glob of relative paths not to enter or report")
	f.String("include", "", "comma-separated globs; only matching relative paths are reported")
	f.String("only", "", "comma-separated patterns; only findings classified by these are reported")
	f.IntP("limit", "l", 0, "maximum number of findings to report (0 = all)")
	f.String("sort", "depth", "sort by depth, path, name, size or age")
	f.BoolP("reverse", "r", false, "reverse the sort order")
	f.String("older-than", "", "only files not modified within this duration (e.g. 30d, 6mo)")
	f.String("newer-than", "", "only files modified within this duration (e.g. 1w)")
	f.IntP("workers", "w", 0, "concurrent directory readers (0 = tune to this machine)")
	f.Bool("no-cache", false, "bypass the directory listing cache")
	f.Bool("no-history", false, "do not record this hunt in the history")
	f.BoolP("interactive", "i", false, "browse findings interactively")

	bindFlags()
}

// bindFlags binds the root command's flags to their viper keys.
func bindFlags() {
	pf := rootCmd.PersistentFlags()
	f := rootCmd.Flags()

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = viper.BindPFlag("max_depth", f.Lookup("depth"))
	_ = viper.BindPFlag("output", f.Lookup("output"))
	_ = viper.BindPFlag("template", f.Lookup("template"))
	_ = viper.BindPFlag("patterns", f.Lookup("pattern"))
	_ = viper.BindPFlag("exclude", f.Lookup("exclude"))
	_ = viper.BindPFlag("include", f.Lookup("include"))
	_ = viper.BindPFlag("only", f.Lookup("only"))
	_ = viper.BindPFlag("limit", f.Lookup("limit"))
	_ = viper.BindPFlag("sort", f.Lookup("sort"))
	_ = viper.BindPFlag("reverse", f.Lookup("reverse"))
	_ = viper.BindPFlag("older_than", f.Lookup("older-than"))
	_ = viper.BindPFlag("newer_than", f.Lookup("newer-than"))
	_ = viper.BindPFlag("workers", f.Lookup("workers"))
	_ = viper.BindPFlag("no_cache", f.Lookup("no-cache"))
	_ = viper.BindPFlag("no_history", f.Lookup("no-history"))
	_ = viper.BindPFlag("interactive", f.Lookup("interactive"))
}

// getVerbose returns true if verbose mode is enabled.
func getVerbose() bool {
	return viper.GetBool("verbose")
}

// getQuiet returns true if quiet mode is enabled.
func getQuiet() bool {
	return viper.GetBool("quiet")
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var (
	debugColor = color.New(color.FgHiBlack)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed, color.Bold)
)

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if getVerbose() && !getQuiet() {
		debugColor.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// printInfo prints a message if quiet mode is not enabled.
func printInfo(w io.Writer, format string, args ...interface{}) {
	if !getQuiet() {
		fmt.Fprintf(w, format+"\n", args...)
	}
}

// printWarning prints a warning to stderr unless quiet.
func printWarning(format string, args ...interface{}) {
	if !getQuiet() {
		warnColor.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
	}
}

// printErrorTo prints an error line to w.
func printErrorTo(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, format+"\n", args...)
}
