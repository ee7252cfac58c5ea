package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
	"github.com/jamesainslie/sherlock/pkg/sherlock/manifest"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past investigations",
	Long: `List the hunts sherlock has recorded, newest first.

Every hunt is stored with its full, unfiltered findings under
$XDG_DATA_HOME/sherlock/history unless --no-history is given.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the findings of a past investigation",
	Long:  `Display a recorded hunt. The ID may be shortened to any unique prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old history entries",
	Long:  `Remove history entries older than history.retention_days.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var (
	historyLimit int
	cleanDays    int
)

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of entries to show")
	historyCleanCmd.Flags().IntVar(&cleanDays, "days", 0, "retention in days (default: history.retention_days)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	m, err := openHistory()
	if err != nil {
		return err
	}

	entries, err := m.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		printInfo(out, "No investigations on file.")
		printInfo(out, "Run 'sherlock [path]' to open a case.")
		return nil
	}

	writeHistoryList(out, entries)
	printInfo(out, "\nUse 'sherlock history show <id>' for details.")
	return nil
}

// writeHistoryList prints one row per entry.
func writeHistoryList(w io.Writer, entries []manifest.Entry) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tDEPTH\tFINDINGS\tROOT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\n",
			e.ShortID(), humanize.Time(e.Timestamp), e.MaxDepth, e.Summary.Findings, e.Root)
	}
	_ = tw.Flush()
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	m, err := openHistory()
	if err != nil {
		return err
	}

	entry, err := m.Get(args[0])
	if err != nil {
		return err
	}

	writeHistoryEntry(cmd.OutOrStdout(), entry)
	return nil
}

// historyShowLimit caps the findings printed by history show.
const historyShowLimit = 100

// writeHistoryEntry prints the details of one entry.
func writeHistoryEntry(w io.Writer, e *manifest.Entry) {
	fmt.Fprintf(w, "Case:      %s\n", e.ID)
	fmt.Fprintf(w, "Opened:    %s (%s)\n", e.Timestamp.Local().Format("2006-01-02 15:04:05 MST"), humanize.Time(e.Timestamp))
	fmt.Fprintf(w, "Root:      %s\n", e.Root)
	fmt.Fprintf(w, "Depth:     %d\n", e.MaxDepth)
	fmt.Fprintf(w, "Scanned:   %s files in %s dirs, %s\n",
		humanize.Comma(e.Summary.FilesScanned), humanize.Comma(e.Summary.DirsScanned), e.Summary.Elapsed.Round(time.Millisecond))
	if e.Summary.Errors > 0 {
		fmt.Fprintf(w, "Skipped:   %d unreadable directories\n", e.Summary.Errors)
	}
	fmt.Fprintf(w, "Patterns:  %s\n", strings.Join(e.Patterns, " "))

	if len(e.Findings) == 0 {
		fmt.Fprintln(w, "\nNo configs found.")
		return
	}

	fmt.Fprintf(w, "\nFindings (%d):\n", len(e.Findings))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEPTH\tPATTERN\tSIZE\tPATH")
	for i, r := range e.Findings {
		if i == historyShowLimit {
			break
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Depth, r.Pattern, types.FormatSize(r.Size), r.Path)
	}
	_ = tw.Flush()

	if n := len(e.Findings) - historyShowLimit; n > 0 {
		fmt.Fprintf(w, "... and %d more\n", n)
	}
}

func runHistoryClean(cmd *cobra.Command, _ []string) error {
	m, err := openHistory()
	if err != nil {
		return err
	}

	days := cleanDays
	if days <= 0 && appConfig != nil {
		days = appConfig.History.RetentionDays
	}
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	removed, err := m.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}

	printInfo(cmd.OutOrStdout(), "Removed %d entries older than %d days.", removed, days)
	return nil
}
