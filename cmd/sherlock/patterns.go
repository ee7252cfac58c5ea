package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
)

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the active file name patterns",
	Long: `List the patterns a hunt classifies file names with, in the order they
are checked. The first pattern that matches names the finding.

The active set comes from --pattern flags, then the config file, then the
built-in defaults.`,
	Args: cobra.NoArgs,
	RunE: runPatterns,
}

var patternsTestCmd = &cobra.Command{
	Use:   "test <name>...",
	Short: "Show which pattern, if any, classifies each file name",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPatternsTest,
}

func init() {
	patternsCmd.PersistentFlags().StringArrayP("pattern", "p", nil, "pattern to use instead of the configured set (repeatable)")
	patternsCmd.AddCommand(patternsTestCmd)
	rootCmd.AddCommand(patternsCmd)
}

// patternSetFor returns the set named by the command's --pattern flags, or
// the configured set.
func patternSetFor(cmd *cobra.Command) (*pattern.Set, error) {
	raws, err := cmd.Flags().GetStringArray("pattern")
	if err != nil {
		return nil, err
	}
	if len(raws) > 0 {
		return pattern.NewSet(raws...)
	}
	return buildPatternSet()
}

func runPatterns(cmd *cobra.Command, _ []string) error {
	set, err := patternSetFor(cmd)
	if err != nil {
		return err
	}
	writePatternList(cmd.OutOrStdout(), set)
	return nil
}

// writePatternList prints each pattern with its kind.
func writePatternList(w io.Writer, set *pattern.Set) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPATTERN\tKIND")
	for i, p := range set.Patterns() {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i+1, p.Raw, p.Kind)
	}
	_ = tw.Flush()
}

func runPatternsTest(cmd *cobra.Command, args []string) error {
	set, err := patternSetFor(cmd)
	if err != nil {
		return err
	}
	writePatternTest(cmd.OutOrStdout(), set, args)
	return nil
}

// writePatternTest prints the classifying pattern for each name.
func writePatternTest(w io.Writer, set *pattern.Set, names []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, name := range names {
		if p, ok := set.FirstMatch(name); ok {
			fmt.Fprintf(tw, "%s\tsuspect\t%s\n", name, p.Raw)
		} else {
			fmt.Fprintf(tw, "%s\tinnocent\t\n", name)
		}
	}
	_ = tw.Flush()
}
