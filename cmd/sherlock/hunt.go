package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sherlock/cmd/sherlock/tui"
	"github.com/jamesainslie/sherlock/pkg/sherlock/cache"
	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/manifest"
	"github.com/jamesainslie/sherlock/pkg/sherlock/output"
	"github.com/jamesainslie/sherlock/pkg/sherlock/scanner"
	"github.com/jamesainslie/sherlock/pkg/sherlock/tuner"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

var logger = logging.Get("cli")

// runHunt is the root command: hunt, filter, record and report.
func runHunt(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	source := viper.GetString("default_path")
	if len(args) > 0 {
		source = args[0]
	}
	root, err := config.ExpandPath(source)
	if err != nil {
		return err
	}

	depth := viper.GetInt("max_depth")
	if depth < 0 {
		return fmt.Errorf("%w: %d", scanner.ErrNegativeDepth, depth)
	}

	patterns, err := buildPatternSet()
	if err != nil {
		return err
	}

	flt, err := buildFilter()
	if err != nil {
		return err
	}

	format := resolveOutputFormat(cmd, isTerminal(os.Stdout))
	formatter, err := newFormatter(format, viper.GetString("template"))
	if err != nil {
		return err
	}

	tuned := tuneHunt(viper.GetInt("workers"))
	opts := scanner.Options{
		Root:     root,
		MaxDepth: depth,
		Patterns: patterns,
		Exclude:  viper.GetStringSlice("exclude"),
		Workers:  tuned.Workers,
	}

	if !viper.GetBool("no_cache") {
		if c := openCache(tuned.CacheBlockBytes); c != nil {
			defer c.Close()
			opts.Cache = c
		}
	}

	printVerbose("hunting %s to depth %d with %d patterns, %d workers", root, depth, patterns.Len(), opts.Workers)

	interactive := viper.GetBool("interactive")
	var result *types.HuntResult
	if interactive {
		result, err = tui.Run(ctx, tui.Options{Source: source, Scan: opts, Filter: flt})
	} else {
		result, err = scanner.New(opts).Scan(ctx)
	}
	if err != nil {
		return err
	}

	res := output.NewResult(source, result, flt.Apply(result.Findings))
	if !viper.GetBool("no_history") {
		res.HistoryID = recordHistory(result)
	}

	if interactive {
		return nil
	}

	var buf bytes.Buffer
	if err := formatter.Format(&buf, res); err != nil {
		return fmt.Errorf("formatting %s output: %w", format, err)
	}
	if _, err := cmd.OutOrStdout().Write(buf.Bytes()); err != nil {
		return err
	}

	// The pretty report lists skipped subtrees itself.
	if format != "pretty" {
		for _, w := range res.Warnings {
			printWarning("skipped %s", w)
		}
	}
	return nil
}

// resolveOutputFormat picks the output format. An explicit -o always wins;
// otherwise the configured format is used, except that pretty output falls
// back to plain when stdout is not a terminal.
func resolveOutputFormat(cmd *cobra.Command, tty bool) string {
	format := viper.GetString("output")
	if format == "" {
		format = config.DefaultOutput
	}
	if cmd.Flags().Changed("output") {
		return format
	}
	if format == "pretty" && !tty {
		return "plain"
	}
	return format
}

// newFormatter looks up a registered formatter and applies the template.
func newFormatter(format, tmpl string) (output.Formatter, error) {
	formatter, err := output.Get(format)
	if err != nil {
		return nil, err
	}
	if tf, ok := formatter.(*output.TemplateFormatter); ok && tmpl != "" {
		tf.SetTemplate(tmpl)
	}
	return formatter, nil
}

// tuneHunt sizes the walk for this machine. A positive override pins the
// worker count.
func tuneHunt(override int) tuner.Plan {
	res, err := tuner.Detect()
	if err != nil {
		logger.Warn("resource detection failed", "error", err)
		return tuner.Fallback(override)
	}
	return tuner.PlanFor(res, override)
}

// openCache opens the listing cache. A cache that cannot be opened, for
// example because another hunt holds it, only costs speed.
func openCache(blockBytes int64) *cache.Cache {
	path := config.DefaultCachePath()
	if appConfig != nil && appConfig.Cache.Path != "" {
		path = appConfig.Cache.Path
	}

	c, err := cache.Open(path, cache.WithBlockCacheSize(blockBytes))
	if err != nil {
		logger.Warn("cache unavailable", "path", path, "error", err)
		printVerbose("cache unavailable: %v", err)
		return nil
	}
	return c
}

// recordHistory stores the unfiltered hunt and returns its ID. Failures are
// reported but never fail the hunt.
func recordHistory(result *types.HuntResult) string {
	m, err := openHistory()
	if err != nil {
		printWarning("history not recorded: %v", err)
		return ""
	}
	entry, err := m.Record(result)
	if err != nil {
		printWarning("history not recorded: %v", err)
		return ""
	}
	return entry.ID
}

// openHistory opens the history directory from the loaded configuration.
func openHistory() (*manifest.Manifest, error) {
	dir := config.HistoryDir()
	if appConfig != nil && appConfig.History.Path != "" {
		dir = appConfig.History.Path
	}
	return manifest.New(dir)
}
