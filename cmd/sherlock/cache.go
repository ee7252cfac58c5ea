package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jamesainslie/sherlock/pkg/sherlock/cache"
	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
	"github.com/jamesainslie/sherlock/pkg/sherlock/scanner"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the directory listing cache",
	Long: `Commands for managing the sherlock listing cache.

The cache remembers which config files each directory held, keyed on the
directory's modification time, so repeat hunts of the same tree skip
unchanged directories. It lives in $XDG_CACHE_HOME/sherlock/listings.`,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [path]",
	Short: "Clear cached listings",
	Long:  `Remove cached listings for one hunt root, or everything when no path is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCacheClear,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show cache location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), cachePath())
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePathCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cachePath returns the configured cache location.
func cachePath() string {
	if appConfig != nil && appConfig.Cache.Path != "" {
		return appConfig.Cache.Path
	}
	return config.DefaultCachePath()
}

// cacheExists reports whether a cache database has been created.
func cacheExists() (bool, error) {
	_, err := os.Stat(cachePath())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	exists, err := cacheExists()
	if err != nil {
		return err
	}
	if !exists {
		printInfo(out, "Cache is already empty.")
		return nil
	}

	c, err := cache.Open(cachePath())
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer c.Close()

	if len(args) == 0 {
		if err := c.ClearAll(); err != nil {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
		printInfo(out, "Cache cleared.")
		return nil
	}

	root, err := resolveCacheRoot(args[0])
	if err != nil {
		return err
	}
	n, err := c.Len(root)
	if err != nil {
		return err
	}
	if err := c.Clear(root); err != nil {
		return fmt.Errorf("failed to clear cache for %s: %w", root, err)
	}
	printInfo(out, "Cleared %d cached directories under %s.", n, root)
	return nil
}

// resolveCacheRoot turns a user path into the resolved root the cache is
// keyed by. Roots that no longer exist are used as given.
func resolveCacheRoot(p string) (string, error) {
	expanded, err := config.ExpandPath(p)
	if err != nil {
		return "", err
	}
	if root, err := scanner.ResolveRoot(expanded); err == nil {
		return root, nil
	}
	return expanded, nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	path := cachePath()

	exists, err := cacheExists()
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(out, "Cache location: %s\n", path)
		fmt.Fprintln(out, "Cache: empty")
		return nil
	}

	c, err := cache.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer c.Close()

	st, err := c.Stats()
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}

	fmt.Fprintf(out, "Cache location: %s\n", path)
	fmt.Fprintf(out, "Disk usage:     %s\n", humanize.IBytes(uint64(st.Bytes)))
	fmt.Fprintf(out, "Directories:    %s\n", humanize.Comma(int64(st.Entries)))
	fmt.Fprintf(out, "Hunt roots:     %d\n", len(st.Roots))
	for _, r := range st.Roots {
		fmt.Fprintf(out, "  %s\n", r)
	}
	return nil
}
