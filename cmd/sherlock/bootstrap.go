package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sherlock/pkg/sherlock/config"
	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// defaultLogMaxSize applies when logging.rotation.max_size is empty or invalid.
const defaultLogMaxSize = 10 * types.MiB

// appConfig is the configuration loaded by bootstrap.
var appConfig *config.Config

// bootstrap is the PersistentPreRunE hook. It loads the configuration, makes
// it the default for every flag-bound key, creates the XDG directories and
// starts logging.
func bootstrap(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg
	applyConfigDefaults(cfg)

	return initializeLogging(cmd, cfg)
}

// applyConfigDefaults lets flags override the file while the file overrides
// built-in defaults.
func applyConfigDefaults(cfg *config.Config) {
	viper.SetDefault("default_path", cfg.DefaultPath)
	viper.SetDefault("max_depth", cfg.MaxDepth)
	viper.SetDefault("patterns", cfg.Patterns)
	viper.SetDefault("exclude", cfg.Exclude)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("no_cache", !cfg.Cache.Enabled)
	viper.SetDefault("no_history", !cfg.History.Enabled)
}

// initializeLogging ensures the XDG directories exist and starts file logging.
// Interactive hunts keep the console quiet so the TUI owns the screen.
func initializeLogging(cmd *cobra.Command, cfg *config.Config) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := config.EnsureStateDir(); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := config.EnsureCacheDir(); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	logCfg := logging.Config{
		Level:      cfg.Logging.Level,
		Path:       cfg.Logging.Path,
		Format:     cfg.Logging.Format,
		Rotation:   parseRotationConfig(cfg.Logging.Rotation),
		Components: cfg.Logging.Components,
	}
	if logCfg.Path == "" {
		logCfg.Path = config.DefaultLogPath()
	}

	switch {
	case interactiveHunt(cmd):
		logCfg.TUIMode = true
	case getVerbose():
		logCfg.Level = "debug"
		logCfg.ConsoleLevel = "debug"
	}

	if err := logging.Init(logCfg); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}
	return nil
}

// parseRotationConfig converts the config file's rotation settings.
func parseRotationConfig(rc config.RotationConfig) logging.RotationConfig {
	maxSize := defaultLogMaxSize
	if rc.MaxSize != "" {
		if n, err := types.ParseSize(rc.MaxSize); err == nil && n > 0 {
			maxSize = n
		}
	}
	return logging.RotationConfig{
		MaxSize:    maxSize,
		MaxAge:     rc.MaxAge,
		MaxBackups: rc.MaxBackups,
		Daily:      rc.Daily,
		Compress:   rc.Compress,
	}
}

// interactiveHunt reports whether cmd is the root hunt command running with
// -i. Subcommands never start the TUI even though they inherit the key.
func interactiveHunt(cmd *cobra.Command) bool {
	return cmd != nil && !cmd.HasParent() && viper.GetBool("interactive")
}
