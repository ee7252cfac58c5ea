package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
)

// ErrInvalidConfig is returned when a loaded value is out of range.
var ErrInvalidConfig = errors.New("invalid configuration")

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSize    string `mapstructure:"max_size" yaml:"max_size"`
	MaxAge     int    `mapstructure:"max_age" yaml:"max_age"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	Daily      bool   `mapstructure:"daily" yaml:"daily"`
	Compress   bool   `mapstructure:"compress" yaml:"compress"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level      string            `mapstructure:"level" yaml:"level"`
	Path       string            `mapstructure:"path" yaml:"path"`
	Format     string            `mapstructure:"format" yaml:"format"`
	Rotation   RotationConfig    `mapstructure:"rotation" yaml:"rotation"`
	Components map[string]string `mapstructure:"components" yaml:"components"`
}

// CacheConfig configures the directory listing cache.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// HistoryConfig configures the on-disk record of past hunts.
type HistoryConfig struct {
	Enabled       bool   `mapstructure:"enabled" yaml:"enabled"`
	Path          string `mapstructure:"path" yaml:"path"`
	RetentionDays int    `mapstructure:"retention_days" yaml:"retention_days"`
}

// Config is the content of the sherlock config file after defaults and
// SHERLOCK_* environment overrides are applied.
type Config struct {
	DefaultPath string        `mapstructure:"default_path" yaml:"default_path"`
	MaxDepth    int           `mapstructure:"max_depth" yaml:"max_depth"`
	Patterns    []string      `mapstructure:"patterns" yaml:"patterns"`
	Exclude     []string      `mapstructure:"exclude" yaml:"exclude"`
	Workers     int           `mapstructure:"workers" yaml:"workers"`
	Output      string        `mapstructure:"output" yaml:"output"`
	Cache       CacheConfig   `mapstructure:"cache" yaml:"cache"`
	History     HistoryConfig `mapstructure:"history" yaml:"history"`
	Logging     LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// Load reads config.yaml from the config directory (see ConfigDir). A
// missing file is not an error.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is like Load but reads path when it is non-empty. An explicit
// path that does not exist is an error.
func LoadFile(path string) (*Config, error) {
	v, err := newViper(path)
	if err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper returns an isolated viper instance with defaults, environment
// binding and the config file location set up.
func newViper(path string) (*viper.Viper, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	return v, nil
}

// defaults maps every config key to its built-in value.
func defaults() map[string]any {
	return map[string]any{
		"default_path": DefaultPath,
		"max_depth":    DefaultMaxDepth,
		"patterns":     pattern.DefaultPatterns,
		"exclude":      []string{},
		"workers":      0,
		"output":       DefaultOutput,

		"cache.enabled": true,
		"cache.path":    DefaultCachePath(),

		"history.enabled":        true,
		"history.path":           HistoryDir(),
		"history.retention_days": DefaultRetentionDays,

		"logging.level":  "info",
		"logging.path":   "",
		"logging.format": "text",

		"logging.rotation.max_size":    "10MiB",
		"logging.rotation.max_age":     30,
		"logging.rotation.max_backups": 5,
		"logging.rotation.daily":       true,
		"logging.rotation.compress":    false,

		"logging.components": map[string]string{
			"scanner": "info",
			"cache":   "warn",
			"history": "info",
			"tui":     "info",
		},
	}
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.DefaultPath, &c.Cache.Path, &c.History.Path, &c.Logging.Path} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return nil
}

// Validate rejects values no hunt can run with.
func (c *Config) Validate() error {
	var problems []string
	if c.MaxDepth < 0 {
		problems = append(problems, fmt.Sprintf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.Workers < 0 {
		problems = append(problems, fmt.Sprintf("workers must not be negative, got %d", c.Workers))
	}
	if c.History.RetentionDays < 0 {
		problems = append(problems, "history.retention_days must not be negative")
	}
	if _, err := logging.ParseFormat(c.Logging.Format); err != nil {
		problems = append(problems, "logging.format: "+err.Error())
	}
	for i, p := range c.Patterns {
		if p == "" {
			problems = append(problems, fmt.Sprintf("patterns[%d] is empty", i))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// ExpandPath replaces a leading ~ or ~/ with the user's home directory.
// Other paths, including ~user forms, are returned unchanged.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
