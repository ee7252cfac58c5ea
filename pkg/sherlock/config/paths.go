package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigDir returns $XDG_CONFIG_HOME/sherlock, falling back to
// ~/.config/sherlock when the variable is unset. The environment is read on
// every call so tests and --config-less runs see the current value.
func ConfigDir() (string, error) {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".config", AppName), nil
}

// ConfigFile returns the path of the default config file.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns $XDG_DATA_HOME/sherlock, home of the hunt history.
func DataDir() string { return filepath.Join(xdg.DataHome, AppName) }

// StateDir returns $XDG_STATE_HOME/sherlock, home of the log file.
func StateDir() string { return filepath.Join(xdg.StateHome, AppName) }

// CacheDir returns $XDG_CACHE_HOME/sherlock, home of the listing cache.
func CacheDir() string { return filepath.Join(xdg.CacheHome, AppName) }

// DefaultCachePath returns the default listing cache database directory.
func DefaultCachePath() string { return filepath.Join(CacheDir(), "listings") }

// HistoryDir returns the default hunt history directory.
func HistoryDir() string { return filepath.Join(DataDir(), "history") }

// DefaultLogPath returns the default log file path.
func DefaultLogPath() string { return filepath.Join(StateDir(), AppName+".log") }

// EnsureConfigDir creates the config directory.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return ensure("config", dir)
}

// EnsureStateDir creates the state directory.
func EnsureStateDir() error { return ensure("state", StateDir()) }

// EnsureCacheDir creates the cache directory.
func EnsureCacheDir() error { return ensure("cache", CacheDir()) }

func ensure(what, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", what, err)
	}
	return nil
}
