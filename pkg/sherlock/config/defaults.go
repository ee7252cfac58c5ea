// Package config provides configuration management for sherlock.
package config

// Default configuration values for sherlock.
const (
	// DefaultPath is the default directory to hunt when none is specified.
	DefaultPath = "."

	// DefaultMaxDepth is how many directory levels below the root are examined.
	DefaultMaxDepth = 3

	// DefaultWorkers is the number of concurrent directory readers used when
	// no tuning is applied.
	DefaultWorkers = 1

	// DefaultOutput is the default output format.
	DefaultOutput = "pretty"

	// DefaultConfigDir is the default configuration directory path.
	DefaultConfigDir = "~/.config/sherlock"

	// DefaultRetentionDays is the default number of days to retain hunt history.
	DefaultRetentionDays = 30

	// AppName names the XDG subdirectories and the environment prefix.
	AppName = "sherlock"
)

// DefaultExclusions contains suggested exclude globs written into a fresh
// config file. They are not applied unless configured.
var DefaultExclusions = []string{
	".git",
	"node_modules",
	"vendor",
}
