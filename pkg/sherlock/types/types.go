// Package types provides core data types for the sherlock config finder.
// It includes the Finding record produced by a hunt, the aggregated hunt
// result, progress snapshots, and the error taxonomy shared by the scanner
// and its callers.
package types

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Size constants for binary (IEC) units.
const (
	KiB int64 = 1024
	MiB int64 = 1024 * KiB
	GiB int64 = 1024 * MiB
	TiB int64 = 1024 * GiB
)

// Finding is a single configuration file discovered during a hunt.
type Finding struct {
	// Depth is the number of path components between the resolved root and
	// the directory containing the file. Files directly in the root have depth 0.
	Depth int `json:"depth"`

	// Path is the absolute path to the file, inside the resolved root.
	Path string `json:"path"`

	// RelPath is the slash-separated path relative to the resolved root.
	RelPath string `json:"rel_path"`

	// Name is the base name of the file.
	Name string `json:"name"`

	// Pattern is the first pattern in the active set that matched Name.
	Pattern string `json:"pattern"`

	// Size is the file size in bytes (zero if the file could not be stat'ed).
	Size int64 `json:"size"`

	// ModTime is the last modification time of the file.
	ModTime time.Time `json:"mod_time"`
}

// HumanSize returns the file size formatted as a human-readable string.
func (f *Finding) HumanSize() string {
	return FormatSize(f.Size)
}

// HuntResult contains the aggregated results of a hunt.
type HuntResult struct {
	// Root is the resolved absolute root directory.
	Root string `json:"root"`

	// MaxDepth is the depth limit the hunt ran with.
	MaxDepth int `json:"max_depth"`

	// Patterns is the raw pattern list used for classification, in order.
	Patterns []string `json:"patterns"`

	// Findings is sorted by depth, then path.
	Findings []Finding `json:"findings"`

	// DirsScanned is the number of directories whose entries were examined.
	DirsScanned int64 `json:"dirs_scanned"`

	// FilesScanned is the number of file entries classified.
	FilesScanned int64 `json:"files_scanned"`

	// Elapsed is the wall time of the hunt.
	Elapsed time.Duration `json:"elapsed"`

	// Errors contains recoverable errors encountered during the walk.
	Errors []HuntError `json:"errors,omitempty"`

	// CacheHits is the number of directories served from the listing cache.
	CacheHits int64 `json:"cache_hits,omitempty"`

	// CacheMisses is the number of directories listed from disk while caching.
	CacheMisses int64 `json:"cache_misses,omitempty"`
}

// HuntError represents a recoverable error encountered during a hunt.
type HuntError struct {
	// Path is the file or directory path where the error occurred.
	Path string `json:"path"`

	// Error is the error message describing what went wrong.
	Error string `json:"error"`
}

// HuntProgress reports real-time hunt progress.
type HuntProgress struct {
	DirsScanned  int64  `json:"dirs_scanned"`
	FilesScanned int64  `json:"files_scanned"`
	Findings     int64  `json:"findings"`
	CurrentPath  string `json:"current_path"`

	// WalkComplete indicates that traversal is finished.
	WalkComplete bool `json:"walk_complete,omitempty"`
}

// ErrPathResolution is the sentinel matched by every PathResolutionError.
var ErrPathResolution = errors.New("path resolution failed")

// PathResolutionError reports that the hunt root could not be resolved to a
// listable directory. It is fatal for the hunt.
type PathResolutionError struct {
	// Path is the root path as given by the caller.
	Path string

	// Op names the resolution step that failed (abs, evalsymlinks, stat, readdir).
	Op string

	// Err is the underlying error, if any.
	Err error
}

func (e *PathResolutionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("resolve %s: %s", e.Path, e.Op)
	}
	return fmt.Sprintf("resolve %s: %s: %v", e.Path, e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathResolutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrPathResolution.
func (e *PathResolutionError) Is(target error) bool {
	return target == ErrPathResolution
}

// ErrNotDirectory is wrapped by PathResolutionError when the root is a file.
var ErrNotDirectory = errors.New("not a directory")

// SubtreeReadError reports a directory that could not be listed. The hunt
// skips the subtree and continues.
type SubtreeReadError struct {
	Path string
	Err  error
}

func (e *SubtreeReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *SubtreeReadError) Unwrap() error {
	return e.Err
}

// CompareFindings orders findings by depth ascending, then by path string.
func CompareFindings(a, b Finding) int {
	if c := cmp.Compare(a.Depth, b.Depth); c != 0 {
		return c
	}
	return cmp.Compare(a.Path, b.Path)
}

// SortFindings sorts findings in place by (depth, path).
func SortFindings(findings []Finding) {
	slices.SortFunc(findings, CompareFindings)
}

// ErrInvalidSize indicates that a size string could not be parsed.
var ErrInvalidSize = errors.New("invalid size")

// ParseSize reads sizes such as "512", "10MB", "1.5 GiB" or "100k". K, M,
// G and T are decimal and their "i" forms binary, as go-humanize reads them.
func ParseSize(s string) (int64, error) {
	n, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil || n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	return int64(n), nil
}

// FormatSize converts a size in bytes to a human-readable string using
// binary (IEC) units.
func FormatSize(bytes int64) string {
	return humanize.IBytes(uint64(bytes))
}
