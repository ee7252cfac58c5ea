package scanner

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"

	"github.com/jamesainslie/sherlock/pkg/sherlock/filter"
	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

var logger = logging.Get("scanner")

// Scanner performs a depth-bounded hunt for configuration files.
type Scanner struct {
	opts Options

	dirsScanned  atomic.Int64
	filesScanned atomic.Int64
	found        atomic.Int64
	cacheHits    atomic.Int64
	cacheMisses  atomic.Int64

	// currentPath is the directory currently being examined (for progress).
	currentPath atomic.Value

	errors   []types.HuntError
	errorsMu sync.Mutex

	findings   []types.Finding
	findingsMu sync.Mutex

	// lastProgress tracks when we last reported progress to avoid excessive callbacks.
	lastProgress atomic.Int64

	exclude filter.Globs

	// root is the resolved absolute path being hunted.
	root string

	walkComplete atomic.Bool
}

// New creates a new Scanner with the given options.
// Options are validated when Scan runs.
func New(opts Options) *Scanner {
	s := &Scanner{opts: opts}
	s.currentPath.Store("")
	return s
}

// FindConfigs hunts root down to maxDepth with the default pattern set and
// returns the findings ordered by depth, then path.
func FindConfigs(ctx context.Context, root string, maxDepth int) ([]types.Finding, error) {
	opts := DefaultOptions()
	opts.Root = root
	opts.MaxDepth = maxDepth

	result, err := New(opts).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return result.Findings, nil
}

// Scan performs the hunt and returns results.
// It blocks until complete or the context is cancelled.
func (s *Scanner) Scan(ctx context.Context) (*types.HuntResult, error) {
	startTime := time.Now()

	if err := s.opts.Validate(); err != nil {
		return nil, err
	}
	exclude, err := filter.CompileGlobs(s.opts.Exclude)
	if err != nil {
		return nil, err
	}
	s.exclude = exclude

	root, err := ResolveRoot(s.opts.Root)
	if err != nil {
		return nil, err
	}
	s.root = root

	logger.Debug("hunt started", "root", root, "max_depth", s.opts.MaxDepth,
		"patterns", s.opts.Patterns.Len(), "cached", s.opts.Cache != nil)

	s.currentPath.Store(root)
	s.reportProgressForce()

	if s.opts.Cache != nil {
		err = s.walkCached(ctx)
	} else {
		err = s.walk(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.walkComplete.Store(true)
	s.reportProgressForce()

	findings := s.findings
	if findings == nil {
		findings = []types.Finding{}
	}
	types.SortFindings(findings)

	result := &types.HuntResult{
		Root:         root,
		MaxDepth:     s.opts.MaxDepth,
		Patterns:     s.opts.Patterns.Strings(),
		Findings:     findings,
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		Elapsed:      time.Since(startTime),
		Errors:       s.errors,
		CacheHits:    s.cacheHits.Load(),
		CacheMisses:  s.cacheMisses.Load(),
	}

	logger.Debug("hunt finished", "root", root, "findings", len(findings),
		"dirs", result.DirsScanned, "files", result.FilesScanned,
		"errors", len(result.Errors), "elapsed", result.Elapsed)

	return result, nil
}

// walk traverses the tree with fastwalk. Directory order is not
// deterministic, so findings are sorted afterwards.
func (s *Scanner) walk(ctx context.Context) error {
	conf := fastwalk.Config{
		Follow:     false,
		NumWorkers: s.opts.Workers,
	}

	err := fastwalk.Walk(&conf, s.root, s.walkCallback(ctx))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return ctx.Err()
}

// walkCallback returns the callback function for fastwalk.Walk.
// It is called concurrently from multiple goroutines.
func (s *Scanner) walkCallback(ctx context.Context) fs.WalkDirFunc {
	return func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		relPath := s.relPath(path)

		if err != nil {
			if relPath == "" {
				return &types.PathResolutionError{Path: s.opts.Root, Op: "readdir", Err: err}
			}
			s.addSubtreeError(path, err)
			return nil
		}

		if d.IsDir() {
			return s.enterDirectory(path, relPath, d.Name())
		}

		if !isFileEntry(path, d) {
			return nil
		}
		s.filesScanned.Add(1)
		if s.isExcluded(relPath, d.Name()) {
			return nil
		}

		s.classify(path, relPath, d.Name(), d.Info)
		return nil
	}
}

// enterDirectory decides whether a directory is examined. Directories deeper
// than MaxDepth are pruned before they are listed.
func (s *Scanner) enterDirectory(path, relPath, name string) error {
	if relPath != "" {
		if pathDepth(relPath) > s.opts.MaxDepth {
			return fastwalk.SkipDir
		}
		if s.isExcluded(relPath, name) {
			return fastwalk.SkipDir
		}
	}

	s.dirsScanned.Add(1)
	s.currentPath.Store(path)
	s.reportProgress()
	return nil
}

// classify records a finding if name qualifies. stat supplies size and
// modification time; a stat failure is recorded and leaves them zero.
func (s *Scanner) classify(path, relPath, name string, stat func() (fs.FileInfo, error)) {
	p, ok := s.opts.Patterns.FirstMatch(name)
	if !ok {
		return
	}

	f := types.Finding{
		Depth:   pathDepth(parentRel(relPath)),
		Path:    filepath.Clean(path),
		RelPath: relPath,
		Name:    name,
		Pattern: p.Raw,
	}

	info, err := stat()
	if err != nil {
		s.addError(path, err)
	} else {
		f.Size = info.Size()
		f.ModTime = info.ModTime()
	}

	s.found.Add(1)
	s.findingsMu.Lock()
	s.findings = append(s.findings, f)
	s.findingsMu.Unlock()
}

// isFileEntry reports whether an entry counts as a file: a regular file, or
// a symbolic link that does not resolve to a directory.
func isFileEntry(path string, d fs.DirEntry) bool {
	typ := d.Type()
	if typ.IsRegular() {
		return true
	}
	if typ&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		// Dangling link.
		return true
	}
	return !info.IsDir()
}

// relPath returns the slash-separated path of p relative to the root.
func (s *Scanner) relPath(p string) string {
	rel, err := filepath.Rel(s.root, p)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// pathDepth returns the number of components in a slash-separated relative path.
func pathDepth(relPath string) int {
	if relPath == "" {
		return 0
	}
	return strings.Count(relPath, "/") + 1
}

// parentRel returns the relative path of the directory containing relPath.
func parentRel(relPath string) string {
	i := strings.LastIndexByte(relPath, '/')
	if i < 0 {
		return ""
	}
	return relPath[:i]
}

func (s *Scanner) isExcluded(relPath, name string) bool {
	return s.exclude.Match(relPath, name)
}

// addSubtreeError records a directory that could not be read.
func (s *Scanner) addSubtreeError(path string, err error) {
	subtreeErr := &types.SubtreeReadError{Path: path, Err: err}
	logger.Warn("skipping unreadable directory", "path", path, "error", err)
	s.addError(path, subtreeErr)
}

// addError adds an error to the error list thread-safely.
func (s *Scanner) addError(path string, err error) {
	s.errorsMu.Lock()
	s.errors = append(s.errors, types.HuntError{
		Path:  path,
		Error: err.Error(),
	})
	s.errorsMu.Unlock()
}

// reportProgress calls the progress callback if configured.
// Throttles calls to avoid excessive overhead.
func (s *Scanner) reportProgress() {
	if s.opts.OnProgress == nil {
		return
	}

	now := time.Now().UnixMilli()
	last := s.lastProgress.Load()
	if now-last < 10 {
		return
	}
	if !s.lastProgress.CompareAndSwap(last, now) {
		return
	}

	s.sendProgress()
}

// reportProgressForce calls the progress callback immediately, bypassing throttle.
func (s *Scanner) reportProgressForce() {
	if s.opts.OnProgress == nil {
		return
	}
	s.lastProgress.Store(time.Now().UnixMilli())
	s.sendProgress()
}

func (s *Scanner) sendProgress() {
	currentPath, _ := s.currentPath.Load().(string)

	s.opts.OnProgress(types.HuntProgress{
		DirsScanned:  s.dirsScanned.Load(),
		FilesScanned: s.filesScanned.Load(),
		Findings:     s.found.Load(),
		CurrentPath:  currentPath,
		WalkComplete: s.walkComplete.Load(),
	})
}

// ResolveRoot turns root into an absolute, symlink-free path and verifies it
// names a directory that can be listed. Symlinks are followed before any
// ".." that comes after them is applied, so "link/.." is the parent of the
// link's target.
func ResolveRoot(root string) (string, error) {
	abs, err := absNoClean(root)
	if err != nil {
		return "", &types.PathResolutionError{Path: root, Op: "abs", Err: err}
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", &types.PathResolutionError{Path: root, Op: "evalsymlinks", Err: err}
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return "", &types.PathResolutionError{Path: root, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		return "", &types.PathResolutionError{Path: root, Op: "stat", Err: types.ErrNotDirectory}
	}

	dir, err := os.Open(resolved)
	if err != nil {
		return "", &types.PathResolutionError{Path: root, Op: "readdir", Err: err}
	}
	defer func() { _ = dir.Close() }()

	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return "", &types.PathResolutionError{Path: root, Op: "readdir", Err: err}
	}

	return resolved, nil
}

// absNoClean makes root absolute without cleaning it. filepath.Abs would
// fold "link/.." away as text before the link is seen.
func absNoClean(root string) (string, error) {
	if filepath.IsAbs(root) || filepath.VolumeName(root) != "" {
		return filepath.Abs(root)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return wd + string(filepath.Separator) + root, nil
}
