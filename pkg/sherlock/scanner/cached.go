package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/jamesainslie/sherlock/pkg/sherlock/cache"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

// racyWindow is how long a directory must stay unmodified before its listing
// is cached. Changes made within one timestamp tick of a listing leave the
// mtime unchanged and would otherwise go unnoticed.
const racyWindow = 2 * time.Second

// walkCached traverses the tree sequentially, reusing cached listings of
// directories whose modification time and pattern fingerprint are unchanged.
func (s *Scanner) walkCached(ctx context.Context) error {
	fingerprint := s.opts.Patterns.Fingerprint()
	fresh := make(map[string]*cache.Listing)

	err := s.visitCached(ctx, "", fingerprint, fresh)

	// Listings gathered before a failure are still valid.
	if updateErr := s.opts.Cache.Update(s.root, fresh); updateErr != nil {
		logger.Warn("cache update failed", "root", s.root, "error", updateErr)
		s.addError(s.root, updateErr)
	}

	return err
}

// visitCached examines one directory and recurses into its subdirectories
// while they stay within MaxDepth.
func (s *Scanner) visitCached(ctx context.Context, relPath, fingerprint string, fresh map[string]*cache.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := filepath.Join(s.root, filepath.FromSlash(relPath))
	depth := pathDepth(relPath)

	entry, err := s.loadListing(dir, relPath, fingerprint, fresh)
	if err != nil {
		if relPath == "" {
			return err
		}
		s.addSubtreeError(dir, err)
		return nil
	}

	s.dirsScanned.Add(1)
	s.currentPath.Store(dir)
	s.reportProgress()

	for _, name := range entry.Matches {
		fileRel := path.Join(relPath, name)
		if s.isExcluded(fileRel, name) {
			continue
		}
		filePath := filepath.Join(dir, name)
		info, statErr := os.Lstat(filePath)
		if errors.Is(statErr, fs.ErrNotExist) {
			continue
		}
		s.classify(filePath, fileRel, name, func() (fs.FileInfo, error) { return info, statErr })
	}
	s.filesScanned.Add(entry.Files)

	if depth+1 > s.opts.MaxDepth {
		return nil
	}

	for _, name := range entry.Subdirs {
		childRel := path.Join(relPath, name)
		if s.isExcluded(childRel, name) {
			continue
		}
		if err := s.visitCached(ctx, childRel, fingerprint, fresh); err != nil {
			return err
		}
	}
	return nil
}

// loadListing returns the directory's listing from the cache when it is
// still fresh, and lists it from disk otherwise.
func (s *Scanner) loadListing(dir, relPath, fingerprint string, fresh map[string]*cache.Listing) (*cache.Listing, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, s.wrapRootErr(relPath, "stat", err)
	}
	mtime := info.ModTime().UnixNano()

	cached, err := s.opts.Cache.Lookup(s.root, relPath, mtime, fingerprint)
	if err == nil {
		s.cacheHits.Add(1)
		return cached, nil
	}
	if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrStale) {
		logger.Debug("cache lookup failed", "path", dir, "error", err)
	}

	entry, listErr := s.listDir(dir)
	if listErr != nil {
		return nil, s.wrapRootErr(relPath, "readdir", listErr)
	}
	entry.Mtime = mtime
	entry.Fingerprint = fingerprint
	if time.Since(info.ModTime()) >= racyWindow {
		fresh[relPath] = entry
	}
	s.cacheMisses.Add(1)

	if errors.Is(err, cache.ErrStale) {
		if removed := cached.Vanished(entry.Subdirs); len(removed) > 0 {
			if forgetErr := s.opts.Cache.ForgetRemoved(s.root, relPath, removed); forgetErr != nil {
				logger.Debug("cache forget failed", "path", dir, "error", forgetErr)
			}
		}
	}

	return entry, nil
}

// listDir reads a directory and splits its entries into subdirectories and
// qualifying file names.
func (s *Scanner) listDir(dir string) (*cache.Listing, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entry := &cache.Listing{}
	for _, d := range entries {
		if d.IsDir() {
			entry.Subdirs = append(entry.Subdirs, d.Name())
			continue
		}
		if !isFileEntry(filepath.Join(dir, d.Name()), d) {
			continue
		}
		entry.Files++
		if s.opts.Patterns.Qualifies(d.Name()) {
			entry.Matches = append(entry.Matches, d.Name())
		}
	}
	return entry, nil
}

// wrapRootErr converts a failure on the root directory into a fatal
// resolution error. Failures below the root are returned unchanged.
func (s *Scanner) wrapRootErr(relPath, op string, err error) error {
	if relPath != "" {
		return err
	}
	return &types.PathResolutionError{Path: s.opts.Root, Op: op, Err: err}
}
