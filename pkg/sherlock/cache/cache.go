// Package cache stores per-directory listings between hunts so that
// unchanged directories can be classified without being re-listed. Listings
// live in a Badger database keyed by resolved root and relative path.
package cache

import (
	"errors"
	"fmt"
	"path"

	"github.com/dgraph-io/badger/v4"

	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
)

var logger = logging.Get("cache")

var (
	// ErrNotFound means no listing is cached for the directory.
	ErrNotFound = errors.New("cache entry not found")

	// ErrStale means the cached listing no longer describes the directory.
	ErrStale = errors.New("cache entry stale")
)

// Option configures Open.
type Option func(*badger.Options)

// WithBlockCacheSize sets the in-memory block cache size in bytes. Zero or
// less keeps the Badger default.
func WithBlockCacheSize(n int64) Option {
	return func(o *badger.Options) {
		if n > 0 {
			*o = o.WithBlockCacheSize(n)
		}
	}
}

// Cache is a handle on the listing database. Badger holds a directory lock,
// so only one process can have a given cache open.
type Cache struct {
	db *badger.DB
}

// Open opens or creates the cache at dir.
func Open(dir string, opts ...Option) (*Cache, error) {
	bo := badger.DefaultOptions(dir).WithLogger(nil)
	for _, opt := range opts {
		opt(&bo)
	}

	db, err := badger.Open(bo)
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", dir, err)
	}

	c := &Cache{db: db}
	if err := c.checkSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("check cache schema: %w", err)
	}
	return c, nil
}

// Close releases the database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached listing of relPath if it was recorded with the
// same directory mtime and pattern fingerprint. A directory's mtime changes
// whenever an entry is added, removed or renamed inside it, which is
// everything a name-based listing depends on.
//
// On ErrStale the outdated listing is returned too, so callers can diff its
// subdirectories against a fresh read.
func (c *Cache) Lookup(root, relPath string, mtime int64, fingerprint string) (*Listing, error) {
	l, err := c.get(listingKey(root, relPath))
	if err != nil {
		return nil, err
	}
	if l.Mtime != mtime || l.Fingerprint != fingerprint {
		return l, ErrStale
	}
	return l, nil
}

// Update writes the listings gathered during one hunt of root, keyed by
// relative path, in a single batch.
func (c *Cache) Update(root string, listings map[string]*Listing) error {
	if len(listings) == 0 {
		return nil
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for relPath, l := range listings {
		val, err := l.marshal()
		if err != nil {
			return fmt.Errorf("encode %q: %w", relPath, err)
		}
		if err := wb.Set(listingKey(root, relPath), val); err != nil {
			return err
		}
	}
	return wb.Flush()
}

// Forget removes the listing of relPath and everything cached beneath it.
func (c *Cache) Forget(root, relPath string) error {
	return c.drop(listingKey(root, relPath), belowPrefix(root, relPath))
}

// ForgetRemoved forgets the subdirectories of relPath named in gone.
func (c *Cache) ForgetRemoved(root, relPath string, gone []string) error {
	for _, name := range gone {
		if err := c.Forget(root, path.Join(relPath, name)); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of directories cached for root.
func (c *Cache) Len(root string) (int, error) {
	n := 0
	err := c.scan(rootPrefix(root), func([]byte) { n++ })
	return n, err
}

// Clear removes every listing recorded for root.
func (c *Cache) Clear(root string) error {
	return c.drop(nil, rootPrefix(root))
}

// ClearAll removes every listing.
func (c *Cache) ClearAll() error {
	return c.drop(nil, listingSpace)
}

// Stats describes the contents of the cache.
type Stats struct {
	// Entries is the number of cached directory listings.
	Entries int
	// Roots lists the distinct hunt roots in key order.
	Roots []string
	// Bytes is the on-disk size of the LSM tree and value log.
	Bytes int64
}

// Stats counts listings and reports disk usage.
func (c *Cache) Stats() (Stats, error) {
	var st Stats
	err := c.scan(listingSpace, func(key []byte) {
		root, _, ok := splitKey(key)
		if !ok {
			return
		}
		st.Entries++
		if n := len(st.Roots); n == 0 || st.Roots[n-1] != root {
			st.Roots = append(st.Roots, root)
		}
	})
	if err != nil {
		return Stats{}, err
	}
	lsm, vlog := c.db.Size()
	st.Bytes = lsm + vlog
	return st, nil
}
