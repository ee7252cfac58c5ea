package cache

import (
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "cache"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLookupMiss(t *testing.T) {
	c := openTestCache(t)

	_, err := c.Lookup("/r", "", 1, "fp")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupFreshAndStale(t *testing.T) {
	c := openTestCache(t)

	require.NoError(t, c.Update("/r", map[string]*Listing{
		"": {Mtime: 100, Fingerprint: "fp", Subdirs: []string{"src"}, Matches: []string{".env"}},
	}))

	got, err := c.Lookup("/r", "", 100, "fp")
	require.NoError(t, err)
	assert.Equal(t, []string{".env"}, got.Matches)

	tests := []struct {
		name  string
		mtime int64
		fp    string
	}{
		{"mtime changed", 101, "fp"},
		{"patterns changed", 100, "other"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stale, err := c.Lookup("/r", "", tt.mtime, tt.fp)
			require.ErrorIs(t, err, ErrStale)
			require.NotNil(t, stale)
			assert.Equal(t, []string{"src"}, stale.Subdirs)
		})
	}
}

func TestUpdateEmptyIsNoop(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Update("/r", nil))

	n, err := c.Len("/r")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestForgetRemoved(t *testing.T) {
	c := openTestCache(t)

	listings := map[string]*Listing{
		"":          {Mtime: 1, Subdirs: []string{"src", "src2"}},
		"src":       {Mtime: 2, Subdirs: []string{"deep"}},
		"src/deep":  {Mtime: 3},
		"src2":      {Mtime: 4},
		"src2/more": {Mtime: 5},
	}
	require.NoError(t, c.Update("/r", listings))

	gone := listings[""].Vanished([]string{"src2"})
	require.Equal(t, []string{"src"}, gone)
	require.NoError(t, c.ForgetRemoved("/r", "", gone))

	n, err := c.Len("/r")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "root, src2 and src2/more remain")

	_, err = c.Lookup("/r", "src/deep", 3, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClear(t *testing.T) {
	c := openTestCache(t)
	require.NoError(t, c.Update("/a", map[string]*Listing{"": {Mtime: 1}}))
	require.NoError(t, c.Update("/b", map[string]*Listing{"": {Mtime: 1}}))

	require.NoError(t, c.Clear("/a"))
	n, _ := c.Len("/a")
	assert.Zero(t, n)
	n, _ = c.Len("/b")
	assert.Equal(t, 1, n)

	require.NoError(t, c.ClearAll())
	n, _ = c.Len("/b")
	assert.Zero(t, n)
}

func TestStats(t *testing.T) {
	c := openTestCache(t, WithBlockCacheSize(8<<20))
	require.NoError(t, c.Update("/a", map[string]*Listing{"": {Mtime: 1}, "x": {Mtime: 2}}))
	require.NoError(t, c.Update("/b", map[string]*Listing{"": {Mtime: 1}}))

	st, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Entries)
	assert.Equal(t, []string{"/a", "/b"}, st.Roots)
	assert.GreaterOrEqual(t, st.Bytes, int64(0))
}

func TestSchemaChangeDiscardsListings(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.Update("/r", map[string]*Listing{"": {Mtime: 1}}))
	require.NoError(t, c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(schemaKey, []byte("0"))
	}))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Len("/r")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestReopenKeepsListings(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")

	c, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, c.Update("/r", map[string]*Listing{"": {Mtime: 1}}))
	require.NoError(t, c.Close())

	c, err = Open(dir)
	require.NoError(t, err)
	defer c.Close()

	n, err := c.Len("/r")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
