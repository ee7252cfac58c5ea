package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingEncoding(t *testing.T) {
	in := &Listing{
		Mtime:       1700000000123456789,
		Fingerprint: "a1b2",
		Subdirs:     []string{"deploy", "src"},
		Matches:     []string{".env", "app.yaml"},
		Files:       12,
	}

	data, err := in.marshal()
	require.NoError(t, err)

	var out Listing
	require.NoError(t, out.unmarshal(data))
	assert.Equal(t, *in, out)
}

func TestListingVanished(t *testing.T) {
	l := &Listing{Subdirs: []string{"a", "b", "c"}}

	assert.Equal(t, []string{"a", "c"}, l.Vanished([]string{"b", "d"}))
	assert.Empty(t, l.Vanished([]string{"a", "b", "c"}))

	var none *Listing
	assert.Nil(t, none.Vanished([]string{"a"}))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "l/srv/app\x00deploy/k8s", string(listingKey("/srv/app", "deploy/k8s")))
	assert.Equal(t, "l/srv/app\x00", string(rootPrefix("/srv/app")))
	assert.Equal(t, "l/r\x00", string(belowPrefix("/r", "")))
	assert.Equal(t, "l/r\x00src/", string(belowPrefix("/r", "src")))

	root, rel, ok := splitKey(listingKey("/srv/app", "deploy/k8s"))
	require.True(t, ok)
	assert.Equal(t, "/srv/app", root)
	assert.Equal(t, "deploy/k8s", rel)

	root, rel, ok = splitKey(listingKey("/srv/app", ""))
	require.True(t, ok)
	assert.Equal(t, "/srv/app", root)
	assert.Empty(t, rel)

	_, _, ok = splitKey(schemaKey)
	assert.False(t, ok)
}

func TestBelowPrefixExcludesSiblings(t *testing.T) {
	// "src2" shares a byte prefix with "src" but is not beneath it.
	assert.NotContains(t, string(listingKey("/r", "src2")), string(belowPrefix("/r", "src")))
}
