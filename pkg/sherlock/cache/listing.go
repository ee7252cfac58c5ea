package cache

import (
	"bytes"
	"encoding/gob"
	"slices"
)

// schemaVersion changes whenever the Listing encoding or key layout does.
// A database written under another version is emptied on Open.
const schemaVersion = "3"

// Key layout. Listings sit under 'l', followed by the resolved hunt root, a
// NUL, and the slash-separated path relative to it. The schema marker lives
// outside that range so listing scans never see it.
var (
	listingSpace = []byte{'l'}
	schemaKey    = []byte("!schema")
)

const rootSep = '\x00'

// Listing is the cached view of one directory: enough to resume the walk
// and re-classify the files without reading the directory again.
type Listing struct {
	// Mtime is the directory's modification time, in UnixNano, when it was read.
	Mtime int64

	// Fingerprint identifies the pattern set Matches were computed with.
	Fingerprint string

	Subdirs []string

	// Matches holds the names of child files that qualified.
	Matches []string

	// Files counts the file entries classified in the directory.
	Files int64
}

// Vanished returns the subdirectories l recorded that are missing from
// current. A nil Listing has none.
func (l *Listing) Vanished(current []string) []string {
	if l == nil {
		return nil
	}
	var gone []string
	for _, name := range l.Subdirs {
		if !slices.Contains(current, name) {
			gone = append(gone, name)
		}
	}
	return gone
}

func (l *Listing) marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (l *Listing) unmarshal(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(l)
}

func listingKey(root, relPath string) []byte {
	k := make([]byte, 0, len(listingSpace)+len(root)+1+len(relPath))
	k = append(k, listingSpace...)
	k = append(k, root...)
	k = append(k, rootSep)
	return append(k, relPath...)
}

// rootPrefix matches every listing recorded for root.
func rootPrefix(root string) []byte {
	return listingKey(root, "")
}

// belowPrefix matches the listings strictly beneath relPath.
func belowPrefix(root, relPath string) []byte {
	if relPath == "" {
		return rootPrefix(root)
	}
	return listingKey(root, relPath+"/")
}

// splitKey is the inverse of listingKey. ok is false for keys outside the
// listing space.
func splitKey(key []byte) (root, relPath string, ok bool) {
	rest, found := bytes.CutPrefix(key, listingSpace)
	if !found {
		return "", "", false
	}
	r, p, found := bytes.Cut(rest, []byte{rootSep})
	if !found {
		return "", "", false
	}
	return string(r), string(p), true
}
