package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/klauspost/compress/gzip"

	"github.com/jamesainslie/sherlock/pkg/sherlock/logging"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

var logger = logging.Get("history")

var (
	// ErrNotFound is returned when no entry matches an ID.
	ErrNotFound = errors.New("history entry not found")

	// ErrAmbiguousID is returned when an ID prefix matches several entries.
	ErrAmbiguousID = errors.New("ambiguous history entry id")
)

const (
	// ext names entry documents: gzip-compressed JSON.
	ext = ".json.gz"

	lockName = ".lock"
)

// Manifest is a history directory. Writers in this process serialize on a
// mutex; writers in other processes on a lock file beside the entries.
type Manifest struct {
	dir  string
	mu   sync.Mutex
	lock *flock.Flock
}

// New returns a Manifest over dir. Nothing is created until the first
// write.
func New(dir string) (*Manifest, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &Manifest{dir: dir, lock: flock.New(filepath.Join(dir, lockName))}, nil
}

// Dir returns the directory holding the history entries.
func (m *Manifest) Dir() string { return m.dir }

// EnsureDir creates the history directory if needed.
func (m *Manifest) EnsureDir() error {
	return os.MkdirAll(m.dir, 0o755)
}

// Record stores r under a fresh ID and returns the stored entry.
func (m *Manifest) Record(r *types.HuntResult) (*Entry, error) {
	e := NewEntry(r)
	e.ID = uuid.NewString()
	e.Timestamp = time.Now().UTC()

	if err := m.exclusive(func() error { return m.write(e) }); err != nil {
		return nil, fmt.Errorf("recording hunt: %w", err)
	}
	logger.Debug("hunt recorded", "id", e.ID, "root", e.Root, "findings", e.Summary.Findings)
	return e, nil
}

// List returns entries newest first, at most limit of them when limit is
// positive. Unreadable documents are skipped.
func (m *Manifest) List(limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.ids()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		e, err := m.read(id)
		if err != nil {
			logger.Debug("skipping unreadable history entry", "id", id, "error", err)
			continue
		}
		entries = append(entries, *e)
	}

	slices.SortFunc(entries, func(a, b Entry) int { return b.Timestamp.Compare(a.Timestamp) })
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// Get returns the entry whose ID is id or, failing that, the only one that
// starts with id.
func (m *Manifest) Get(id string) (*Entry, error) {
	if id == "" {
		return nil, errors.New("entry ID cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	ids, err := m.ids()
	if err != nil {
		return nil, err
	}
	if slices.Contains(ids, id) {
		return m.read(id)
	}

	var match string
	for _, candidate := range ids {
		if !strings.HasPrefix(candidate, id) {
			continue
		}
		if match != "" {
			return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
		}
		match = candidate
	}
	if match == "" {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m.read(match)
}

// Cleanup deletes entries recorded more than retentionDays ago and reports
// how many went. Documents that cannot be read are left alone.
func (m *Manifest) Cleanup(retentionDays int) (int, error) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0

	err := m.exclusive(func() error {
		ids, err := m.ids()
		if err != nil {
			return err
		}
		for _, id := range ids {
			e, err := m.read(id)
			if err != nil || !e.Timestamp.Before(cutoff) {
				continue
			}
			if err := os.Remove(m.path(id)); err != nil {
				logger.Warn("failed to remove history entry", "id", id, "error", err)
				continue
			}
			removed++
		}
		return nil
	})
	return removed, err
}

// exclusive runs fn with the directory created and both locks held.
func (m *Manifest) exclusive(fn func() error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.EnsureDir(); err != nil {
		return err
	}
	if err := m.lock.Lock(); err != nil {
		return fmt.Errorf("locking history: %w", err)
	}
	defer func() { _ = m.lock.Unlock() }()

	return fn()
}

func (m *Manifest) path(id string) string {
	return filepath.Join(m.dir, id+ext)
}

// ids lists the entry IDs on disk. A missing directory has none.
func (m *Manifest) ids() ([]string, error) {
	des, err := os.ReadDir(m.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	var ids []string
	for _, de := range des {
		if id, ok := strings.CutSuffix(de.Name(), ext); ok && de.Type().IsRegular() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// write stores e through a temporary file so readers never see a partial
// document.
func (m *Manifest) write(e *Entry) error {
	tmp, err := os.CreateTemp(m.dir, ".entry-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	zw := gzip.NewWriter(tmp)
	zw.Name = e.ID + ".json"
	enc := json.NewEncoder(zw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encoding entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.path(e.ID))
}

func (m *Manifest) read(id string) (*Entry, error) {
	f, err := os.Open(m.path(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	defer zr.Close()

	var e Entry
	if err := json.NewDecoder(zr).Decode(&e); err != nil {
		return nil, fmt.Errorf("entry %s: %w", id, err)
	}
	return &e, nil
}
