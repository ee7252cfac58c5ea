package logging

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(t *testing.T, cfg RotationConfig) (*RotatingWriter, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sherlock.log")
	w, err := NewRotatingWriter(path, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w, path
}

func TestDefaultRotationConfig(t *testing.T) {
	cfg := DefaultRotationConfig()
	assert.Equal(t, int64(10*1024*1024), cfg.MaxSize)
	assert.Equal(t, 30, cfg.MaxAge)
	assert.Equal(t, 5, cfg.MaxBackups)
	assert.True(t, cfg.Daily)
	assert.False(t, cfg.Compress)
}

func TestNewRotatingWriterCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "sherlock.log")
	w, err := NewRotatingWriter(path, RotationConfig{})
	require.NoError(t, err)
	defer w.Close()

	assert.FileExists(t, path)
	assert.Equal(t, DefaultRotationConfig().MaxSize, w.cfg.MaxSize)
}

func TestRotatingWriterAppends(t *testing.T) {
	w, path := newTestWriter(t, RotationConfig{MaxSize: 1024})

	for _, line := range []string{"one\n", "two\n"} {
		n, err := w.Write([]byte(line))
		require.NoError(t, err)
		assert.Equal(t, len(line), n)
	}
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n", string(data))
}

func TestRotatingWriterRotatesBySize(t *testing.T) {
	w, path := newTestWriter(t, RotationConfig{MaxSize: 10})

	_, err := w.Write([]byte("12345678\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("abcdefgh\n"))
	require.NoError(t, err)

	backups, err := w.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)

	old, err := os.ReadFile(backups[0])
	require.NoError(t, err)
	assert.Equal(t, "12345678\n", string(old))

	current, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh\n", string(current))
}

func TestRotatingWriterOversizedFirstWrite(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{MaxSize: 4})

	_, err := w.Write([]byte("far too long\n"))
	require.NoError(t, err)

	backups, err := w.Backups()
	require.NoError(t, err)
	assert.Empty(t, backups, "an empty file is never rotated")
}

func TestRotatingWriterBackupNames(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{})
	at := time.Date(2024, 1, 20, 15, 4, 5, 0, time.Local)

	name := filepath.Base(w.backupPath(at))
	assert.Equal(t, "sherlock-20240120T150405.000.log", name)

	got, ok := w.backupTime(name)
	require.True(t, ok)
	assert.True(t, got.Equal(at))

	_, ok = w.backupTime(name + ".gz")
	assert.True(t, ok)

	for _, other := range []string{"sherlock.log", "sherlock.log.lock", "other-20240120T150405.000.log", "sherlock-yesterday.log"} {
		_, ok := w.backupTime(other)
		assert.False(t, ok, other)
	}
}

func TestRotatingWriterPrunesByCount(t *testing.T) {
	w, path := newTestWriter(t, RotationConfig{MaxBackups: 2})
	dir := filepath.Dir(path)

	now := time.Now()
	for i := 1; i <= 4; i++ {
		p := w.backupPath(now.Add(-time.Duration(i) * time.Hour))
		require.NoError(t, os.WriteFile(p, []byte("old"), 0o644))
	}

	w.prune(now)

	backups, err := w.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 2)
	assert.Equal(t, w.backupPath(now.Add(-time.Hour)), backups[0])
	assert.Equal(t, w.backupPath(now.Add(-2*time.Hour)), backups[1])
	assert.FileExists(t, filepath.Join(dir, "sherlock.log"))
}

func TestRotatingWriterPrunesByAge(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{MaxAge: 7})

	now := time.Now()
	fresh := w.backupPath(now.AddDate(0, 0, -1))
	stale := w.backupPath(now.AddDate(0, 0, -8)) + compressedExt
	require.NoError(t, os.WriteFile(fresh, nil, 0o644))
	require.NoError(t, os.WriteFile(stale, nil, 0o644))

	w.prune(now)

	assert.FileExists(t, fresh)
	assert.NoFileExists(t, stale)
}

func TestRotatingWriterCompressesBackups(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{MaxSize: 8, Compress: true})

	_, err := w.Write([]byte("first!\n"))
	require.NoError(t, err)
	_, err = w.Write([]byte("second\n"))
	require.NoError(t, err)

	backups, err := w.Backups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	require.True(t, strings.HasSuffix(backups[0], ".log.gz"), backups[0])

	f, err := os.Open(backups[0])
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "first!\n", string(data))
}

func TestRotatingWriterDailyRotation(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{Daily: true})
	_, err := w.Write([]byte("today\n"))
	require.NoError(t, err)

	w.opened = w.opened.AddDate(0, 0, -1)
	assert.True(t, w.due(time.Now(), 1))

	w.cfg.Daily = false
	assert.False(t, w.due(time.Now(), 1))
}

func TestRotatingWriterFollowsExternalRotation(t *testing.T) {
	w, path := newTestWriter(t, RotationConfig{})

	_, err := w.Write([]byte("before\n"))
	require.NoError(t, err)

	// Another process moved the file away.
	require.NoError(t, os.Rename(path, path+".moved"))

	_, err = w.Write([]byte("after\n"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after\n", string(data))
}

func TestRotatingWriterConcurrentWrites(t *testing.T) {
	w, path := newTestWriter(t, RotationConfig{MaxSize: 1 << 20})

	const writers, lines = 8, 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < lines; j++ {
				_, _ = w.Write([]byte("line\n"))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, writers*lines, strings.Count(string(data), "line\n"))
	assert.FileExists(t, path+".lock")
}

func TestRotatingWriterCloseTwice(t *testing.T) {
	w, _ := newTestWriter(t, RotationConfig{})
	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
