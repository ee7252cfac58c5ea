package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/klauspost/compress/gzip"
)

// backupStamp names rotated files; it sorts chronologically as a string.
const backupStamp = "20060102T150405.000"

// compressedExt is appended to backups when compression is on.
const compressedExt = ".gz"

// RotationConfig configures log file rotation.
type RotationConfig struct {
	// MaxSize is the size in bytes that triggers rotation. Zero uses 10 MiB.
	MaxSize int64

	// MaxAge removes backups older than this many days. Zero keeps them.
	MaxAge int

	// MaxBackups caps the number of backups kept. Zero keeps them all.
	MaxBackups int

	// Daily also rotates when the local date changes.
	Daily bool

	// Compress gzips backups after rotation.
	Compress bool
}

// DefaultRotationConfig returns the rotation used when none is configured.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{
		MaxSize:    10 << 20,
		MaxAge:     30,
		MaxBackups: 5,
		Daily:      true,
	}
}

// RotatingWriter is an io.WriteCloser appending to a log file and moving it
// aside to a timestamped backup when it grows too large or the day changes.
// Several sherlock processes may share one file: writes and rotation are
// serialized through a lock file beside it.
type RotatingWriter struct {
	path string
	cfg  RotationConfig

	mu     sync.Mutex
	lock   *flock.Flock
	file   *os.File
	size   int64
	opened time.Time
}

// NewRotatingWriter opens path for appending, creating its directory, and
// prunes backups left over from earlier runs.
func NewRotatingWriter(path string, cfg RotationConfig) (*RotatingWriter, error) {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultRotationConfig().MaxSize
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	w := &RotatingWriter{path: path, cfg: cfg, lock: flock.New(path + ".lock")}
	if err := w.open(); err != nil {
		return nil, err
	}
	w.prune(time.Now())
	return w, nil
}

// Write appends p, rotating first if p would not fit.
func (w *RotatingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.lock.Lock(); err != nil {
		return 0, fmt.Errorf("acquiring file lock: %w", err)
	}
	defer func() { _ = w.lock.Unlock() }()

	if err := w.follow(); err != nil {
		return 0, err
	}

	now := time.Now()
	if w.due(now, int64(len(p))) {
		if err := w.rotate(now); err != nil {
			return 0, fmt.Errorf("rotating log file: %w", err)
		}
	}

	n, err := w.file.Write(p)
	w.size += int64(n)
	if err != nil {
		return n, fmt.Errorf("writing to log file: %w", err)
	}
	return n, nil
}

// Close syncs and closes the file and releases the lock handle.
func (w *RotatingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	defer func() { _ = w.lock.Close() }()

	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("syncing log file: %w", err)
	}
	return f.Close()
}

// Backups returns the rotated files for this log, newest first.
func (w *RotatingWriter) Backups() ([]string, error) {
	names, err := w.backupNames()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(filepath.Dir(w.path), n)
	}
	return paths, nil
}

func (w *RotatingWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	w.file = f
	w.size = info.Size()
	w.opened = info.ModTime()
	if w.size == 0 {
		w.opened = time.Now()
	}
	return nil
}

// follow reopens the path when the handle is closed or another process
// has rotated the file away.
func (w *RotatingWriter) follow() error {
	if w.file == nil {
		return w.open()
	}
	mine, err := w.file.Stat()
	if err != nil {
		return nil
	}
	if current, err := os.Stat(w.path); err == nil && os.SameFile(mine, current) {
		return nil
	}
	_ = w.file.Close()
	w.file = nil
	return w.open()
}

func (w *RotatingWriter) due(now time.Time, n int64) bool {
	if w.size > 0 && w.size+n > w.cfg.MaxSize {
		return true
	}
	if !w.cfg.Daily || w.size == 0 {
		return false
	}
	y1, m1, d1 := w.opened.Date()
	y2, m2, d2 := now.Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}

func (w *RotatingWriter) rotate(now time.Time) error {
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing current file: %w", err)
	}
	w.file = nil

	backup := w.backupPath(now)
	if err := os.Rename(w.path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("renaming log file: %w", err)
	}
	if err := w.open(); err != nil {
		return err
	}

	if w.cfg.Compress {
		// On failure the uncompressed backup stays in place.
		_ = gzipFile(backup)
	}
	w.prune(now)
	return nil
}

// backupPath returns e.g. sherlock-20240120T150405.000.log for sherlock.log.
func (w *RotatingWriter) backupPath(now time.Time) string {
	stem, ext := w.split()
	return filepath.Join(filepath.Dir(w.path), stem+"-"+now.Format(backupStamp)+ext)
}

func (w *RotatingWriter) split() (stem, ext string) {
	base := filepath.Base(w.path)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}

// backupNames lists backup file names, newest first.
func (w *RotatingWriter) backupNames() ([]string, error) {
	entries, err := os.ReadDir(filepath.Dir(w.path))
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			if _, ok := w.backupTime(e.Name()); ok {
				names = append(names, e.Name())
			}
		}
	}
	slices.Sort(names)
	slices.Reverse(names)
	return names, nil
}

// backupTime parses the rotation time out of a backup name.
func (w *RotatingWriter) backupTime(name string) (time.Time, bool) {
	stem, ext := w.split()
	rest, ok := strings.CutPrefix(name, stem+"-")
	if !ok {
		return time.Time{}, false
	}
	rest = strings.TrimSuffix(rest, compressedExt)
	rest, ok = strings.CutSuffix(rest, ext)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(backupStamp, rest, time.Local)
	return t, err == nil
}

// prune removes backups beyond MaxBackups or older than MaxAge days.
// Failures are ignored; the next rotation tries again.
func (w *RotatingWriter) prune(now time.Time) {
	names, err := w.backupNames()
	if err != nil {
		return
	}

	cutoff := now.AddDate(0, 0, -w.cfg.MaxAge)
	dir := filepath.Dir(w.path)
	for i, name := range names {
		stamp, _ := w.backupTime(name)
		tooMany := w.cfg.MaxBackups > 0 && i >= w.cfg.MaxBackups
		tooOld := w.cfg.MaxAge > 0 && stamp.Before(cutoff)
		if tooMany || tooOld {
			_ = os.Remove(filepath.Join(dir, name))
		}
	}
}

// gzipFile replaces path with path.gz.
func gzipFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.OpenFile(path+compressedExt, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst.Name())
		}
	}()

	zw := gzip.NewWriter(dst)
	if _, err = io.Copy(zw, src); err != nil {
		_ = dst.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		_ = dst.Close()
		return err
	}
	if err = dst.Close(); err != nil {
		return err
	}
	_ = src.Close()
	return os.Remove(path)
}
