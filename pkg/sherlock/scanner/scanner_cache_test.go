package scanner_test

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jamesainslie/sherlock/pkg/sherlock/cache"
	"github.com/jamesainslie/sherlock/pkg/sherlock/pattern"
	"github.com/jamesainslie/sherlock/pkg/sherlock/scanner"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

func createProjectTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{
		".env",
		"readme.md",
		"src/config.json",
		"src/deep/deeper/nested.yaml",
		"deploy/k8s/values.yaml",
	} {
		path := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	backdateDirs(t, root)
	return root
}

// backdateDirs moves directory mtimes into the past so fresh listings are
// eligible for caching.
func backdateDirs(t *testing.T, root string) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return os.Chtimes(path, past, past)
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
}

func openCache(t *testing.T) *cache.Cache {
	t.Helper()
	c, err := cache.Open(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func relPaths(findings []types.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.RelPath
	}
	return out
}

func sameFindings(t *testing.T, got, want []types.Finding) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", relPaths(got), relPaths(want))
	}
	for i := range got {
		if got[i].Depth != want[i].Depth || got[i].Path != want[i].Path || got[i].Pattern != want[i].Pattern {
			t.Errorf("finding %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func hunt(t *testing.T, root string, c *cache.Cache, patterns *pattern.Set) *types.HuntResult {
	t.Helper()
	result, err := scanner.New(scanner.Options{
		Root:     root,
		MaxDepth: 3,
		Patterns: patterns,
		Cache:    c,
	}).Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	return result
}

func TestScannerWithCache(t *testing.T) {
	root := createProjectTree(t)
	c := openCache(t)

	uncached := hunt(t, root, nil, nil)

	first := hunt(t, root, c, nil)
	sameFindings(t, first.Findings, uncached.Findings)
	if first.CacheHits != 0 {
		t.Errorf("first hunt CacheHits = %d, want 0", first.CacheHits)
	}
	if first.CacheMisses != first.DirsScanned {
		t.Errorf("first hunt CacheMisses = %d, want %d", first.CacheMisses, first.DirsScanned)
	}

	second := hunt(t, root, c, nil)
	sameFindings(t, second.Findings, uncached.Findings)
	if second.CacheMisses != 0 {
		t.Errorf("second hunt CacheMisses = %d, want 0", second.CacheMisses)
	}
	if second.CacheHits != second.DirsScanned {
		t.Errorf("second hunt CacheHits = %d, want %d", second.CacheHits, second.DirsScanned)
	}
	if second.FilesScanned != uncached.FilesScanned {
		t.Errorf("FilesScanned = %d, want %d", second.FilesScanned, uncached.FilesScanned)
	}
}

func TestScannerCacheDetectsChanges(t *testing.T) {
	root := createProjectTree(t)
	c := openCache(t)

	_ = hunt(t, root, c, nil)

	if err := os.WriteFile(filepath.Join(root, "src", "app.ini"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(filepath.Join(root, "deploy")); err != nil {
		t.Fatal(err)
	}

	result := hunt(t, root, c, nil)
	sameFindings(t, result.Findings, hunt(t, root, nil, nil).Findings)

	want := []string{".env", "src/app.ini", "src/config.json", "src/deep/deeper/nested.yaml"}
	got := relPaths(result.Findings)
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("finding %d = %q, want %q", i, got[i], want[i])
		}
	}

	// root and src changed; deploy was forgotten.
	n, err := c.Len(result.Root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("cached directories = %d, want 4", n)
	}
}

func TestScannerCachePatternChange(t *testing.T) {
	root := createProjectTree(t)
	c := openCache(t)

	_ = hunt(t, root, c, nil)

	result := hunt(t, root, c, pattern.MustNewSet("*.md"))
	if result.CacheHits != 0 {
		t.Errorf("CacheHits = %d, want 0 after pattern change", result.CacheHits)
	}
	if len(result.Findings) != 1 || result.Findings[0].RelPath != "readme.md" {
		t.Errorf("unexpected findings: %v", relPaths(result.Findings))
	}
}

func TestScannerCacheDepthLimit(t *testing.T) {
	root := createProjectTree(t)
	c := openCache(t)

	// Populate with a shallow hunt, then go deeper.
	shallow, err := scanner.New(scanner.Options{Root: root, MaxDepth: 1, Cache: c}).Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(shallow.Findings) != 2 {
		t.Errorf("shallow findings = %v", relPaths(shallow.Findings))
	}

	deep := hunt(t, root, c, nil)
	sameFindings(t, deep.Findings, hunt(t, root, nil, nil).Findings)
}
