package main

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/sherlock/pkg/sherlock/scanner"
	"github.com/jamesainslie/sherlock/pkg/sherlock/types"
)

func TestHuntPlainOutput(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, ".env", "main.go", "api/config.yaml", "api/handler.go")

	out, err := runCLI(t, root, "--no-cache", "--no-history")
	require.NoError(t, err)

	assert.Contains(t, out, "Investigating: "+root)
	assert.Contains(t, out, "Found 2 suspicious files:")
	assert.Contains(t, out, "📄 .env")
	assert.Contains(t, out, "  📄 "+filepath.FromSlash("api/config.yaml"))
	assert.NotContains(t, out, "main.go")
}

func TestHuntRespectsDepth(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, "settings.ini", "a/b/config.toml")

	out, err := runCLI(t, root, "-d", "1", "-o", "paths", "--no-cache", "--no-history")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, "settings.ini")+"\n", out)
}

func TestHuntJSONOutput(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, "config.json", "deploy/app.yml")

	out, err := runCLI(t, root, "-o", "json", "--no-cache", "--no-history")
	require.NoError(t, err)

	var doc struct {
		Findings []struct {
			Depth   int    `json:"depth"`
			RelPath string `json:"rel_path"`
			Pattern string `json:"pattern"`
		} `json:"findings"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Findings, 2)
	assert.Equal(t, "config.json", doc.Findings[0].RelPath)
	assert.Equal(t, "config*", doc.Findings[0].Pattern)
	assert.Equal(t, 1, doc.Findings[1].Depth)
	assert.Equal(t, "deploy/app.yml", doc.Findings[1].RelPath)
}

func TestHuntCustomPatternsAndOnly(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, "Makefile", "app.conf", ".env")

	out, err := runCLI(t, root, "-p", "Makefile", "-p", "*.conf", "--only", "Makefile", "-o", "paths", "--no-cache", "--no-history")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(resolved, "Makefile")+"\n", out)
}

func TestHuntNoFindings(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, "main.go")

	out, err := runCLI(t, root, "--no-cache", "--no-history")
	require.NoError(t, err)
	assert.Contains(t, out, "Case closed: No configs found.")
}

func TestHuntNegativeDepth(t *testing.T) {
	setupTestEnv(t)

	_, err := runCLI(t, t.TempDir(), "-d", "-1", "--no-cache", "--no-history")
	assert.ErrorIs(t, err, scanner.ErrNegativeDepth)
}

func TestHuntMissingRoot(t *testing.T) {
	setupTestEnv(t)

	_, err := runCLI(t, filepath.Join(t.TempDir(), "nope"), "--no-cache", "--no-history")
	assert.ErrorIs(t, err, types.ErrPathResolution)
}

func TestHuntUnknownFormat(t *testing.T) {
	setupTestEnv(t)

	_, err := runCLI(t, t.TempDir(), "-o", "braille", "--no-cache", "--no-history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "available")
}

func TestHuntRecordsHistory(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, ".env.local", "svc/settings.py")

	_, err := runCLI(t, root, "--no-cache", "-o", "null")
	require.NoError(t, err)

	resetCommandState()
	out, err := runCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "FINDINGS")
	assert.Contains(t, out, "sherlock history show")

	m, err := openHistory()
	require.NoError(t, err)
	entries, err := m.List(0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 2, entries[0].Summary.Findings)

	resetCommandState()
	out, err = runCLI(t, "history", "show", entries[0].ShortID())
	require.NoError(t, err)
	assert.Contains(t, out, "Case:      "+entries[0].ID)
	assert.Contains(t, out, "Findings (2):")
	assert.Contains(t, out, ".env*")
}

func TestHistoryEmpty(t *testing.T) {
	setupTestEnv(t)

	out, err := runCLI(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No investigations on file.")
}

func TestHistoryShowUnknown(t *testing.T) {
	setupTestEnv(t)

	_, err := runCLI(t, "history", "show", "deadbeef")
	assert.Error(t, err)
}

func TestHistoryClean(t *testing.T) {
	setupTestEnv(t)

	out, err := runCLI(t, "history", "clean", "--days", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 0 entries older than 7 days.")
}

func TestHuntPopulatesCache(t *testing.T) {
	setupTestEnv(t)
	root := t.TempDir()
	writeTree(t, root, "config.yaml", "a/b.toml")
	ageTree(t, root)

	out, err := runCLI(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache: empty")

	resetCommandState()
	_, err = runCLI(t, root, "--no-history", "-o", "null")
	require.NoError(t, err)

	resetCommandState()
	out, err = runCLI(t, "cache", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Directories:    2")
	assert.Contains(t, out, "Hunt roots:     1")

	resetCommandState()
	out, err = runCLI(t, root, "--no-history", "-o", "json")
	require.NoError(t, err)
	var doc struct {
		Findings []json.RawMessage `json:"findings"`
		Stats    struct {
			CacheHits   int64 `json:"cache_hits"`
			CacheMisses int64 `json:"cache_misses"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Len(t, doc.Findings, 2)
	assert.Equal(t, int64(2), doc.Stats.CacheHits)
	assert.Zero(t, doc.Stats.CacheMisses)

	resetCommandState()
	out, err = runCLI(t, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared.")
}

func TestResolveOutputFormat(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		explicit   bool
		tty        bool
		want       string
	}{
		{name: "default on terminal", tty: true, want: "pretty"},
		{name: "default when piped", tty: false, want: "plain"},
		{name: "configured json when piped", configured: "json", want: "json"},
		{name: "explicit pretty when piped", configured: "pretty", explicit: true, want: "pretty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)

			cmd := &cobra.Command{}
			cmd.Flags().StringP("output", "o", "", "")
			if tt.explicit {
				require.NoError(t, cmd.Flags().Set("output", tt.configured))
			}
			viper.Set("output", tt.configured)

			assert.Equal(t, tt.want, resolveOutputFormat(cmd, tt.tty))
		})
	}
}
