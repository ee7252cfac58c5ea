package output

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestJSONFormatter(t *testing.T) {
	out := render(t, "json", sampleResult())

	var doc document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Findings, 4)
	assert.Equal(t, ".env", doc.Findings[0].RelPath)
	assert.Equal(t, ".env*", doc.Findings[0].Pattern)
	assert.Equal(t, "2.0 KiB", doc.Findings[1].SizeHuman)
	assert.Equal(t, 2, doc.Findings[3].Depth)
	assert.True(t, doc.Findings[0].ModTime.Equal(fixedTime))

	assert.Equal(t, int64(5), doc.Stats.DirsScanned)
	assert.Equal(t, "1.5s", doc.Stats.Elapsed)

	assert.Equal(t, ".", doc.Meta.Source)
	assert.Equal(t, "/work/app", doc.Meta.Root)
	assert.Equal(t, 4, doc.Meta.Total)
	assert.Equal(t, 4, doc.Meta.Shown)
	assert.Len(t, doc.Meta.Warnings, 1)

	assert.True(t, strings.HasPrefix(out, "{\n  \""), "output should be indented")
}

func TestJSONFormatter_Empty(t *testing.T) {
	out := render(t, "json", emptyResult())

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &raw))

	assert.Equal(t, []any{}, raw["findings"], "findings should be an empty array, not null")
	meta := raw["meta"].(map[string]any)
	assert.Equal(t, []any{}, meta["patterns"])
	assert.NotContains(t, meta, "warnings")
}

func TestJSONLFormatter(t *testing.T) {
	out := render(t, "jsonl", sampleResult())

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)

	for _, line := range lines {
		var f docFinding
		require.NoError(t, json.Unmarshal([]byte(line), &f))
		assert.NotEmpty(t, f.Path)
	}

	var last docFinding
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "deploy/k8s/values.yml", last.RelPath)
}

func TestJSONLFormatter_Empty(t *testing.T) {
	assert.Empty(t, render(t, "jsonl", emptyResult()))
}

func TestYAMLFormatter(t *testing.T) {
	out := render(t, "yaml", sampleResult())

	var doc document
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Findings, 4)
	assert.Equal(t, "src/config.yaml", doc.Findings[2].RelPath)
	assert.Equal(t, "config*", doc.Findings[2].Pattern)
	assert.Equal(t, int64(17), doc.Stats.FilesScanned)
	assert.Equal(t, 3, doc.Meta.MaxDepth)
	assert.Contains(t, out, "findings:\n  - depth: 0\n")
}

func TestTOMLFormatter(t *testing.T) {
	out := render(t, "toml", sampleResult())

	var doc document
	require.NoError(t, toml.Unmarshal([]byte(out), &doc))

	require.Len(t, doc.Findings, 4)
	assert.Equal(t, "/work/app/deploy/k8s/values.yml", doc.Findings[3].Path)
	assert.Equal(t, int64(4096), doc.Findings[3].Size)
	assert.Equal(t, "/work/app", doc.Meta.Root)
	assert.Equal(t, []string{".env*", "config*", "*.json", "*.yml"}, doc.Meta.Patterns)
	assert.Contains(t, out, "[[findings]]")
}

func TestTOMLFormatter_Empty(t *testing.T) {
	out := render(t, "toml", emptyResult())

	var doc document
	require.NoError(t, toml.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Findings)
	assert.Equal(t, "/work/empty", doc.Meta.Root)
}
