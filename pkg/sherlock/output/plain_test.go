package output

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlainFormatter(t *testing.T) {
	out := render(t, "plain", sampleResult())

	want := strings.Join([]string{
		"🔍 Investigating: .",
		"Looking for config files that are definitely not hiding...",
		"",
		"Found 4 suspicious files:",
		"",
		"📄 .env",
		"📄 package.json",
		"  📄 " + filepath.FromSlash("src/config.yaml"),
		"    📄 " + filepath.FromSlash("deploy/k8s/values.yml"),
		"",
	}, "\n")
	assert.Equal(t, want, out)
}

func TestPlainFormatter_Empty(t *testing.T) {
	out := render(t, "plain", emptyResult())

	assert.True(t, strings.HasPrefix(out, "🔍 Investigating: /work/empty\n"))
	assert.Contains(t, out, "Case closed: No configs found. Are you sure this is a project?\n")
	assert.NotContains(t, out, "Found")
}

func TestPlainFormatter_AllFiltered(t *testing.T) {
	hr := sampleHunt()
	out := render(t, "plain", NewResult(".", hr, nil))

	assert.Contains(t, out, "Case closed: 4 configs found, none passed the filters.")
}
