package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateFormatter_Default(t *testing.T) {
	out := render(t, "template", sampleResult())

	want := ".env\n" +
		"package.json\n" +
		"  src/config.yaml\n" +
		"    deploy/k8s/values.yml\n"
	assert.Equal(t, want, out)
}

func TestTemplateFormatter_Custom(t *testing.T) {
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "fields",
			template: `{{range .Findings}}{{.Name}}={{.Pattern}};{{end}}`,
			want:     ".env=.env*;package.json=*.json;config.yaml=config*;values.yml=*.yml;",
		},
		{
			name:     "bytes and totals",
			template: `{{len .Findings}}/{{.Total}} {{bytes .TotalSize}}`,
			want:     "4/4 6.6 KiB",
		},
		{
			name:     "date",
			template: `{{with index .Findings 0}}{{date .ModTime "2006-01-02"}}{{end}}`,
			want:     "2024-01-15",
		},
		{
			name:     "stats",
			template: `{{.Stats.DirsScanned}} {{.Root}}`,
			want:     "5 /work/app",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewTemplateFormatter(tt.template)
			var buf bytes.Buffer
			require.NoError(t, f.Format(&buf, sampleResult()))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestTemplateFormatter_SetTemplate(t *testing.T) {
	f := NewTemplateFormatter(`a`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, "a", buf.String())

	f.SetTemplate(`{{.Source}}`)
	buf.Reset()
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, ".", buf.String())
}

func TestTemplateFormatter_Invalid(t *testing.T) {
	f := NewTemplateFormatter(`{{range}`)
	var buf bytes.Buffer
	assert.Error(t, f.Format(&buf, sampleResult()))
}

func TestTemplateFormatter_Ago(t *testing.T) {
	f := NewTemplateFormatter(`{{with index .Findings 0}}{{ago .ModTime}}{{end}}`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "ago")
}

func TestTemplateFormatter_ByPattern(t *testing.T) {
	hr := sampleHunt()
	hr.Findings = append(hr.Findings, hr.Findings[0])
	hr.Findings[len(hr.Findings)-1].RelPath = "svc/.env"

	f := NewTemplateFormatter(`{{range byPattern .Findings}}{{.Pattern}}:{{len .Findings}} {{end}}`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, NewResult(".", hr, hr.Findings)))
	assert.Equal(t, ".env*:2 *.json:1 config*:1 *.yml:1 ", buf.String())
}

func TestTemplateFormatter_Join(t *testing.T) {
	f := NewTemplateFormatter(`{{join .Patterns ","}}`)
	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleResult()))
	assert.Equal(t, ".env*,config*,*.json,*.yml", buf.String())
}
