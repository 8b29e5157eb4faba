package ingestion

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fumiama/go-docx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"jd.txt", FormatText},
		{"jd", FormatText},
		{"JD.MD", FormatMarkdown},
		{"jd.markdown", FormatMarkdown},
		{"posting.html", FormatHTML},
		{"posting.htm", FormatHTML},
		{"posting.pdf", FormatPDF},
		{"posting.docx", FormatDOCX},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.path))
		})
	}
}

func TestFromFile_Text(t *testing.T) {
	path := writeFile(t, "jd.txt", "# Job Title\r\n\r\nDescription   here")

	jd, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Job Title\n\nDescription here", jd.Text)
	assert.Equal(t, path, jd.Metadata.Source)
	assert.Equal(t, FormatText, jd.Metadata.Format)
	assert.Len(t, jd.Metadata.Hash, 64)
	assert.NotEmpty(t, jd.Metadata.Timestamp)
}

func TestFromFile_StripsBOM(t *testing.T) {
	path := writeFile(t, "jd.txt", "\xef\xbb\xbfSenior Go Engineer")

	jd, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", jd.Text)
}

func TestFromFile_Markdown(t *testing.T) {
	md := "# Senior Engineer\n\nWe build **payments** infrastructure.\n\n" +
		"## Requirements\n\n- Go\n- Kubernetes\n  - Helm\n\n```\nkubectl apply\n```\n"
	path := writeFile(t, "jd.md", md)

	jd, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, jd.Text, "# Senior Engineer")
	assert.Contains(t, jd.Text, "We build payments infrastructure.")
	assert.NotContains(t, jd.Text, "**")
	assert.Contains(t, jd.Text, "## Requirements")
	assert.Contains(t, jd.Text, "- Go\n- Kubernetes\n  - Helm")
	assert.Contains(t, jd.Text, "kubectl apply")
	assert.Equal(t, FormatMarkdown, jd.Metadata.Format)
}

func TestFromFile_HTML(t *testing.T) {
	html := `<html><body><nav>Home | Jobs</nav>
		<div class="job-description"><h2>Backend Engineer</h2><p>Postgres and Go.</p></div>
		<footer>Copyright</footer></body></html>`
	path := writeFile(t, "posting.html", html)

	jd, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, jd.Text, "Backend Engineer")
	assert.Contains(t, jd.Text, "Postgres and Go.")
	assert.NotContains(t, jd.Text, "Home | Jobs")
	assert.NotContains(t, jd.Text, "Copyright")
}

func TestFromFile_DOCX(t *testing.T) {
	w := docx.New().WithDefaultTheme()
	w.AddParagraph().AddText("Platform Engineer")
	w.AddParagraph().AddText("Terraform and AWS experience.")

	path := filepath.Join(t.TempDir(), "posting.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = w.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	jd, err := FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Platform Engineer\nTerraform and AWS experience.", jd.Text)
	assert.Equal(t, FormatDOCX, jd.Metadata.Format)
}

func TestFromFile_InvalidPDF(t *testing.T) {
	path := writeFile(t, "posting.pdf", "not a pdf")

	_, err := FromFile(path)
	require.Error(t, err)

	var ingestErr *Error
	require.True(t, errors.As(err, &ingestErr))
	assert.Contains(t, err.Error(), "failed to read pdf")
}

func TestFromFile_NotFound(t *testing.T) {
	_, err := FromFile("/nonexistent/file.txt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFromFile_Empty(t *testing.T) {
	path := writeFile(t, "empty.txt", "  \n\n ")

	_, err := FromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no text found")
}

func TestFromFile_HashIsContentBased(t *testing.T) {
	a := writeFile(t, "a.txt", "Content 1")
	b := writeFile(t, "b.txt", "Content 1")
	c := writeFile(t, "c.txt", "Content 2")

	jdA, err := FromFile(a)
	require.NoError(t, err)
	jdB, err := FromFile(b)
	require.NoError(t, err)
	jdC, err := FromFile(c)
	require.NoError(t, err)

	assert.Equal(t, jdA.Metadata.Hash, jdB.Metadata.Hash)
	assert.NotEqual(t, jdA.Metadata.Hash, jdC.Metadata.Hash)
}

func TestMetadata_ToJSON(t *testing.T) {
	m := NewMetadata("text", "https://example.com/job", FormatHTML)
	m.Platform = "greenhouse"

	data, err := m.ToJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"source": "https://example.com/job"`)
	assert.Contains(t, string(data), `"format": "html"`)
	assert.Contains(t, string(data), `"platform": "greenhouse"`)
	assert.NotContains(t, string(data), `"browser"`)
}
