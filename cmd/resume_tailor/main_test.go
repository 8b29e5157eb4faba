package main

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/pipeline"
)

const sampleResume = "\\documentclass{article}\n\\begin{document}\n" +
	"\\section{\\textbf{Professional Summary}}\nBackend engineer with Go experience.\n" +
	"\\section{\\textbf{Technical Skills and Interests}}\nGo, SQL\n" +
	"\\section{\\textbf{Experience}}\nAcme\n" +
	"\\end{document}\n"

// execute runs the root command in-process with fresh flag values.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	sectionsTex, sectionsTitle = "", ""
	compileTex, compileOut, compileLog = "", "", ""
	configPath, verbose = "", false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeResume(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.tex")
	require.NoError(t, os.WriteFile(path, []byte(sampleResume), 0o644))
	return path
}

func TestSectionsCommand_List(t *testing.T) {
	out, err := execute(t, "sections", "--tex", writeResume(t))
	require.NoError(t, err)

	assert.Contains(t, out, "SECTIONS (3")
	assert.Contains(t, out, "* Professional Summary")
	assert.Contains(t, out, "* Technical Skills and Interests")
	assert.Contains(t, out, "  Experience")
}

func TestSectionsCommand_Title(t *testing.T) {
	out, err := execute(t, "sections", "--tex", writeResume(t), "--title", "Technical Skills and Interests")
	require.NoError(t, err)
	assert.Equal(t, "Go, SQL\n", out)
}

func TestSectionsCommand_MissingTitle(t *testing.T) {
	_, err := execute(t, "sections", "--tex", writeResume(t), "--title", "Education")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `section "Education" not found`)
}

func TestSectionsCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "sections", "--tex", filepath.Join(t.TempDir(), "nope.tex"))
	assert.Error(t, err)
}

func TestCompileCommand(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake pdflatex requires a POSIX shell")
	}
	dir := t.TempDir()
	binary := filepath.Join(dir, "pdflatex")
	script := `#!/bin/sh
for arg in "$@"; do
  case "$arg" in
    -output-directory=*) outdir="${arg#-output-directory=}" ;;
    -jobname=*) job="${arg#-jobname=}" ;;
  esac
done
echo "fake pdfTeX"
printf '%%PDF-1.4\n' > "$outdir/$job.pdf"
`
	require.NoError(t, os.WriteFile(binary, []byte(script), 0o755))
	t.Setenv("PDFLATEX_PATH", binary)

	outPDF := filepath.Join(dir, "out", "cv.pdf")
	logPath := filepath.Join(dir, "out", "compile.log")
	out, err := execute(t, "compile", "--tex", writeResume(t), "--out", outPDF, "--log", logPath)
	require.NoError(t, err)

	assert.Contains(t, out, "cv.pdf")
	assert.FileExists(t, outPDF)
	log, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(log), "fake pdfTeX"))
}

func TestCompileCommand_Failure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake pdflatex requires a POSIX shell")
	}
	dir := t.TempDir()
	binary := filepath.Join(dir, "pdflatex")
	require.NoError(t, os.WriteFile(binary, []byte("#!/bin/sh\necho '! Emergency stop.'\nexit 1\n"), 0o755))
	t.Setenv("PDFLATEX_PATH", binary)

	outPDF := filepath.Join(dir, "cv.pdf")
	_, err := execute(t, "compile", "--tex", writeResume(t), "--out", outPDF, "--log", filepath.Join(dir, "compile.log"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compilation failed")
	assert.NoFileExists(t, outPDF)
}

func TestJobSourceValidate(t *testing.T) {
	tests := []struct {
		name    string
		source  jobSource
		wantErr string
	}{
		{name: "path", source: jobSource{Path: "jd.txt"}},
		{name: "url", source: jobSource{URL: "https://jobs.example.com/1"}},
		{name: "text", source: jobSource{Text: "Go engineer"}},
		{name: "none", source: jobSource{Text: "   "}, wantErr: "required"},
		{name: "two", source: jobSource{Path: "jd.txt", Text: "Go"}, wantErr: "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	cb := progressPrinter(&buf)
	cb(pipeline.ProgressEvent{Step: pipeline.StepLoad, Message: "Loading resume"})
	cb(pipeline.ProgressEvent{Step: "other", Message: "free-form"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "[1/7] Loading resume", lines[0])
	assert.Equal(t, "free-form", lines[1])
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, &pipeline.Result{
		RunID:        uuid.New(),
		Succeeded:    true,
		ArtifactPath: "/tmp/out/resume_targeted.pdf",
		PageCount:    1,
		Sections: []pipeline.SectionOutcome{
			{Title: "Professional Summary", Found: true, Warnings: []string{"summary has 70 words"}},
			{Title: "Technical Skills and Interests"},
		},
	})
	out := buf.String()

	assert.Contains(t, out, "Professional Summary")
	assert.Contains(t, out, "rewritten")
	assert.Contains(t, out, "⚠ summary has 70 words")
	assert.Contains(t, out, "not found, unchanged")
	assert.Contains(t, out, "Resume compiled: /tmp/out/resume_targeted.pdf (1 page(s))")
}

func TestTailorCommand_RequiresCredential(t *testing.T) {
	for _, key := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(key, "")
	}
	tailorTex, tailorJob, tailorJobURL, tailorJobText = "", "", "", ""

	_, err := execute(t, "tailor", "--tex", writeResume(t), "--job-text", "Go engineer")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY is not set")
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
