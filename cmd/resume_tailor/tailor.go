package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor",
	Short: "Rewrite the summary and skills sections for a job and compile the resume",
	Long: `Rewrites the target sections of a LaTeX resume for a job description, saves the
source in place and compiles it with pdflatex.

The job description comes from exactly one of --job (text, Markdown, HTML, PDF or
DOCX file), --job-url or --job-text.`,
	RunE: runTailor,
}

var (
	tailorTex      string
	tailorJob      string
	tailorJobURL   string
	tailorJobText  string
	tailorOut      string
	tailorLog      string
	tailorSections []string
	tailorPublish  bool
	tailorDryRun   bool
	tailorBrowser  bool
)

func init() {
	tailorCmd.Flags().StringVar(&tailorTex, "tex", "", "Path to the LaTeX resume (required)")
	tailorCmd.Flags().StringVarP(&tailorJob, "job", "j", "", "Path to a job description file")
	tailorCmd.Flags().StringVar(&tailorJobURL, "job-url", "", "URL of a job posting")
	tailorCmd.Flags().StringVar(&tailorJobText, "job-text", "", "Job description text")
	tailorCmd.Flags().StringVarP(&tailorOut, "out", "o", "", "Output PDF path (defaults to OUTPUT_PDF)")
	tailorCmd.Flags().StringVar(&tailorLog, "log", "", "Compile log path (defaults to COMPILE_LOG)")
	tailorCmd.Flags().StringSliceVar(&tailorSections, "section", nil, "Section title to rewrite (repeatable; defaults to summary and skills)")
	tailorCmd.Flags().BoolVar(&tailorPublish, "publish", false, "Upload the compiled PDF to PUBLISH_URL")
	tailorCmd.Flags().BoolVar(&tailorDryRun, "dry-run", false, "Rewrite and print sections without saving or compiling")
	tailorCmd.Flags().BoolVar(&tailorBrowser, "browser", false, "Render --job-url with headless Chrome when the static page is too thin")

	_ = tailorCmd.MarkFlagRequired("tex")
	tailorCmd.MarkFlagsMutuallyExclusive("job", "job-url", "job-text")
	tailorCmd.MarkFlagsOneRequired("job", "job-url", "job-text")

	rootCmd.AddCommand(tailorCmd)
}

// jobSource names the single job description input of a command
type jobSource struct {
	Path string
	URL  string
	Text string
}

func (s jobSource) validate() error {
	set := 0
	for _, v := range []string{s.Path, s.URL, s.Text} {
		if strings.TrimSpace(v) != "" {
			set++
		}
	}
	switch set {
	case 0:
		return errors.New("one of --job, --job-url or --job-text is required")
	case 1:
		return nil
	default:
		return errors.New("--job, --job-url and --job-text are mutually exclusive; provide only one")
	}
}

// load resolves the job description through the ingestion package.
func (s jobSource) load(ctx context.Context, useBrowser bool, a *app) (*ingestion.JobDescription, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	switch {
	case s.URL != "":
		return ingestion.FromURL(ctx, s.URL, ingestion.URLOptions{UseBrowser: useBrowser, Logger: a.logger})
	case s.Path != "":
		return ingestion.FromFile(s.Path)
	default:
		return ingestion.FromText(s.Text)
	}
}

func runTailor(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source := jobSource{Path: tailorJob, URL: tailorJobURL, Text: tailorJobText}
	if err := source.validate(); err != nil {
		return err
	}

	a, err := buildApp(ctx, newLogger(), tailorPublish)
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	jd, err := source.load(ctx, tailorBrowser || a.cfg.UseBrowser, a)
	if err != nil {
		return fmt.Errorf("failed to load job description: %w", err)
	}
	if verbose {
		printer.PrintJobDescription(jd)
	}

	req := pipeline.Request{
		TexPath:        tailorTex,
		JobDescription: jd.Text,
		JobSource:      jd.Metadata.Source,
		Sections:       tailorSections,
		OutputPath:     firstNonEmpty(tailorOut, a.cfg.OutputPDF),
		LogPath:        firstNonEmpty(tailorLog, a.cfg.CompileLog),
		Publish:        tailorPublish,
		DryRun:         tailorDryRun,
		OnProgress:     progressPrinter(out),
	}

	result, err := a.tailorer.Tailor(ctx, req)
	if err != nil {
		return err
	}

	if verbose || result.DryRun {
		printer.PrintResult(result)
	} else {
		printSummary(out, result)
	}

	if result.DryRun {
		if verbose {
			_, _ = fmt.Fprintf(out, "\n%s\n", result.Document)
		}
		return nil
	}
	if !result.Succeeded {
		return fmt.Errorf("%s: %s", pipeline.CompileFailedMessage, result.LogPath)
	}
	return nil
}

// progressPrinter writes one line per pipeline step.
func progressPrinter(out io.Writer) pipeline.ProgressCallback {
	return func(event pipeline.ProgressEvent) {
		n := pipeline.StepNumber(event.Step)
		if n > 0 {
			_, _ = fmt.Fprintf(out, "[%d/%d] %s\n", n, len(pipeline.Steps), event.Message)
			return
		}
		_, _ = fmt.Fprintf(out, "%s\n", event.Message)
	}
}

func printSummary(out io.Writer, result *pipeline.Result) {
	for _, s := range result.Sections {
		status := "rewritten"
		if !s.Found {
			status = "not found, unchanged"
		}
		_, _ = fmt.Fprintf(out, "  %-32s %s\n", s.Title, status)
		for _, w := range s.Warnings {
			_, _ = fmt.Fprintf(out, "    ⚠ %s\n", w)
		}
	}
	if result.Succeeded {
		abs, err := filepath.Abs(result.ArtifactPath)
		if err != nil {
			abs = result.ArtifactPath
		}
		_, _ = fmt.Fprintf(out, "Resume compiled: %s (%d page(s))\n", abs, result.PageCount)
		if result.PublishedURL != "" {
			_, _ = fmt.Fprintf(out, "Published: %s\n", result.PublishedURL)
		}
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
