// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/latex"
	"github.com/jonathan/resume-tailor/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxLinesToShow bounds the body lines printed per box
	maxLinesToShow = 12
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(title, boxWidth-4), boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, boxWidth-4), boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintJobDescription outputs where the job description came from and its opening lines.
func (p *Printer) PrintJobDescription(jd *ingestion.JobDescription) {
	if jd == nil {
		return
	}

	var sb strings.Builder
	if jd.Metadata != nil {
		sb.WriteString(fmt.Sprintf("Source:   %s\n", jd.Metadata.Source))
		sb.WriteString(fmt.Sprintf("Format:   %s\n", jd.Metadata.Format))
		if jd.Metadata.Platform != "" {
			sb.WriteString(fmt.Sprintf("Platform: %s\n", jd.Metadata.Platform))
		}
	}
	sb.WriteString(fmt.Sprintf("Words:    %d\n\n", len(strings.Fields(jd.Text))))
	sb.WriteString(preview(jd.Text, 6))

	p.printBox("JOB DESCRIPTION", sb.String())
}

// PrintSection outputs the before and after text of one rewritten section.
func (p *Printer) PrintSection(section pipeline.SectionOutcome) {
	if !section.Found {
		p.printBox(strings.ToUpper(section.Title), "Section not found; document left unchanged")
		return
	}

	var sb strings.Builder
	sb.WriteString("Before:\n")
	sb.WriteString(preview(section.Before, maxLinesToShow/2))
	sb.WriteString("\n\nAfter:\n")
	sb.WriteString(preview(section.After, maxLinesToShow))
	if len(section.Warnings) > 0 {
		sb.WriteString("\n")
		for _, w := range section.Warnings {
			sb.WriteString(fmt.Sprintf("\n⚠ %s", w))
		}
	}

	p.printBox(strings.ToUpper(section.Title), sb.String())
}

// PrintResult outputs every section followed by the compile outcome.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintResult(result *pipeline.Result) {
	if result == nil {
		return
	}
	for _, section := range result.Sections {
		p.PrintSection(section)
	}

	if result.DryRun {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %s │\n", pad("DRY RUN: source not saved, nothing compiled", boxWidth-4))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}
	p.PrintCompile(result)
}

// PrintCompile outputs the compile outcome of a run.
func (p *Printer) PrintCompile(result *pipeline.Result) {
	if result == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:      %s\n", result.RunID))
	if result.Succeeded {
		sb.WriteString("Status:   ✅ compiled\n")
		sb.WriteString(fmt.Sprintf("Artifact: %s\n", result.ArtifactPath))
		sb.WriteString(fmt.Sprintf("Pages:    %d", result.PageCount))
		if result.PageCount > 1 {
			sb.WriteString("  ⚠ longer than one page")
		}
		sb.WriteString("\n")
		if result.PublishedURL != "" {
			sb.WriteString(fmt.Sprintf("Published: %s\n", result.PublishedURL))
		}
	} else {
		sb.WriteString(fmt.Sprintf("Status:   ❌ %s\n", pipeline.CompileFailedMessage))
	}
	sb.WriteString(fmt.Sprintf("Log:      %s", result.LogPath))

	p.printBox("COMPILE RESULT", sb.String())
}

// PrintSections outputs the section headers found in a document.
func (p *Printer) PrintSections(doc string, spans []latex.Span) {
	if len(spans) == 0 {
		p.printBox("SECTIONS", "No sections found")
		return
	}

	var sb strings.Builder
	for i, span := range spans {
		body := doc[span.BodyStart:span.BodyEnd]
		marker := " "
		for _, target := range latex.TargetSections {
			if span.Title == target {
				marker = "*"
			}
		}
		sb.WriteString(fmt.Sprintf("%s %-40s %4d lines", marker, span.Title, lineCount(body)))
		if i < len(spans)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox(fmt.Sprintf("SECTIONS (%d, * = rewritten)", len(spans)), sb.String())
}

// preview returns at most n lines of text with a trailing count of the rest.
func preview(text string, n int) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "(empty)"
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= n {
		return text
	}
	return strings.Join(lines[:n], "\n") + fmt.Sprintf("\n... and %d more lines", len(lines)-n)
}

func lineCount(body string) int {
	if body == "" {
		return 0
	}
	return strings.Count(body, "\n") + 1
}

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\t", "    ")
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
