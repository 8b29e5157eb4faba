package ingestion

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

// Format is the detected input format of a job description
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

// DetectFormat picks a format from the file extension. Unknown extensions
// are read as plain text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm":
		return FormatHTML
	case ".pdf":
		return FormatPDF
	case ".docx":
		return FormatDOCX
	default:
		return FormatText
	}
}

// FromFile reads a job description file and returns its cleaned text.
func FromFile(path string) (*JobDescription, error) {
	format := DetectFormat(path)

	var raw string
	var err error
	switch format {
	case FormatPDF:
		raw, err = readPDF(path)
	case FormatDOCX:
		raw, err = readDOCX(path)
	default:
		var content []byte
		content, err = os.ReadFile(path)
		if err == nil {
			raw, err = decode(format, content)
		}
	}
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Source: path, Message: "file not found", Cause: err}
		}
		return nil, &Error{Source: path, Message: "failed to read " + string(format), Cause: err}
	}

	cleaned := CleanText(raw)
	if cleaned == "" {
		return nil, &Error{Source: path, Message: "no text found"}
	}
	return &JobDescription{Text: cleaned, Metadata: NewMetadata(cleaned, path, format)}, nil
}

// decode converts in-memory content of a text-based format to plain text.
func decode(format Format, content []byte) (string, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	switch format {
	case FormatMarkdown:
		return markdownToText(content), nil
	case FormatHTML:
		return fetch.ExtractMainText(string(content), fetch.JobPostingSelectors())
	default:
		return string(content), nil
	}
}
