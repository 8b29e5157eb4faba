package ingestion

import (
	"context"
	"log/slog"
	"strings"

	"github.com/jonathan/resume-tailor/internal/fetch"
)

// URLOptions configures job posting retrieval
type URLOptions struct {
	// UseBrowser renders the page in headless Chrome when the plain HTTP
	// response yields too little text (JavaScript job boards).
	UseBrowser bool
	Fetch      *fetch.Options
	Logger     *slog.Logger
}

// FromURL fetches a job posting and extracts its main text using selectors
// for the detected job board.
func FromURL(ctx context.Context, urlStr string, opts URLOptions) (*JobDescription, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	board := fetch.BoardFor(urlStr)
	logger.Debug("fetching job posting", "url", urlStr, "platform", board.Platform)

	result, err := fetch.URL(ctx, urlStr, opts.Fetch)
	if err != nil {
		return nil, &Error{Source: urlStr, Message: "HTTP request failed", Cause: err}
	}

	var textContent string
	format := FormatHTML
	if result.IsHTML() {
		textContent, err = board.Extract(result.HTML)
		if err != nil {
			return nil, &Error{Source: urlStr, Message: "content extraction failed", Cause: err}
		}
	} else {
		textContent = result.HTML
		format = FormatText
	}
	logger.Debug("extracted job posting text", "url", urlStr, "chars", len(textContent))

	usedBrowser := false
	if opts.UseBrowser && fetch.ShouldUseBrowser(textContent) {
		logger.Info("page content too short; rendering with headless browser",
			"url", urlStr, "chars", len(textContent), "min", fetch.MinContentLength)

		browserText, err := fetch.RenderedText(ctx, urlStr, logger)
		if err != nil {
			logger.Warn("browser rendering failed; using HTTP content", "url", urlStr, "error", err)
		} else {
			textContent = browserText
			usedBrowser = true
		}
	}

	cleaned := CleanText(textContent)
	if strings.TrimSpace(cleaned) == "" {
		return nil, &Error{Source: urlStr, Message: "no text found on page"}
	}

	metadata := NewMetadata(cleaned, urlStr, format)
	metadata.Platform = string(board.Platform)
	metadata.Browser = usedBrowser
	return &JobDescription{Text: cleaned, Metadata: metadata}, nil
}
