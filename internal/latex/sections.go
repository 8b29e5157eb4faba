// Package latex locates and replaces named sections in a LaTeX resume.
//
// A section starts at a header of the literal form \section{\textbf{<Title>}}
// and runs until the next \section{\textbf marker or \end{document},
// whichever comes first. Titles are matched as literal text.
package latex

import (
	"strings"
)

const (
	// HeaderPrefix opens every recognized section header.
	HeaderPrefix = `\section{\textbf{`
	// HeaderSuffix closes a section header.
	HeaderSuffix = `}}`
	// BoundaryMarker is the prefix that ends the previous section.
	BoundaryMarker = `\section{\textbf`
	// DocumentEnd terminates the last section.
	DocumentEnd = `\end{document}`
)

// Section titles rewritten by the tailoring pipeline.
const (
	ProfessionalSummary = "Professional Summary"
	TechnicalSkills     = "Technical Skills and Interests"
)

// TargetSections lists the sections the pipeline rewrites, in order.
var TargetSections = []string{ProfessionalSummary, TechnicalSkills}

// Span is the byte range of one section inside a document.
//
//	doc[HeaderStart:HeaderEnd]  the header literal
//	doc[HeaderEnd:BodyStart]    the line break after the header, if any
//	doc[BodyStart:BodyEnd]      the body
//	doc[BodyEnd:End]            the line break before the boundary, if any
type Span struct {
	Title       string
	HeaderStart int
	HeaderEnd   int
	BodyStart   int
	BodyEnd     int
	End         int
}

// Header returns the header literal for a title.
func Header(title string) string {
	return HeaderPrefix + title + HeaderSuffix
}

// FindSection locates the first section with the given title.
// It returns false if the header is missing or if no boundary follows it.
func FindSection(doc, title string) (Span, bool) {
	header := Header(title)
	start := strings.Index(doc, header)
	if start < 0 {
		return Span{}, false
	}
	return spanAt(doc, title, start, start+len(header))
}

// spanAt builds the span for a header occupying doc[start:headerEnd].
func spanAt(doc, title string, start, headerEnd int) (Span, bool) {
	end, ok := boundary(doc, headerEnd)
	if !ok {
		return Span{}, false
	}

	bodyStart := headerEnd + leadingBreak(doc[headerEnd:end])
	bodyEnd := end - trailingBreak(doc[bodyStart:end])

	return Span{
		Title:       title,
		HeaderStart: start,
		HeaderEnd:   headerEnd,
		BodyStart:   bodyStart,
		BodyEnd:     bodyEnd,
		End:         end,
	}, true
}

// boundary returns the offset of the first section marker or document end at or after from.
func boundary(doc string, from int) (int, bool) {
	rest := doc[from:]
	next := strings.Index(rest, BoundaryMarker)
	final := strings.Index(rest, DocumentEnd)

	switch {
	case next < 0 && final < 0:
		return 0, false
	case next < 0:
		return from + final, true
	case final < 0:
		return from + next, true
	default:
		return from + min(next, final), true
	}
}

func leadingBreak(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case strings.HasPrefix(s, "\n"):
		return 1
	}
	return 0
}

func trailingBreak(s string) int {
	switch {
	case strings.HasSuffix(s, "\r\n"):
		return 2
	case strings.HasSuffix(s, "\n"):
		return 1
	}
	return 0
}

// ExtractSection returns the body of the named section, or "" if it is absent.
func ExtractSection(doc, title string) string {
	span, ok := FindSection(doc, title)
	if !ok {
		return ""
	}
	return doc[span.BodyStart:span.BodyEnd]
}

// ReplaceSection rewrites the body of the first section with the given title.
// The header and the line breaks around the body are kept as they were, so
// replacing a body with itself reproduces doc exactly. Text outside the span
// is not touched. A missing section leaves doc unchanged.
func ReplaceSection(doc, title, body string) string {
	span, ok := FindSection(doc, title)
	if !ok {
		return doc
	}

	var sb strings.Builder
	sb.Grow(len(doc) - (span.BodyEnd - span.BodyStart) + len(body))
	sb.WriteString(doc[:span.HeaderStart])
	sb.WriteString(Header(title))
	lead, trail := doc[span.HeaderEnd:span.BodyStart], doc[span.BodyEnd:span.End]
	if span.BodyStart == span.BodyEnd && body != "" {
		// An empty section gives the new body its own lines.
		if lead == "" {
			lead = "\n"
		}
		if trail == "" {
			trail = "\n"
		}
	}
	sb.WriteString(lead)
	sb.WriteString(body)
	sb.WriteString(trail)
	sb.WriteString(doc[span.End:])
	return sb.String()
}

// ListSections returns every well-formed section in document order.
// Headers whose title is not closed by "}}" are skipped.
func ListSections(doc string) []Span {
	var spans []Span
	offset := 0
	for {
		idx := strings.Index(doc[offset:], HeaderPrefix)
		if idx < 0 {
			return spans
		}
		start := offset + idx
		titleStart := start + len(HeaderPrefix)
		closeIdx := strings.Index(doc[titleStart:], HeaderSuffix)
		if closeIdx < 0 {
			return spans
		}
		title := doc[titleStart : titleStart+closeIdx]
		if strings.Contains(title, "\n") {
			offset = titleStart
			continue
		}

		headerEnd := titleStart + closeIdx + len(HeaderSuffix)
		if span, ok := spanAt(doc, title, start, headerEnd); ok {
			spans = append(spans, span)
		}
		offset = headerEnd
	}
}
