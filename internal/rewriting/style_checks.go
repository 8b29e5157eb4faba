package rewriting

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	// SummaryMinWords is the lower bound of the summary word band
	SummaryMinWords = 35
	// SummaryMaxWords is the upper bound of the summary word band
	SummaryMaxWords = 55
)

// SectionKind selects the section-specific rules applied to a rewrite.
type SectionKind string

const (
	KindSummary SectionKind = "summary"
	KindSkills  SectionKind = "skills"
	KindOther   SectionKind = "other"
)

// KindOf classifies a section title.
func KindOf(title string) SectionKind {
	lower := strings.ToLower(title)
	switch {
	case strings.Contains(lower, "summary"):
		return KindSummary
	case strings.Contains(lower, "skill"):
		return KindSkills
	default:
		return KindOther
	}
}

var (
	latexCommandPattern = regexp.MustCompile(`\\[a-zA-Z]+\*?`)
	wordPattern         = regexp.MustCompile(`[\p{L}\p{N}]`)
	experiencePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b\d+\+?\s*(years?|yrs?)\b`),
		regexp.MustCompile(`(?i)\byears? of experience\b`),
		regexp.MustCompile(`(?i)\b(junior|mid|senior|expert)[- ]level\b`),
	}
)

// StyleChecksResult holds the outcome of the section rules
type StyleChecksResult struct {
	WordCount       int
	WithinBand      bool
	SingleParagraph bool
	NoHeading       bool
	NoExperience    bool
}

// Warnings renders the failed checks as human-readable messages.
func (r StyleChecksResult) Warnings(kind SectionKind) []string {
	var warnings []string
	switch kind {
	case KindSummary:
		if !r.WithinBand {
			warnings = append(warnings, fmt.Sprintf("summary has %d words, expected %d-%d", r.WordCount, SummaryMinWords, SummaryMaxWords))
		}
		if !r.SingleParagraph {
			warnings = append(warnings, "summary spans more than one paragraph")
		}
		if !r.NoHeading {
			warnings = append(warnings, "summary repeats the section heading")
		}
	case KindSkills:
		if !r.NoExperience {
			warnings = append(warnings, "skills section mentions experience or duration")
		}
	}
	return warnings
}

// ValidateStyle checks rewritten section text against the rules of its kind.
// Checks that do not apply to the kind are reported as passing.
func ValidateStyle(kind SectionKind, title, text string) StyleChecksResult {
	result := StyleChecksResult{
		WordCount:       CountWords(text),
		WithinBand:      true,
		SingleParagraph: true,
		NoHeading:       true,
		NoExperience:    true,
	}

	switch kind {
	case KindSummary:
		result.WithinBand = result.WordCount >= SummaryMinWords && result.WordCount <= SummaryMaxWords
		result.SingleParagraph = !strings.Contains(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), "\n\n") &&
			!strings.Contains(text, ItemPrefix)
		result.NoHeading = !strings.Contains(strings.ToLower(text), strings.ToLower(title))
	case KindSkills:
		result.NoExperience = len(findExperienceClaims(text)) == 0
	}

	return result
}

// CountWords counts words in LaTeX text, ignoring command names.
func CountWords(text string) int {
	stripped := latexCommandPattern.ReplaceAllString(text, " ")
	count := 0
	for _, field := range strings.Fields(stripped) {
		if wordPattern.MatchString(field) {
			count++
		}
	}
	return count
}

// findExperienceClaims returns the experience or duration phrases found in text
func findExperienceClaims(text string) []string {
	var found []string
	seen := make(map[string]bool)
	for _, pattern := range experiencePatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			key := strings.ToLower(match)
			if !seen[key] {
				seen[key] = true
				found = append(found, match)
			}
		}
	}
	return found
}
