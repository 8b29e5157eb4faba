// Package rewriting asks a language model to enhance one resume section with
// keywords from a job description and cleans up what comes back.
package rewriting

import (
	"context"
	"strings"

	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/prompts"
)

const promptFile = "rewriting.json"

// Request is one section rewrite. Current may be empty when the section is
// missing from the document.
type Request struct {
	JobDescription string
	Section        string
	Current        string
}

// Result is the normalized section body plus any style warnings.
type Result struct {
	Section  string
	Text     string
	Raw      string
	Kind     SectionKind
	Warnings []string
}

// Rewriter rewrites resume sections through an llm.Client.
type Rewriter struct {
	client llm.Client
}

// NewRewriter wraps an already constructed client. The caller owns the client
// and closes it.
func NewRewriter(client llm.Client) *Rewriter {
	return &Rewriter{client: client}
}

// RewriteSection sends the section to the model and returns the cleaned body.
// Transport and API errors are returned as *APICallError without retrying.
func (r *Rewriter) RewriteSection(ctx context.Context, req Request) (*Result, error) {
	if r.client == nil {
		return nil, &APICallError{Section: req.Section, Message: "no LLM client configured"}
	}

	prompt, err := buildSectionPrompt(req)
	if err != nil {
		return nil, err
	}
	system, err := prompts.Get(promptFile, "section-system")
	if err != nil {
		return nil, err
	}

	raw, err := r.client.GenerateContent(ctx, llm.Request{
		System: system,
		Prompt: prompt,
		Tier:   llm.TierAdvanced,
	})
	if err != nil {
		return nil, &APICallError{
			Section: req.Section,
			Message: "failed to generate content",
			Cause:   err,
		}
	}

	kind := KindOf(req.Section)
	text := CleanResponse(raw)

	warnings := ValidateStyle(kind, req.Section, text).Warnings(kind)
	if check := CheckInjection(req.JobDescription); check.Suspicious {
		warnings = append(warnings, check.Reason())
	}

	return &Result{
		Section:  req.Section,
		Text:     text,
		Raw:      raw,
		Kind:     kind,
		Warnings: warnings,
	}, nil
}

// CleanResponse trims the completion, removes a code fence around it and
// restores a dropped list wrapper.
func CleanResponse(raw string) string {
	text := llm.StripCodeFence(strings.TrimSpace(raw))
	return NormalizeListBlock(text)
}

// buildSectionPrompt fills the enhancement template for one section
func buildSectionPrompt(req Request) (string, error) {
	template, err := prompts.Get(promptFile, "section-enhance")
	if err != nil {
		return "", err
	}

	rules := ""
	switch KindOf(req.Section) {
	case KindSummary:
		rules, err = prompts.Get(promptFile, "rules-summary")
	case KindSkills:
		rules, err = prompts.Get(promptFile, "rules-skills")
	}
	if err != nil {
		return "", err
	}

	return prompts.Format(template, map[string]string{
		"JobDescription": QuoteExternalContent("job description", strings.TrimSpace(req.JobDescription)),
		"Section":        req.Section,
		"Current":        req.Current,
		"SectionRules":   rules,
	}), nil
}
