// Package pipeline orchestrates a tailoring run: load the resume, rewrite each
// target section with the language model, splice the results back, save the
// source and compile it.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-tailor/internal/compiler"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/document"
	"github.com/jonathan/resume-tailor/internal/latex"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/storage"
)

// CompileFailedMessage is the user-facing notice for a failed compilation
const CompileFailedMessage = "LaTeX compilation failed; check the compile log"

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// DocumentStore loads and persists the resume source
type DocumentStore interface {
	Load(path string) (string, error)
	Save(path, content string) error
}

// SectionRewriter produces a revised section body
type SectionRewriter interface {
	RewriteSection(ctx context.Context, req rewriting.Request) (*rewriting.Result, error)
}

// Compiler turns the saved source into a PDF
type Compiler interface {
	Compile(ctx context.Context, req compiler.Request) (*compiler.Result, error)
}

// RunRecorder persists run history
type RunRecorder interface {
	CreateRun(ctx context.Context, runID uuid.UUID, texPath, jobSource string) error
	SaveSection(ctx context.Context, section db.RunSection) error
	CompleteRun(ctx context.Context, runID uuid.UUID, outcome db.RunOutcome) error
}

// Options wires the collaborators of a Tailorer. Rewriter and Compiler are
// required; the rest are optional.
type Options struct {
	Store     DocumentStore
	Rewriter  SectionRewriter
	Compiler  Compiler
	Publisher storage.Publisher
	Recorder  RunRecorder
	Logger    *slog.Logger
}

// Request describes one tailoring run
type Request struct {
	TexPath        string
	JobDescription string
	// JobSource is recorded with the run (file path, URL or "inline")
	JobSource string
	// Sections defaults to latex.TargetSections
	Sections   []string
	OutputPath string
	LogPath    string
	Publish    bool
	// DryRun rewrites and splices but neither saves nor compiles
	DryRun     bool
	OnProgress ProgressCallback
}

// SectionOutcome is the before/after view of one section
type SectionOutcome struct {
	Title    string   `json:"title"`
	Found    bool     `json:"found"`
	Before   string   `json:"before"`
	After    string   `json:"after"`
	Warnings []string `json:"warnings,omitempty"`
}

// Result reports the outcome of a run
type Result struct {
	RunID        uuid.UUID        `json:"run_id"`
	Succeeded    bool             `json:"succeeded"`
	DryRun       bool             `json:"dry_run,omitempty"`
	ArtifactPath string           `json:"artifact_path,omitempty"`
	PublishedURL string           `json:"published_url,omitempty"`
	LogPath      string           `json:"log_path,omitempty"`
	PageCount    int              `json:"page_count,omitempty"`
	Sections     []SectionOutcome `json:"sections"`
	// Document is the spliced source
	Document string `json:"-"`
}

// Tailorer runs the tailoring sequence
type Tailorer struct {
	store     DocumentStore
	rewriter  SectionRewriter
	compiler  Compiler
	publisher storage.Publisher
	recorder  RunRecorder
	logger    *slog.Logger
}

// New creates a Tailorer
func New(opts Options) (*Tailorer, error) {
	if opts.Rewriter == nil {
		return nil, errors.New("pipeline: rewriter is required")
	}
	if opts.Compiler == nil {
		return nil, errors.New("pipeline: compiler is required")
	}

	t := &Tailorer{
		store:     opts.Store,
		rewriter:  opts.Rewriter,
		compiler:  opts.Compiler,
		publisher: opts.Publisher,
		recorder:  opts.Recorder,
		logger:    opts.Logger,
	}
	if t.store == nil {
		t.store = document.FileStore{}
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	return t, nil
}

// Tailor executes the run. An error means nothing was saved or compiled:
// a bad request, an unreadable source, a failed model call, or a workspace
// problem. A document that fails to compile is reported through
// Result.Succeeded with a nil error.
func (t *Tailorer) Tailor(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.TexPath) == "" {
		return nil, errors.New("tex path is required")
	}
	if strings.TrimSpace(req.JobDescription) == "" {
		return nil, errors.New("job description is required")
	}
	sections := req.Sections
	if len(sections) == 0 {
		sections = latex.TargetSections
	}

	run := &runState{
		t:      t,
		req:    req,
		result: &Result{RunID: uuid.New(), DryRun: req.DryRun},
	}
	run.logger = t.logger.With("run_id", run.result.RunID.String())
	run.startRecording(ctx)

	result, err := run.execute(ctx, sections)
	if err != nil {
		run.finishRecording(ctx, db.RunOutcome{Status: db.RunStatusFailed, Error: err.Error()})
		return nil, err
	}
	return result, nil
}

// runState carries per-run bookkeeping
type runState struct {
	t         *Tailorer
	req       Request
	result    *Result
	logger    *slog.Logger
	recording bool
}

func (r *runState) execute(ctx context.Context, sections []string) (*Result, error) {
	req, result := r.req, r.result

	doc, err := r.t.store.Load(req.TexPath)
	if err != nil {
		return nil, err
	}
	r.emit(StepLoad, fmt.Sprintf("Loaded %s (%d bytes)", req.TexPath, len(doc)), nil)

	for _, title := range sections {
		doc, err = r.tailorSection(ctx, doc, title)
		if err != nil {
			return nil, err
		}
	}
	result.Document = doc

	if req.DryRun {
		r.logger.Info("dry run complete; resume not saved", "sections", len(result.Sections))
		r.finishRecording(ctx, db.RunOutcome{Status: db.RunStatusDryRun})
		return result, nil
	}

	if err := r.t.store.Save(req.TexPath, doc); err != nil {
		return nil, err
	}
	r.emit(StepSave, fmt.Sprintf("Saved %s", req.TexPath), nil)

	compiled, err := r.t.compiler.Compile(ctx, compiler.Request{
		TexPath:    req.TexPath,
		OutputPath: req.OutputPath,
		LogPath:    req.LogPath,
	})
	if err != nil {
		return nil, err
	}
	result.LogPath = compiled.LogPath
	if !compiled.Succeeded {
		r.emit(StepCompile, CompileFailedMessage, compiled)
		r.finishRecording(ctx, db.RunOutcome{Status: db.RunStatusFailed, Error: CompileFailedMessage})
		return result, nil
	}

	result.Succeeded = true
	result.ArtifactPath = compiled.ArtifactPath
	result.PageCount = compiled.PageCount
	r.emit(StepCompile, fmt.Sprintf("Compiled %s (%d pages)", compiled.ArtifactPath, compiled.PageCount), compiled)

	if req.Publish {
		r.publish(ctx)
	}

	r.finishRecording(ctx, db.RunOutcome{
		Status:       db.RunStatusSucceeded,
		ArtifactPath: result.ArtifactPath,
		PublishedURL: result.PublishedURL,
		PageCount:    result.PageCount,
	})
	return result, nil
}

// tailorSection extracts, rewrites and splices one section. A missing section
// is rewritten from empty text; the splice is then a no-op.
func (r *runState) tailorSection(ctx context.Context, doc, title string) (string, error) {
	_, found := latex.FindSection(doc, title)
	before := latex.ExtractSection(doc, title)
	if found {
		r.emit(StepExtract, fmt.Sprintf("Extracted %q (%d bytes)", title, len(before)), nil)
	} else {
		r.logger.Warn("section not found; rewriting from empty text", "section", title)
		r.emit(StepExtract, fmt.Sprintf("Section %q not found", title), nil)
	}

	rewritten, err := r.t.rewriter.RewriteSection(ctx, rewriting.Request{
		JobDescription: r.req.JobDescription,
		Section:        title,
		Current:        before,
	})
	if err != nil {
		return "", err
	}
	for _, w := range rewritten.Warnings {
		r.logger.Warn("style check", "section", title, "warning", w)
	}

	outcome := SectionOutcome{
		Title:    title,
		Found:    found,
		Before:   before,
		After:    rewritten.Text,
		Warnings: rewritten.Warnings,
	}
	r.result.Sections = append(r.result.Sections, outcome)
	r.emit(StepRewrite, fmt.Sprintf("Rewrote %q", title), outcome)

	spliced := latex.ReplaceSection(doc, title, rewritten.Text)
	if found {
		r.emit(StepSplice, fmt.Sprintf("Spliced %q", title), nil)
	} else {
		r.emit(StepSplice, fmt.Sprintf("Skipped %q: no such section in the resume", title), nil)
	}

	if r.recording {
		err := r.t.recorder.SaveSection(ctx, db.RunSection{
			RunID:    r.result.RunID,
			Title:    title,
			Found:    found,
			Before:   before,
			After:    rewritten.Text,
			Warnings: rewritten.Warnings,
		})
		if err != nil {
			r.logger.Warn("failed to record section", "section", title, "error", err)
		}
	}
	return spliced, nil
}

// publish uploads the artifact; failures are logged and never fail the run.
func (r *runState) publish(ctx context.Context) {
	if r.t.publisher == nil {
		r.logger.Warn("publish requested but no destination is configured")
		return
	}

	name := r.result.RunID.String() + "/" + filepath.Base(r.result.ArtifactPath)
	url, err := r.t.publisher.Publish(ctx, r.result.ArtifactPath, name)
	if err != nil {
		r.logger.Error("failed to publish artifact", "artifact", r.result.ArtifactPath, "error", err)
		r.emit(StepPublish, fmt.Sprintf("Publish failed: %v", err), nil)
		return
	}
	r.result.PublishedURL = url
	r.emit(StepPublish, fmt.Sprintf("Published to %s", url), nil)
}

func (r *runState) startRecording(ctx context.Context) {
	if r.t.recorder == nil {
		return
	}
	source := r.req.JobSource
	if source == "" {
		source = "inline"
	}
	if err := r.t.recorder.CreateRun(ctx, r.result.RunID, r.req.TexPath, source); err != nil {
		r.logger.Warn("failed to record run; continuing without history", "error", err)
		return
	}
	r.recording = true
}

func (r *runState) finishRecording(ctx context.Context, outcome db.RunOutcome) {
	if !r.recording {
		return
	}
	if err := r.t.recorder.CompleteRun(ctx, r.result.RunID, outcome); err != nil {
		r.logger.Warn("failed to complete run record", "error", err)
	}
	r.recording = false
}

// emit calls the progress callback if configured
func (r *runState) emit(step, message string, content any) {
	r.logger.Debug(message, "step", step)
	if r.req.OnProgress != nil {
		r.req.OnProgress(ProgressEvent{
			Step:     step,
			Category: CategoryOf(step),
			Message:  message,
			RunID:    r.result.RunID.String(),
			Content:  content,
		})
	}
}
