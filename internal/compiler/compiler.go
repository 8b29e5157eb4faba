// Package compiler turns a LaTeX source into a PDF with pdflatex.
//
// Every run gets its own temporary workspace for auxiliary files and the
// intermediate PDF; the workspace is removed when the run ends. pdflatex runs
// twice so cross-references settle, then the PDF is moved to a stable output
// path. Only "artifact produced" vs "artifact missing" is reported; the tool's
// console output goes to a log file for inspection.
package compiler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultBinary is the typesetting tool looked up on PATH
	DefaultBinary = "pdflatex"
	// DefaultJobName fixes the name of the intermediate artifact (<JobName>.pdf)
	DefaultJobName = "main"
	// DefaultPasses resolves forward references such as counters and the TOC
	DefaultPasses = 2
	// DefaultOutputPath is where the final PDF lands
	DefaultOutputPath = "output/resume_targeted.pdf"
	// DefaultLogPath receives the captured console output
	DefaultLogPath = "output/compile.log"
)

// Options configures a Compiler. Zero values fall back to the defaults above.
// A zero PassTimeout leaves each pass bounded only by the caller's context.
type Options struct {
	Binary      string
	JobName     string
	Passes      int
	PassTimeout time.Duration
	Logger      *slog.Logger
}

// Request names the source and where the results go.
type Request struct {
	TexPath    string
	OutputPath string
	LogPath    string
}

// Result reports the outcome of a compilation.
type Result struct {
	Succeeded    bool
	ArtifactPath string
	LogPath      string
	PageCount    int
	Duration     time.Duration
}

// Compiler runs pdflatex in a scoped workspace.
type Compiler struct {
	binary      string
	jobName     string
	passes      int
	passTimeout time.Duration
	logger      *slog.Logger
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	c := &Compiler{
		binary:      opts.Binary,
		jobName:     opts.JobName,
		passes:      opts.Passes,
		passTimeout: opts.PassTimeout,
		logger:      opts.Logger,
	}
	if c.binary == "" {
		c.binary = DefaultBinary
	}
	if c.jobName == "" {
		c.jobName = DefaultJobName
	}
	if c.passes <= 0 {
		c.passes = DefaultPasses
	}
	if c.passTimeout < 0 {
		c.passTimeout = 0
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compile builds req.TexPath. On success the PDF is at req.OutputPath and
// Result.Succeeded is true. If pdflatex leaves no PDF behind, Succeeded is
// false and req.OutputPath is not touched. An error is returned only when the
// workspace cannot be set up or the artifact cannot be moved.
func (c *Compiler) Compile(ctx context.Context, req Request) (*Result, error) {
	if req.OutputPath == "" {
		req.OutputPath = DefaultOutputPath
	}
	if req.LogPath == "" {
		req.LogPath = DefaultLogPath
	}

	start := time.Now()
	result := &Result{LogPath: req.LogPath}

	texPath, err := filepath.Abs(req.TexPath)
	if err != nil {
		return nil, &WorkspaceError{Message: fmt.Sprintf("failed to resolve %s", req.TexPath), Cause: err}
	}

	workspace, err := os.MkdirTemp("", "resume-tailor-*")
	if err != nil {
		return nil, &WorkspaceError{Message: "failed to create temporary workspace", Cause: err}
	}
	defer func() {
		if err := os.RemoveAll(workspace); err != nil {
			c.logger.Warn("failed to remove compile workspace", "workspace", workspace, "error", err)
		}
	}()

	var console bytes.Buffer
	for pass := 1; pass <= c.passes; pass++ {
		fmt.Fprintf(&console, "=== %s pass %d/%d ===\n", c.binary, pass, c.passes)
		if err := c.runPass(ctx, texPath, workspace, &console); err != nil {
			// pdflatex exits non-zero on recoverable errors too; the artifact check decides.
			fmt.Fprintf(&console, "\n[pass %d] %v\n", pass, err)
			c.logger.Debug("pdflatex pass returned an error", "pass", pass, "error", err)
		}
		if ctx.Err() != nil {
			break
		}
	}
	c.writeLog(req.LogPath, console.Bytes())

	intermediate := filepath.Join(workspace, c.jobName+".pdf")
	if _, err := os.Stat(intermediate); err != nil {
		c.logger.Error("LaTeX compilation failed: no PDF produced", "tex", req.TexPath, "log", req.LogPath)
		result.Duration = time.Since(start)
		return result, nil
	}

	if err := moveFile(intermediate, req.OutputPath); err != nil {
		return nil, &WorkspaceError{Message: fmt.Sprintf("failed to move artifact to %s", req.OutputPath), Cause: err}
	}

	result.Succeeded = true
	result.ArtifactPath = req.OutputPath
	result.Duration = time.Since(start)

	pages, err := CountPages(req.OutputPath)
	if err != nil {
		c.logger.Warn("could not count PDF pages", "artifact", req.OutputPath, "error", err)
	} else {
		result.PageCount = pages
		if pages > 1 {
			c.logger.Warn("resume is longer than one page", "pages", pages)
		}
	}

	c.logger.Info("LaTeX compiled", "artifact", req.OutputPath, "pages", result.PageCount, "duration", result.Duration)
	return result, nil
}

// runPass invokes pdflatex once. The source directory is the working directory
// so relative \input and image paths resolve; all output goes to workspace.
func (c *Compiler) runPass(ctx context.Context, texPath, workspace string, console io.Writer) error {
	passCtx := ctx
	if c.passTimeout > 0 {
		var cancel context.CancelFunc
		passCtx, cancel = context.WithTimeout(ctx, c.passTimeout)
		defer cancel()
	}

	cmd := exec.CommandContext(passCtx, c.binary, c.args(texPath, workspace)...)
	cmd.Dir = filepath.Dir(texPath)
	cmd.Stdout = console
	cmd.Stderr = console
	return cmd.Run()
}

func (c *Compiler) args(texPath, workspace string) []string {
	return []string{
		"-interaction=nonstopmode",
		"-output-directory=" + workspace,
		"-jobname=" + c.jobName,
		texPath,
	}
}

// writeLog persists console output; failing to write it never fails the run.
func (c *Compiler) writeLog(path string, content []byte) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		c.logger.Warn("failed to create log directory", "path", path, "error", err)
		return
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		c.logger.Warn("failed to write compile log", "path", path, "error", err)
	}
}

// moveFile renames src to dst, creating dst's directory. When the rename
// crosses filesystems it falls back to copy and remove.
func moveFile(src, dst string) error {
	if dir := filepath.Dir(dst); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	tmp := dst + ".partial"
	out, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Remove(src)
}

// LookPath reports whether the configured binary can be found.
func (c *Compiler) LookPath() (string, error) {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return "", fmt.Errorf("%s not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX): %w",
			strings.TrimSpace(c.binary), err)
	}
	return path, nil
}
