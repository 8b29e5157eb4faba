package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/compiler"
	"github.com/jonathan/resume-tailor/internal/config"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a LaTeX resume without rewriting it",
	Long:  "Runs pdflatex twice in a scratch directory and moves the PDF to the output path. No model call is made.",
	RunE:  runCompile,
}

var (
	compileTex string
	compileOut string
	compileLog string
)

func init() {
	compileCmd.Flags().StringVar(&compileTex, "tex", "", "Path to the LaTeX resume (required)")
	compileCmd.Flags().StringVarP(&compileOut, "out", "o", "", "Output PDF path (defaults to OUTPUT_PDF)")
	compileCmd.Flags().StringVar(&compileLog, "log", "", "Compile log path (defaults to COMPILE_LOG)")
	_ = compileCmd.MarkFlagRequired("tex")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if _, err := os.Stat(compileTex); err != nil {
		return fmt.Errorf("failed to read %s: %w", compileTex, err)
	}

	out := cmd.OutOrStdout()
	c := compiler.New(compiler.Options{Binary: cfg.PdflatexPath, Logger: newLogger()})
	if verbose {
		if path, err := c.LookPath(); err != nil {
			_, _ = fmt.Fprintf(out, "Warning: %v\n", err)
		} else {
			_, _ = fmt.Fprintf(out, "Using %s\n", path)
		}
	}
	result, err := c.Compile(ctx, compiler.Request{
		TexPath:    compileTex,
		OutputPath: firstNonEmpty(compileOut, cfg.OutputPDF),
		LogPath:    firstNonEmpty(compileLog, cfg.CompileLog),
	})
	if err != nil {
		return err
	}

	if !result.Succeeded {
		return fmt.Errorf("LaTeX compilation failed; see %s", result.LogPath)
	}
	_, _ = fmt.Fprintf(out, "Compiled %s -> %s (%d page(s), %s)\n",
		compileTex, result.ArtifactPath, result.PageCount, result.Duration.Round(time.Millisecond))
	return nil
}
