package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/resume-tailor/internal/compiler"
	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/rewriting"
	"github.com/jonathan/resume-tailor/internal/storage"
)

// newLogger returns a stderr logger; debug records only with --verbose.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// serviceLogger is used by long-running commands, which log at info.
func serviceLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// app holds the collaborators built from configuration
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	tailorer  *pipeline.Tailorer
	database  *db.DB
	client    llm.Client
	publisher storage.Publisher
}

// buildApp wires the pipeline. The model credential is checked before
// anything else is constructed. Publishing and run history are optional and
// only wired when configured; a failure to reach the database is logged and
// the run proceeds without history.
func buildApp(ctx context.Context, logger *slog.Logger, withPublisher bool) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	apiKey, err := cfg.RequireCredential()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}

	a.client, err = llm.NewClient(ctx, cfg.LLMConfig(), apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	opts := pipeline.Options{
		Rewriter: rewriting.NewRewriter(a.client),
		Compiler: compiler.New(compiler.Options{Binary: cfg.PdflatexPath, Logger: logger}),
		Logger:   logger,
	}

	if withPublisher && cfg.PublishURL != "" {
		a.publisher, err = storage.NewPublisher(ctx, cfg.PublishURL, cfg.StorageOptions())
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create publisher: %w", err)
		}
		opts.Publisher = a.publisher
	}

	if cfg.DatabaseURL != "" {
		a.database = connectHistory(ctx, cfg.DatabaseURL, logger)
		if a.database != nil {
			opts.Recorder = a.database
		}
	}

	a.tailorer, err = pipeline.New(opts)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func connectHistory(ctx context.Context, databaseURL string, logger *slog.Logger) *db.DB {
	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		logger.Warn("run history disabled: database unreachable", "error", err)
		return nil
	}
	if err := database.EnsureSchema(ctx); err != nil {
		logger.Warn("run history disabled: schema setup failed", "error", err)
		database.Close()
		return nil
	}
	return database
}

// Close releases every collaborator that holds resources.
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close publisher", "error", err)
		}
	}
	if a.database != nil {
		a.database.Close()
	}
	if a.client != nil {
		if err := a.client.Close(); err != nil {
			a.logger.Warn("failed to close LLM client", "error", err)
		}
	}
}
