// Package server provides the HTTP surface for tailoring uploaded resumes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/server/ratelimit"
)

// DefaultMaxUploadBytes bounds a multipart upload
const DefaultMaxUploadBytes int64 = 2 << 20

// Tailorer runs one tailoring request
type Tailorer interface {
	Tailor(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// RunStore reads recorded run history
type RunStore interface {
	GetRun(ctx context.Context, runID uuid.UUID) (*db.Run, error)
	ListRuns(ctx context.Context, limit int) ([]db.Run, error)
	ListSections(ctx context.Context, runID uuid.UUID) ([]db.RunSection, error)
}

// Config holds server configuration
type Config struct {
	Port           int
	MaxUploadBytes int64
	// WorkDir is the parent of per-request directories (os.TempDir when empty)
	WorkDir   string
	RateLimit *ratelimit.Config
	Logger    *slog.Logger
}

// Server represents the HTTP server
type Server struct {
	router     chi.Router
	httpServer *http.Server
	tailorer   Tailorer
	runs       RunStore
	limiter    *ratelimit.Limiter
	validate   *validator.Validate
	// serializes tailoring runs; the pipeline assumes one invocation at a time
	serial   *semaphore.Weighted
	logger   *slog.Logger
	cfg      Config
	shutdown time.Duration
}

// New creates a new server instance. runs may be nil when no database is configured.
func New(cfg Config, tailorer Tailorer, runs RunStore) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	s := &Server{
		tailorer: tailorer,
		runs:     runs,
		limiter:  ratelimit.NewLimiter(cfg.RateLimit),
		validate: validator.New(),
		serial:   semaphore.NewWeighted(1),
		logger:   cfg.Logger,
		cfg:      cfg,
		shutdown: 30 * time.Second,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // two model calls and two pdflatex passes
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.logger))
	r.Use(RateLimit(s.limiter, s.logger))

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleIndex)
	r.Post("/tailor", s.handleTailor)

	if s.runs != nil {
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	}

	s.router = r
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.limiter.Stop()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown)
	defer cancel()
	defer s.limiter.Stop()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
