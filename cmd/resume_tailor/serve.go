package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/server"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP upload server",
	Long:  `Start an HTTP server with an upload form. POST /tailor takes a .tex resume and a job description and returns the compiled PDF.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (defaults to PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := serviceLogger()
	a, err := buildApp(ctx, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	port := a.cfg.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	var runs server.RunStore
	if a.database != nil {
		runs = a.database
	}

	srv := server.New(server.Config{
		Port:           port,
		MaxUploadBytes: a.cfg.MaxUploadBytes,
		RateLimit:      a.cfg.RateLimitConfig(),
		Logger:         logger,
	}, a.tailorer, runs)

	return srv.Start(ctx)
}
