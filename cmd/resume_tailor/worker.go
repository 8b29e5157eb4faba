package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/streadway/amqp"

	"github.com/jonathan/resume-tailor/internal/queue"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume tailoring requests from RabbitMQ",
	Long: fmt.Sprintf(`Consumes JSON tailoring requests from the %q queue one at a time and
publishes status updates to the %q topic exchange, routed as tailor.<id>.`,
		queue.RequestQueue, queue.UpdateExchange),
	RunE: runWorker,
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := serviceLogger()
	a, err := buildApp(ctx, logger, true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for the worker")
	}
	conn, err := amqp.Dial(a.cfg.RabbitMQURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer func() { _ = conn.Close() }()

	w := queue.NewWorker(queue.Options{
		Tailorer:   a.tailorer,
		Updates:    queue.NewExchangePublisher(conn),
		UseBrowser: a.cfg.UseBrowser,
		Logger:     logger,
	})

	err = w.Consume(ctx, conn)
	if errors.Is(err, context.Canceled) {
		logger.Info("worker stopped")
		return nil
	}
	return err
}
