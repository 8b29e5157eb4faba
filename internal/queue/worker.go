// Package queue consumes tailoring requests from RabbitMQ and reports their
// progress on a topic exchange.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/streadway/amqp"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

const (
	// RequestQueue is the durable queue requests are consumed from
	RequestQueue = "tailor_requests"
	// UpdateExchange receives status updates, routed as tailor.<id>
	UpdateExchange = "tailor_updates"
)

// Tailorer runs one tailoring request
type Tailorer interface {
	Tailor(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// UpdatePublisher delivers status updates
type UpdatePublisher interface {
	PublishUpdate(ctx context.Context, update Update) error
}

// JobLoader resolves the job description named by a message
type JobLoader func(ctx context.Context, msg Message) (*ingestion.JobDescription, error)

// Options configures a Worker
type Options struct {
	Tailorer   Tailorer
	Updates    UpdatePublisher
	LoadJob    JobLoader
	UseBrowser bool
	Logger     *slog.Logger
}

// Worker processes tailoring requests one at a time
type Worker struct {
	tailorer Tailorer
	updates  UpdatePublisher
	loadJob  JobLoader
	logger   *slog.Logger
	now      func() time.Time
}

// NewWorker creates a Worker
func NewWorker(opts Options) *Worker {
	w := &Worker{
		tailorer: opts.Tailorer,
		updates:  opts.Updates,
		loadJob:  opts.LoadJob,
		logger:   opts.Logger,
		now:      time.Now,
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.loadJob == nil {
		w.loadJob = defaultJobLoader(opts.UseBrowser, w.logger)
	}
	return w
}

func defaultJobLoader(useBrowser bool, logger *slog.Logger) JobLoader {
	return func(ctx context.Context, msg Message) (*ingestion.JobDescription, error) {
		switch {
		case msg.JobURL != "":
			return ingestion.FromURL(ctx, msg.JobURL, ingestion.URLOptions{UseBrowser: useBrowser, Logger: logger})
		case msg.JobPath != "":
			return ingestion.FromFile(msg.JobPath)
		default:
			return ingestion.FromText(msg.JobDescription)
		}
	}
}

// Consume declares the topology and processes deliveries until ctx is done
// or the channel closes.
func (w *Worker) Consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := DeclareTopology(ch); err != nil {
		return err
	}
	// one request in flight; compilation is not safe to run concurrently
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		RequestQueue, // queue name
		"",           // consumer tag
		false,        // auto-ack
		false,        // exclusive
		false,        // no-local
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to consume %s: %w", RequestQueue, err)
	}

	w.logger.Info("worker consuming", "queue", RequestQueue)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			w.HandleDelivery(ctx, d)
		}
	}
}

// DeclareTopology declares the request queue and the update exchange
func DeclareTopology(ch *amqp.Channel) error {
	_, err := ch.QueueDeclare(
		RequestQueue, // queue name
		true,         // durable (survives broker restarts)
		false,        // auto-delete when unused
		false,        // exclusive
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	err = ch.ExchangeDeclare(
		UpdateExchange, // name
		"topic",        // kind
		true,           // durable
		false,          // auto-delete
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}
	return nil
}

// HandleDelivery processes one delivery. Messages that fail validation are
// rejected without requeue. A run cut short by cancellation is requeued so
// another worker picks it up; every other message is acknowledged once a
// final status update has been published.
func (w *Worker) HandleDelivery(ctx context.Context, d amqp.Delivery) {
	msg, err := Decode(d.Body)
	if err != nil {
		w.logger.Error("rejecting invalid message", "error", err)
		if msg.ID != "" {
			w.publish(ctx, Update{ID: msg.ID, Status: StatusFailed, Message: "invalid request: " + firstLine(err.Error())})
		}
		if err := d.Reject(false); err != nil {
			w.logger.Error("failed to reject message", "error", err)
		}
		return
	}

	if _, requeue := w.process(ctx, msg); requeue {
		w.logger.Warn("run interrupted; requeueing message", "id", msg.ID, "error", ctx.Err())
		if err := d.Nack(false, true); err != nil {
			w.logger.Error("failed to requeue message", "id", msg.ID, "error", err)
		}
		return
	}
	if err := d.Ack(false); err != nil {
		w.logger.Error("failed to ack message", "id", msg.ID, "error", err)
	}
}

// Decode parses and validates a message body. The partially decoded message
// is returned alongside a validation error so the caller can still report
// against its id.
func Decode(body []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return Message{}, fmt.Errorf("malformed message: %w", err)
	}
	if err := schemas.Validate(schemas.TailorRequest, body); err != nil {
		return msg, err
	}
	return msg, nil
}

// Process runs one validated request and publishes its updates.
func (w *Worker) Process(ctx context.Context, msg Message) Update {
	update, _ := w.process(ctx, msg)
	return update
}

// process also reports whether cancellation cut the run short, in which case
// the message should be requeued.
func (w *Worker) process(ctx context.Context, msg Message) (Update, bool) {
	logger := w.logger.With("id", msg.ID)
	logger.Info("processing tailoring request", "tex", msg.TexPath, "job", msg.JobSource())
	w.publish(ctx, Update{ID: msg.ID, Status: StatusProcessing, Message: "tailoring started"})

	jd, err := w.loadJob(ctx, msg)
	if interrupted(ctx, err) {
		return w.interruptedUpdate(msg), true
	}
	if err != nil {
		logger.Error("failed to load job description", "error", err)
		return w.publish(ctx, Update{ID: msg.ID, Status: StatusFailed, Message: "job description: " + err.Error()}), false
	}

	output, logPath := msg.Paths()
	result, err := w.tailorer.Tailor(ctx, pipeline.Request{
		TexPath:        msg.TexPath,
		JobDescription: jd.Text,
		JobSource:      msg.JobSource(),
		OutputPath:     output,
		LogPath:        logPath,
		Publish:        msg.Publish,
	})
	if interrupted(ctx, err) {
		return w.interruptedUpdate(msg), true
	}
	if err != nil {
		logger.Error("tailoring failed", "error", err)
		return w.publish(ctx, Update{ID: msg.ID, Status: StatusFailed, Message: err.Error()}), false
	}

	update := Update{
		ID:           msg.ID,
		RunID:        result.RunID.String(),
		ArtifactPath: result.ArtifactPath,
		PublishedURL: result.PublishedURL,
		PageCount:    result.PageCount,
	}
	if !result.Succeeded {
		update.Status = StatusFailed
		update.Message = fmt.Sprintf("%s: %s", pipeline.CompileFailedMessage, result.LogPath)
	} else {
		update.Status = StatusSucceeded
		update.Message = "resume compiled"
	}
	logger.Info("request finished", "status", update.Status, "artifact", update.ArtifactPath)
	return w.publish(ctx, update), false
}

func (w *Worker) publish(ctx context.Context, update Update) Update {
	update.Timestamp = w.now().UTC()
	if w.updates == nil {
		return update
	}
	if err := w.updates.PublishUpdate(ctx, update); err != nil {
		w.logger.Warn("failed to publish update", "id", update.ID, "status", update.Status, "error", err)
	}
	return update
}

// interrupted reports whether a step stopped because the worker is shutting
// down rather than because the request itself failed.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil
}

// interruptedUpdate is returned without publishing: the message goes back to
// the queue and its next run reports the outcome.
func (w *Worker) interruptedUpdate(msg Message) Update {
	w.logger.Warn("tailoring interrupted", "id", msg.ID)
	return Update{ID: msg.ID, Status: StatusFailed, Message: "interrupted", Timestamp: w.now().UTC()}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
