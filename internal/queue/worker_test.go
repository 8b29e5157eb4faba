package queue

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/ingestion"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
)

const testID = "5b0f6a9e-3c1d-4f8e-9a2b-7c6d5e4f3a21"

type fakeAck struct {
	acked    int
	nacked   int
	rejected int
	requeue  bool
}

func (f *fakeAck) Ack(uint64, bool) error { f.acked++; return nil }
func (f *fakeAck) Nack(_ uint64, _ bool, requeue bool) error {
	f.nacked++
	f.requeue = requeue
	return nil
}
func (f *fakeAck) Reject(_ uint64, requeue bool) error {
	f.rejected++
	f.requeue = requeue
	return nil
}

type recordedUpdates struct {
	updates []Update
}

func (r *recordedUpdates) PublishUpdate(_ context.Context, u Update) error {
	r.updates = append(r.updates, u)
	return nil
}

// contextUpdates drops updates once the context is done, as a publish on a
// closing connection would.
type contextUpdates struct {
	recordedUpdates
}

func (c *contextUpdates) PublishUpdate(ctx context.Context, u Update) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.recordedUpdates.PublishUpdate(ctx, u)
}

// cancellingTailorer cancels the worker's context mid-run, like a SIGTERM
// arriving while pdflatex is running.
type cancellingTailorer struct {
	cancel context.CancelFunc
}

func (c *cancellingTailorer) Tailor(ctx context.Context, _ pipeline.Request) (*pipeline.Result, error) {
	c.cancel()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (r *recordedUpdates) statuses() []string {
	out := make([]string, 0, len(r.updates))
	for _, u := range r.updates {
		out = append(out, u.Status)
	}
	return out
}

type stubTailorer struct {
	req    pipeline.Request
	result *pipeline.Result
	err    error
}

func (s *stubTailorer) Tailor(_ context.Context, req pipeline.Request) (*pipeline.Result, error) {
	s.req = req
	return s.result, s.err
}

func newTestWorker(t *testing.T, tailorer Tailorer, updates UpdatePublisher) *Worker {
	t.Helper()
	w := NewWorker(Options{
		Tailorer: tailorer,
		Updates:  updates,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	w.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return w
}

func delivery(ack amqp.Acknowledger, body string) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)}
}

func TestHandleDelivery_Succeeded(t *testing.T) {
	runID := uuid.New()
	tailorer := &stubTailorer{result: &pipeline.Result{
		RunID:        runID,
		Succeeded:    true,
		ArtifactPath: "/work/output/resume_targeted.pdf",
		PageCount:    1,
	}}
	updates := &recordedUpdates{}
	ack := &fakeAck{}
	w := newTestWorker(t, tailorer, updates)

	w.HandleDelivery(context.Background(), delivery(ack,
		`{"id":"`+testID+`","tex_path":"/work/main.tex","job_description":"Senior Go engineer\nKubernetes"}`))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.rejected)
	assert.Equal(t, []string{StatusProcessing, StatusSucceeded}, updates.statuses())

	final := updates.updates[1]
	assert.Equal(t, runID.String(), final.RunID)
	assert.Equal(t, "/work/output/resume_targeted.pdf", final.ArtifactPath)
	assert.Equal(t, 1, final.PageCount)

	assert.Equal(t, "/work/main.tex", tailorer.req.TexPath)
	assert.Equal(t, "/work/output/resume_targeted.pdf", tailorer.req.OutputPath)
	assert.Equal(t, "/work/output/compile.log", tailorer.req.LogPath)
	assert.Equal(t, "inline", tailorer.req.JobSource)
	assert.Contains(t, tailorer.req.JobDescription, "Kubernetes")
}

func TestHandleDelivery_UpdatesMatchSchema(t *testing.T) {
	tailorer := &stubTailorer{result: &pipeline.Result{RunID: uuid.New(), Succeeded: true, ArtifactPath: "/a.pdf", PageCount: 2}}
	updates := &recordedUpdates{}
	w := newTestWorker(t, tailorer, updates)

	w.HandleDelivery(context.Background(), delivery(&fakeAck{},
		`{"id":"`+testID+`","tex_path":"/work/main.tex","job_description":"Go"}`))

	require.Len(t, updates.updates, 2)
	for _, u := range updates.updates {
		body, err := json.Marshal(u)
		require.NoError(t, err)
		assert.NoError(t, schemas.Validate(schemas.TailorUpdate, body), string(body))
	}
}

func TestHandleDelivery_InvalidMessageRejected(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		expectUpdates int
	}{
		{name: "malformed json", body: `{"id":`, expectUpdates: 0},
		{name: "missing tex path", body: `{"id":"` + testID + `","job_description":"Go"}`, expectUpdates: 1},
		{name: "two job sources", body: `{"id":"` + testID + `","tex_path":"/a.tex","job_description":"Go","job_path":"/jd.txt"}`, expectUpdates: 1},
		{name: "no id", body: `{"tex_path":"/a.tex","job_description":"Go"}`, expectUpdates: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tailorer := &stubTailorer{}
			updates := &recordedUpdates{}
			ack := &fakeAck{}
			w := newTestWorker(t, tailorer, updates)

			w.HandleDelivery(context.Background(), delivery(ack, tt.body))

			assert.Equal(t, 0, ack.acked)
			assert.Equal(t, 1, ack.rejected)
			assert.False(t, ack.requeue)
			assert.Len(t, updates.updates, tt.expectUpdates)
			for _, u := range updates.updates {
				assert.Equal(t, StatusFailed, u.Status)
			}
			assert.Empty(t, tailorer.req.TexPath, "tailorer must not run")
		})
	}
}

func TestProcess_CompileFailure(t *testing.T) {
	tailorer := &stubTailorer{result: &pipeline.Result{
		RunID:   uuid.New(),
		LogPath: "/work/output/compile.log",
	}}
	updates := &recordedUpdates{}
	w := newTestWorker(t, tailorer, updates)

	final := w.Process(context.Background(), Message{ID: testID, TexPath: "/work/main.tex", JobDescription: "Go"})

	assert.Equal(t, StatusFailed, final.Status)
	assert.Contains(t, final.Message, pipeline.CompileFailedMessage)
	assert.Contains(t, final.Message, "/work/output/compile.log")
}

func TestProcess_TailorError(t *testing.T) {
	tailorer := &stubTailorer{err: errors.New("model unavailable")}
	updates := &recordedUpdates{}
	w := newTestWorker(t, tailorer, updates)

	final := w.Process(context.Background(), Message{ID: testID, TexPath: "/work/main.tex", JobDescription: "Go"})

	assert.Equal(t, StatusFailed, final.Status)
	assert.Contains(t, final.Message, "model unavailable")
	assert.Equal(t, []string{StatusProcessing, StatusFailed}, updates.statuses())
}

func TestHandleDelivery_InterruptedRunIsRequeued(t *testing.T) {
	body := `{"id":"` + testID + `","tex_path":"/work/main.tex","job_description":"Go"}`

	t.Run("cancelled before delivery", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		updates := &contextUpdates{}
		ack := &fakeAck{}
		w := newTestWorker(t, &stubTailorer{err: context.Canceled}, updates)

		w.HandleDelivery(ctx, delivery(ack, body))

		assert.Equal(t, 0, ack.acked)
		assert.Equal(t, 1, ack.nacked)
		assert.True(t, ack.requeue)
		assert.Empty(t, updates.updates)
	})

	t.Run("cancelled while tailoring", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		updates := &contextUpdates{}
		ack := &fakeAck{}
		w := newTestWorker(t, &cancellingTailorer{cancel: cancel}, updates)

		w.HandleDelivery(ctx, delivery(ack, body))

		assert.Equal(t, 0, ack.acked)
		assert.Equal(t, 1, ack.nacked)
		assert.True(t, ack.requeue)
		assert.Equal(t, []string{StatusProcessing}, updates.statuses())
	})

	t.Run("cancelled while loading the job", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		tailorer := &stubTailorer{}
		ack := &fakeAck{}
		w := newTestWorker(t, tailorer, &contextUpdates{})
		w.loadJob = func(ctx context.Context, _ Message) (*ingestion.JobDescription, error) {
			cancel()
			return nil, ctx.Err()
		}

		w.HandleDelivery(ctx, delivery(ack, `{"id":"`+testID+`","tex_path":"/work/main.tex","job_url":"https://jobs.example.com/1"}`))

		assert.Equal(t, 1, ack.nacked)
		assert.True(t, ack.requeue)
		assert.Empty(t, tailorer.req.TexPath)
	})
}

func TestHandleDelivery_TailorErrorIsAcked(t *testing.T) {
	updates := &recordedUpdates{}
	ack := &fakeAck{}
	w := newTestWorker(t, &stubTailorer{err: errors.New("model unavailable")}, updates)

	w.HandleDelivery(context.Background(), delivery(ack,
		`{"id":"`+testID+`","tex_path":"/work/main.tex","job_description":"Go"}`))

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, 0, ack.nacked)
	assert.Equal(t, []string{StatusProcessing, StatusFailed}, updates.statuses())
}

func TestProcess_JobLoadError(t *testing.T) {
	tailorer := &stubTailorer{}
	updates := &recordedUpdates{}
	w := newTestWorker(t, tailorer, updates)
	w.loadJob = func(context.Context, Message) (*ingestion.JobDescription, error) {
		return nil, &ingestion.Error{Source: "/missing.txt", Message: "file not found"}
	}

	final := w.Process(context.Background(), Message{ID: testID, TexPath: "/work/main.tex", JobPath: "/missing.txt"})

	assert.Equal(t, StatusFailed, final.Status)
	assert.Contains(t, final.Message, "file not found")
	assert.Empty(t, tailorer.req.TexPath)
}

func TestMessage_Paths(t *testing.T) {
	out, log := Message{TexPath: "/r/main.tex"}.Paths()
	assert.Equal(t, "/r/output/resume_targeted.pdf", out)
	assert.Equal(t, "/r/output/compile.log", log)

	out, log = Message{TexPath: "/r/main.tex", OutputPath: "/pdfs/cv.pdf"}.Paths()
	assert.Equal(t, "/pdfs/cv.pdf", out)
	assert.Equal(t, "/pdfs/compile.log", log)
}

func TestMessage_JobSource(t *testing.T) {
	assert.Equal(t, "https://jobs.example.com/1", Message{JobURL: "https://jobs.example.com/1"}.JobSource())
	assert.Equal(t, "/jd.md", Message{JobPath: "/jd.md"}.JobSource())
	assert.Equal(t, "inline", Message{JobDescription: "Go"}.JobSource())
}

func TestRoutingKey(t *testing.T) {
	assert.Equal(t, "tailor."+testID, RoutingKey(testID))
}
