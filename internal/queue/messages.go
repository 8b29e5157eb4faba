package queue

import (
	"path/filepath"
	"time"
)

// Update status values
const (
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
)

// Message is a queued tailoring request
type Message struct {
	ID             string `json:"id"`
	TexPath        string `json:"tex_path"`
	JobDescription string `json:"job_description,omitempty"`
	JobPath        string `json:"job_path,omitempty"`
	JobURL         string `json:"job_url,omitempty"`
	OutputPath     string `json:"output_path,omitempty"`
	Publish        bool   `json:"publish,omitempty"`
}

// JobSource names where the job description comes from
func (m Message) JobSource() string {
	switch {
	case m.JobURL != "":
		return m.JobURL
	case m.JobPath != "":
		return m.JobPath
	default:
		return "inline"
	}
}

// Paths returns the artifact and log paths for the request. Unless the
// message names an output path, both live in an output/ directory next to
// the source.
func (m Message) Paths() (output, log string) {
	dir := filepath.Join(filepath.Dir(m.TexPath), "output")
	output = m.OutputPath
	if output == "" {
		output = filepath.Join(dir, "resume_targeted.pdf")
	}
	return output, filepath.Join(filepath.Dir(output), "compile.log")
}

// Update is published to the updates exchange as a request progresses
type Update struct {
	ID           string    `json:"id"`
	RunID        string    `json:"run_id,omitempty"`
	Status       string    `json:"status"`
	Message      string    `json:"message"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	PublishedURL string    `json:"published_url,omitempty"`
	PageCount    int       `json:"page_count,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
