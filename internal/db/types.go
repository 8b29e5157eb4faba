package db

import (
	"time"

	"github.com/google/uuid"
)

// Run status values
const (
	RunStatusRunning   = "running"
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
	RunStatusDryRun    = "dry_run"
)

// Run represents a tailoring run record
type Run struct {
	ID           uuid.UUID  `json:"id"`
	TexPath      string     `json:"tex_path"`
	JobSource    string     `json:"job_source"`
	Status       string     `json:"status"`
	ArtifactPath string     `json:"artifact_path,omitempty"`
	PublishedURL string     `json:"published_url,omitempty"`
	PageCount    int        `json:"page_count"`
	Error        string     `json:"error,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// RunOutcome holds the fields written when a run finishes
type RunOutcome struct {
	Status       string
	ArtifactPath string
	PublishedURL string
	PageCount    int
	Error        string
}

// RunSection is the before/after text of one rewritten section
type RunSection struct {
	RunID    uuid.UUID `json:"run_id"`
	Title    string    `json:"title"`
	Found    bool      `json:"found"`
	Before   string    `json:"before"`
	After    string    `json:"after"`
	Warnings []string  `json:"warnings,omitempty"`
}
