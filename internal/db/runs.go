package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const runColumns = `id, tex_path, job_source, status, artifact_path, published_url,
	page_count, error, created_at, completed_at`

// CreateRun inserts a run in the running state
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, texPath, jobSource string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailor_runs (id, tex_path, job_source, status)
		 VALUES ($1, $2, $3, $4)`,
		runID, texPath, jobSource, RunStatusRunning,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the final state of a run
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, outcome RunOutcome) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE tailor_runs
		 SET status = $1, artifact_path = $2, published_url = $3, page_count = $4,
		     error = $5, completed_at = NOW()
		 WHERE id = $6`,
		outcome.Status, outcome.ArtifactPath, outcome.PublishedURL, outcome.PageCount,
		outcome.Error, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("run not found: %s", runID)
	}
	return nil
}

// GetRun retrieves a run by ID; a missing run yields nil, nil
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*Run, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM tailor_runs WHERE id = $1`, runID)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns retrieves the most recent runs
func (db *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM tailor_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// SaveSection stores the before/after text of a section for a run
func (db *DB) SaveSection(ctx context.Context, section RunSection) error {
	var warnings []byte
	if len(section.Warnings) > 0 {
		var err error
		warnings, err = json.Marshal(section.Warnings)
		if err != nil {
			return fmt.Errorf("failed to marshal warnings: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO tailor_run_sections (run_id, title, found, before_text, after_text, warnings)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (run_id, title) DO UPDATE
		 SET found = $3, before_text = $4, after_text = $5, warnings = $6, created_at = NOW()`,
		section.RunID, section.Title, section.Found, section.Before, section.After, warnings,
	)
	if err != nil {
		return fmt.Errorf("failed to save section %s: %w", section.Title, err)
	}
	return nil
}

// ListSections retrieves the sections recorded for a run
func (db *DB) ListSections(ctx context.Context, runID uuid.UUID) ([]RunSection, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT run_id, title, found, before_text, after_text, warnings
		 FROM tailor_run_sections WHERE run_id = $1 ORDER BY created_at ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []RunSection
	for rows.Next() {
		var s RunSection
		var warnings []byte
		if err := rows.Scan(&s.RunID, &s.Title, &s.Found, &s.Before, &s.After, &warnings); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if len(warnings) > 0 {
			_ = json.Unmarshal(warnings, &s.Warnings)
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	err := row.Scan(&run.ID, &run.TexPath, &run.JobSource, &run.Status, &run.ArtifactPath,
		&run.PublishedURL, &run.PageCount, &run.Error, &run.CreatedAt, &run.CompletedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
