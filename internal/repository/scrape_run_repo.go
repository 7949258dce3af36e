package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteScrapeRunRepository implements ScrapeRunRepository for SQLite/libsql.
type SQLiteScrapeRunRepository struct {
	db *sql.DB
}

// NewSQLiteScrapeRunRepository creates a new SQLite scrape-run repository.
func NewSQLiteScrapeRunRepository(db *sql.DB) *SQLiteScrapeRunRepository {
	return &SQLiteScrapeRunRepository{db: db}
}

// Create inserts a new scrape run record.
func (r *SQLiteScrapeRunRepository) Create(ctx context.Context, run *models.ScrapeRun) error {
	now := time.Now().UTC()
	if run.ID == "" {
		run.ID = ulid.Make().String()
	}
	if run.Status == "" {
		run.Status = models.ScrapeStatusPending
	}
	run.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scrape_runs (
			id, sources, keywords, location, max_per_source, status,
			jobs_found, jobs_stored, duplicates, source_errors, error_message,
			started_at, completed_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		mustMarshal(run.Sources),
		marshalStrings(run.Keywords),
		nullIfEmpty(run.Location),
		run.MaxPerSource,
		run.Status,
		run.JobsFound,
		run.JobsStored,
		run.Duplicates,
		marshalSourceErrors(run.SourceErrors),
		run.Error,
		formatTimePtr(run.StartedAt),
		formatTimePtr(run.CompletedAt),
		now.Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves a scrape run by ID. Returns nil if not found.
func (r *SQLiteScrapeRunRepository) GetByID(ctx context.Context, id string) (*models.ScrapeRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, sources, keywords, location, max_per_source, status,
		       jobs_found, jobs_stored, duplicates, source_errors, error_message,
		       started_at, completed_at, created_at
		FROM scrape_runs WHERE id = ?
	`, id)
	return scanScrapeRun(row.Scan, true)
}

// Update persists the mutable fields of a scrape run.
func (r *SQLiteScrapeRunRepository) Update(ctx context.Context, run *models.ScrapeRun) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scrape_runs SET
			status = ?,
			jobs_found = ?,
			jobs_stored = ?,
			duplicates = ?,
			source_errors = ?,
			error_message = ?,
			started_at = ?,
			completed_at = ?
		WHERE id = ?
	`,
		run.Status,
		run.JobsFound,
		run.JobsStored,
		run.Duplicates,
		marshalSourceErrors(run.SourceErrors),
		run.Error,
		formatTimePtr(run.StartedAt),
		formatTimePtr(run.CompletedAt),
		run.ID,
	)
	return err
}

// ListRecent returns the most recent scrape runs, newest first.
func (r *SQLiteScrapeRunRepository) ListRecent(ctx context.Context, limit int) ([]*models.ScrapeRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, sources, keywords, location, max_per_source, status,
		       jobs_found, jobs_stored, duplicates, source_errors, error_message,
		       started_at, completed_at, created_at
		FROM scrape_runs ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*models.ScrapeRun
	for rows.Next() {
		run, err := scanScrapeRun(rows.Scan, false)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func scanScrapeRun(scan func(dest ...any) error, single bool) (*models.ScrapeRun, error) {
	var run models.ScrapeRun
	var sourcesJSON string
	var keywordsJSON, location, sourceErrorsJSON, errMsg sql.NullString
	var startedAt, completedAt sql.NullString
	var createdAt string

	err := scan(
		&run.ID,
		&sourcesJSON,
		&keywordsJSON,
		&location,
		&run.MaxPerSource,
		&run.Status,
		&run.JobsFound,
		&run.JobsStored,
		&run.Duplicates,
		&sourceErrorsJSON,
		&errMsg,
		&startedAt,
		&completedAt,
		&createdAt,
	)
	if single && err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	_ = json.Unmarshal([]byte(sourcesJSON), &run.Sources)
	run.Keywords = unmarshalStrings(keywordsJSON)
	if location.Valid {
		run.Location = location.String
	}
	if sourceErrorsJSON.Valid && sourceErrorsJSON.String != "" {
		var m map[string]string
		if err := json.Unmarshal([]byte(sourceErrorsJSON.String), &m); err == nil {
			run.SourceErrors = m
		}
	}
	run.Error = nullStringPtr(errMsg)
	if startedAt.Valid && startedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, startedAt.String); err == nil {
			run.StartedAt = &t
		}
	}
	if completedAt.Valid && completedAt.String != "" {
		if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
			run.CompletedAt = &t
		}
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &run, nil
}

func mustMarshal(values []string) string {
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func marshalSourceErrors(m map[string]string) *string {
	if len(m) == 0 {
		return nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
