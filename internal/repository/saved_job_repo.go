package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteSavedJobRepository implements SavedJobRepository for SQLite/libsql.
type SQLiteSavedJobRepository struct {
	db *sql.DB
}

// NewSQLiteSavedJobRepository creates a new SQLite saved-job repository.
func NewSQLiteSavedJobRepository(db *sql.DB) *SQLiteSavedJobRepository {
	return &SQLiteSavedJobRepository{db: db}
}

// Save bookmarks a job for a user. The live-save cap is checked inside the
// same transaction as the insert so concurrent saves cannot exceed it.
func (r *SQLiteSavedJobRepository) Save(ctx context.Context, userID, jobID string, expiresAt time.Time, maxLive int) (*models.SavedJob, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var liveCount int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM saved_jobs WHERE user_id = ? AND status = ?`,
		userID, models.SavedStatusSaved).Scan(&liveCount)
	if err != nil {
		return nil, err
	}
	if liveCount >= maxLive {
		return nil, ErrSaveLimitReached
	}

	now := time.Now().UTC()
	saved := &models.SavedJob{
		ID:        ulid.Make().String(),
		UserID:    userID,
		JobID:     jobID,
		Status:    models.SavedStatusSaved,
		SavedAt:   now,
		ExpiresAt: &expiresAt,
		UpdatedAt: now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO saved_jobs (id, user_id, job_id, status, saved_at, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		saved.ID,
		userID,
		jobID,
		saved.Status,
		now.Format(time.RFC3339),
		expiresAt.UTC().Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, ErrDuplicateSave
		}
		return nil, fmt.Errorf("insert saved job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return saved, nil
}

// Unsave removes a bookmark. Returns false when none existed.
func (r *SQLiteSavedJobRepository) Unsave(ctx context.Context, userID, jobID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE user_id = ? AND job_id = ?`, userID, jobID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetByJobID retrieves a user's bookmark on a job. Returns nil if not found.
func (r *SQLiteSavedJobRepository) GetByJobID(ctx context.Context, userID, jobID string) (*models.SavedJob, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, job_id, status, saved_at, expires_at, updated_at
		FROM saved_jobs WHERE user_id = ? AND job_id = ?
	`, userID, jobID)
	return scanSavedJobRow(row)
}

// ListByUserID returns a user's bookmarks joined with their jobs, newest first.
func (r *SQLiteSavedJobRepository) ListByUserID(ctx context.Context, userID string) ([]*models.SavedJob, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.user_id, s.job_id, s.status, s.saved_at, s.expires_at, s.updated_at,
		       `+prefixedJobColumns("j")+`
		FROM saved_jobs s
		JOIN jobs j ON j.id = s.job_id
		WHERE s.user_id = ?
		ORDER BY s.saved_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var saved []*models.SavedJob
	for rows.Next() {
		var sj models.SavedJob
		var expiresAt sql.NullString
		var savedAt, updatedAt string

		var job models.Job
		var applyURL, sourceID, jobType, remoteType, salaryCurrency sql.NullString
		var experienceLevel, skillsJSON, requirementsJSON, ownerID sql.NullString
		var salaryMin, salaryMax sql.NullFloat64
		var postedAt sql.NullString
		var jobScrapedAt, jobCreatedAt string

		err := rows.Scan(
			&sj.ID, &sj.UserID, &sj.JobID, &sj.Status, &savedAt, &expiresAt, &updatedAt,
			&job.ID, &job.Title, &job.Company, &job.Location, &job.Description,
			&applyURL, &job.Source, &sourceID, &job.Fingerprint, &jobType, &remoteType,
			&salaryMin, &salaryMax, &salaryCurrency, &experienceLevel,
			&skillsJSON, &requirementsJSON, &ownerID, &postedAt, &jobScrapedAt, &jobCreatedAt,
		)
		if err != nil {
			return nil, err
		}

		sj.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
		sj.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		if expiresAt.Valid && expiresAt.String != "" {
			if t, err := time.Parse(time.RFC3339, expiresAt.String); err == nil {
				sj.ExpiresAt = &t
			}
		}

		job.ApplyURL = nullStringPtr(applyURL)
		job.SourceID = nullStringPtr(sourceID)
		job.JobType = nullStringPtr(jobType)
		job.RemoteType = nullStringPtr(remoteType)
		job.SalaryCurrency = nullStringPtr(salaryCurrency)
		job.ExperienceLevel = nullStringPtr(experienceLevel)
		job.OwnerID = nullStringPtr(ownerID)
		if salaryMin.Valid {
			job.SalaryMin = &salaryMin.Float64
		}
		if salaryMax.Valid {
			job.SalaryMax = &salaryMax.Float64
		}
		job.Skills = unmarshalStrings(skillsJSON)
		job.Requirements = unmarshalStrings(requirementsJSON)
		if postedAt.Valid && postedAt.String != "" {
			if t, err := time.Parse(time.RFC3339, postedAt.String); err == nil {
				job.PostedAt = &t
			}
		}
		job.ScrapedAt, _ = time.Parse(time.RFC3339, jobScrapedAt)
		job.CreatedAt, _ = time.Parse(time.RFC3339, jobCreatedAt)
		sj.Job = &job

		saved = append(saved, &sj)
	}
	return saved, rows.Err()
}

// UpdateStatus moves a bookmark to a new status. Leaving the saved status
// clears the expiry; returning to it restores none (the bookmark no longer
// auto-expires once the user has acted on it).
func (r *SQLiteSavedJobRepository) UpdateStatus(ctx context.Context, userID, jobID, status string) (*models.SavedJob, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if status == models.SavedStatusSaved {
		res, err = r.db.ExecContext(ctx,
			`UPDATE saved_jobs SET status = ?, updated_at = ? WHERE user_id = ? AND job_id = ?`,
			status, now, userID, jobID)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE saved_jobs SET status = ?, expires_at = NULL, updated_at = ? WHERE user_id = ? AND job_id = ?`,
			status, now, userID, jobID)
	}
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	return r.GetByJobID(ctx, userID, jobID)
}

// DeleteExpired removes bookmarks still in saved status whose expiry has
// passed. Bookmarks in any other status are never swept.
func (r *SQLiteSavedJobRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM saved_jobs WHERE status = ? AND expires_at IS NOT NULL AND expires_at <= ?`,
		models.SavedStatusSaved, now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanSavedJobRow scans a single saved-job row. Returns nil if no row.
func scanSavedJobRow(row *sql.Row) (*models.SavedJob, error) {
	var sj models.SavedJob
	var expiresAt sql.NullString
	var savedAt, updatedAt string

	err := row.Scan(&sj.ID, &sj.UserID, &sj.JobID, &sj.Status, &savedAt, &expiresAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sj.SavedAt, _ = time.Parse(time.RFC3339, savedAt)
	sj.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if expiresAt.Valid && expiresAt.String != "" {
		if t, err := time.Parse(time.RFC3339, expiresAt.String); err == nil {
			sj.ExpiresAt = &t
		}
	}
	return &sj, nil
}
