package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// maxSearchQueryLen bounds the full-text search term.
const maxSearchQueryLen = 100

// SQLiteJobRepository implements JobRepository for SQLite/libsql.
type SQLiteJobRepository struct {
	db *sql.DB
}

// NewSQLiteJobRepository creates a new SQLite job repository.
func NewSQLiteJobRepository(db *sql.DB) *SQLiteJobRepository {
	return &SQLiteJobRepository{db: db}
}

const jobColumns = `id, title, company, location, description, apply_url, source, source_id,
	fingerprint, job_type, remote_type, salary_min, salary_max, salary_currency,
	experience_level, skills, requirements, owner_id, posted_at, scraped_at, created_at`

// Upsert inserts a job or refreshes the row it dedups to.
//
// Identity is (source, source_id) when the source assigns an ID, the
// fingerprint otherwise; the two regimes never merge. On a hit the row's
// scraped_at is refreshed and empty structured fields are refilled without
// overwriting populated ones. A job posted before freshnessCutoff is never
// inserted fresh: it either refreshes an existing row or is dropped.
func (r *SQLiteJobRepository) Upsert(ctx context.Context, job *models.Job, freshnessCutoff time.Time) (UpsertOutcome, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var row *sql.Row
	if job.SourceID != nil {
		row = tx.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE source = ? AND source_id = ?`,
			job.Source, *job.SourceID)
	} else {
		row = tx.QueryRowContext(ctx,
			`SELECT `+jobColumns+` FROM jobs WHERE fingerprint = ? AND source_id IS NULL`,
			job.Fingerprint)
	}

	existing, err := scanJobRow(row)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()

	if existing != nil {
		if err := refreshJob(ctx, tx, existing, job, now); err != nil {
			return "", err
		}
		if err := tx.Commit(); err != nil {
			return "", err
		}
		job.ID = existing.ID
		job.ScrapedAt = now
		return UpsertRefreshed, nil
	}

	// Stale postings never create new rows.
	if job.PostedAt != nil && job.PostedAt.Before(freshnessCutoff) {
		return UpsertDropped, nil
	}

	if job.ID == "" {
		job.ID = ulid.Make().String()
	}
	job.ScrapedAt = now
	job.CreatedAt = now

	_, err = tx.ExecContext(ctx, `
		INSERT INTO jobs (
			id, title, company, location, description, apply_url, source, source_id,
			fingerprint, job_type, remote_type, salary_min, salary_max, salary_currency,
			experience_level, skills, requirements, owner_id, posted_at, scraped_at, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		job.ID,
		job.Title,
		job.Company,
		job.Location,
		job.Description,
		job.ApplyURL,
		job.Source,
		job.SourceID,
		job.Fingerprint,
		job.JobType,
		job.RemoteType,
		job.SalaryMin,
		job.SalaryMax,
		job.SalaryCurrency,
		job.ExperienceLevel,
		marshalStrings(job.Skills),
		marshalStrings(job.Requirements),
		job.OwnerID,
		formatTimePtr(job.PostedAt),
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert job: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return UpsertInserted, nil
}

// refreshJob bumps scraped_at and fills structured fields that the stored
// row is missing. Populated fields are never overwritten.
func refreshJob(ctx context.Context, tx *sql.Tx, existing, incoming *models.Job, now time.Time) error {
	sets := []string{"scraped_at = ?"}
	args := []any{now.Format(time.RFC3339)}

	addIfMissing := func(column string, current *string, incoming *string) {
		if current == nil && incoming != nil {
			sets = append(sets, column+" = ?")
			args = append(args, *incoming)
		}
	}
	addIfMissing("apply_url", existing.ApplyURL, incoming.ApplyURL)
	addIfMissing("job_type", existing.JobType, incoming.JobType)
	addIfMissing("remote_type", existing.RemoteType, incoming.RemoteType)
	addIfMissing("salary_currency", existing.SalaryCurrency, incoming.SalaryCurrency)
	addIfMissing("experience_level", existing.ExperienceLevel, incoming.ExperienceLevel)

	if existing.SalaryMin == nil && incoming.SalaryMin != nil {
		sets = append(sets, "salary_min = ?")
		args = append(args, *incoming.SalaryMin)
	}
	if existing.SalaryMax == nil && incoming.SalaryMax != nil {
		sets = append(sets, "salary_max = ?")
		args = append(args, *incoming.SalaryMax)
	}
	if len(existing.Skills) == 0 && len(incoming.Skills) > 0 {
		sets = append(sets, "skills = ?")
		args = append(args, marshalStrings(incoming.Skills))
	}
	if len(existing.Requirements) == 0 && len(incoming.Requirements) > 0 {
		sets = append(sets, "requirements = ?")
		args = append(args, marshalStrings(incoming.Requirements))
	}
	if existing.PostedAt == nil && incoming.PostedAt != nil {
		sets = append(sets, "posted_at = ?")
		args = append(args, incoming.PostedAt.UTC().Format(time.RFC3339))
	}
	if existing.Description == "" && incoming.Description != "" {
		sets = append(sets, "description = ?")
		args = append(args, incoming.Description)
	}
	if existing.Location == "" && incoming.Location != "" {
		sets = append(sets, "location = ?")
		args = append(args, incoming.Location)
	}

	args = append(args, existing.ID)
	_, err := tx.ExecContext(ctx, `UPDATE jobs SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("refresh job: %w", err)
	}
	return nil
}

// GetByID retrieves a job by ID. Returns nil if not found.
func (r *SQLiteJobRepository) GetByID(ctx context.Context, id string) (*models.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJobRow(row)
}

// List returns a filtered page of jobs plus the total match count.
func (r *SQLiteJobRepository) List(ctx context.Context, filters JobFilters, limit, offset int) ([]*models.Job, int, error) {
	var conds []string
	var args []any

	if q := strings.TrimSpace(filters.Query); q != "" {
		if len(q) > maxSearchQueryLen {
			q = q[:maxSearchQueryLen]
		}
		pattern := "%" + strings.ToLower(q) + "%"
		conds = append(conds, `(LOWER(title) LIKE ? OR LOWER(company) LIKE ? OR LOWER(description) LIKE ?)`)
		args = append(args, pattern, pattern, pattern)
	}
	if filters.Location != "" {
		conds = append(conds, `LOWER(location) LIKE ?`)
		args = append(args, "%"+strings.ToLower(filters.Location)+"%")
	}
	if filters.Source != "" {
		conds = append(conds, `source = ?`)
		args = append(args, filters.Source)
	}
	if filters.JobType != "" {
		conds = append(conds, `job_type = ?`)
		args = append(args, filters.JobType)
	}
	if filters.RemoteType != "" {
		conds = append(conds, `remote_type = ?`)
		args = append(args, filters.RemoteType)
	}
	if filters.MaxAgeDays > 0 {
		cutoff := time.Now().UTC().AddDate(0, 0, -filters.MaxAgeDays)
		conds = append(conds, `scraped_at >= ?`)
		args = append(args, cutoff.Format(time.RFC3339))
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM jobs`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobColumns + ` FROM jobs` + where + ` ORDER BY scraped_at DESC, id LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	jobs, err := scanJobRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// ListScrapedSince returns jobs scraped at or after cutoff.
func (r *SQLiteJobRepository) ListScrapedSince(ctx context.Context, cutoff time.Time) ([]*models.Job, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE scraped_at >= ? ORDER BY scraped_at DESC, id`,
		cutoff.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanJobRows(rows)
}

// DeleteOld removes jobs strictly older than cutoff that no saved-job or
// tailored-CV artefact references. Referenced jobs are counted as protected.
// Recommendations cascade via the schema. Deletion runs in batches so a large
// backlog does not hold one long transaction.
func (r *SQLiteJobRepository) DeleteOld(ctx context.Context, cutoff time.Time, batchSize int) (int, int, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	cutoffStr := cutoff.UTC().Format(time.RFC3339)

	deleted := 0
	for {
		res, err := r.db.ExecContext(ctx, `
			DELETE FROM jobs WHERE id IN (
				SELECT j.id FROM jobs j
				WHERE j.scraped_at < ?
				  AND NOT EXISTS (SELECT 1 FROM saved_jobs s WHERE s.job_id = j.id)
				  AND NOT EXISTS (SELECT 1 FROM tailored_cvs t WHERE t.job_id = j.id)
				LIMIT ?
			)
		`, cutoffStr, batchSize)
		if err != nil {
			return deleted, 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return deleted, 0, err
		}
		deleted += int(n)
		if n < int64(batchSize) {
			break
		}
		// Yield between batches so a retention sweep cannot monopolise the pool.
		select {
		case <-ctx.Done():
			return deleted, 0, ctx.Err()
		default:
		}
	}

	var protected int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM jobs j
		WHERE j.scraped_at < ?
		  AND (EXISTS (SELECT 1 FROM saved_jobs s WHERE s.job_id = j.id)
		    OR EXISTS (SELECT 1 FROM tailored_cvs t WHERE t.job_id = j.id))
	`, cutoffStr).Scan(&protected)
	if err != nil {
		return deleted, 0, err
	}

	return deleted, protected, nil
}

// DeleteOwned removes a user-submitted job owned by ownerID.
func (r *SQLiteJobRepository) DeleteOwned(ctx context.Context, id, ownerID string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM jobs WHERE id = ? AND owner_id = ? AND source = ?`,
		id, ownerID, models.SourceExternal)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return false, ErrJobReferenced
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// scanJobRow scans a single row into a Job. Returns nil if no row.
func scanJobRow(row *sql.Row) (*models.Job, error) {
	job, err := scanJob(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

// scanJobRows scans multiple rows into a Job slice.
func scanJobRows(rows *sql.Rows) ([]*models.Job, error) {
	var jobs []*models.Job
	for rows.Next() {
		job, err := scanJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// scanJob scans the jobColumns column set via the given scan function.
func scanJob(scan func(dest ...any) error) (*models.Job, error) {
	var job models.Job
	var applyURL, sourceID, jobType, remoteType, salaryCurrency sql.NullString
	var experienceLevel, skillsJSON, requirementsJSON, ownerID sql.NullString
	var salaryMin, salaryMax sql.NullFloat64
	var postedAt sql.NullString
	var scrapedAt, createdAt string

	err := scan(
		&job.ID,
		&job.Title,
		&job.Company,
		&job.Location,
		&job.Description,
		&applyURL,
		&job.Source,
		&sourceID,
		&job.Fingerprint,
		&jobType,
		&remoteType,
		&salaryMin,
		&salaryMax,
		&salaryCurrency,
		&experienceLevel,
		&skillsJSON,
		&requirementsJSON,
		&ownerID,
		&postedAt,
		&scrapedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
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
	job.ScrapedAt, _ = time.Parse(time.RFC3339, scrapedAt)
	job.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	return &job, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if ns.Valid && ns.String != "" {
		return &ns.String
	}
	return nil
}

func marshalStrings(values []string) *string {
	if len(values) == 0 {
		return nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	s := string(b)
	return &s
}

func unmarshalStrings(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(ns.String), &values); err != nil {
		return nil
	}
	return values
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
