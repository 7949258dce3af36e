package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteRecommendationRepository implements RecommendationRepository for SQLite/libsql.
type SQLiteRecommendationRepository struct {
	db *sql.DB
}

// NewSQLiteRecommendationRepository creates a new SQLite recommendation repository.
func NewSQLiteRecommendationRepository(db *sql.DB) *SQLiteRecommendationRepository {
	return &SQLiteRecommendationRepository{db: db}
}

// ReplaceForUser atomically swaps the user's recommendation set: the old rows
// are removed and the new ones inserted in one transaction, so a concurrent
// reader sees either the old set or the new set, never a mix.
func (r *SQLiteRecommendationRepository) ReplaceForUser(ctx context.Context, userID string, recs []*models.Recommendation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recommendations WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("clear recommendations: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recommendations (id, user_id, job_id, score, reason, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range recs {
		if rec.ID == "" {
			rec.ID = ulid.Make().String()
		}
		rec.UserID = userID
		if _, err := stmt.ExecContext(ctx,
			rec.ID,
			userID,
			rec.JobID,
			rec.Score,
			rec.Reason,
			rec.CreatedAt.UTC().Format(time.RFC3339),
			rec.ExpiresAt.UTC().Format(time.RFC3339),
		); err != nil {
			return fmt.Errorf("insert recommendation for job %s: %w", rec.JobID, err)
		}
	}

	return tx.Commit()
}

// ListLive returns unexpired recommendations joined with their jobs,
// ordered by score descending, plus the total live count.
func (r *SQLiteRecommendationRepository) ListLive(ctx context.Context, userID string, now time.Time, limit, offset int) ([]*models.Recommendation, int, error) {
	nowStr := now.UTC().Format(time.RFC3339)

	total, err := r.CountLive(ctx, userID, now)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, r.job_id, r.score, r.reason, r.created_at, r.expires_at,
		       `+prefixedJobColumns("j")+`
		FROM recommendations r
		JOIN jobs j ON j.id = r.job_id
		WHERE r.user_id = ? AND r.expires_at > ?
		ORDER BY r.score DESC, j.scraped_at DESC, r.job_id
		LIMIT ? OFFSET ?
	`, userID, nowStr, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var recs []*models.Recommendation
	for rows.Next() {
		rec, err := scanRecommendationWithJob(rows)
		if err != nil {
			return nil, 0, err
		}
		recs = append(recs, rec)
	}
	return recs, total, rows.Err()
}

// DeleteExpired removes recommendations whose expiry has passed.
func (r *SQLiteRecommendationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM recommendations WHERE expires_at <= ?`,
		now.UTC().Format(time.RFC3339))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountLive returns the number of unexpired recommendations for a user.
func (r *SQLiteRecommendationRepository) CountLive(ctx context.Context, userID string, now time.Time) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recommendations WHERE user_id = ? AND expires_at > ?`,
		userID, now.UTC().Format(time.RFC3339)).Scan(&count)
	return count, err
}

// prefixedJobColumns returns the job column list qualified with a table alias.
func prefixedJobColumns(alias string) string {
	return alias + `.id, ` + alias + `.title, ` + alias + `.company, ` + alias + `.location, ` +
		alias + `.description, ` + alias + `.apply_url, ` + alias + `.source, ` + alias + `.source_id, ` +
		alias + `.fingerprint, ` + alias + `.job_type, ` + alias + `.remote_type, ` + alias + `.salary_min, ` +
		alias + `.salary_max, ` + alias + `.salary_currency, ` + alias + `.experience_level, ` +
		alias + `.skills, ` + alias + `.requirements, ` + alias + `.owner_id, ` + alias + `.posted_at, ` +
		alias + `.scraped_at, ` + alias + `.created_at`
}

// scanRecommendationWithJob scans a recommendation row joined with its job.
func scanRecommendationWithJob(rows *sql.Rows) (*models.Recommendation, error) {
	var rec models.Recommendation
	var reason sql.NullString
	var createdAt, expiresAt string

	var job models.Job
	var applyURL, sourceID, jobType, remoteType, salaryCurrency sql.NullString
	var experienceLevel, skillsJSON, requirementsJSON, ownerID sql.NullString
	var salaryMin, salaryMax sql.NullFloat64
	var postedAt sql.NullString
	var jobScrapedAt, jobCreatedAt string

	err := rows.Scan(
		&rec.ID, &rec.UserID, &rec.JobID, &rec.Score, &reason, &createdAt, &expiresAt,
		&job.ID, &job.Title, &job.Company, &job.Location, &job.Description,
		&applyURL, &job.Source, &sourceID, &job.Fingerprint, &jobType, &remoteType,
		&salaryMin, &salaryMax, &salaryCurrency, &experienceLevel,
		&skillsJSON, &requirementsJSON, &ownerID, &postedAt, &jobScrapedAt, &jobCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Reason = nullStringPtr(reason)
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.ExpiresAt, _ = time.Parse(time.RFC3339, expiresAt)

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

	rec.Job = &job
	return &rec, nil
}
