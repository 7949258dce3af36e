package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteTailoredCVRepository implements TailoredCVRepository for SQLite/libsql.
type SQLiteTailoredCVRepository struct {
	db *sql.DB
}

// NewSQLiteTailoredCVRepository creates a new SQLite tailored-CV repository.
func NewSQLiteTailoredCVRepository(db *sql.DB) *SQLiteTailoredCVRepository {
	return &SQLiteTailoredCVRepository{db: db}
}

// Create inserts a tailored-CV artefact.
func (r *SQLiteTailoredCVRepository) Create(ctx context.Context, tcv *models.TailoredCV) error {
	now := time.Now().UTC()
	if tcv.ID == "" {
		tcv.ID = ulid.Make().String()
	}
	tcv.CreatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tailored_cvs (id, user_id, job_id, cv_id, content, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		tcv.ID,
		tcv.UserID,
		tcv.JobID,
		tcv.CVID,
		tcv.Content,
		now.Format(time.RFC3339),
	)
	return err
}

// GetByID retrieves a tailored CV by ID. Returns nil if not found.
func (r *SQLiteTailoredCVRepository) GetByID(ctx context.Context, id string) (*models.TailoredCV, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, job_id, cv_id, content, created_at
		FROM tailored_cvs WHERE id = ?
	`, id)

	var tcv models.TailoredCV
	var createdAt string
	err := row.Scan(&tcv.ID, &tcv.UserID, &tcv.JobID, &tcv.CVID, &tcv.Content, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	tcv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &tcv, nil
}

// ListByUserID returns a user's tailored CVs, newest first.
func (r *SQLiteTailoredCVRepository) ListByUserID(ctx context.Context, userID string) ([]*models.TailoredCV, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, job_id, cv_id, content, created_at
		FROM tailored_cvs WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tcvs []*models.TailoredCV
	for rows.Next() {
		var tcv models.TailoredCV
		var createdAt string
		if err := rows.Scan(&tcv.ID, &tcv.UserID, &tcv.JobID, &tcv.CVID, &tcv.Content, &createdAt); err != nil {
			return nil, err
		}
		tcv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		tcvs = append(tcvs, &tcv)
	}
	return tcvs, rows.Err()
}
