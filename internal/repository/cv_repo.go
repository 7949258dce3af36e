package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteCVRepository implements CVRepository for SQLite/libsql.
type SQLiteCVRepository struct {
	db *sql.DB
}

// NewSQLiteCVRepository creates a new SQLite CV repository.
func NewSQLiteCVRepository(db *sql.DB) *SQLiteCVRepository {
	return &SQLiteCVRepository{db: db}
}

// Create inserts CV metadata. Marking it active deactivates the user's
// previous active CV in the same transaction.
func (r *SQLiteCVRepository) Create(ctx context.Context, cv *models.CV) error {
	now := time.Now().UTC()
	if cv.ID == "" {
		cv.ID = ulid.Make().String()
	}
	if cv.Status == "" {
		cv.Status = models.CVStatusPending
	}
	cv.CreatedAt = now
	cv.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cv.IsActive {
		if _, err := tx.ExecContext(ctx,
			`UPDATE cvs SET is_active = 0, updated_at = ? WHERE user_id = ? AND is_active = 1`,
			now.Format(time.RFC3339), cv.UserID); err != nil {
			return fmt.Errorf("deactivate previous CV: %w", err)
		}
	}

	var parsedJSON *string
	if cv.Parsed != nil {
		if b, err := json.Marshal(cv.Parsed); err == nil {
			s := string(b)
			parsedJSON = &s
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cvs (id, user_id, filename, status, is_active, parsed_json, error_message, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		cv.ID,
		cv.UserID,
		cv.Filename,
		cv.Status,
		boolToInt(cv.IsActive),
		parsedJSON,
		cv.Error,
		now.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a CV by ID. Returns nil if not found.
func (r *SQLiteCVRepository) GetByID(ctx context.Context, id string) (*models.CV, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, status, is_active, parsed_json, error_message, created_at, updated_at
		FROM cvs WHERE id = ?
	`, id)
	return scanCV(row)
}

// GetActive returns the user's active CV, or nil if none.
func (r *SQLiteCVRepository) GetActive(ctx context.Context, userID string) (*models.CV, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, filename, status, is_active, parsed_json, error_message, created_at, updated_at
		FROM cvs WHERE user_id = ? AND is_active = 1
	`, userID)
	return scanCV(row)
}

// SetParsed stores the parsed view and marks the CV completed.
func (r *SQLiteCVRepository) SetParsed(ctx context.Context, id string, parsed *models.ParsedCV) error {
	b, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("marshal parsed CV: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE cvs SET parsed_json = ?, status = ?, error_message = NULL, updated_at = ?
		WHERE id = ?
	`, string(b), models.CVStatusCompleted, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

// MarkFailed records a parsing failure.
func (r *SQLiteCVRepository) MarkFailed(ctx context.Context, id, errMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE cvs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?
	`, models.CVStatusFailed, errMsg, time.Now().UTC().Format(time.RFC3339), id)
	return err
}

func scanCV(row *sql.Row) (*models.CV, error) {
	var cv models.CV
	var isActive int
	var parsedJSON, errMsg sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&cv.ID, &cv.UserID, &cv.Filename, &cv.Status, &isActive, &parsedJSON, &errMsg, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cv.IsActive = isActive == 1
	cv.Error = nullStringPtr(errMsg)
	if parsedJSON.Valid && parsedJSON.String != "" {
		var parsed models.ParsedCV
		if err := json.Unmarshal([]byte(parsedJSON.String), &parsed); err == nil {
			cv.Parsed = &parsed
		}
	}
	cv.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	cv.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &cv, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
