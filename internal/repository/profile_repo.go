package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

// SQLiteProfileRepository implements ProfileRepository for SQLite/libsql.
type SQLiteProfileRepository struct {
	db *sql.DB
}

// NewSQLiteProfileRepository creates a new SQLite profile repository.
func NewSQLiteProfileRepository(db *sql.DB) *SQLiteProfileRepository {
	return &SQLiteProfileRepository{db: db}
}

// Get retrieves a user's profile. Returns nil if not found.
func (r *SQLiteProfileRepository) Get(ctx context.Context, userID string) (*models.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT user_id, primary_title, secondary_titles, seniority, work_preference,
		       industries, technical_skills, soft_skills, preferred_keywords,
		       writing_tone, created_at, updated_at
		FROM profiles WHERE user_id = ?
	`, userID)

	var p models.Profile
	var secondaryTitles, seniority, workPreference sql.NullString
	var industries, technicalSkills, softSkills, preferredKeywords, writingTone sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&p.UserID,
		&p.PrimaryTitle,
		&secondaryTitles,
		&seniority,
		&workPreference,
		&industries,
		&technicalSkills,
		&softSkills,
		&preferredKeywords,
		&writingTone,
		&createdAt,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.SecondaryTitles = unmarshalStrings(secondaryTitles)
	p.Seniority = nullStringPtr(seniority)
	p.WorkPreference = nullStringPtr(workPreference)
	p.Industries = unmarshalStrings(industries)
	p.SoftSkills = unmarshalStrings(softSkills)
	p.PreferredKeywords = unmarshalStrings(preferredKeywords)
	p.WritingTone = nullStringPtr(writingTone)

	if technicalSkills.Valid && technicalSkills.String != "" {
		var skills []models.ProfileSkill
		if err := json.Unmarshal([]byte(technicalSkills.String), &skills); err == nil {
			p.TechnicalSkills = skills
		}
	}

	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &p, nil
}

// Upsert creates or replaces a user's profile.
func (r *SQLiteProfileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}

	var technicalSkills *string
	if len(profile.TechnicalSkills) > 0 {
		if b, err := json.Marshal(profile.TechnicalSkills); err == nil {
			s := string(b)
			technicalSkills = &s
		}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, primary_title, secondary_titles, seniority, work_preference,
			industries, technical_skills, soft_skills, preferred_keywords,
			writing_tone, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			primary_title = excluded.primary_title,
			secondary_titles = excluded.secondary_titles,
			seniority = excluded.seniority,
			work_preference = excluded.work_preference,
			industries = excluded.industries,
			technical_skills = excluded.technical_skills,
			soft_skills = excluded.soft_skills,
			preferred_keywords = excluded.preferred_keywords,
			writing_tone = excluded.writing_tone,
			updated_at = excluded.updated_at
	`,
		profile.UserID,
		profile.PrimaryTitle,
		marshalStrings(profile.SecondaryTitles),
		profile.Seniority,
		profile.WorkPreference,
		marshalStrings(profile.Industries),
		technicalSkills,
		marshalStrings(profile.SoftSkills),
		marshalStrings(profile.PreferredKeywords),
		profile.WritingTone,
		profile.CreatedAt.Format(time.RFC3339),
		now.Format(time.RFC3339),
	)
	return err
}

// ListUserIDs returns every user with a profile.
func (r *SQLiteProfileRepository) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id FROM profiles ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
