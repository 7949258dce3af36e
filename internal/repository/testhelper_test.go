package repository

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/hireloop/hireloop-api/internal/database/migrations"
)

// setupTestDB creates an in-memory SQLite database with the full schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	if err := migrations.Run(db, nil); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

// setupTestRepos creates all repositories backed by a fresh test database.
func setupTestRepos(t *testing.T) (*Repositories, *sql.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewRepositories(db), db
}

// insertTestJob inserts a job row directly, bypassing Upsert, so tests can
// control scraped_at. The fingerprint and source_id derive from the ID.
func insertTestJob(t *testing.T, db *sql.DB, id, title, company string, scrapedAt time.Time) {
	t.Helper()
	ts := scrapedAt.UTC().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO jobs (id, title, company, location, description, source, source_id, fingerprint, scraped_at, created_at)
		VALUES (?, ?, ?, '', '', 'remotive', ?, ?, ?, ?)
	`, id, title, company, "src-"+id, "fp-"+id, ts, ts)
	if err != nil {
		t.Fatalf("failed to insert test job: %v", err)
	}
}

// insertTestExternalJob inserts a user-submitted job owned by ownerID.
func insertTestExternalJob(t *testing.T, db *sql.DB, id, ownerID string) {
	t.Helper()
	ts := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO jobs (id, title, company, location, description, source, fingerprint, owner_id, scraped_at, created_at)
		VALUES (?, 'Submitted Role', 'Acme', '', '', 'external', ?, ?, ?, ?)
	`, id, "fp-"+id, ownerID, ts, ts)
	if err != nil {
		t.Fatalf("failed to insert external test job: %v", err)
	}
}

// insertTestProfile inserts a minimal profile row.
func insertTestProfile(t *testing.T, db *sql.DB, userID, primaryTitle string) {
	t.Helper()
	ts := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO profiles (user_id, primary_title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`, userID, primaryTitle, ts, ts)
	if err != nil {
		t.Fatalf("failed to insert test profile: %v", err)
	}
}

// insertTestCV inserts a CV row with the given status and active flag.
func insertTestCV(t *testing.T, db *sql.DB, id, userID, status string, active bool) {
	t.Helper()
	ts := time.Now().UTC().Format(time.RFC3339)
	activeInt := 0
	if active {
		activeInt = 1
	}
	_, err := db.Exec(`
		INSERT INTO cvs (id, user_id, filename, status, is_active, created_at, updated_at)
		VALUES (?, ?, 'cv.pdf', ?, ?, ?, ?)
	`, id, userID, status, activeInt, ts, ts)
	if err != nil {
		t.Fatalf("failed to insert test CV: %v", err)
	}
}

// insertTestSavedJob inserts a bookmark row with the given status and expiry.
func insertTestSavedJob(t *testing.T, db *sql.DB, id, userID, jobID, status string, expiresAt *time.Time) {
	t.Helper()
	ts := time.Now().UTC().Format(time.RFC3339)
	var expires *string
	if expiresAt != nil {
		s := expiresAt.UTC().Format(time.RFC3339)
		expires = &s
	}
	_, err := db.Exec(`
		INSERT INTO saved_jobs (id, user_id, job_id, status, saved_at, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, userID, jobID, status, ts, expires, ts)
	if err != nil {
		t.Fatalf("failed to insert test saved job: %v", err)
	}
}

// insertTestTailoredCV inserts a tailored-CV artefact row.
func insertTestTailoredCV(t *testing.T, db *sql.DB, id, userID, jobID, cvID string) {
	t.Helper()
	ts := time.Now().UTC().Format(time.RFC3339)
	_, err := db.Exec(`
		INSERT INTO tailored_cvs (id, user_id, job_id, cv_id, content, created_at)
		VALUES (?, ?, ?, ?, 'tailored content', ?)
	`, id, userID, jobID, cvID, ts)
	if err != nil {
		t.Fatalf("failed to insert test tailored CV: %v", err)
	}
}
