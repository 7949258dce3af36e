// Package repository defines repository interfaces for data access.
// Note: user accounts live in the external identity provider; user_id
// parameters are provider-issued IDs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

// Sentinel errors surfaced by repositories.
var (
	// ErrJobReferenced is returned when a job deletion is blocked by a
	// saved-job bookmark or a tailored-CV artefact.
	ErrJobReferenced = errors.New("job has user references")
	// ErrDuplicateSave is returned when a user saves the same job twice.
	ErrDuplicateSave = errors.New("job already saved")
	// ErrSaveLimitReached is returned when a user is at the live-save cap.
	ErrSaveLimitReached = errors.New("saved job limit reached")
)

// UpsertOutcome describes what a job upsert did.
type UpsertOutcome string

const (
	UpsertInserted  UpsertOutcome = "inserted"
	UpsertRefreshed UpsertOutcome = "refreshed"
	UpsertDropped   UpsertOutcome = "dropped"
)

// JobFilters narrows a job listing.
type JobFilters struct {
	// Query matches title, company, and description case-insensitively.
	// Callers should pre-truncate; List also hard-caps it at 100 chars.
	Query      string
	Location   string
	Source     string
	JobType    string
	RemoteType string
	MaxAgeDays int
}

// JobRepository defines methods for job data access.
type JobRepository interface {
	// Upsert inserts a job or refreshes the existing row it dedups to.
	// Stale inputs (older than freshnessCutoff) refresh but never insert.
	Upsert(ctx context.Context, job *models.Job, freshnessCutoff time.Time) (UpsertOutcome, error)
	GetByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filters JobFilters, limit, offset int) ([]*models.Job, int, error)
	// ListScrapedSince returns jobs with scraped_at >= cutoff (recommendation candidates).
	ListScrapedSince(ctx context.Context, cutoff time.Time) ([]*models.Job, error)
	// DeleteOld deletes unreferenced jobs strictly older than cutoff in
	// batches, returning (deleted, protected) counts.
	DeleteOld(ctx context.Context, cutoff time.Time, batchSize int) (deleted, protected int, err error)
	// DeleteOwned removes a user-submitted job owned by ownerID.
	// Returns false when no matching owned job exists.
	DeleteOwned(ctx context.Context, id, ownerID string) (bool, error)
}

// RecommendationRepository defines methods for recommendation data access.
type RecommendationRepository interface {
	// ReplaceForUser atomically swaps the user's recommendation set.
	ReplaceForUser(ctx context.Context, userID string, recs []*models.Recommendation) error
	// ListLive returns unexpired recommendations joined with their jobs,
	// ordered by score descending.
	ListLive(ctx context.Context, userID string, now time.Time, limit, offset int) ([]*models.Recommendation, int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	CountLive(ctx context.Context, userID string, now time.Time) (int, error)
}

// SavedJobRepository defines methods for saved-job bookmark data access.
type SavedJobRepository interface {
	// Save bookmarks a job, enforcing the live-save cap and uniqueness.
	Save(ctx context.Context, userID, jobID string, expiresAt time.Time, maxLive int) (*models.SavedJob, error)
	Unsave(ctx context.Context, userID, jobID string) (bool, error)
	GetByJobID(ctx context.Context, userID, jobID string) (*models.SavedJob, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.SavedJob, error)
	// UpdateStatus moves a bookmark through the application flow. Leaving
	// the saved status clears the expiry.
	UpdateStatus(ctx context.Context, userID, jobID, status string) (*models.SavedJob, error)
	// DeleteExpired removes bookmarks still in saved status past expiry.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// ProfileRepository defines methods for profile data access.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	// ListUserIDs returns every user with a profile (recommendation batch input).
	ListUserIDs(ctx context.Context) ([]string, error)
}

// CVRepository defines methods for CV metadata and parsed-view access.
type CVRepository interface {
	Create(ctx context.Context, cv *models.CV) error
	GetByID(ctx context.Context, id string) (*models.CV, error)
	// GetActive returns the user's active CV, or nil if none.
	GetActive(ctx context.Context, userID string) (*models.CV, error)
	// SetParsed stores the parsed view and marks the CV completed.
	SetParsed(ctx context.Context, id string, parsed *models.ParsedCV) error
	MarkFailed(ctx context.Context, id, errMsg string) error
}

// TailoredCVRepository defines methods for tailored-CV artefacts.
type TailoredCVRepository interface {
	Create(ctx context.Context, tcv *models.TailoredCV) error
	GetByID(ctx context.Context, id string) (*models.TailoredCV, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.TailoredCV, error)
}

// ScrapeRunRepository defines methods for scrape-run records.
type ScrapeRunRepository interface {
	Create(ctx context.Context, run *models.ScrapeRun) error
	GetByID(ctx context.Context, id string) (*models.ScrapeRun, error)
	Update(ctx context.Context, run *models.ScrapeRun) error
	ListRecent(ctx context.Context, limit int) ([]*models.ScrapeRun, error)
}

// Repositories holds all repository instances.
type Repositories struct {
	Job            JobRepository
	Recommendation RecommendationRepository
	SavedJob       SavedJobRepository
	Profile        ProfileRepository
	CV             CVRepository
	TailoredCV     TailoredCVRepository
	ScrapeRun      ScrapeRunRepository
}

// NewRepositories creates all repository instances.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Job:            NewSQLiteJobRepository(db),
		Recommendation: NewSQLiteRecommendationRepository(db),
		SavedJob:       NewSQLiteSavedJobRepository(db),
		Profile:        NewSQLiteProfileRepository(db),
		CV:             NewSQLiteCVRepository(db),
		TailoredCV:     NewSQLiteTailoredCVRepository(db),
		ScrapeRun:      NewSQLiteScrapeRunRepository(db),
	}
}
