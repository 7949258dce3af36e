package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// Service-level sentinel errors mapped to HTTP responses by the handlers.
var (
	ErrJobNotFound      = errors.New("job not found")
	ErrSavedJobNotFound = errors.New("saved job not found")
	ErrInvalidStatus    = errors.New("invalid saved-job status")
	ErrStatusTransition = errors.New("invalid status transition")
)

// SavedJobService manages bookmark lifecycle and the live-save cap.
type SavedJobService struct {
	savedRepo  repository.SavedJobRepository
	jobRepo    repository.JobRepository
	expiryDays int
	maxLive    int
	logger     *slog.Logger
}

// NewSavedJobService creates a saved-job service.
func NewSavedJobService(
	savedRepo repository.SavedJobRepository,
	jobRepo repository.JobRepository,
	expiryDays, maxLive int,
	logger *slog.Logger,
) *SavedJobService {
	return &SavedJobService{
		savedRepo:  savedRepo,
		jobRepo:    jobRepo,
		expiryDays: expiryDays,
		maxLive:    maxLive,
		logger:     logger.With("component", "saved-jobs"),
	}
}

// Save bookmarks a job for the user. Fails with ErrSaveLimitReached at the
// live-save cap and ErrDuplicateSave on a repeat save.
func (s *SavedJobService) Save(ctx context.Context, userID, jobID string) (*models.SavedJob, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	expiry := time.Now().UTC().AddDate(0, 0, s.expiryDays)
	saved, err := s.savedRepo.Save(ctx, userID, jobID, expiry, s.maxLive)
	if err != nil {
		return nil, err
	}
	saved.Job = job
	return saved, nil
}

// Unsave removes a bookmark.
func (s *SavedJobService) Unsave(ctx context.Context, userID, jobID string) error {
	removed, err := s.savedRepo.Unsave(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrSavedJobNotFound
	}
	return nil
}

// List returns the user's bookmarks joined with their jobs.
func (s *SavedJobService) List(ctx context.Context, userID string) ([]*models.SavedJob, error) {
	return s.savedRepo.ListByUserID(ctx, userID)
}

// savedStatusRank orders the nominal application flow. Rejected and offer
// share the final rank; both are terminal.
var savedStatusRank = map[string]int{
	models.SavedStatusSaved:        0,
	models.SavedStatusDraft:        1,
	models.SavedStatusReviewed:     2,
	models.SavedStatusFinalized:    3,
	models.SavedStatusSent:         4,
	models.SavedStatusSubmitted:    5,
	models.SavedStatusInterviewing: 6,
	models.SavedStatusRejected:     7,
	models.SavedStatusOffer:        7,
}

// terminal statuses admit no further transitions.
func terminalStatus(status string) bool {
	return status == models.SavedStatusRejected || status == models.SavedStatusOffer
}

// UpdateStatus moves a bookmark to a new status. Leaving "saved" clears the
// expiry; moves only go forward in the flow and terminal statuses admit none.
func (s *SavedJobService) UpdateStatus(ctx context.Context, userID, jobID, status string) (*models.SavedJob, error) {
	if !models.ValidSavedStatus(status) {
		return nil, ErrInvalidStatus
	}

	current, err := s.savedRepo.GetByJobID(ctx, userID, jobID)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, ErrSavedJobNotFound
	}
	if terminalStatus(current.Status) && status != current.Status {
		return nil, ErrStatusTransition
	}
	if savedStatusRank[status] < savedStatusRank[current.Status] {
		return nil, ErrStatusTransition
	}

	updated, err := s.savedRepo.UpdateStatus(ctx, userID, jobID, status)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrSavedJobNotFound
	}
	return updated, nil
}
