package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hireloop/hireloop-api/internal/repository"
)

// retentionBatchSize bounds one deletion statement during the old-jobs sweep.
const retentionBatchSize = 500

// CleanupService runs the three retention sweeps. Each sweep is idempotent
// and safe to run at any time, in any order.
type CleanupService struct {
	jobRepo   repository.JobRepository
	recRepo   repository.RecommendationRepository
	savedRepo repository.SavedJobRepository
	logger    *slog.Logger
}

// NewCleanupService creates a cleanup service.
func NewCleanupService(
	jobRepo repository.JobRepository,
	recRepo repository.RecommendationRepository,
	savedRepo repository.SavedJobRepository,
	logger *slog.Logger,
) *CleanupService {
	return &CleanupService{
		jobRepo:   jobRepo,
		recRepo:   recRepo,
		savedRepo: savedRepo,
		logger:    logger.With("component", "cleanup"),
	}
}

// CleanupResult reports what one sweep removed.
type CleanupResult struct {
	Deleted   int `json:"deleted"`
	Protected int `json:"protected,omitempty"`
}

// CleanupExpiredRecommendations deletes recommendations past expiry.
func (s *CleanupService) CleanupExpiredRecommendations(ctx context.Context) (*CleanupResult, error) {
	n, err := s.recRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("expired recommendations removed", "count", n)
	return &CleanupResult{Deleted: int(n)}, nil
}

// CleanupExpiredSavedJobs deletes bookmarks still in saved status whose
// expiry has passed. Bookmarks the user has acted on are never swept.
func (s *CleanupService) CleanupExpiredSavedJobs(ctx context.Context) (*CleanupResult, error) {
	n, err := s.savedRepo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("expired saved jobs removed", "count", n)
	return &CleanupResult{Deleted: int(n)}, nil
}

// CleanupOldJobs deletes jobs strictly older than retentionDays that no
// saved-job or tailored-CV artefact references. Referenced jobs are counted
// as protected and skipped.
func (s *CleanupService) CleanupOldJobs(ctx context.Context, retentionDays int) (*CleanupResult, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	deleted, protected, err := s.jobRepo.DeleteOld(ctx, cutoff, retentionBatchSize)
	if err != nil {
		return nil, err
	}

	s.logger.Info("old jobs sweep complete",
		"cutoff", cutoff.Format(time.RFC3339),
		"deleted", deleted,
		"protected", protected,
	)
	return &CleanupResult{Deleted: deleted, Protected: protected}, nil
}
