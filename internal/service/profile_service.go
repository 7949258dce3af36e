package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// ErrProfileNotFound is returned when the user has no stored profile.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileService manages the user's matching profile.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// NewProfileService creates a profile service.
func NewProfileService(profileRepo repository.ProfileRepository, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		logger:      logger.With("component", "profile"),
	}
}

// Get returns the user's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	profile, err := s.profileRepo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Upsert stores the user's profile, creating or replacing it.
func (s *ProfileService) Upsert(ctx context.Context, userID string, profile *models.Profile) (*models.Profile, error) {
	profile.UserID = userID
	profile.PrimaryTitle = strings.TrimSpace(profile.PrimaryTitle)
	if profile.PrimaryTitle == "" {
		return nil, errors.New("primary_title is required")
	}

	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, err
	}
	s.logger.Info("profile saved", "user_id", userID)
	return s.profileRepo.Get(ctx, userID)
}
