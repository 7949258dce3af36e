package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// ErrCVNotFound is returned when the user has no active CV.
var ErrCVNotFound = errors.New("cv not found")

// CVService manages CV records and their parsed content.
type CVService struct {
	cvRepo repository.CVRepository
	logger *slog.Logger
}

// NewCVService creates a CV service.
func NewCVService(cvRepo repository.CVRepository, logger *slog.Logger) *CVService {
	return &CVService{
		cvRepo: cvRepo,
		logger: logger.With("component", "cv"),
	}
}

// GetActive returns the user's active CV record.
func (s *CVService) GetActive(ctx context.Context, userID string) (*models.CV, error) {
	cv, err := s.cvRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cv == nil {
		return nil, ErrCVNotFound
	}
	return cv, nil
}

// IngestParsed stores a client-parsed CV as the user's new active CV.
// The previous active CV, if any, is deactivated.
func (s *CVService) IngestParsed(ctx context.Context, userID, filename string, parsed *models.ParsedCV) (*models.CV, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = "cv.txt"
	}
	if parsed == nil {
		return nil, errors.New("parsed content is required")
	}

	cv := &models.CV{
		UserID:   userID,
		Filename: filename,
		Status:   models.CVStatusProcessing,
		IsActive: true,
	}
	if err := s.cvRepo.Create(ctx, cv); err != nil {
		return nil, err
	}
	if err := s.cvRepo.SetParsed(ctx, cv.ID, parsed); err != nil {
		return nil, err
	}

	s.logger.Info("cv ingested", "user_id", userID, "cv_id", cv.ID, "filename", filename)
	return s.cvRepo.GetByID(ctx, cv.ID)
}
