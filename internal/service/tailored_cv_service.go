package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// ErrNoParsedCV is returned when the user's active CV has no parsed content.
var ErrNoParsedCV = errors.New("no parsed CV available")

// TailoredCVService generates job-specific CV drafts from the user's parsed
// CV. Creating a draft for a saved job moves the bookmark to draft status.
type TailoredCVService struct {
	parser       llm.Parser
	tailoredRepo repository.TailoredCVRepository
	cvRepo       repository.CVRepository
	jobRepo      repository.JobRepository
	savedRepo    repository.SavedJobRepository
	profileRepo  repository.ProfileRepository
	logger       *slog.Logger
}

// NewTailoredCVService creates a tailored-CV service.
func NewTailoredCVService(
	parser llm.Parser,
	tailoredRepo repository.TailoredCVRepository,
	cvRepo repository.CVRepository,
	jobRepo repository.JobRepository,
	savedRepo repository.SavedJobRepository,
	profileRepo repository.ProfileRepository,
	logger *slog.Logger,
) *TailoredCVService {
	return &TailoredCVService{
		parser:       parser,
		tailoredRepo: tailoredRepo,
		cvRepo:       cvRepo,
		jobRepo:      jobRepo,
		savedRepo:    savedRepo,
		profileRepo:  profileRepo,
		logger:       logger.With("component", "tailored-cv"),
	}
}

// Tailor generates a CV draft targeted at the given job and stores it.
// When the job is bookmarked in "saved" status the bookmark advances to
// "draft", which also clears its expiry.
func (s *TailoredCVService) Tailor(ctx context.Context, userID, jobID string) (*models.TailoredCV, error) {
	if s.parser == nil {
		return nil, ErrParserUnavailable
	}

	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}

	cv, err := s.cvRepo.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cv == nil {
		return nil, ErrCVNotFound
	}
	if cv.Status != models.CVStatusCompleted || cv.Parsed == nil {
		return nil, ErrNoParsedCV
	}

	tone := ""
	if profile, err := s.profileRepo.Get(ctx, userID); err == nil && profile != nil && profile.WritingTone != nil {
		tone = *profile.WritingTone
	}

	content, err := s.parser.TailorCV(ctx, renderParsedCV(cv.Parsed), renderJob(job), tone)
	if err != nil {
		return nil, fmt.Errorf("tailor cv: %w", err)
	}

	tailored := &models.TailoredCV{
		UserID:  userID,
		JobID:   jobID,
		CVID:    cv.ID,
		Content: content,
	}
	if err := s.tailoredRepo.Create(ctx, tailored); err != nil {
		return nil, err
	}

	// Advance the bookmark if the user saved this job and has not started
	// working on it yet.
	saved, err := s.savedRepo.GetByJobID(ctx, userID, jobID)
	if err != nil {
		s.logger.Warn("saved-job lookup failed after tailoring", "user_id", userID, "job_id", jobID, "error", err)
	} else if saved != nil && saved.Status == models.SavedStatusSaved {
		if _, err := s.savedRepo.UpdateStatus(ctx, userID, jobID, models.SavedStatusDraft); err != nil {
			s.logger.Warn("bookmark transition failed after tailoring", "user_id", userID, "job_id", jobID, "error", err)
		}
	}

	s.logger.Info("tailored cv created", "user_id", userID, "job_id", jobID, "tailored_id", tailored.ID)
	return tailored, nil
}

// Get returns one of the user's tailored CVs.
func (s *TailoredCVService) Get(ctx context.Context, userID, id string) (*models.TailoredCV, error) {
	tailored, err := s.tailoredRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tailored == nil || tailored.UserID != userID {
		return nil, ErrCVNotFound
	}
	return tailored, nil
}

// List returns the user's tailored CVs, newest first.
func (s *TailoredCVService) List(ctx context.Context, userID string) ([]*models.TailoredCV, error) {
	return s.tailoredRepo.ListByUserID(ctx, userID)
}

// renderParsedCV flattens the structured CV into prompt text.
func renderParsedCV(parsed *models.ParsedCV) string {
	var b strings.Builder
	if parsed.Name != "" {
		fmt.Fprintf(&b, "Name: %s\n", parsed.Name)
	}
	if parsed.Summary != "" {
		fmt.Fprintf(&b, "Summary: %s\n", parsed.Summary)
	}
	if len(parsed.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(parsed.Skills, ", "))
	}
	for _, exp := range parsed.Experience {
		fmt.Fprintf(&b, "\n%s at %s", exp.Title, exp.Company)
		if exp.Start != "" {
			fmt.Fprintf(&b, " (%s - %s)", exp.Start, exp.End)
		}
		b.WriteString("\n")
		for _, a := range exp.Achievements {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	for _, edu := range parsed.Education {
		fmt.Fprintf(&b, "\n%s, %s %s\n", edu.Institution, edu.Degree, edu.Year)
	}
	return b.String()
}

// renderJob flattens a job into prompt text.
func renderJob(job *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nCompany: %s\n", job.Title, job.Company)
	if job.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", job.Location)
	}
	if len(job.Skills) > 0 {
		fmt.Fprintf(&b, "Skills: %s\n", strings.Join(job.Skills, ", "))
	}
	if len(job.Requirements) > 0 {
		fmt.Fprintf(&b, "Requirements:\n- %s\n", strings.Join(job.Requirements, "\n- "))
	}
	fmt.Fprintf(&b, "\n%s\n", job.Description)
	return b.String()
}
