package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/scraper"
)

// minExternalTextLen rejects pastes too short to describe a posting.
const minExternalTextLen = 50

var (
	// ErrParserUnavailable is returned when no LLM provider is configured.
	ErrParserUnavailable = errors.New("job parsing is not available")
	// ErrTextTooShort is returned for pastes below the minimum length.
	ErrTextTooShort = errors.New("text too short to parse")
	// ErrUnsupportedURL is returned for URLs that cannot be fetched.
	ErrUnsupportedURL = errors.New("unsupported URL")
	// ErrUnparseablePosting is returned when the LLM cannot extract a job.
	ErrUnparseablePosting = errors.New("could not extract a job posting")
)

// ExternalJobService creates user-submitted jobs from URLs or pasted text
// via the LLM parser. These jobs carry source=external and an owner.
type ExternalJobService struct {
	parser  llm.Parser
	fetcher *llm.PageFetcher
	jobRepo repository.JobRepository
	logger  *slog.Logger
}

// NewExternalJobService creates an external-job service. A nil parser
// disables submission with ErrParserUnavailable rather than failing startup.
func NewExternalJobService(parser llm.Parser, fetcher *llm.PageFetcher, jobRepo repository.JobRepository, logger *slog.Logger) *ExternalJobService {
	return &ExternalJobService{
		parser:  parser,
		fetcher: fetcher,
		jobRepo: jobRepo,
		logger:  logger.With("component", "external-jobs"),
	}
}

// FromURL fetches a posting page, extracts a job from it, and stores it
// owned by userID.
func (s *ExternalJobService) FromURL(ctx context.Context, userID, pageURL string) (*models.Job, error) {
	if s.parser == nil {
		return nil, ErrParserUnavailable
	}

	markdown, err := s.fetcher.FetchMarkdown(ctx, pageURL)
	if err != nil {
		s.logger.Warn("page fetch failed", "url", pageURL, "error", err)
		return nil, ErrUnsupportedURL
	}

	return s.parseAndStore(ctx, userID, markdown, pageURL)
}

// FromText extracts a job from pasted text and stores it owned by userID.
func (s *ExternalJobService) FromText(ctx context.Context, userID, text, sourceURL string) (*models.Job, error) {
	if s.parser == nil {
		return nil, ErrParserUnavailable
	}
	if len(strings.TrimSpace(text)) < minExternalTextLen {
		return nil, ErrTextTooShort
	}

	return s.parseAndStore(ctx, userID, text, sourceURL)
}

func (s *ExternalJobService) parseAndStore(ctx context.Context, userID, text, sourceURL string) (*models.Job, error) {
	parsed, err := s.parser.ParseJob(ctx, text)
	if err != nil {
		s.logger.Warn("job extraction failed", "error", err)
		return nil, ErrUnparseablePosting
	}

	raw := scraper.RawJob{
		Title:       parsed.Title,
		Company:     parsed.Company,
		Location:    parsed.Location,
		Description: parsed.Description,
		ApplyURL:    firstNonEmptyString(parsed.ApplyURL, sourceURL),
		JobType:     parsed.JobType,
		RemoteType:  parsed.RemoteType,
		SalaryMin:   parsed.SalaryMin,
		SalaryMax:   parsed.SalaryMax,
		Currency:    parsed.SalaryCurrency,
		Skills:      parsed.Skills,
	}

	job := scraper.Normalize(raw, models.SourceExternal)
	if job == nil {
		return nil, ErrUnparseablePosting
	}
	job.OwnerID = &userID
	job.Requirements = parsed.Requirements
	if parsed.ExperienceLevel != "" {
		job.ExperienceLevel = &parsed.ExperienceLevel
	}

	// User submissions are current by definition; no freshness cutoff.
	outcome, err := s.jobRepo.Upsert(ctx, job, time.Time{})
	if err != nil {
		return nil, err
	}
	s.logger.Info("external job stored", "user_id", userID, "job_id", job.ID, "outcome", outcome)

	return s.jobRepo.GetByID(ctx, job.ID)
}

// DeleteOwned removes a user-submitted job owned by the requester.
func (s *ExternalJobService) DeleteOwned(ctx context.Context, userID, jobID string) error {
	removed, err := s.jobRepo.DeleteOwned(ctx, jobID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrJobNotFound
	}
	return nil
}

func firstNonEmptyString(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
