// Package service contains the business logic layer.
// Note: user accounts and sessions are handled by the external identity
// provider; UserID parameters are provider-issued IDs.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/scraper"
)

// ScrapeService runs scraping invocations across the enabled sources.
type ScrapeService struct {
	sources       map[string]scraper.Source
	jobRepo       repository.JobRepository
	runRepo       repository.ScrapeRunRepository
	sourceTimeout time.Duration
	freshnessDays int
	logger        *slog.Logger
}

// NewScrapeService creates a scrape service over the given adapters.
func NewScrapeService(
	sources []scraper.Source,
	jobRepo repository.JobRepository,
	runRepo repository.ScrapeRunRepository,
	sourceTimeout time.Duration,
	freshnessDays int,
	logger *slog.Logger,
) *ScrapeService {
	byName := make(map[string]scraper.Source, len(sources))
	for _, s := range sources {
		byName[s.Name()] = s
	}
	return &ScrapeService{
		sources:       byName,
		jobRepo:       jobRepo,
		runRepo:       runRepo,
		sourceTimeout: sourceTimeout,
		freshnessDays: freshnessDays,
		logger:        logger.With("component", "scrape"),
	}
}

// SourceNames returns the configured source tags.
func (s *ScrapeService) SourceNames() []string {
	names := make([]string, 0, len(s.sources))
	for name := range s.sources {
		names = append(names, name)
	}
	return names
}

// StartRun records a pending run and executes it in the background.
// The returned run carries the ID callers poll for progress.
func (s *ScrapeService) StartRun(ctx context.Context, sources, keywords []string, location string, maxPerSource int) (*models.ScrapeRun, error) {
	for _, src := range sources {
		if _, ok := s.sources[src]; !ok {
			return nil, fmt.Errorf("unknown source %q", src)
		}
	}

	run := &models.ScrapeRun{
		Sources:      sources,
		Keywords:     keywords,
		Location:     location,
		MaxPerSource: maxPerSource,
		Status:       models.ScrapeStatusPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create scrape run: %w", err)
	}

	// The run outlives the request; detach it from the caller's context.
	go func() {
		bg := context.Background()
		if _, err := s.Execute(bg, run); err != nil {
			s.logger.Error("scrape run failed", "run_id", run.ID, "error", err)
		}
	}()

	return run, nil
}

// Execute performs the scrape run synchronously: every requested source is
// fetched in parallel under its own timeout, results are normalised and
// upserted, and per-source failures are recorded without failing the run.
func (s *ScrapeService) Execute(ctx context.Context, run *models.ScrapeRun) (*models.ScrapeRun, error) {
	now := time.Now().UTC()
	run.Status = models.ScrapeStatusRunning
	run.StartedAt = &now
	if err := s.runRepo.Update(ctx, run); err != nil {
		return nil, err
	}

	keywords := run.Keywords
	if len(keywords) == 0 {
		keywords = []string{""}
	}
	freshnessCutoff := now.AddDate(0, 0, -s.freshnessDays)

	type sourceResult struct {
		name string
		raws []scraper.RawJob
		err  error
	}

	// One goroutine per source; a slow source cannot stall the others
	// beyond its own timeout.
	var wg sync.WaitGroup
	results := make(chan sourceResult, len(run.Sources))
	for _, name := range run.Sources {
		src := s.sources[name]
		wg.Add(1)
		go func(name string, src scraper.Source) {
			defer wg.Done()
			raws, err := s.fetchSource(ctx, src, keywords, run.Location, run.MaxPerSource)
			results <- sourceResult{name: name, raws: raws, err: err}
		}(name, src)
	}
	wg.Wait()
	close(results)

	sourceErrors := make(map[string]string)
	var stored, duplicates, found int

	for res := range results {
		if res.err != nil {
			sourceErrors[res.name] = res.err.Error()
			s.logger.Warn("source failed", "run_id", run.ID, "source", res.name, "error", res.err)
			continue
		}
		found += len(res.raws)
		for _, raw := range res.raws {
			job := scraper.Normalize(raw, res.name)
			if job == nil {
				// Malformed record: drop with a warning, continue the run.
				s.logger.Warn("dropping malformed posting", "run_id", run.ID, "source", res.name)
				continue
			}
			outcome, err := s.jobRepo.Upsert(ctx, job, freshnessCutoff)
			if err != nil {
				s.logger.Error("upsert failed", "run_id", run.ID, "source", res.name, "error", err)
				continue
			}
			switch outcome {
			case repository.UpsertInserted:
				stored++
			case repository.UpsertRefreshed:
				duplicates++
			}
		}
	}

	run.JobsFound = found
	run.JobsStored = stored
	run.Duplicates = duplicates
	if len(sourceErrors) > 0 {
		run.SourceErrors = sourceErrors
	}

	done := time.Now().UTC()
	run.CompletedAt = &done
	if ctx.Err() != nil {
		run.Status = models.ScrapeStatusFailed
		msg := fmt.Sprintf("cancelled after %s", done.Sub(now).Round(time.Second))
		run.Error = &msg
	} else if len(sourceErrors) == len(run.Sources) {
		// Every source failed; nothing was scraped.
		run.Status = models.ScrapeStatusFailed
		msg := "all sources failed"
		run.Error = &msg
	} else {
		run.Status = models.ScrapeStatusCompleted
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		return nil, err
	}

	s.logger.Info("scrape run finished",
		"run_id", run.ID,
		"status", run.Status,
		"found", found,
		"stored", stored,
		"duplicates", duplicates,
		"source_errors", len(sourceErrors),
	)
	return run, nil
}

// fetchSource runs every keyword against one source under the per-source
// timeout. Keyword errors after the first success degrade to partial results.
func (s *ScrapeService) fetchSource(ctx context.Context, src scraper.Source, keywords []string, location string, maxPerSource int) ([]scraper.RawJob, error) {
	srcCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	var all []scraper.RawJob
	var lastErr error
	for _, keyword := range keywords {
		raws, err := src.Fetch(srcCtx, scraper.Query{
			Keyword:      keyword,
			Location:     location,
			MaxPerSource: maxPerSource,
		})
		if err != nil {
			lastErr = err
			var srcErr *scraper.SourceError
			if errors.As(err, &srcErr) && srcErr.Kind == scraper.ErrUnavailable {
				break
			}
			continue
		}
		all = append(all, raws...)
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return all, nil
}

// GetRun retrieves a scrape run by ID.
func (s *ScrapeService) GetRun(ctx context.Context, id string) (*models.ScrapeRun, error) {
	return s.runRepo.GetByID(ctx, id)
}

// ListRecentRuns returns the most recent scrape runs.
func (s *ScrapeService) ListRecentRuns(ctx context.Context, limit int) ([]*models.ScrapeRun, error) {
	return s.runRepo.ListRecent(ctx, limit)
}

// RunScheduled performs the daily scheduled scrape across all sources.
func (s *ScrapeService) RunScheduled(ctx context.Context, keywords []string, maxPerSource int) error {
	run := &models.ScrapeRun{
		Sources:      s.SourceNames(),
		Keywords:     keywords,
		MaxPerSource: maxPerSource,
		Status:       models.ScrapeStatusPending,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return err
	}
	_, err := s.Execute(ctx, run)
	return err
}
