package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hireloop/hireloop-api/internal/config"
	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/recommend"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/scraper"
)

// Services holds all service instances.
type Services struct {
	Repos      *repository.Repositories
	Scrape     *ScrapeService
	Cleanup    *CleanupService
	SavedJob   *SavedJobService
	External   *ExternalJobService
	Profile    *ProfileService
	CV         *CVService
	TailoredCV *TailoredCVService
	Engine     *recommend.Engine
}

// NewServices creates all service instances.
func NewServices(ctx context.Context, cfg *config.Config, repos *repository.Repositories, logger *slog.Logger) (*Services, error) {
	sources := buildSources(cfg)
	scrapeSvc := NewScrapeService(sources, repos.Job, repos.ScrapeRun, cfg.SourceTimeout, cfg.IngestFreshnessDays, logger)

	cleanupSvc := NewCleanupService(repos.Job, repos.Recommendation, repos.SavedJob, logger)
	savedSvc := NewSavedJobService(repos.SavedJob, repos.Job, cfg.SavedExpiryDays, cfg.SavedMaxLive, logger)
	profileSvc := NewProfileService(repos.Profile, logger)
	cvSvc := NewCVService(repos.CV, logger)

	// LLM clients are optional: without keys the dependent endpoints degrade
	// gracefully instead of blocking startup.
	var parser llm.Parser
	if cfg.LLMEnabled() {
		parser = llm.NewClaudeParser(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	} else {
		logger.Warn("no Anthropic key configured, job parsing and CV tailoring unavailable")
	}

	var embedder llm.Embedder
	if cfg.EmbeddingEnabled() {
		var err error
		embedder, err = llm.NewGeminiEmbedder(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
	} else {
		logger.Warn("no Gemini key configured, recommendations will be empty")
	}

	externalSvc := NewExternalJobService(parser, llm.NewPageFetcher(nil), repos.Job, logger)
	tailoredSvc := NewTailoredCVService(parser, repos.TailoredCV, repos.CV, repos.Job, repos.SavedJob, repos.Profile, logger)

	matcher := recommend.NewMatcher(embedder, recommend.MatcherConfig{
		MinScore:          cfg.MinMatchScore,
		TitleBoostExact:   cfg.TitleBoostExact,
		TitleBoostPartial: cfg.TitleBoostPartial,
	})
	provider := recommend.NewUserViewProvider(repos.Profile, repos.CV)
	engine := recommend.NewEngine(
		repos.Job,
		repos.Recommendation,
		provider,
		repos.Profile,
		matcher,
		recommend.NewUserLocks(),
		recommend.EngineConfig{
			TopN:       cfg.RecommendTopN,
			ExpiryDays: cfg.RecommendExpiryDays,
			WindowDays: cfg.RecommendWindowDays,
		},
		logger,
	)

	return &Services{
		Repos:      repos,
		Scrape:     scrapeSvc,
		Cleanup:    cleanupSvc,
		SavedJob:   savedSvc,
		External:   externalSvc,
		Profile:    profileSvc,
		CV:         cvSvc,
		TailoredCV: tailoredSvc,
		Engine:     engine,
	}, nil
}

// buildSources instantiates the enabled scrape adapters.
func buildSources(cfg *config.Config) []scraper.Source {
	var sources []scraper.Source
	for _, name := range cfg.EnabledSources {
		switch name {
		case "remotive":
			sources = append(sources, scraper.NewRemotiveSource(nil))
		case "remoteok":
			sources = append(sources, scraper.NewRemoteOKSource(nil))
		case "adzuna":
			sources = append(sources, scraper.NewAdzunaSource(nil, cfg.AdzunaAppID, cfg.AdzunaAppKey, cfg.AdzunaCountry))
		}
	}
	return sources
}
