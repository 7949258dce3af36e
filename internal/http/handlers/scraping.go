package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/service"
)

// ScrapeHandler handles scrape-run endpoints.
type ScrapeHandler struct {
	scrape *service.ScrapeService
}

// NewScrapeHandler creates a scrape handler.
func NewScrapeHandler(svcs *service.Services) *ScrapeHandler {
	return &ScrapeHandler{scrape: svcs.Scrape}
}

// StartScrapeInput represents a manual scrape request.
type StartScrapeInput struct {
	Body struct {
		Sources      []string `json:"sources,omitempty" doc:"Sources to scrape; defaults to all enabled sources"`
		Keywords     []string `json:"keywords,omitempty" doc:"Search keywords, one fetch per keyword"`
		Location     string   `json:"location,omitempty"`
		MaxPerSource int      `json:"max_per_source,omitempty" minimum:"1" maximum:"100" doc:"Cap on results per source per keyword"`
	}
}

// StartScrapeOutput represents the accepted scrape run.
type StartScrapeOutput struct {
	Status int
	Body   *models.ScrapeRun
}

// StartScrape starts a scrape run in the background and returns its ID.
func (h *ScrapeHandler) StartScrape(ctx context.Context, input *StartScrapeInput) (*StartScrapeOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}

	sources := input.Body.Sources
	if len(sources) == 0 {
		sources = h.scrape.SourceNames()
	}
	for _, src := range sources {
		if !models.ValidSource(src) {
			return nil, huma.Error400BadRequest("unknown source: " + src)
		}
	}

	maxPerSource := input.Body.MaxPerSource
	if maxPerSource == 0 {
		maxPerSource = 50
	}

	run, err := h.scrape.StartRun(ctx, sources, input.Body.Keywords, input.Body.Location, maxPerSource)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	return &StartScrapeOutput{Status: 202, Body: run}, nil
}

// GetScrapeRunInput represents a scrape-run lookup.
type GetScrapeRunInput struct {
	ID string `path:"id" doc:"Scrape run ID"`
}

// GetScrapeRunOutput represents a scrape-run lookup response.
type GetScrapeRunOutput struct {
	Body *models.ScrapeRun
}

// GetScrapeRun returns one scrape run by ID.
func (h *ScrapeHandler) GetScrapeRun(ctx context.Context, input *GetScrapeRunInput) (*GetScrapeRunOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}

	run, err := h.scrape.GetRun(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get scrape run", err)
	}
	if run == nil {
		return nil, huma.Error404NotFound("scrape run not found")
	}
	return &GetScrapeRunOutput{Body: run}, nil
}

// ListScrapeRunsInput represents the recent-runs request.
type ListScrapeRunsInput struct {
	Limit int `query:"limit" default:"20" minimum:"1" maximum:"100"`
}

// ListScrapeRunsOutput represents the recent-runs response.
type ListScrapeRunsOutput struct {
	Body struct {
		Runs []*models.ScrapeRun `json:"runs"`
	}
}

// ListScrapeRuns returns the most recent scrape runs, newest first.
func (h *ScrapeHandler) ListScrapeRuns(ctx context.Context, input *ListScrapeRunsInput) (*ListScrapeRunsOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}

	runs, err := h.scrape.ListRecentRuns(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list scrape runs", err)
	}
	if runs == nil {
		runs = []*models.ScrapeRun{}
	}

	out := &ListScrapeRunsOutput{}
	out.Body.Runs = runs
	return out, nil
}
