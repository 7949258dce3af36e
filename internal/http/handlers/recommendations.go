package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/recommend"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/service"
)

// RecommendationHandler handles recommendation endpoints.
type RecommendationHandler struct {
	recs        repository.RecommendationRepository
	engine      *recommend.Engine
	pageSizeCap int
}

// NewRecommendationHandler creates a recommendation handler.
func NewRecommendationHandler(svcs *service.Services, pageSizeCap int) *RecommendationHandler {
	return &RecommendationHandler{
		recs:        svcs.Repos.Recommendation,
		engine:      svcs.Engine,
		pageSizeCap: pageSizeCap,
	}
}

// ListRecommendationsInput represents the recommendation list request.
type ListRecommendationsInput struct {
	Page     int `query:"page" default:"1" minimum:"1"`
	PageSize int `query:"page_size" default:"20" minimum:"1" maximum:"100"`
}

// RecommendationListBody is a page of live recommendations.
type RecommendationListBody struct {
	Recommendations []*models.Recommendation `json:"recommendations"`
	Total           int                      `json:"total"`
	Page            int                      `json:"page"`
	PageSize        int                      `json:"page_size"`
}

// ListRecommendationsOutput represents the recommendation list response.
type ListRecommendationsOutput struct {
	Body RecommendationListBody
}

// ListRecommendations returns the user's live recommendations ordered by
// score. Expired rows are excluded even before the cleanup sweep removes them.
func (h *RecommendationHandler) ListRecommendations(ctx context.Context, input *ListRecommendationsInput) (*ListRecommendationsOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}
	if input.PageSize > h.pageSizeCap {
		input.PageSize = h.pageSizeCap
	}
	limit, offset := pagination(input.Page, input.PageSize)

	recs, total, err := h.recs.ListLive(ctx, userID, time.Now().UTC(), limit, offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list recommendations", err)
	}
	if recs == nil {
		recs = []*models.Recommendation{}
	}

	return &ListRecommendationsOutput{Body: RecommendationListBody{
		Recommendations: recs,
		Total:           total,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}}, nil
}

// GenerateRecommendationsOutput represents the manual-generation response.
type GenerateRecommendationsOutput struct {
	Body struct {
		Generated int `json:"generated"`
	}
}

// GenerateRecommendations regenerates the caller's recommendations on demand.
// Returns 409 when a regeneration for this user is already in flight.
func (h *RecommendationHandler) GenerateRecommendations(ctx context.Context, input *struct{}) (*GenerateRecommendationsOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	count, err := h.engine.RegenerateFor(ctx, userID)
	if err != nil {
		if errors.Is(err, recommend.ErrRegenerationRunning) {
			return nil, huma.Error409Conflict("recommendation generation already in progress")
		}
		return nil, huma.Error500InternalServerError("failed to generate recommendations", err)
	}

	out := &GenerateRecommendationsOutput{}
	out.Body.Generated = count
	return out, nil
}
