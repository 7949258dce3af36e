package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/service"
)

// ProfileHandler handles profile endpoints.
type ProfileHandler struct {
	profile *service.ProfileService
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(svcs *service.Services) *ProfileHandler {
	return &ProfileHandler{profile: svcs.Profile}
}

// ProfileOutput represents the caller's profile.
type ProfileOutput struct {
	Body *models.Profile
}

// GetProfile returns the caller's matching profile.
func (h *ProfileHandler) GetProfile(ctx context.Context, input *struct{}) (*ProfileOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile, err := h.profile.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrProfileNotFound) {
			return nil, huma.Error404NotFound("profile not found")
		}
		return nil, huma.Error500InternalServerError("failed to get profile", err)
	}
	return &ProfileOutput{Body: profile}, nil
}

// PutProfileInput represents a profile upsert.
type PutProfileInput struct {
	Body struct {
		PrimaryTitle      string                `json:"primary_title" minLength:"1"`
		SecondaryTitles   []string              `json:"secondary_titles,omitempty"`
		Seniority         *string               `json:"seniority,omitempty"`
		WorkPreference    *string               `json:"work_preference,omitempty" doc:"remote, hybrid, onsite or any"`
		Industries        []string              `json:"industries,omitempty"`
		TechnicalSkills   []models.ProfileSkill `json:"technical_skills,omitempty"`
		SoftSkills        []string              `json:"soft_skills,omitempty"`
		PreferredKeywords []string              `json:"preferred_keywords,omitempty"`
		WritingTone       *string               `json:"writing_tone,omitempty"`
	}
}

// PutProfile creates or replaces the caller's profile.
func (h *ProfileHandler) PutProfile(ctx context.Context, input *PutProfileInput) (*ProfileOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		PrimaryTitle:      input.Body.PrimaryTitle,
		SecondaryTitles:   input.Body.SecondaryTitles,
		Seniority:         input.Body.Seniority,
		WorkPreference:    input.Body.WorkPreference,
		Industries:        input.Body.Industries,
		TechnicalSkills:   input.Body.TechnicalSkills,
		SoftSkills:        input.Body.SoftSkills,
		PreferredKeywords: input.Body.PreferredKeywords,
		WritingTone:       input.Body.WritingTone,
	}

	stored, err := h.profile.Upsert(ctx, userID, profile)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &ProfileOutput{Body: stored}, nil
}
