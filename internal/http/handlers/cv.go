package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/service"
)

// CVHandler handles CV endpoints.
type CVHandler struct {
	cv *service.CVService
}

// NewCVHandler creates a CV handler.
func NewCVHandler(svcs *service.Services) *CVHandler {
	return &CVHandler{cv: svcs.CV}
}

// CVOutput represents the caller's active CV.
type CVOutput struct {
	Body *models.CV
}

// GetCV returns the caller's active CV record.
func (h *CVHandler) GetCV(ctx context.Context, input *struct{}) (*CVOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	cv, err := h.cv.GetActive(ctx, userID)
	if err != nil {
		if errors.Is(err, service.ErrCVNotFound) {
			return nil, huma.Error404NotFound("no CV uploaded")
		}
		return nil, huma.Error500InternalServerError("failed to get CV", err)
	}
	return &CVOutput{Body: cv}, nil
}

// PutParsedCVInput represents a parsed-CV ingest request.
type PutParsedCVInput struct {
	Body struct {
		Filename string           `json:"filename,omitempty"`
		Parsed   *models.ParsedCV `json:"parsed" doc:"Structured CV content"`
	}
}

// PutParsedCV stores client-parsed CV content as the caller's active CV.
func (h *CVHandler) PutParsedCV(ctx context.Context, input *PutParsedCVInput) (*CVOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	cv, err := h.cv.IngestParsed(ctx, userID, input.Body.Filename, input.Body.Parsed)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}
	return &CVOutput{Body: cv}, nil
}
