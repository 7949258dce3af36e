package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/service"
)

// ExternalHandler handles user-submitted job endpoints.
type ExternalHandler struct {
	external *service.ExternalJobService
}

// NewExternalHandler creates an external-jobs handler.
func NewExternalHandler(svcs *service.Services) *ExternalHandler {
	return &ExternalHandler{external: svcs.External}
}

// SubmitJobURLInput represents a job submission by URL.
type SubmitJobURLInput struct {
	Body struct {
		URL string `json:"url" minLength:"1" format:"uri" doc:"Public posting page to fetch and parse"`
	}
}

// ExternalJobOutput represents a stored user-submitted job.
type ExternalJobOutput struct {
	Status int
	Body   *models.Job
}

// SubmitJobURL fetches a posting page and stores the extracted job.
func (h *ExternalHandler) SubmitJobURL(ctx context.Context, input *SubmitJobURLInput) (*ExternalJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	job, err := h.external.FromURL(ctx, userID, input.Body.URL)
	if err != nil {
		return nil, mapExternalError(err)
	}
	return &ExternalJobOutput{Status: 201, Body: job}, nil
}

// SubmitJobTextInput represents a job submission by pasted text.
type SubmitJobTextInput struct {
	Body struct {
		Text      string `json:"text" minLength:"1" doc:"Pasted posting text"`
		SourceURL string `json:"source_url,omitempty" format:"uri" doc:"Optional link to the original posting"`
	}
}

// SubmitJobText parses pasted posting text and stores the extracted job.
func (h *ExternalHandler) SubmitJobText(ctx context.Context, input *SubmitJobTextInput) (*ExternalJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	job, err := h.external.FromText(ctx, userID, input.Body.Text, input.Body.SourceURL)
	if err != nil {
		return nil, mapExternalError(err)
	}
	return &ExternalJobOutput{Status: 201, Body: job}, nil
}

// DeleteExternalJobInput represents a user-submitted job deletion.
type DeleteExternalJobInput struct {
	ID string `path:"id" doc:"Job ID"`
}

// DeleteExternalJobOutput is an empty 204 response.
type DeleteExternalJobOutput struct {
	Status int
}

// DeleteExternalJob removes a job the caller submitted.
func (h *ExternalHandler) DeleteExternalJob(ctx context.Context, input *DeleteExternalJobInput) (*DeleteExternalJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.external.DeleteOwned(ctx, userID, input.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return nil, huma.Error404NotFound("job not found")
		default:
			return nil, huma.Error500InternalServerError("failed to delete job", err)
		}
	}
	return &DeleteExternalJobOutput{Status: 204}, nil
}

// mapExternalError translates submission errors to HTTP responses.
func mapExternalError(err error) error {
	switch {
	case errors.Is(err, service.ErrParserUnavailable):
		return huma.Error503ServiceUnavailable("job parsing is not configured")
	case errors.Is(err, service.ErrTextTooShort):
		return huma.Error400BadRequest("text too short to parse")
	case errors.Is(err, service.ErrUnsupportedURL):
		return huma.Error400BadRequest("could not fetch that URL")
	case errors.Is(err, service.ErrUnparseablePosting):
		return huma.Error422UnprocessableEntity("could not extract a job posting")
	default:
		return huma.Error500InternalServerError("failed to submit job", err)
	}
}
