package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/service"
)

// ApplicationHandler handles saved jobs and tailored CV endpoints.
type ApplicationHandler struct {
	saved    *service.SavedJobService
	tailored *service.TailoredCVService
}

// NewApplicationHandler creates an applications handler.
func NewApplicationHandler(svcs *service.Services) *ApplicationHandler {
	return &ApplicationHandler{saved: svcs.SavedJob, tailored: svcs.TailoredCV}
}

// SaveJobInput represents a bookmark request.
type SaveJobInput struct {
	JobID string `path:"id" doc:"Job ID to save"`
}

// SavedJobOutput represents one bookmark.
type SavedJobOutput struct {
	Status int
	Body   *models.SavedJob
}

// SaveJob bookmarks a job for the caller.
func (h *ApplicationHandler) SaveJob(ctx context.Context, input *SaveJobInput) (*SavedJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := h.saved.Save(ctx, userID, input.JobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			return nil, huma.Error404NotFound("job not found")
		case errors.Is(err, repository.ErrSaveLimitReached):
			return nil, huma.Error400BadRequest("saved job limit reached, act on or remove an existing one first")
		case errors.Is(err, repository.ErrDuplicateSave):
			return nil, huma.Error409Conflict("job already saved")
		default:
			return nil, huma.Error500InternalServerError("failed to save job", err)
		}
	}
	return &SavedJobOutput{Status: 201, Body: saved}, nil
}

// UnsaveJobInput represents a bookmark removal.
type UnsaveJobInput struct {
	JobID string `path:"id" doc:"Job ID to unsave"`
}

// UnsaveJobOutput is an empty 204 response.
type UnsaveJobOutput struct {
	Status int
}

// UnsaveJob removes the caller's bookmark on a job.
func (h *ApplicationHandler) UnsaveJob(ctx context.Context, input *UnsaveJobInput) (*UnsaveJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := h.saved.Unsave(ctx, userID, input.JobID); err != nil {
		if errors.Is(err, service.ErrSavedJobNotFound) {
			return nil, huma.Error404NotFound("saved job not found")
		}
		return nil, huma.Error500InternalServerError("failed to unsave job", err)
	}
	return &UnsaveJobOutput{Status: 204}, nil
}

// ListSavedJobsOutput represents the caller's bookmarks.
type ListSavedJobsOutput struct {
	Body struct {
		SavedJobs []*models.SavedJob `json:"saved_jobs"`
	}
}

// ListSavedJobs returns the caller's bookmarks with their jobs attached.
func (h *ApplicationHandler) ListSavedJobs(ctx context.Context, input *struct{}) (*ListSavedJobsOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := h.saved.List(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list saved jobs", err)
	}
	if saved == nil {
		saved = []*models.SavedJob{}
	}

	out := &ListSavedJobsOutput{}
	out.Body.SavedJobs = saved
	return out, nil
}

// UpdateSavedStatusInput represents a bookmark status change.
type UpdateSavedStatusInput struct {
	JobID string `path:"job_id" doc:"Job ID of the bookmark"`
	Body  struct {
		Status string `json:"status" enum:"saved,draft,reviewed,finalized,sent,submitted,interviewing,rejected,offer"`
	}
}

// UpdateSavedStatus moves a bookmark through the application pipeline.
func (h *ApplicationHandler) UpdateSavedStatus(ctx context.Context, input *UpdateSavedStatusInput) (*SavedJobOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	updated, err := h.saved.UpdateStatus(ctx, userID, input.JobID, input.Body.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSavedJobNotFound):
			return nil, huma.Error404NotFound("saved job not found")
		case errors.Is(err, service.ErrInvalidStatus):
			return nil, huma.Error400BadRequest("invalid status")
		case errors.Is(err, service.ErrStatusTransition):
			return nil, huma.Error409Conflict("bookmark is in a terminal status")
		default:
			return nil, huma.Error500InternalServerError("failed to update status", err)
		}
	}
	return &SavedJobOutput{Status: 200, Body: updated}, nil
}

// TailorCVInput represents a tailored-CV generation request.
type TailorCVInput struct {
	JobID string `path:"job_id" doc:"Job to tailor the CV for"`
}

// TailoredCVOutput represents one tailored CV.
type TailoredCVOutput struct {
	Status int
	Body   *models.TailoredCV
}

// TailorCV generates a CV draft targeted at one job.
func (h *ApplicationHandler) TailorCV(ctx context.Context, input *TailorCVInput) (*TailoredCVOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	tailored, err := h.tailored.Tailor(ctx, userID, input.JobID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrParserUnavailable):
			return nil, huma.Error503ServiceUnavailable("CV tailoring is not configured")
		case errors.Is(err, service.ErrJobNotFound):
			return nil, huma.Error404NotFound("job not found")
		case errors.Is(err, service.ErrCVNotFound), errors.Is(err, service.ErrNoParsedCV):
			return nil, huma.Error400BadRequest("upload and parse a CV before tailoring")
		default:
			return nil, huma.Error500InternalServerError("failed to tailor CV", err)
		}
	}
	return &TailoredCVOutput{Status: 201, Body: tailored}, nil
}

// ListTailoredCVsOutput represents the caller's tailored CVs.
type ListTailoredCVsOutput struct {
	Body struct {
		TailoredCVs []*models.TailoredCV `json:"tailored_cvs"`
	}
}

// ListTailoredCVs returns the caller's tailored CVs, newest first.
func (h *ApplicationHandler) ListTailoredCVs(ctx context.Context, input *struct{}) (*ListTailoredCVsOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	cvs, err := h.tailored.List(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tailored CVs", err)
	}
	if cvs == nil {
		cvs = []*models.TailoredCV{}
	}

	out := &ListTailoredCVsOutput{}
	out.Body.TailoredCVs = cvs
	return out, nil
}

// GetTailoredCVInput represents a tailored-CV lookup.
type GetTailoredCVInput struct {
	ID string `path:"id" doc:"Tailored CV ID"`
}

// GetTailoredCV returns one of the caller's tailored CVs.
func (h *ApplicationHandler) GetTailoredCV(ctx context.Context, input *GetTailoredCVInput) (*TailoredCVOutput, error) {
	userID, err := requireUserID(ctx)
	if err != nil {
		return nil, err
	}

	tailored, err := h.tailored.Get(ctx, userID, input.ID)
	if err != nil {
		if errors.Is(err, service.ErrCVNotFound) {
			return nil, huma.Error404NotFound("tailored CV not found")
		}
		return nil, huma.Error500InternalServerError("failed to get tailored CV", err)
	}
	return &TailoredCVOutput{Status: 200, Body: tailored}, nil
}
