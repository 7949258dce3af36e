package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
	"github.com/hireloop/hireloop-api/internal/service"
)

// JobHandler handles job browsing endpoints.
type JobHandler struct {
	svcs        *service.Services
	jobs        repository.JobRepository
	pageSizeCap int
}

// NewJobHandler creates a job handler.
func NewJobHandler(svcs *service.Services, pageSizeCap int) *JobHandler {
	return &JobHandler{svcs: svcs, jobs: svcs.Repos.Job, pageSizeCap: pageSizeCap}
}

// ListJobsInput represents the job search request.
type ListJobsInput struct {
	Query      string `query:"query" doc:"Free-text search over title, company and description; truncated to 100 chars"`
	Location   string `query:"location" doc:"Location substring filter"`
	Source     string `query:"source" enum:"remotive,remoteok,adzuna,external," doc:"Filter by source"`
	JobType    string `query:"job_type" enum:"full_time,part_time,contract,internship," doc:"Filter by job type"`
	RemoteType string `query:"remote_type" enum:"remote,hybrid,onsite," doc:"Filter by remote type"`
	MaxAgeDays int    `query:"max_age_days" minimum:"0" doc:"Only jobs scraped within the last N days"`
	Page       int    `query:"page" default:"1" minimum:"1"`
	PageSize   int    `query:"page_size" default:"20" minimum:"1" maximum:"100"`
}

// JobListBody is a page of jobs.
type JobListBody struct {
	Jobs     []*models.Job `json:"jobs"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ListJobsOutput represents the job search response.
type ListJobsOutput struct {
	Body JobListBody
}

// ListJobs searches stored jobs with filters and pagination.
func (h *JobHandler) ListJobs(ctx context.Context, input *ListJobsInput) (*ListJobsOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}
	if input.PageSize > h.pageSizeCap {
		input.PageSize = h.pageSizeCap
	}

	filters := repository.JobFilters{
		Query:      input.Query,
		Location:   input.Location,
		Source:     input.Source,
		JobType:    input.JobType,
		RemoteType: input.RemoteType,
		MaxAgeDays: input.MaxAgeDays,
	}
	limit, offset := pagination(input.Page, input.PageSize)

	jobs, total, err := h.jobs.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list jobs", err)
	}
	if jobs == nil {
		jobs = []*models.Job{}
	}

	return &ListJobsOutput{Body: JobListBody{
		Jobs:     jobs,
		Total:    total,
		Page:     input.Page,
		PageSize: input.PageSize,
	}}, nil
}

// GetJobInput represents a single-job request.
type GetJobInput struct {
	ID string `path:"id" doc:"Job ID"`
}

// GetJobOutput represents a single-job response.
type GetJobOutput struct {
	Body *models.Job
}

// GetJob returns one job by ID.
func (h *JobHandler) GetJob(ctx context.Context, input *GetJobInput) (*GetJobOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}

	job, err := h.jobs.GetByID(ctx, input.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get job", err)
	}
	if job == nil {
		return nil, huma.Error404NotFound("job not found")
	}
	return &GetJobOutput{Body: job}, nil
}
