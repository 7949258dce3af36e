package handlers

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/http/mw"
)

// Register registers all API routes with the given Huma API instance.
func Register(api huma.API, h *Handlers) {
	// Public routes
	mw.PublicGet(api, "/api/v1/health", HealthCheck,
		mw.WithTags("Health"),
		mw.WithSummary("Health check"),
		mw.WithOperationID("healthCheck"))

	// Kubernetes probes (hidden from docs)
	mw.HiddenGet(api, "/healthz", HealthCheck)
	mw.HiddenGet(api, "/readyz", HealthCheck)

	// --- Jobs ---
	mw.ProtectedGet(api, "/api/v1/jobs", h.Job.ListJobs,
		mw.WithTags("Jobs"),
		mw.WithSummary("Search jobs"),
		mw.WithOperationID("listJobs"))
	mw.ProtectedGet(api, "/api/v1/jobs/{id}", h.Job.GetJob,
		mw.WithTags("Jobs"),
		mw.WithSummary("Get job details"),
		mw.WithOperationID("getJob"))

	// --- Scraping ---
	mw.ProtectedPost(api, "/api/v1/jobs/scrape", h.Scrape.StartScrape,
		mw.WithTags("Scraping"),
		mw.WithSummary("Start a scrape run"),
		mw.WithOperationID("startScrape"))
	mw.ProtectedGet(api, "/api/v1/jobs/scraping", h.Scrape.ListScrapeRuns,
		mw.WithTags("Scraping"),
		mw.WithSummary("List recent scrape runs"),
		mw.WithOperationID("listScrapeRuns"))
	mw.ProtectedGet(api, "/api/v1/jobs/scraping/{id}", h.Scrape.GetScrapeRun,
		mw.WithTags("Scraping"),
		mw.WithSummary("Get scrape run status"),
		mw.WithOperationID("getScrapeRun"))

	// --- External job submission ---
	mw.ProtectedPost(api, "/api/v1/jobs/external/from-url", h.External.SubmitJobURL,
		mw.WithTags("External Jobs"),
		mw.WithSummary("Submit a job by URL"),
		mw.WithDescription("Fetches the posting page and extracts a structured job using the LLM."),
		mw.WithOperationID("submitJobURL"),
		mw.WithAIRateLimit())
	mw.ProtectedPost(api, "/api/v1/jobs/external/from-text", h.External.SubmitJobText,
		mw.WithTags("External Jobs"),
		mw.WithSummary("Submit a job by pasted text"),
		mw.WithOperationID("submitJobText"),
		mw.WithAIRateLimit())
	mw.ProtectedDelete(api, "/api/v1/jobs/external/{id}", h.External.DeleteExternalJob,
		mw.WithTags("External Jobs"),
		mw.WithSummary("Delete a submitted job"),
		mw.WithOperationID("deleteExternalJob"))

	// --- Recommendations ---
	// Static segments win over /jobs/{id}, so these nest under /jobs safely.
	mw.ProtectedGet(api, "/api/v1/jobs/recommendations", h.Recommendation.ListRecommendations,
		mw.WithTags("Recommendations"),
		mw.WithSummary("List live recommendations"),
		mw.WithOperationID("listRecommendations"))
	mw.ProtectedPost(api, "/api/v1/jobs/recommendations/generate", h.Recommendation.GenerateRecommendations,
		mw.WithTags("Recommendations"),
		mw.WithSummary("Regenerate recommendations now"),
		mw.WithOperationID("generateRecommendations"),
		mw.WithAIRateLimit())

	// --- Applications ---
	mw.ProtectedGet(api, "/api/v1/applications/saved-jobs", h.Application.ListSavedJobs,
		mw.WithTags("Applications"),
		mw.WithSummary("List saved jobs"),
		mw.WithOperationID("listSavedJobs"))
	mw.ProtectedPost(api, "/api/v1/applications/save-job/{id}", h.Application.SaveJob,
		mw.WithTags("Applications"),
		mw.WithSummary("Save a job"),
		mw.WithOperationID("saveJob"))
	mw.ProtectedDelete(api, "/api/v1/applications/unsave-job/{id}", h.Application.UnsaveJob,
		mw.WithTags("Applications"),
		mw.WithSummary("Unsave a job"),
		mw.WithOperationID("unsaveJob"))
	mw.ProtectedPut(api, "/api/v1/applications/saved-jobs/{job_id}/status", h.Application.UpdateSavedStatus,
		mw.WithTags("Applications"),
		mw.WithSummary("Update saved job status"),
		mw.WithOperationID("updateSavedStatus"))
	mw.ProtectedPost(api, "/api/v1/applications/tailor/{job_id}", h.Application.TailorCV,
		mw.WithTags("Applications"),
		mw.WithSummary("Generate a tailored CV for a job"),
		mw.WithOperationID("tailorCV"),
		mw.WithAIRateLimit())
	mw.ProtectedGet(api, "/api/v1/applications/tailored-cvs", h.Application.ListTailoredCVs,
		mw.WithTags("Applications"),
		mw.WithSummary("List tailored CVs"),
		mw.WithOperationID("listTailoredCVs"))
	mw.ProtectedGet(api, "/api/v1/applications/tailored-cvs/{id}", h.Application.GetTailoredCV,
		mw.WithTags("Applications"),
		mw.WithSummary("Get a tailored CV"),
		mw.WithOperationID("getTailoredCV"))

	// --- Profile and CV ---
	mw.ProtectedGet(api, "/api/v1/profile", h.Profile.GetProfile,
		mw.WithTags("Profile"),
		mw.WithSummary("Get profile"),
		mw.WithOperationID("getProfile"))
	mw.ProtectedPut(api, "/api/v1/profile", h.Profile.PutProfile,
		mw.WithTags("Profile"),
		mw.WithSummary("Create or replace profile"),
		mw.WithOperationID("putProfile"))
	mw.ProtectedGet(api, "/api/v1/cv", h.CV.GetCV,
		mw.WithTags("CV"),
		mw.WithSummary("Get active CV"),
		mw.WithOperationID("getCV"))
	mw.ProtectedPut(api, "/api/v1/cv/parsed", h.CV.PutParsedCV,
		mw.WithTags("CV"),
		mw.WithSummary("Store parsed CV content"),
		mw.WithOperationID("putParsedCV"))

	// --- Admin ---
	mw.ProtectedGet(api, "/api/v1/admin/schedule", h.Admin.GetSchedule,
		mw.WithTags("Admin"),
		mw.WithSummary("Show scheduled tasks"),
		mw.WithOperationID("getSchedule"))
	mw.ProtectedPost(api, "/api/v1/admin/schedule/{task}/trigger", h.Admin.TriggerTask,
		mw.WithTags("Admin"),
		mw.WithSummary("Trigger a scheduled task"),
		mw.WithOperationID("triggerTask"))
}
