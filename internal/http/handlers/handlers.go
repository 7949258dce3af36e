// Package handlers contains HTTP handlers for the API.
package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/http/mw"
	"github.com/hireloop/hireloop-api/internal/scheduler"
	"github.com/hireloop/hireloop-api/internal/service"
	"github.com/hireloop/hireloop-api/internal/version"
)

// Handlers aggregates the endpoint handlers for route registration.
type Handlers struct {
	Job            *JobHandler
	Recommendation *RecommendationHandler
	Scrape         *ScrapeHandler
	External       *ExternalHandler
	Application    *ApplicationHandler
	Profile        *ProfileHandler
	CV             *CVHandler
	Admin          *AdminHandler
}

// New creates the handler set over the service layer.
func New(svcs *service.Services, sched *scheduler.Scheduler, pageSizeCap int) *Handlers {
	return &Handlers{
		Job:            NewJobHandler(svcs, pageSizeCap),
		Recommendation: NewRecommendationHandler(svcs, pageSizeCap),
		Scrape:         NewScrapeHandler(svcs),
		External:       NewExternalHandler(svcs),
		Application:    NewApplicationHandler(svcs),
		Profile:        NewProfileHandler(svcs),
		CV:             NewCVHandler(svcs),
		Admin:          NewAdminHandler(sched),
	}
}

// HealthCheckOutput represents health check response.
type HealthCheckOutput struct {
	Body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
}

// HealthCheck returns the health status of the API.
func HealthCheck(ctx context.Context, input *struct{}) (*HealthCheckOutput, error) {
	out := &HealthCheckOutput{}
	out.Body.Status = "healthy"
	out.Body.Version = version.Version
	return out, nil
}

// getUserID extracts the authenticated user ID from context.
func getUserID(ctx context.Context) string {
	claims := mw.GetUserClaims(ctx)
	if claims == nil {
		return ""
	}
	return claims.UserID
}

// requireUserID returns the user ID or a 401 error.
func requireUserID(ctx context.Context) (string, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return "", huma.Error401Unauthorized("unauthorized")
	}
	return userID, nil
}

// pagination computes limit and offset from page inputs.
func pagination(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	return pageSize, (page - 1) * pageSize
}
