package handlers

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hireloop/hireloop-api/internal/scheduler"
)

// AdminHandler exposes scheduler observability and manual task triggering.
type AdminHandler struct {
	sched *scheduler.Scheduler
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{sched: sched}
}

// ScheduleOutput represents the scheduler state.
type ScheduleOutput struct {
	Body struct {
		Tasks []scheduler.TaskStatus `json:"tasks"`
	}
}

// GetSchedule returns every scheduled task with its last and next run.
func (h *AdminHandler) GetSchedule(ctx context.Context, input *struct{}) (*ScheduleOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}
	if h.sched == nil {
		return nil, huma.Error503ServiceUnavailable("scheduler is disabled")
	}

	out := &ScheduleOutput{}
	out.Body.Tasks = h.sched.Statuses()
	return out, nil
}

// TriggerTaskInput represents a manual task trigger.
type TriggerTaskInput struct {
	Task string `path:"task" doc:"Task name, e.g. scrape_jobs"`
}

// TriggerTaskOutput acknowledges a manual trigger.
type TriggerTaskOutput struct {
	Status int
	Body   struct {
		Task      string `json:"task"`
		Triggered bool   `json:"triggered"`
	}
}

// TriggerTask fires a scheduled task immediately.
func (h *AdminHandler) TriggerTask(ctx context.Context, input *TriggerTaskInput) (*TriggerTaskOutput, error) {
	if _, err := requireUserID(ctx); err != nil {
		return nil, err
	}
	if h.sched == nil {
		return nil, huma.Error503ServiceUnavailable("scheduler is disabled")
	}

	if err := h.sched.Trigger(input.Task); err != nil {
		if strings.Contains(err.Error(), "unknown task") {
			return nil, huma.Error404NotFound(err.Error())
		}
		return nil, huma.Error409Conflict(err.Error())
	}

	out := &TriggerTaskOutput{Status: 202}
	out.Body.Task = input.Task
	out.Body.Triggered = true
	return out, nil
}
