// Package scheduler runs the daily background tasks on cron schedules.
// All schedules are evaluated in UTC.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Task names, used for status reporting and manual triggering.
const (
	TaskScrapeJobs              = "scrape_jobs"
	TaskGenerateRecommendations = "generate_recommendations"
	TaskCleanupOldJobs          = "cleanup_old_jobs"
	TaskCleanupExpiredRecs      = "cleanup_expired_recommendations"
	TaskCleanupExpiredSaved     = "cleanup_expired_saved_jobs"
)

// task is one registered background task.
type task struct {
	name     string
	schedule string
	deadline time.Duration
	handler  func(ctx context.Context) error

	entryID   cron.EntryID
	mu        sync.Mutex
	isRunning bool
	lastRun   *time.Time
	lastError string
}

// tryStart marks the task running unless it already is.
func (t *task) tryStart() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return false
	}
	t.isRunning = true
	return true
}

func (t *task) finish(completed time.Time, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.isRunning = false
	t.lastRun = &completed
	if err != nil {
		t.lastError = err.Error()
	} else {
		t.lastError = ""
	}
}

// TaskStatus is the observable state of one task.
type TaskStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	IsRunning bool       `json:"is_running"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	LastError string     `json:"last_error,omitempty"`
}

// Scheduler owns the cron runner and the registered tasks. A firing that
// finds its task still running is skipped, never queued.
type Scheduler struct {
	cron    *cron.Cron
	tasks   map[string]*task
	order   []string
	logger  *slog.Logger
	started bool
}

// New creates a scheduler. Tasks are added with Register before Start.
func New(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		tasks:  make(map[string]*task),
		logger: logger.With("component", "scheduler"),
	}
}

// Register adds a named task on a five-field cron schedule. The handler runs
// under a context that expires at the task's deadline.
func (s *Scheduler) Register(name, schedule string, deadline time.Duration, handler func(ctx context.Context) error) error {
	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("task %s already registered", name)
	}

	t := &task{
		name:     name,
		schedule: schedule,
		deadline: deadline,
		handler:  handler,
	}
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.run(t)
	})
	if err != nil {
		return fmt.Errorf("register task %s: %w", name, err)
	}
	t.entryID = entryID
	s.tasks[name] = t
	s.order = append(s.order, name)

	s.logger.Info("task registered", "task", name, "schedule", schedule, "deadline", deadline)
	return nil
}

// Start begins firing schedules.
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	s.logger.Info("scheduler started", "tasks", len(s.tasks))
}

// Stop halts the schedules and waits for in-flight tasks to finish.
func (s *Scheduler) Stop(ctx context.Context) error {
	if !s.started {
		return nil
	}
	s.started = false

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with tasks still running")
		return ctx.Err()
	}
}

// Trigger runs a task immediately in the background. Returns an error if the
// task is unknown or already running.
func (s *Scheduler) Trigger(name string) error {
	t, exists := s.tasks[name]
	if !exists {
		return fmt.Errorf("unknown task %s", name)
	}

	t.mu.Lock()
	running := t.isRunning
	t.mu.Unlock()
	if running {
		return fmt.Errorf("task %s is already running", name)
	}

	s.logger.Info("manual trigger", "task", name)
	go s.run(t)
	return nil
}

// Statuses returns the state of every task in registration order.
func (s *Scheduler) Statuses() []TaskStatus {
	statuses := make([]TaskStatus, 0, len(s.order))
	for _, name := range s.order {
		t := s.tasks[name]

		var nextRun *time.Time
		if s.started {
			entry := s.cron.Entry(t.entryID)
			if !entry.Next.IsZero() {
				next := entry.Next
				nextRun = &next
			}
		}

		t.mu.Lock()
		statuses = append(statuses, TaskStatus{
			Name:      t.name,
			Schedule:  t.schedule,
			IsRunning: t.isRunning,
			LastRun:   t.lastRun,
			NextRun:   nextRun,
			LastError: t.lastError,
		})
		t.mu.Unlock()
	}
	return statuses
}

// run executes one task firing with skip-if-running, deadline, and panic
// recovery.
func (s *Scheduler) run(t *task) {
	if !t.tryStart() {
		s.logger.Warn("previous run still in progress, skipping", "task", t.name)
		return
	}

	started := time.Now().UTC()
	ctx, cancel := context.WithTimeout(context.Background(), t.deadline)
	defer cancel()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
			s.logger.Error("panic recovered in task", "task", t.name, "panic", r)
		}
		completed := time.Now().UTC()
		t.finish(completed, err)

		if err != nil {
			s.logger.Error("task failed", "task", t.name, "duration", completed.Sub(started), "error", err)
		} else {
			s.logger.Info("task completed", "task", t.name, "duration", completed.Sub(started))
		}
	}()

	s.logger.Info("task starting", "task", t.name)
	err = t.handler(ctx)
}
