package repository

import (
	"context"
	"testing"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

func TestScrapeRunRepository_CreateAndUpdate(t *testing.T) {
	ctx := context.Background()
	repos, _ := setupTestRepos(t)

	run := &models.ScrapeRun{
		Sources:      []string{models.SourceRemotive, models.SourceAdzuna},
		Keywords:     []string{"golang"},
		Location:     "remote",
		MaxPerSource: 50,
	}
	if err := repos.ScrapeRun.Create(ctx, run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if run.Status != models.ScrapeStatusPending {
		t.Errorf("status = %q, want %q", run.Status, models.ScrapeStatusPending)
	}

	started := time.Now().UTC()
	completed := started.Add(time.Minute)
	run.Status = models.ScrapeStatusCompleted
	run.JobsFound = 40
	run.JobsStored = 30
	run.Duplicates = 10
	run.SourceErrors = map[string]string{models.SourceAdzuna: "rate limited"}
	run.StartedAt = &started
	run.CompletedAt = &completed
	if err := repos.ScrapeRun.Update(ctx, run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := repos.ScrapeRun.GetByID(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != models.ScrapeStatusCompleted {
		t.Errorf("status = %q, want %q", got.Status, models.ScrapeStatusCompleted)
	}
	if got.JobsStored != 30 || got.Duplicates != 10 {
		t.Errorf("counts = stored %d dup %d, want 30/10", got.JobsStored, got.Duplicates)
	}
	if got.SourceErrors[models.SourceAdzuna] != "rate limited" {
		t.Errorf("SourceErrors = %v, want adzuna rate limited", got.SourceErrors)
	}
	if got.CompletedAt == nil {
		t.Error("expected CompletedAt to be set")
	}
	if len(got.Sources) != 2 {
		t.Errorf("Sources = %v, want 2 entries", got.Sources)
	}
}

func TestScrapeRunRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	repos, _ := setupTestRepos(t)

	got, err := repos.ScrapeRun.GetByID(ctx, "missing")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got != nil {
		t.Errorf("run = %+v, want nil", got)
	}
}

func TestScrapeRunRepository_ListRecent(t *testing.T) {
	ctx := context.Background()
	repos, _ := setupTestRepos(t)

	for i := 0; i < 3; i++ {
		run := &models.ScrapeRun{Sources: []string{models.SourceRemotive}, MaxPerSource: 50}
		if err := repos.ScrapeRun.Create(ctx, run); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	runs, err := repos.ScrapeRun.ListRecent(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("got %d runs, want 2", len(runs))
	}
}
