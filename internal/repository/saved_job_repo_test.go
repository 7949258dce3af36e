package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

func TestSavedJobRepository_Save(t *testing.T) {
	ctx := context.Background()
	expiry := time.Now().UTC().AddDate(0, 0, 10)

	t.Run("creates bookmark in saved status", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Backend Engineer", "Acme", time.Now().UTC())

		saved, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 10)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if saved.Status != models.SavedStatusSaved {
			t.Errorf("status = %q, want %q", saved.Status, models.SavedStatusSaved)
		}
		if saved.ExpiresAt == nil {
			t.Error("expected ExpiresAt to be set on a fresh bookmark")
		}
	})

	t.Run("rejects duplicate save", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Backend Engineer", "Acme", time.Now().UTC())

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 10); err != nil {
			t.Fatalf("first Save failed: %v", err)
		}
		_, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 10)
		if !errors.Is(err, ErrDuplicateSave) {
			t.Errorf("error = %v, want ErrDuplicateSave", err)
		}
	})

	t.Run("enforces live-save cap", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Role 1", "Acme", time.Now().UTC())
		insertTestJob(t, db, "job-2", "Role 2", "Acme", time.Now().UTC())
		insertTestJob(t, db, "job-3", "Role 3", "Acme", time.Now().UTC())

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 2); err != nil {
			t.Fatalf("Save job-1 failed: %v", err)
		}
		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-2", expiry, 2); err != nil {
			t.Fatalf("Save job-2 failed: %v", err)
		}

		_, err := repos.SavedJob.Save(ctx, "user-1", "job-3", expiry, 2)
		if !errors.Is(err, ErrSaveLimitReached) {
			t.Errorf("error = %v, want ErrSaveLimitReached", err)
		}
	})

	t.Run("only saved status counts toward the cap", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Role 1", "Acme", time.Now().UTC())
		insertTestJob(t, db, "job-2", "Role 2", "Acme", time.Now().UTC())

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 1); err != nil {
			t.Fatalf("Save job-1 failed: %v", err)
		}
		if _, err := repos.SavedJob.UpdateStatus(ctx, "user-1", "job-1", models.SavedStatusSubmitted); err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-2", expiry, 1); err != nil {
			t.Errorf("Save after acting on a bookmark failed: %v", err)
		}
	})

	t.Run("cap is per user", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Role 1", "Acme", time.Now().UTC())

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 1); err != nil {
			t.Fatalf("Save for user-1 failed: %v", err)
		}
		if _, err := repos.SavedJob.Save(ctx, "user-2", "job-1", expiry, 1); err != nil {
			t.Errorf("Save for user-2 failed: %v", err)
		}
	})
}

func TestSavedJobRepository_Unsave(t *testing.T) {
	ctx := context.Background()
	repos, db := setupTestRepos(t)
	insertTestJob(t, db, "job-1", "Backend Engineer", "Acme", time.Now().UTC())

	if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", time.Now().UTC().AddDate(0, 0, 10), 10); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	ok, err := repos.SavedJob.Unsave(ctx, "user-1", "job-1")
	if err != nil {
		t.Fatalf("Unsave failed: %v", err)
	}
	if !ok {
		t.Error("expected Unsave to remove the bookmark")
	}

	ok, err = repos.SavedJob.Unsave(ctx, "user-1", "job-1")
	if err != nil {
		t.Fatalf("second Unsave failed: %v", err)
	}
	if ok {
		t.Error("expected second Unsave to be a no-op")
	}
}

func TestSavedJobRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("leaving saved clears the expiry", func(t *testing.T) {
		repos, db := setupTestRepos(t)
		insertTestJob(t, db, "job-1", "Backend Engineer", "Acme", time.Now().UTC())

		if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", time.Now().UTC().AddDate(0, 0, 10), 10); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		updated, err := repos.SavedJob.UpdateStatus(ctx, "user-1", "job-1", models.SavedStatusDraft)
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if updated.Status != models.SavedStatusDraft {
			t.Errorf("status = %q, want %q", updated.Status, models.SavedStatusDraft)
		}
		if updated.ExpiresAt != nil {
			t.Errorf("ExpiresAt = %v, want nil once the bookmark left saved", updated.ExpiresAt)
		}
	})

	t.Run("returns nil for unknown bookmark", func(t *testing.T) {
		repos, _ := setupTestRepos(t)

		updated, err := repos.SavedJob.UpdateStatus(ctx, "user-1", "job-missing", models.SavedStatusDraft)
		if err != nil {
			t.Fatalf("UpdateStatus failed: %v", err)
		}
		if updated != nil {
			t.Errorf("updated = %+v, want nil", updated)
		}
	})
}

func TestSavedJobRepository_ListByUserID(t *testing.T) {
	ctx := context.Background()
	repos, db := setupTestRepos(t)

	insertTestJob(t, db, "job-1", "Backend Engineer", "Acme", time.Now().UTC())
	insertTestJob(t, db, "job-2", "Frontend Engineer", "Initech", time.Now().UTC())
	expiry := time.Now().UTC().AddDate(0, 0, 10)

	if _, err := repos.SavedJob.Save(ctx, "user-1", "job-1", expiry, 10); err != nil {
		t.Fatalf("Save job-1 failed: %v", err)
	}
	if _, err := repos.SavedJob.Save(ctx, "user-1", "job-2", expiry, 10); err != nil {
		t.Fatalf("Save job-2 failed: %v", err)
	}
	if _, err := repos.SavedJob.Save(ctx, "user-2", "job-1", expiry, 10); err != nil {
		t.Fatalf("Save for user-2 failed: %v", err)
	}

	saved, err := repos.SavedJob.ListByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(saved) != 2 {
		t.Fatalf("got %d bookmarks, want 2", len(saved))
	}
	for _, sj := range saved {
		if sj.Job == nil {
			t.Errorf("bookmark %s missing joined job", sj.JobID)
		}
	}
}

func TestSavedJobRepository_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	repos, db := setupTestRepos(t)

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	insertTestJob(t, db, "job-1", "Role 1", "Acme", now)
	insertTestJob(t, db, "job-2", "Role 2", "Acme", now)
	insertTestJob(t, db, "job-3", "Role 3", "Acme", now)

	insertTestSavedJob(t, db, "sv-expired", "user-1", "job-1", models.SavedStatusSaved, &past)
	insertTestSavedJob(t, db, "sv-live", "user-1", "job-2", models.SavedStatusSaved, &future)
	// Acted-on bookmarks are never swept, even with a stale expiry left over.
	insertTestSavedJob(t, db, "sv-draft", "user-1", "job-3", models.SavedStatusDraft, &past)

	deleted, err := repos.SavedJob.DeleteExpired(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpired failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	remaining, err := repos.SavedJob.ListByUserID(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListByUserID failed: %v", err)
	}
	if len(remaining) != 2 {
		t.Errorf("remaining bookmarks = %d, want 2", len(remaining))
	}
}
