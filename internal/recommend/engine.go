package recommend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// ErrRegenerationRunning is returned when a regeneration for the same user
// is already in flight.
var ErrRegenerationRunning = errors.New("regeneration already running for user")

// maxConcurrentUsers bounds the regeneration fan-out.
const maxConcurrentUsers = 4

// EngineConfig holds the regeneration knobs.
type EngineConfig struct {
	TopN       int
	ExpiryDays int
	WindowDays int
}

// BatchResult summarises one regenerate-all run.
type BatchResult struct {
	UsersConsidered int               `json:"users_considered"`
	UsersSucceeded  int               `json:"users_succeeded"`
	UsersSkipped    int               `json:"users_skipped"`
	TotalWritten    int               `json:"total_written"`
	Failures        map[string]string `json:"failures,omitempty"`
}

// Engine orchestrates per-user recommendation regeneration.
type Engine struct {
	jobs     repository.JobRepository
	recs     repository.RecommendationRepository
	provider *UserViewProvider
	profiles repository.ProfileRepository
	matcher  *Matcher
	locks    *UserLocks
	cfg      EngineConfig
	logger   *slog.Logger
}

// NewEngine creates a recommendation engine.
func NewEngine(
	jobs repository.JobRepository,
	recs repository.RecommendationRepository,
	provider *UserViewProvider,
	profiles repository.ProfileRepository,
	matcher *Matcher,
	locks *UserLocks,
	cfg EngineConfig,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		jobs:     jobs,
		recs:     recs,
		provider: provider,
		profiles: profiles,
		matcher:  matcher,
		locks:    locks,
		cfg:      cfg,
		logger:   logger.With("component", "recommend-engine"),
	}
}

// Locks exposes the shared per-user lock set.
func (e *Engine) Locks() *UserLocks { return e.locks }

// RegenerateAll regenerates recommendations for every user with a profile.
// Users run with bounded parallelism; a failure for one user is recorded in
// the summary and never aborts the batch. The per-user replacement is the
// atomicity boundary, so aborting between users leaves no half-user state.
func (e *Engine) RegenerateAll(ctx context.Context) (*BatchResult, error) {
	userIDs, err := e.profiles.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := &BatchResult{
		UsersConsidered: len(userIDs),
		Failures:        make(map[string]string),
	}

	// One candidate set and one embedding cache serve the whole batch.
	cutoff := WindowCutoff(time.Now(), e.cfg.WindowDays)
	candidates, err := e.jobs.ListScrapedSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("load candidate jobs: %w", err)
	}
	cache := NewEmbeddingCache()

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentUsers)

	for _, userID := range userIDs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(userID string) {
			defer wg.Done()
			defer func() { <-sem }()

			count, err := e.regenerate(ctx, userID, candidates, cache)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(err, ErrRegenerationRunning):
				result.UsersSkipped++
			case err != nil:
				result.Failures[userID] = err.Error()
				e.logger.Warn("regeneration failed", "user_id", userID, "error", err)
			case count < 0:
				// No profile or no completed CV.
				result.UsersSkipped++
			default:
				result.UsersSucceeded++
				result.TotalWritten += count
			}
		}(userID)
	}
	wg.Wait()

	e.logger.Info("regeneration batch complete",
		"considered", result.UsersConsidered,
		"succeeded", result.UsersSucceeded,
		"skipped", result.UsersSkipped,
		"written", result.TotalWritten,
		"failures", len(result.Failures),
		"embeddings_cached", cache.Len(),
	)
	return result, ctx.Err()
}

// RegenerateFor regenerates one user's recommendations and returns how many
// were written. Used by the manual-trigger endpoint; it loads its own
// candidate set and cache.
func (e *Engine) RegenerateFor(ctx context.Context, userID string) (int, error) {
	cutoff := WindowCutoff(time.Now(), e.cfg.WindowDays)
	candidates, err := e.jobs.ListScrapedSince(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("load candidate jobs: %w", err)
	}

	count, err := e.regenerate(ctx, userID, candidates, NewEmbeddingCache())
	if err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, nil
	}
	return count, nil
}

// regenerate runs the per-user procedure under the user's lock. Returns -1
// when the user has no matchable profile (skip, not an error).
func (e *Engine) regenerate(ctx context.Context, userID string, candidates []*models.Job, cache *EmbeddingCache) (int, error) {
	if !e.locks.TryAcquire(userID) {
		return 0, ErrRegenerationRunning
	}
	defer e.locks.Release(userID)

	view, err := e.provider.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	if view == nil {
		return -1, nil
	}

	// On a matcher outage the live set is still replaced with empty (stale
	// matches are worse than none), but the failure is reported upward.
	matches, scoreErr := e.matcher.Score(ctx, view.EmbedText, view.Titles, candidates, cache)
	if scoreErr != nil {
		e.logger.Warn("matcher unavailable, writing empty set", "user_id", userID, "error", scoreErr)
		matches = nil
	}

	// Collapse duplicate jobs keeping the higher score. Matches are sorted
	// score-descending, so the first occurrence wins.
	seen := make(map[string]bool, len(matches))
	now := time.Now().UTC()
	expiry := now.AddDate(0, 0, e.cfg.ExpiryDays)

	recs := make([]*models.Recommendation, 0, e.cfg.TopN)
	for _, m := range matches {
		if len(recs) >= e.cfg.TopN {
			break
		}
		if seen[m.Job.ID] {
			continue
		}
		seen[m.Job.ID] = true
		recs = append(recs, &models.Recommendation{
			UserID:    userID,
			JobID:     m.Job.ID,
			Score:     m.Score,
			CreatedAt: now,
			ExpiresAt: expiry,
		})
	}

	if err := e.recs.ReplaceForUser(ctx, userID, recs); err != nil {
		return 0, fmt.Errorf("replace recommendations: %w", err)
	}
	if scoreErr != nil {
		return 0, fmt.Errorf("score candidates: %w", scoreErr)
	}
	return len(recs), nil
}
