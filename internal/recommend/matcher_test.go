package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

// fakeEmbedder returns canned vectors keyed by exact input text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 1}, nil
}

func matchJob(id, title string, scrapedAt time.Time) *models.Job {
	return &models.Job{ID: id, Title: title, ScrapedAt: scrapedAt}
}

func defaultMatcherConfig() MatcherConfig {
	return MatcherConfig{MinScore: 0.20, TitleBoostExact: 0.40, TitleBoostPartial: 0.30}
}

func TestMatcher_Score(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("rescales cosine into unit range", func(t *testing.T) {
		job := matchJob("job-1", "Plumber", now)
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"user text":    {1, 0},
			embedText(job): {0, 1}, // orthogonal: cosine 0 rescales to 0.5
		}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", nil, []*models.Job{job}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Score != 0.5 {
			t.Errorf("score = %v, want 0.5", matches[0].Score)
		}
	})

	t.Run("drops matches below the minimum", func(t *testing.T) {
		job := matchJob("job-1", "Plumber", now)
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"user text":    {1, 0},
			embedText(job): {-1, 0}, // cosine -1 rescales to 0
		}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", nil, []*models.Job{job}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 0 {
			t.Errorf("got %d matches, want 0", len(matches))
		}
	})

	t.Run("exact title hit adds the full boost", func(t *testing.T) {
		job := matchJob("job-1", "Senior Backend Engineer", now)
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"user text":    {1, 0},
			embedText(job): {0, 1},
		}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", []string{"Backend Engineer"}, []*models.Job{job}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if got, want := matches[0].Score, 0.9; got != want {
			t.Errorf("score = %v, want %v (0.5 base + 0.4 exact boost)", got, want)
		}
	})

	t.Run("shared significant token adds the partial boost", func(t *testing.T) {
		job := matchJob("job-1", "Backend Developer", now)
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"user text":    {1, 0},
			embedText(job): {0, 1},
		}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", []string{"Backend Engineer"}, []*models.Job{job}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if got, want := matches[0].Score, 0.8; got != want {
			t.Errorf("score = %v, want %v (0.5 base + 0.3 partial boost)", got, want)
		}
	})

	t.Run("score is capped at one", func(t *testing.T) {
		job := matchJob("job-1", "Backend Engineer", now)
		embedder := &fakeEmbedder{vectors: map[string][]float32{
			"user text":    {1, 0},
			embedText(job): {1, 0}, // identical: cosine 1 rescales to 1.0
		}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", []string{"Backend Engineer"}, []*models.Job{job}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 1 {
			t.Fatalf("got %d matches, want 1", len(matches))
		}
		if matches[0].Score != 1.0 {
			t.Errorf("score = %v, want 1.0", matches[0].Score)
		}
	})

	t.Run("ties break by freshness then job id", func(t *testing.T) {
		older := matchJob("job-a", "Plumber", now.Add(-time.Hour))
		fresher := matchJob("job-b", "Plumber B", now)
		tiedLow := matchJob("job-z", "Plumber C", now.Add(-time.Hour))

		embedder := &fakeEmbedder{vectors: map[string][]float32{"user text": {1, 0}}}
		m := NewMatcher(embedder, defaultMatcherConfig())

		matches, err := m.Score(ctx, "user text", nil, []*models.Job{tiedLow, fresher, older}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if len(matches) != 3 {
			t.Fatalf("got %d matches, want 3", len(matches))
		}
		want := []string{"job-b", "job-a", "job-z"}
		for i, id := range want {
			if matches[i].Job.ID != id {
				t.Fatalf("order = [%s %s %s], want %v",
					matches[0].Job.ID, matches[1].Job.ID, matches[2].Job.ID, want)
			}
		}
	})

	t.Run("nil embedder yields no matches", func(t *testing.T) {
		m := NewMatcher(nil, defaultMatcherConfig())
		matches, err := m.Score(ctx, "user text", nil, []*models.Job{matchJob("job-1", "X", now)}, NewEmbeddingCache())
		if err != nil {
			t.Fatalf("Score failed: %v", err)
		}
		if matches != nil {
			t.Errorf("matches = %v, want nil", matches)
		}
	})

	t.Run("failed user embedding aborts scoring", func(t *testing.T) {
		embedder := &fakeEmbedder{err: errors.New("provider down")}
		m := NewMatcher(embedder, defaultMatcherConfig())

		_, err := m.Score(ctx, "user text", nil, []*models.Job{matchJob("job-1", "X", now)}, NewEmbeddingCache())
		if err == nil {
			t.Error("expected an error when the user embedding fails")
		}
	})
}

func TestEmbeddingCache(t *testing.T) {
	ctx := context.Background()
	embedder := &fakeEmbedder{vectors: map[string][]float32{"hello": {1, 2}}}
	cache := NewEmbeddingCache()

	for i := 0; i < 3; i++ {
		vec, err := cache.Get(ctx, embedder, "hello")
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if len(vec) != 2 {
			t.Fatalf("vector = %v, want length 2", vec)
		}
	}

	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1 (cache hit after first)", embedder.calls)
	}
	if cache.Len() != 1 {
		t.Errorf("cache size = %d, want 1", cache.Len())
	}
}

func TestUserLocks(t *testing.T) {
	locks := NewUserLocks()

	if !locks.TryAcquire("user-1") {
		t.Fatal("expected first acquire to succeed")
	}
	if locks.TryAcquire("user-1") {
		t.Error("expected second acquire for the same user to fail")
	}
	if !locks.TryAcquire("user-2") {
		t.Error("expected acquire for a different user to succeed")
	}

	locks.Release("user-1")
	if !locks.TryAcquire("user-1") {
		t.Error("expected acquire after release to succeed")
	}
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"mismatched length", []float32{1, 0}, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cosine(tt.a, tt.b); got != tt.want {
				t.Errorf("cosine = %v, want %v", got, tt.want)
			}
		})
	}
}
