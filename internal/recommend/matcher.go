// Package recommend implements embedding-based matching and the per-user
// recommendation regeneration pipeline.
package recommend

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/scraper"
)

// MatcherConfig holds the scoring knobs.
type MatcherConfig struct {
	MinScore          float64
	TitleBoostExact   float64
	TitleBoostPartial float64
}

// Match is one scored (job, score) pair.
type Match struct {
	Job   *models.Job
	Score float64
}

// Matcher scores candidate jobs against a user's profile text.
type Matcher struct {
	embedder llm.Embedder
	cfg      MatcherConfig
}

// NewMatcher creates a matcher. A nil embedder is allowed and produces no
// matches, so the system runs without an AI provider configured.
func NewMatcher(embedder llm.Embedder, cfg MatcherConfig) *Matcher {
	return &Matcher{embedder: embedder, cfg: cfg}
}

// embedBatchSize bounds how many cosine computations run between context
// checks, so a large candidate set cannot starve the scheduler.
const embedBatchSize = 64

// Score ranks candidates against the user text. Pairs scoring below the
// configured minimum are dropped; ties break by (score desc, scraped_at desc,
// job id). The cache deduplicates embedding calls within one batch.
func (m *Matcher) Score(ctx context.Context, userText string, userTitles []string, candidates []*models.Job, cache *EmbeddingCache) ([]Match, error) {
	if m.embedder == nil || strings.TrimSpace(userText) == "" {
		return nil, nil
	}

	userVec, err := cache.Get(ctx, m.embedder, userText)
	if err != nil {
		return nil, err
	}

	canonTitles := canonicalTitles(userTitles)

	var matches []Match
	for i, job := range candidates {
		if i%embedBatchSize == 0 && i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		jobVec, err := cache.Get(ctx, m.embedder, embedText(job))
		if err != nil {
			// One failed embedding drops the candidate, not the user.
			continue
		}

		score := rescaleCosine(cosine(userVec, jobVec))
		score += m.titleBoost(job.Title, canonTitles)
		if score > 1.0 {
			score = 1.0
		}
		if score < m.cfg.MinScore {
			continue
		}
		matches = append(matches, Match{Job: job, Score: score})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if !matches[i].Job.ScrapedAt.Equal(matches[j].Job.ScrapedAt) {
			return matches[i].Job.ScrapedAt.After(matches[j].Job.ScrapedAt)
		}
		return matches[i].Job.ID < matches[j].Job.ID
	})

	return matches, nil
}

// titleBoost is the only non-embedding signal: an exact token-boundary hit on
// a target title adds the full boost, any significant token of one adds the
// partial boost.
func (m *Matcher) titleBoost(jobTitle string, canonTitles []string) float64 {
	canonical := scraper.CanonicalTitle(jobTitle)
	if canonical == "" {
		return 0
	}
	padded := " " + canonical + " "

	for _, t := range canonTitles {
		if t != "" && strings.Contains(padded, " "+t+" ") {
			return m.cfg.TitleBoostExact
		}
	}

	jobTokens := make(map[string]bool)
	for _, tok := range strings.Fields(canonical) {
		jobTokens[tok] = true
	}
	for _, t := range canonTitles {
		for _, tok := range strings.Fields(t) {
			if significantToken(tok) && jobTokens[tok] {
				return m.cfg.TitleBoostPartial
			}
		}
	}
	return 0
}

// insignificantTokens are too generic to signal a title match on their own.
var insignificantTokens = map[string]bool{
	"and": true, "the": true, "of": true, "for": true, "in": true,
	"a": true, "an": true, "to": true, "or": true,
}

func significantToken(tok string) bool {
	return len(tok) >= 3 && !insignificantTokens[tok]
}

func canonicalTitles(titles []string) []string {
	out := make([]string, 0, len(titles))
	for _, t := range titles {
		if c := scraper.CanonicalTitle(t); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// embedText is the job-side embedding input.
func embedText(job *models.Job) string {
	const maxDescForEmbed = 2000
	desc := job.Description
	if len(desc) > maxDescForEmbed {
		desc = desc[:maxDescForEmbed]
	}
	return job.Title + "\n" + desc
}

// rescaleCosine maps cosine similarity from [-1,1] into [0,1].
func rescaleCosine(sim float64) float64 {
	return (sim + 1) / 2
}

// cosine computes cosine similarity between two vectors. Mismatched or zero
// vectors score zero.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// WindowCutoff returns the oldest scraped_at eligible for matching.
func WindowCutoff(now time.Time, windowDays int) time.Time {
	return now.UTC().AddDate(0, 0, -windowDays)
}
