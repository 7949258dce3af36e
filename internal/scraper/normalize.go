package scraper

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode"

	"github.com/hireloop/hireloop-api/internal/models"
)

// maxDescriptionLen bounds stored descriptions.
const maxDescriptionLen = 20000

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRe      = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
)

// remoteVariants fold assorted "remote" spellings into one canonical token.
var remoteVariants = map[string]string{
	"remote":           "remote",
	"fully remote":     "remote",
	"100% remote":      "remote",
	"remote worldwide": "remote",
	"anywhere":         "remote",
	"work from home":   "remote",
	"wfh":              "remote",
	"worldwide":        "remote",
}

// Normalize converts a raw posting into a canonical Job for the given source.
// Empty title or company disqualifies the record (returns nil); string fields
// are whitespace-collapsed and control-stripped, and the dedup fingerprint is
// computed over the canonical tuple.
func Normalize(raw RawJob, source string) *models.Job {
	title := CleanText(raw.Title)
	company := CleanText(raw.Company)
	if title == "" || company == "" {
		return nil
	}

	description := CleanText(raw.Description)
	if len(description) > maxDescriptionLen {
		description = description[:maxDescriptionLen]
	}

	job := &models.Job{
		Title:       title,
		Company:     company,
		Location:    CanonicalLocation(raw.Location),
		Description: description,
		Source:      source,
		Skills:      cleanAll(raw.Skills),
		PostedAt:    raw.PostedAt,
		SalaryMin:   raw.SalaryMin,
		SalaryMax:   raw.SalaryMax,
	}

	if u := strings.TrimSpace(raw.ApplyURL); u != "" {
		job.ApplyURL = &u
	}
	if id := strings.TrimSpace(raw.SourceID); id != "" {
		job.SourceID = &id
	}
	if jt := CleanText(raw.JobType); jt != "" {
		job.JobType = &jt
	}
	if rt := CleanText(raw.RemoteType); rt != "" {
		job.RemoteType = &rt
	}
	if c := strings.TrimSpace(raw.Currency); c != "" {
		job.SalaryCurrency = &c
	}

	job.Fingerprint = Fingerprint(job)
	return job
}

// CleanText trims, collapses whitespace, and strips control characters.
func CleanText(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// CanonicalTitle lowercases a title and strips punctuation, for fingerprints
// and title-boost matching.
func CanonicalTitle(title string) string {
	t := strings.ToLower(CleanText(title))
	t = punctRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(t, " "))
}

// CanonicalLocation lowercases a location and folds remote variants.
func CanonicalLocation(location string) string {
	loc := strings.ToLower(CleanText(location))
	if folded, ok := remoteVariants[loc]; ok {
		return folded
	}
	return loc
}

// Fingerprint is a stable hash over the canonical dedup tuple. It identifies
// jobs whose source assigns no ID; when a source ID exists it is included so
// the hash stays distinct across identity regimes.
func Fingerprint(job *models.Job) string {
	parts := []string{
		CanonicalTitle(job.Title),
		strings.ToLower(CleanText(job.Company)),
		CanonicalLocation(job.Location),
		job.Source,
	}
	if job.SourceID != nil {
		parts = append(parts, *job.SourceID)
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func cleanAll(values []string) []string {
	var out []string
	for _, v := range values {
		if c := CleanText(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}
