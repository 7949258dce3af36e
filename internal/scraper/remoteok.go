package scraper

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

const remoteokBaseURL = "https://remoteok.com/api"

// RemoteOKSource fetches from the RemoteOK public API.
type RemoteOKSource struct {
	client  *http.Client
	baseURL string
}

// NewRemoteOKSource creates a RemoteOK adapter.
func NewRemoteOKSource(client *http.Client) *RemoteOKSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteOKSource{client: client, baseURL: remoteokBaseURL}
}

// Name returns the source tag.
func (s *RemoteOKSource) Name() string { return models.SourceRemoteOK }

type remoteokJob struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	ApplyURL    string   `json:"apply_url"`
	Tags        []string `json:"tags"`
	SalaryMin   float64  `json:"salary_min"`
	SalaryMax   float64  `json:"salary_max"`
	Date        string   `json:"date"`
	// The API's first element is a legal notice with these fields empty.
}

// Fetch returns up to q.MaxPerSource postings. RemoteOK has no server-side
// search, so keyword filtering happens on tags and titles client-side.
func (s *RemoteOKSource) Fetch(ctx context.Context, q Query) ([]RawJob, error) {
	var entries []remoteokJob
	if err := fetchJSON(ctx, s.client, s.Name(), s.baseURL, &entries); err != nil {
		return nil, err
	}

	keyword := strings.ToLower(strings.TrimSpace(q.Keyword))

	var raws []RawJob
	for _, j := range entries {
		if j.Position == "" || j.Company == "" {
			continue
		}
		if keyword != "" && !remoteokMatches(j, keyword) {
			continue
		}

		raw := RawJob{
			Title:       j.Position,
			Company:     j.Company,
			Location:    j.Location,
			Description: j.Description,
			ApplyURL:    firstNonEmpty(j.ApplyURL, j.URL),
			SourceID:    j.ID,
			RemoteType:  "remote",
			Skills:      j.Tags,
		}
		if j.SalaryMin > 0 {
			raw.SalaryMin = &j.SalaryMin
			raw.Currency = "USD"
		}
		if j.SalaryMax > 0 {
			raw.SalaryMax = &j.SalaryMax
			raw.Currency = "USD"
		}
		if t, err := time.Parse(time.RFC3339, j.Date); err == nil {
			utc := t.UTC()
			raw.PostedAt = &utc
		}

		raws = append(raws, raw)
		if len(raws) >= q.MaxPerSource {
			break
		}
	}
	return raws, nil
}

func remoteokMatches(j remoteokJob, keyword string) bool {
	if strings.Contains(strings.ToLower(j.Position), keyword) {
		return true
	}
	for _, tag := range j.Tags {
		if strings.Contains(strings.ToLower(tag), keyword) {
			return true
		}
	}
	return false
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
