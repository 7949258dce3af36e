package scraper

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

const remotiveBaseURL = "https://remotive.com/api/remote-jobs"

// RemotiveSource fetches from the Remotive public API.
type RemotiveSource struct {
	client  *http.Client
	baseURL string
}

// NewRemotiveSource creates a Remotive adapter.
func NewRemotiveSource(client *http.Client) *RemotiveSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemotiveSource{client: client, baseURL: remotiveBaseURL}
}

// Name returns the source tag.
func (s *RemotiveSource) Name() string { return models.SourceRemotive }

type remotiveResponse struct {
	Jobs []remotiveJob `json:"jobs"`
}

type remotiveJob struct {
	ID             int      `json:"id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	CompanyName    string   `json:"company_name"`
	JobType        string   `json:"job_type"`
	CandidateLoc   string   `json:"candidate_required_location"`
	Salary         string   `json:"salary"`
	Description    string   `json:"description"`
	PublicationDat string   `json:"publication_date"`
	Tags           []string `json:"tags"`
}

// Fetch returns up to q.MaxPerSource postings matching the query.
func (s *RemotiveSource) Fetch(ctx context.Context, q Query) ([]RawJob, error) {
	params := url.Values{}
	if q.Keyword != "" {
		params.Set("search", q.Keyword)
	}
	params.Set("limit", strconv.Itoa(q.MaxPerSource))

	var resp remotiveResponse
	if err := fetchJSON(ctx, s.client, s.Name(), s.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	raws := make([]RawJob, 0, len(resp.Jobs))
	for _, j := range resp.Jobs {
		if len(raws) >= q.MaxPerSource {
			break
		}
		raw := RawJob{
			Title:       j.Title,
			Company:     j.CompanyName,
			Location:    j.CandidateLoc,
			Description: j.Description,
			ApplyURL:    j.URL,
			SourceID:    strconv.Itoa(j.ID),
			JobType:     j.JobType,
			RemoteType:  "remote",
			Skills:      j.Tags,
		}
		// Remotive timestamps look like "2026-02-15T08:01:14".
		if t, err := time.Parse("2006-01-02T15:04:05", j.PublicationDat); err == nil {
			utc := t.UTC()
			raw.PostedAt = &utc
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
