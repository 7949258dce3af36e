package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hireloop/hireloop-api/internal/models"
)

const adzunaBaseURL = "https://api.adzuna.com/v1/api/jobs"

// AdzunaSource fetches from the Adzuna search API. It requires an app ID and
// key; an unconfigured adapter fails as unavailable rather than at startup.
type AdzunaSource struct {
	client  *http.Client
	baseURL string
	appID   string
	appKey  string
	country string
}

// NewAdzunaSource creates an Adzuna adapter.
func NewAdzunaSource(client *http.Client, appID, appKey, country string) *AdzunaSource {
	if client == nil {
		client = http.DefaultClient
	}
	if country == "" {
		country = "gb"
	}
	return &AdzunaSource{client: client, baseURL: adzunaBaseURL, appID: appID, appKey: appKey, country: country}
}

// Name returns the source tag.
func (s *AdzunaSource) Name() string { return models.SourceAdzuna }

type adzunaResponse struct {
	Results []adzunaJob `json:"results"`
}

type adzunaJob struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	RedirectURL string  `json:"redirect_url"`
	Created     string  `json:"created"`
	SalaryMin   float64 `json:"salary_min"`
	SalaryMax   float64 `json:"salary_max"`
	Company     struct {
		DisplayName string `json:"display_name"`
	} `json:"company"`
	Location struct {
		DisplayName string `json:"display_name"`
	} `json:"location"`
	ContractTime string `json:"contract_time"` // full_time / part_time
}

// Fetch returns up to q.MaxPerSource postings matching the query.
func (s *AdzunaSource) Fetch(ctx context.Context, q Query) ([]RawJob, error) {
	if s.appID == "" || s.appKey == "" {
		return nil, &SourceError{Source: s.Name(), Kind: ErrUnavailable, Err: fmt.Errorf("adzuna credentials not configured")}
	}

	params := url.Values{}
	params.Set("app_id", s.appID)
	params.Set("app_key", s.appKey)
	params.Set("results_per_page", strconv.Itoa(q.MaxPerSource))
	params.Set("content-type", "application/json")
	if q.Keyword != "" {
		params.Set("what", q.Keyword)
	}
	if q.Location != "" {
		params.Set("where", q.Location)
	}

	endpoint := fmt.Sprintf("%s/%s/search/1?%s", s.baseURL, s.country, params.Encode())

	var resp adzunaResponse
	if err := fetchJSON(ctx, s.client, s.Name(), endpoint, &resp); err != nil {
		return nil, err
	}

	raws := make([]RawJob, 0, len(resp.Results))
	for _, j := range resp.Results {
		if len(raws) >= q.MaxPerSource {
			break
		}
		raw := RawJob{
			Title:       j.Title,
			Company:     j.Company.DisplayName,
			Location:    j.Location.DisplayName,
			Description: j.Description,
			ApplyURL:    j.RedirectURL,
			SourceID:    j.ID,
			JobType:     j.ContractTime,
		}
		if j.SalaryMin > 0 {
			raw.SalaryMin = &j.SalaryMin
		}
		if j.SalaryMax > 0 {
			raw.SalaryMax = &j.SalaryMax
		}
		if t, err := time.Parse(time.RFC3339, j.Created); err == nil {
			utc := t.UTC()
			raw.PostedAt = &utc
		} else if t, err := time.Parse("2006-01-02T15:04:05", j.Created); err == nil {
			utc := t.UTC()
			raw.PostedAt = &utc
		}
		raws = append(raws, raw)
	}
	return raws, nil
}
