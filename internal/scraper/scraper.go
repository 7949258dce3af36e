// Package scraper contains the job-board source adapters and the
// normalisation pipeline that turns their payloads into canonical jobs.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RawJob is an un-normalised posting as returned by a source adapter.
type RawJob struct {
	Title       string
	Company     string
	Location    string
	Description string
	ApplyURL    string
	SourceID    string
	PostedAt    *time.Time

	// Optional hints some sources expose.
	JobType    string
	RemoteType string
	SalaryMin  *float64
	SalaryMax  *float64
	Currency   string
	Skills     []string
}

// Query is a single fetch request against a source.
type Query struct {
	Keyword      string
	Location     string
	MaxPerSource int
}

// Source is a job-board adapter.
type Source interface {
	Name() string
	Fetch(ctx context.Context, q Query) ([]RawJob, error)
}

// Error kinds for upstream failures. Transient errors are retried within
// the adapter's budget; the rest fail the source for this run only.
type ErrorKind int

const (
	ErrTransient ErrorKind = iota
	ErrRateLimited
	ErrMalformed
	ErrUnavailable
)

// SourceError classifies an upstream failure.
type SourceError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Retryable reports whether the failure is worth retrying.
func (e *SourceError) Retryable() bool {
	return e.Kind == ErrTransient || e.Kind == ErrRateLimited
}

const (
	maxFetchAttempts = 3
	initialBackoff   = 500 * time.Millisecond
)

// fetchJSON GETs url and decodes the JSON body into out, retrying transient
// failures with exponential backoff. HTTP status codes are classified per the
// upstream error taxonomy.
func fetchJSON(ctx context.Context, client *http.Client, source, url string, out any) error {
	var lastErr *SourceError

	backoff := initialBackoff
	for attempt := 1; attempt <= maxFetchAttempts; attempt++ {
		err := fetchJSONOnce(ctx, client, source, url, out)
		if err == nil {
			return nil
		}

		var srcErr *SourceError
		if !errors.As(err, &srcErr) {
			return err
		}
		lastErr = srcErr
		if !srcErr.Retryable() || attempt == maxFetchAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return &SourceError{Source: source, Kind: ErrUnavailable, Err: ctx.Err()}
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return lastErr
}

func fetchJSONOnce(ctx context.Context, client *http.Client, source, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &SourceError{Source: source, Kind: ErrUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hireloop-api/1.0")

	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &SourceError{Source: source, Kind: ErrUnavailable, Err: ctx.Err()}
		}
		return &SourceError{Source: source, Kind: ErrTransient, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &SourceError{Source: source, Kind: ErrRateLimited, Err: fmt.Errorf("rate limited (429)")}
	case resp.StatusCode >= 500:
		return &SourceError{Source: source, Kind: ErrTransient, Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &SourceError{Source: source, Kind: ErrUnavailable, Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &SourceError{Source: source, Kind: ErrTransient, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &SourceError{Source: source, Kind: ErrMalformed, Err: err}
	}
	return nil
}
