package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hireloop/hireloop-api/internal/llm"
	"github.com/hireloop/hireloop-api/internal/models"
)

const postingText = "We are hiring a Backend Engineer to build our Go services. Remote friendly, competitive salary."

func parsedPosting() *llm.ParsedJob {
	return &llm.ParsedJob{
		Title:        "Backend Engineer",
		Company:      "Acme",
		Location:     "Remote",
		Description:  "Build our Go services.",
		RemoteType:   "remote",
		Skills:       []string{"Go", "SQL"},
		Requirements: []string{"5 years backend experience"},
	}
}

func newTestExternalJobService(parser llm.Parser, jobRepo *memJobRepo) *ExternalJobService {
	return NewExternalJobService(parser, llm.NewPageFetcher(nil), jobRepo, slog.Default())
}

func TestExternalJobService_FromText(t *testing.T) {
	ctx := context.Background()

	t.Run("nil parser disables submission", func(t *testing.T) {
		svc := newTestExternalJobService(nil, newMemJobRepo())
		_, err := svc.FromText(ctx, "user-1", postingText, "")
		if !errors.Is(err, ErrParserUnavailable) {
			t.Errorf("err = %v, want ErrParserUnavailable", err)
		}
	})

	t.Run("rejects short pastes", func(t *testing.T) {
		svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, newMemJobRepo())
		_, err := svc.FromText(ctx, "user-1", "too short", "")
		if !errors.Is(err, ErrTextTooShort) {
			t.Errorf("err = %v, want ErrTextTooShort", err)
		}
	})

	t.Run("parser failure", func(t *testing.T) {
		svc := newTestExternalJobService(&fakeParser{parseErr: errors.New("model refused")}, newMemJobRepo())
		_, err := svc.FromText(ctx, "user-1", postingText, "")
		if !errors.Is(err, ErrUnparseablePosting) {
			t.Errorf("err = %v, want ErrUnparseablePosting", err)
		}
	})

	t.Run("extraction without a title", func(t *testing.T) {
		parsed := parsedPosting()
		parsed.Title = ""
		svc := newTestExternalJobService(&fakeParser{parsed: parsed}, newMemJobRepo())
		_, err := svc.FromText(ctx, "user-1", postingText, "")
		if !errors.Is(err, ErrUnparseablePosting) {
			t.Errorf("err = %v, want ErrUnparseablePosting", err)
		}
	})

	t.Run("stores an owned external job", func(t *testing.T) {
		jobRepo := newMemJobRepo()
		svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, jobRepo)

		job, err := svc.FromText(ctx, "user-1", postingText, "https://careers.example.com/42")
		if err != nil {
			t.Fatalf("FromText failed: %v", err)
		}
		if job.Source != models.SourceExternal {
			t.Errorf("source = %s, want external", job.Source)
		}
		if job.OwnerID == nil || *job.OwnerID != "user-1" {
			t.Errorf("OwnerID = %v, want user-1", job.OwnerID)
		}
		// No apply URL in the extraction, so the submitted URL stands in.
		if job.ApplyURL == nil || *job.ApplyURL != "https://careers.example.com/42" {
			t.Errorf("ApplyURL = %v, want the source URL", job.ApplyURL)
		}
		if len(job.Requirements) != 1 {
			t.Errorf("Requirements = %v, want the extracted list", job.Requirements)
		}
	})
}

func TestExternalJobService_FromURL(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-http URLs", func(t *testing.T) {
		svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, newMemJobRepo())
		_, err := svc.FromURL(ctx, "user-1", "ftp://example.com/job")
		if !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("err = %v, want ErrUnsupportedURL", err)
		}
	})

	t.Run("rejects pages that fail to fetch", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, newMemJobRepo())
		_, err := svc.FromURL(ctx, "user-1", srv.URL+"/job")
		if !errors.Is(err, ErrUnsupportedURL) {
			t.Errorf("err = %v, want ErrUnsupportedURL", err)
		}
	})

	t.Run("fetches and stores a posting page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body><h1>Backend Engineer</h1><p>Join Acme.</p></body></html>"))
		}))
		defer srv.Close()

		jobRepo := newMemJobRepo()
		svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, jobRepo)

		job, err := svc.FromURL(ctx, "user-1", srv.URL+"/job")
		if err != nil {
			t.Fatalf("FromURL failed: %v", err)
		}
		if job.Title != "Backend Engineer" {
			t.Errorf("title = %q, want %q", job.Title, "Backend Engineer")
		}
		if job.ApplyURL == nil || !strings.HasPrefix(*job.ApplyURL, srv.URL) {
			t.Errorf("ApplyURL = %v, want the page URL", job.ApplyURL)
		}
	})
}

func TestExternalJobService_DeleteOwned(t *testing.T) {
	ctx := context.Background()
	jobRepo := newMemJobRepo()
	svc := newTestExternalJobService(&fakeParser{parsed: parsedPosting()}, jobRepo)

	job, err := svc.FromText(ctx, "user-1", postingText, "")
	if err != nil {
		t.Fatalf("FromText failed: %v", err)
	}

	t.Run("other users cannot delete it", func(t *testing.T) {
		if err := svc.DeleteOwned(ctx, "user-2", job.ID); !errors.Is(err, ErrJobNotFound) {
			t.Errorf("err = %v, want ErrJobNotFound", err)
		}
	})

	t.Run("owner can delete it", func(t *testing.T) {
		if err := svc.DeleteOwned(ctx, "user-1", job.ID); err != nil {
			t.Errorf("DeleteOwned failed: %v", err)
		}
		if err := svc.DeleteOwned(ctx, "user-1", job.ID); !errors.Is(err, ErrJobNotFound) {
			t.Errorf("repeat delete err = %v, want ErrJobNotFound", err)
		}
	})
}
