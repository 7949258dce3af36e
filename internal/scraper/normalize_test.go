package scraper

import (
	"strings"
	"testing"

	"github.com/hireloop/hireloop-api/internal/models"
)

func TestNormalize(t *testing.T) {
	t.Run("produces canonical job", func(t *testing.T) {
		raw := RawJob{
			Title:       "  Senior   Backend\tEngineer ",
			Company:     "Acme Corp",
			Location:    "Fully Remote",
			Description: "Build services.",
			ApplyURL:    "https://acme.example/jobs/1",
			SourceID:    "1234",
			Skills:      []string{" Go ", "", "SQL"},
		}

		job := Normalize(raw, models.SourceRemotive)
		if job == nil {
			t.Fatal("expected a job, got nil")
		}
		if job.Title != "Senior Backend Engineer" {
			t.Errorf("Title = %q, want collapsed whitespace", job.Title)
		}
		if job.Location != "remote" {
			t.Errorf("Location = %q, want remote (variant folded)", job.Location)
		}
		if job.SourceID == nil || *job.SourceID != "1234" {
			t.Errorf("SourceID = %v, want 1234", job.SourceID)
		}
		if len(job.Skills) != 2 {
			t.Errorf("Skills = %v, want 2 cleaned entries", job.Skills)
		}
		if job.Fingerprint == "" {
			t.Error("expected a fingerprint")
		}
	})

	t.Run("disqualifies missing title or company", func(t *testing.T) {
		if job := Normalize(RawJob{Title: "  ", Company: "Acme"}, models.SourceRemotive); job != nil {
			t.Errorf("blank title: got %+v, want nil", job)
		}
		if job := Normalize(RawJob{Title: "Engineer", Company: ""}, models.SourceRemotive); job != nil {
			t.Errorf("blank company: got %+v, want nil", job)
		}
	})

	t.Run("truncates oversized descriptions", func(t *testing.T) {
		raw := RawJob{
			Title:       "Engineer",
			Company:     "Acme",
			Description: strings.Repeat("a", maxDescriptionLen+500),
		}
		job := Normalize(raw, models.SourceRemotive)
		if job == nil {
			t.Fatal("expected a job, got nil")
		}
		if len(job.Description) != maxDescriptionLen {
			t.Errorf("description length = %d, want %d", len(job.Description), maxDescriptionLen)
		}
	})
}

func TestFingerprint(t *testing.T) {
	base := func() *models.Job {
		return &models.Job{
			Title:    "Senior Backend Engineer",
			Company:  "Acme Corp",
			Location: "remote",
			Source:   models.SourceRemotive,
		}
	}

	t.Run("insensitive to case, punctuation, and spacing", func(t *testing.T) {
		a := base()
		b := base()
		b.Title = "senior  backend-engineer!"
		b.Company = "ACME CORP"
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("expected equal fingerprints for equivalent postings")
		}
	})

	t.Run("folds remote location variants", func(t *testing.T) {
		a := base()
		a.Location = CanonicalLocation("Work From Home")
		b := base()
		b.Location = CanonicalLocation("100% Remote")
		if Fingerprint(a) != Fingerprint(b) {
			t.Error("expected remote variants to share a fingerprint")
		}
	})

	t.Run("differs across titles", func(t *testing.T) {
		a := base()
		b := base()
		b.Title = "Frontend Engineer"
		if Fingerprint(a) == Fingerprint(b) {
			t.Error("expected different fingerprints for different titles")
		}
	})

	t.Run("differs across sources", func(t *testing.T) {
		a := base()
		b := base()
		b.Source = models.SourceRemoteOK
		if Fingerprint(a) == Fingerprint(b) {
			t.Error("expected different fingerprints across sources")
		}
	})

	t.Run("includes source id when present", func(t *testing.T) {
		a := base()
		b := base()
		id := "1234"
		b.SourceID = &id
		if Fingerprint(a) == Fingerprint(b) {
			t.Error("expected source id to change the fingerprint")
		}
	})
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"collapses whitespace", "a \t b\n\nc", "a b c"},
		{"strips control characters", "a\x00b\x1fc", "abc"},
		{"trims", "  hello  ", "hello"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanText(tt.input); got != tt.want {
				t.Errorf("CleanText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanonicalTitle(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Senior Backend Engineer", "senior backend engineer"},
		{"Sr. Backend-Engineer (Go)", "sr backend engineer go"},
		{"  DATA   SCIENTIST  ", "data scientist"},
	}
	for _, tt := range tests {
		if got := CanonicalTitle(tt.input); got != tt.want {
			t.Errorf("CanonicalTitle(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestCanonicalLocation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Fully Remote", "remote"},
		{"WFH", "remote"},
		{"Berlin, Germany", "berlin, germany"},
		{"Anywhere", "remote"},
	}
	for _, tt := range tests {
		if got := CanonicalLocation(tt.input); got != tt.want {
			t.Errorf("CanonicalLocation(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
