// Package models defines the core data structures.
// Note: user accounts and sessions live in the external identity provider;
// user_id fields hold provider-issued IDs.
package models

import "time"

// Job source tags. "external" marks user-submitted jobs.
const (
	SourceRemotive = "remotive"
	SourceRemoteOK = "remoteok"
	SourceAdzuna   = "adzuna"
	SourceExternal = "external"
)

// ScrapeSources lists the adapters that participate in periodic scraping.
var ScrapeSources = []string{SourceRemotive, SourceRemoteOK, SourceAdzuna}

// Job is the canonical representation of a posting.
type Job struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Location    string  `json:"location"`
	Description string  `json:"description"`
	ApplyURL    *string `json:"apply_url,omitempty"`
	Source      string  `json:"source"`
	SourceID    *string `json:"source_id,omitempty"`
	// Fingerprint dedups jobs whose source assigns no ID.
	Fingerprint string `json:"-"`

	JobType         *string  `json:"job_type,omitempty"`    // full_time, part_time, contract, internship
	RemoteType      *string  `json:"remote_type,omitempty"` // remote, hybrid, onsite
	SalaryMin       *float64 `json:"salary_min,omitempty"`
	SalaryMax       *float64 `json:"salary_max,omitempty"`
	SalaryCurrency  *string  `json:"salary_currency,omitempty"`
	ExperienceLevel *string  `json:"experience_level,omitempty"`
	Skills          []string `json:"skills,omitempty"`
	Requirements    []string `json:"requirements,omitempty"`

	// OwnerID is set only for user-submitted jobs (source=external).
	OwnerID *string `json:"owner_id,omitempty"`

	PostedAt  *time.Time `json:"posted_at,omitempty"`
	ScrapedAt time.Time  `json:"scraped_at"`
	CreatedAt time.Time  `json:"created_at"`
}

// Profile is a user's structured career-targeting data.
type Profile struct {
	UserID            string         `json:"user_id"`
	PrimaryTitle      string         `json:"primary_title"`
	SecondaryTitles   []string       `json:"secondary_titles,omitempty"`
	Seniority         *string        `json:"seniority,omitempty"`
	WorkPreference    *string        `json:"work_preference,omitempty"` // remote, hybrid, onsite, any
	Industries        []string       `json:"industries,omitempty"`
	TechnicalSkills   []ProfileSkill `json:"technical_skills,omitempty"`
	SoftSkills        []string       `json:"soft_skills,omitempty"`
	PreferredKeywords []string       `json:"preferred_keywords,omitempty"`
	WritingTone       *string        `json:"writing_tone,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ProfileSkill is a skill with optional proficiency metadata.
type ProfileSkill struct {
	Name  string `json:"name"`
	Years *int   `json:"years,omitempty"`
}

// CV parsing statuses.
const (
	CVStatusPending    = "pending"
	CVStatusProcessing = "processing"
	CVStatusCompleted  = "completed"
	CVStatusFailed     = "failed"
)

// CV is uploaded-document metadata plus the parsed structured view.
// The raw file itself lives in external object storage.
type CV struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	IsActive  bool      `json:"is_active"`
	Parsed    *ParsedCV `json:"parsed,omitempty"`
	Error     *string   `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ParsedCV is the structured view of a parsed CV.
type ParsedCV struct {
	Name       string         `json:"name,omitempty"`
	Email      string         `json:"email,omitempty"`
	Summary    string         `json:"summary,omitempty"`
	Experience []CVExperience `json:"experience,omitempty"`
	Education  []CVEducation  `json:"education,omitempty"`
	Skills     []string       `json:"skills,omitempty"`
}

// CVExperience is one role in a parsed CV.
type CVExperience struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Start        string   `json:"start,omitempty"`
	End          string   `json:"end,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// CVEducation is one education entry in a parsed CV.
type CVEducation struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Year        string `json:"year,omitempty"`
}

// Recommendation is a per-user materialised match against a job.
type Recommendation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	JobID     string    `json:"job_id"`
	Score     float64   `json:"score"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`

	// Job is populated on reads that join the jobs table.
	Job *Job `json:"job,omitempty"`
}

// SavedJob statuses. The nominal flow moves forward through these;
// rejected and offer are terminal.
const (
	SavedStatusSaved        = "saved"
	SavedStatusDraft        = "draft"
	SavedStatusReviewed     = "reviewed"
	SavedStatusFinalized    = "finalized"
	SavedStatusSent         = "sent"
	SavedStatusSubmitted    = "submitted"
	SavedStatusInterviewing = "interviewing"
	SavedStatusRejected     = "rejected"
	SavedStatusOffer        = "offer"
)

// SavedJob is a user-intent bookmark on a job.
// ExpiresAt is set only while status is "saved".
type SavedJob struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	JobID     string     `json:"job_id"`
	Status    string     `json:"status"`
	SavedAt   time.Time  `json:"saved_at"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`

	Job *Job `json:"job,omitempty"`
}

// TailoredCV is a user artefact derived from a CV and a job. Its presence
// blocks retention deletion of the referenced job.
type TailoredCV struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	JobID     string    `json:"job_id"`
	CVID      string    `json:"cv_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// ScrapeRun statuses.
const (
	ScrapeStatusPending   = "pending"
	ScrapeStatusRunning   = "running"
	ScrapeStatusCompleted = "completed"
	ScrapeStatusFailed    = "failed"
)

// ScrapeRun records one scraping invocation.
type ScrapeRun struct {
	ID           string            `json:"id"`
	Sources      []string          `json:"sources"`
	Keywords     []string          `json:"keywords,omitempty"`
	Location     string            `json:"location,omitempty"`
	MaxPerSource int               `json:"max_per_source"`
	Status       string            `json:"status"`
	JobsFound    int               `json:"jobs_found"`
	JobsStored   int               `json:"jobs_stored"`
	Duplicates   int               `json:"duplicates"`
	SourceErrors map[string]string `json:"source_errors,omitempty"`
	Error        *string           `json:"error,omitempty"`
	StartedAt    *time.Time        `json:"started_at,omitempty"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// ValidSavedStatus reports whether s is a recognised saved-job status.
func ValidSavedStatus(s string) bool {
	switch s {
	case SavedStatusSaved, SavedStatusDraft, SavedStatusReviewed, SavedStatusFinalized,
		SavedStatusSent, SavedStatusSubmitted, SavedStatusInterviewing,
		SavedStatusRejected, SavedStatusOffer:
		return true
	}
	return false
}

// ValidSource reports whether s is a recognised scrape source tag.
func ValidSource(s string) bool {
	switch s {
	case SourceRemotive, SourceRemoteOK, SourceAdzuna:
		return true
	}
	return false
}
