package migrations

func init() {
	Register(Migration{
		Timestamp:   "20260301-000000",
		Description: "Initial schema",
		Up: []string{
			// Profiles - career targeting data, keyed by identity-provider user ID
			`CREATE TABLE IF NOT EXISTS profiles (
				user_id TEXT PRIMARY KEY,
				primary_title TEXT NOT NULL,
				secondary_titles TEXT,
				seniority TEXT,
				work_preference TEXT,
				industries TEXT,
				technical_skills TEXT,
				soft_skills TEXT,
				preferred_keywords TEXT,
				writing_tone TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,

			// CVs - upload metadata plus the parsed structured view as JSON.
			// At most one active CV per user (partial unique index below).
			`CREATE TABLE IF NOT EXISTS cvs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				is_active INTEGER NOT NULL DEFAULT 0,
				parsed_json TEXT,
				error_message TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_cvs_user_id ON cvs(user_id)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_cvs_user_active ON cvs(user_id) WHERE is_active = 1`,

			// Jobs - scraped postings are global; user-submitted ones carry owner_id.
			// Dedup identity: (source, source_id) when the source assigns an ID,
			// the fingerprint otherwise. The two regimes never merge.
			`CREATE TABLE IF NOT EXISTS jobs (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				company TEXT NOT NULL,
				location TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				apply_url TEXT,
				source TEXT NOT NULL,
				source_id TEXT,
				fingerprint TEXT NOT NULL,
				job_type TEXT,
				remote_type TEXT,
				salary_min REAL,
				salary_max REAL,
				salary_currency TEXT,
				experience_level TEXT,
				skills TEXT,
				requirements TEXT,
				owner_id TEXT,
				posted_at TEXT,
				scraped_at TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_source_source_id ON jobs(source, source_id) WHERE source_id IS NOT NULL`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_fingerprint ON jobs(fingerprint) WHERE source_id IS NULL`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_scraped_at ON jobs(scraped_at)`,
			`CREATE INDEX IF NOT EXISTS idx_jobs_source ON jobs(source)`,

			// Recommendations - materialised per-user matches.
			// Job deletion cascades here; nothing else does.
			`CREATE TABLE IF NOT EXISTS recommendations (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
				score REAL NOT NULL,
				reason TEXT,
				created_at TEXT NOT NULL,
				expires_at TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_recommendations_user_job ON recommendations(user_id, job_id)`,
			`CREATE INDEX IF NOT EXISTS idx_recommendations_user_expires ON recommendations(user_id, expires_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_recommendations_expires ON recommendations(expires_at)`,

			// Saved jobs - bookmarks. The FK restricts job deletion while a
			// bookmark exists; retention counts those as protected.
			`CREATE TABLE IF NOT EXISTS saved_jobs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE RESTRICT,
				status TEXT NOT NULL DEFAULT 'saved',
				saved_at TEXT NOT NULL,
				expires_at TEXT,
				updated_at TEXT NOT NULL
			)`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_jobs_user_job ON saved_jobs(user_id, job_id)`,
			`CREATE INDEX IF NOT EXISTS idx_saved_jobs_expires ON saved_jobs(expires_at)`,

			// Tailored CVs - user artefacts derived from a CV and a job.
			// Also delete-restricting on the job.
			`CREATE TABLE IF NOT EXISTS tailored_cvs (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				job_id TEXT NOT NULL REFERENCES jobs(id) ON DELETE RESTRICT,
				cv_id TEXT NOT NULL REFERENCES cvs(id) ON DELETE CASCADE,
				content TEXT NOT NULL,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_tailored_cvs_user ON tailored_cvs(user_id)`,
			`CREATE INDEX IF NOT EXISTS idx_tailored_cvs_job ON tailored_cvs(job_id)`,

			// Scrape runs - observability for scraping invocations
			`CREATE TABLE IF NOT EXISTS scrape_runs (
				id TEXT PRIMARY KEY,
				sources TEXT NOT NULL,
				keywords TEXT,
				location TEXT,
				max_per_source INTEGER NOT NULL,
				status TEXT NOT NULL DEFAULT 'pending',
				jobs_found INTEGER NOT NULL DEFAULT 0,
				jobs_stored INTEGER NOT NULL DEFAULT 0,
				duplicates INTEGER NOT NULL DEFAULT 0,
				source_errors TEXT,
				error_message TEXT,
				started_at TEXT,
				completed_at TEXT,
				created_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_scrape_runs_created_at ON scrape_runs(created_at)`,
		},
	})
}
