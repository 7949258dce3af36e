// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Database
	DatabaseURL string

	// Authentication (external identity provider)
	AuthIssuerURL string // token issuer, e.g. "https://xxx.clerk.accounts.dev"
	AuthJWKSURL   string // defaults to issuer + "/.well-known/jwks.json"

	// AI providers (optional; missing keys degrade the relevant feature)
	GeminiAPIKey    string
	GeminiModel     string // embedding model
	AnthropicAPIKey string
	AnthropicModel  string

	// Source adapter credentials
	AdzunaAppID   string
	AdzunaAppKey  string
	AdzunaCountry string

	// CORS
	CORSOrigins []string

	// Scraping & ingest
	EnabledSources      []string
	SourceTimeout       time.Duration // per-source fetch timeout
	MaxResultsPerSource int           // default per scrape call
	MaxResultsCap       int           // hard cap on max_results_per_source
	IngestFreshnessDays int           // postings older than this are refresh-only
	ScrapeDeadline      time.Duration // overall deadline for a scheduled scrape

	// Recommendations
	RecommendTopN       int
	RecommendExpiryDays int
	RecommendWindowDays int
	MinMatchScore       float64
	TitleBoostExact     float64
	TitleBoostPartial   float64
	RecommendDeadline   time.Duration

	// Retention
	RetentionDays   int
	SavedExpiryDays int
	SavedMaxLive    int
	CleanupDeadline time.Duration

	// Scheduler (cron expressions, evaluated in UTC)
	SchedulerEnabled     bool
	ScrapeSchedule       string
	RecommendSchedule    string
	CleanupJobsSchedule  string
	CleanupRecsSchedule  string
	CleanupSavedSchedule string

	// Limits
	MaxRequestBody    int64 // bytes
	AIRatePerMinute   int   // per-user AI call budget
	HTTPRatePerMinute int   // per-IP request budget
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:hireloop.db?_journal=WAL&_timeout=5000"),

		AuthIssuerURL: getEnv("AUTH_ISSUER_URL", ""),
		AuthJWKSURL:   getEnv("AUTH_JWKS_URL", ""),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_EMBEDDING_MODEL", "gemini-embedding-001"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),

		AdzunaAppID:   getEnv("ADZUNA_APP_ID", ""),
		AdzunaAppKey:  getEnv("ADZUNA_APP_KEY", ""),
		AdzunaCountry: getEnv("ADZUNA_COUNTRY", "gb"),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),

		EnabledSources:      getEnvSlice("ENABLED_SOURCES", []string{"remotive", "remoteok", "adzuna"}),
		SourceTimeout:       getEnvDuration("SOURCE_TIMEOUT", 30*time.Second),
		MaxResultsPerSource: getEnvInt("MAX_RESULTS_PER_SOURCE", 50),
		MaxResultsCap:       getEnvInt("MAX_RESULTS_PER_SOURCE_CAP", 100),
		IngestFreshnessDays: getEnvInt("INGEST_FRESHNESS_DAYS", 2),
		ScrapeDeadline:      getEnvDuration("SCRAPE_DEADLINE", 30*time.Minute),

		RecommendTopN:       getEnvInt("RECOMMEND_TOP_N", 50),
		RecommendExpiryDays: getEnvInt("RECOMMEND_EXPIRY_DAYS", 3),
		RecommendWindowDays: getEnvInt("RECOMMEND_WINDOW_DAYS", 7),
		MinMatchScore:       getEnvFloat("MIN_MATCH_SCORE", 0.20),
		TitleBoostExact:     getEnvFloat("TITLE_BOOST_EXACT", 0.40),
		TitleBoostPartial:   getEnvFloat("TITLE_BOOST_PARTIAL", 0.30),
		RecommendDeadline:   getEnvDuration("RECOMMEND_DEADLINE", 60*time.Minute),

		RetentionDays:   getEnvInt("RETENTION_DAYS", 7),
		SavedExpiryDays: getEnvInt("SAVED_EXPIRY_DAYS", 10),
		SavedMaxLive:    getEnvInt("SAVED_MAX_LIVE", 10),
		CleanupDeadline: getEnvDuration("CLEANUP_DEADLINE", 10*time.Minute),

		SchedulerEnabled:     getEnvBool("SCHEDULER_ENABLED", true),
		ScrapeSchedule:       getEnv("SCRAPE_SCHEDULE", "0 6 * * *"),
		RecommendSchedule:    getEnv("RECOMMEND_SCHEDULE", "0 7 * * *"),
		CleanupJobsSchedule:  getEnv("CLEANUP_JOBS_SCHEDULE", "10 0 * * *"),
		CleanupRecsSchedule:  getEnv("CLEANUP_RECS_SCHEDULE", "5 0 * * *"),
		CleanupSavedSchedule: getEnv("CLEANUP_SAVED_SCHEDULE", "0 0 * * *"),

		MaxRequestBody:    getEnvInt64("MAX_REQUEST_BODY", 10*1024*1024),
		AIRatePerMinute:   getEnvInt("AI_RATE_LIMIT_PER_MINUTE", 10),
		HTTPRatePerMinute: getEnvInt("HTTP_RATE_LIMIT_PER_MINUTE", 120),
	}

	if cfg.AuthIssuerURL != "" && cfg.AuthJWKSURL == "" {
		cfg.AuthJWKSURL = strings.TrimSuffix(cfg.AuthIssuerURL, "/") + "/.well-known/jwks.json"
	}

	if cfg.MaxResultsPerSource < 1 || cfg.MaxResultsPerSource > cfg.MaxResultsCap {
		return nil, fmt.Errorf("MAX_RESULTS_PER_SOURCE must be in [1,%d]", cfg.MaxResultsCap)
	}
	if cfg.RecommendTopN < 1 {
		return nil, fmt.Errorf("RECOMMEND_TOP_N must be positive")
	}
	if cfg.MinMatchScore < 0 || cfg.MinMatchScore > 1 {
		return nil, fmt.Errorf("MIN_MATCH_SCORE must be in [0,1]")
	}

	return cfg, nil
}

// EmbeddingEnabled reports whether an embedding provider is configured.
func (c *Config) EmbeddingEnabled() bool {
	return c.GeminiAPIKey != ""
}

// LLMEnabled reports whether the text-parsing LLM provider is configured.
func (c *Config) LLMEnabled() bool {
	return c.AnthropicAPIKey != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "true" || lower == "1" || lower == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
