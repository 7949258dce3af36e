package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ParsedJob is the structured posting the parser extracts from free text.
type ParsedJob struct {
	Title           string   `json:"title"`
	Company         string   `json:"company"`
	Location        string   `json:"location"`
	Description     string   `json:"description"`
	ApplyURL        string   `json:"apply_url"`
	JobType         string   `json:"job_type"`
	RemoteType      string   `json:"remote_type"`
	SalaryMin       *float64 `json:"salary_min"`
	SalaryMax       *float64 `json:"salary_max"`
	SalaryCurrency  string   `json:"salary_currency"`
	ExperienceLevel string   `json:"experience_level"`
	Skills          []string `json:"skills"`
	Requirements    []string `json:"requirements"`
}

// Parser extracts structured jobs from text and tailors CV content.
type Parser interface {
	ParseJob(ctx context.Context, text string) (*ParsedJob, error)
	TailorCV(ctx context.Context, cvText, jobText, tone string) (string, error)
}

const parseJobSystem = `You extract job postings into JSON. Respond with a single JSON object
with the keys: title, company, location, description, apply_url, job_type
(full_time|part_time|contract|internship|""), remote_type (remote|hybrid|onsite|""),
salary_min, salary_max (numbers or null), salary_currency, experience_level,
skills (array of strings), requirements (array of strings). Use "" or null for
anything the posting does not state. Respond with JSON only, no prose.`

const tailorCVSystem = `You rewrite CVs to target a specific job posting. Keep every claim
truthful to the original CV; reorder and rephrase to highlight relevant
experience. Respond with the tailored CV as markdown, no commentary.`

const maxParseTokens = 4096

// ClaudeParser implements Parser over the Anthropic Messages API.
type ClaudeParser struct {
	client anthropic.Client
	model  string
}

// NewClaudeParser creates a Claude-backed parser.
func NewClaudeParser(apiKey, model string) *ClaudeParser {
	return &ClaudeParser{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}
}

// ParseJob extracts a structured posting from free text.
func (p *ClaudeParser) ParseJob(ctx context.Context, text string) (*ParsedJob, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxParseTokens,
		System: []anthropic.TextBlockParam{
			{Text: parseJobSystem},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("claude API call failed: %w", err)
	}

	raw := extractText(resp)
	if raw == "" {
		return nil, fmt.Errorf("empty response from claude")
	}

	var parsed ParsedJob
	if err := json.Unmarshal([]byte(stripCodeFence(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("malformed extraction output: %w", err)
	}
	return &parsed, nil
}

// TailorCV rewrites a CV against a job posting.
func (p *ClaudeParser) TailorCV(ctx context.Context, cvText, jobText, tone string) (string, error) {
	prompt := fmt.Sprintf("Job posting:\n\n%s\n\nOriginal CV:\n\n%s", jobText, cvText)
	if tone != "" {
		prompt += "\n\nPreferred writing tone: " + tone
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: maxParseTokens,
		System: []anthropic.TextBlockParam{
			{Text: tailorCVSystem},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("claude API call failed: %w", err)
	}

	out := extractText(resp)
	if out == "" {
		return "", fmt.Errorf("empty response from claude")
	}
	return out, nil
}

// extractText concatenates the text blocks of a response.
func extractText(resp *anthropic.Message) string {
	var sb strings.Builder
	for _, block := range resp.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// stripCodeFence removes a surrounding markdown code fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
