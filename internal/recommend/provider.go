package recommend

import (
	"context"
	"fmt"
	"strings"

	"github.com/hireloop/hireloop-api/internal/models"
	"github.com/hireloop/hireloop-api/internal/repository"
)

// UserView is the read-only matching input for one user: profile fields,
// the active CV's parsed view, and the text used for embedding.
type UserView struct {
	Profile   *models.Profile
	ParsedCV  *models.ParsedCV
	EmbedText string
	Titles    []string
}

// UserViewProvider assembles UserViews from the profile and CV stores.
type UserViewProvider struct {
	profiles repository.ProfileRepository
	cvs      repository.CVRepository
}

// NewUserViewProvider creates a provider.
func NewUserViewProvider(profiles repository.ProfileRepository, cvs repository.CVRepository) *UserViewProvider {
	return &UserViewProvider{profiles: profiles, cvs: cvs}
}

// recentRoleCount bounds how many CV roles feed the embedding text.
const recentRoleCount = 3

// Get returns the user's matching view, or nil when the user has no profile
// or no completed active CV. A nil view means the matcher skips the user.
func (p *UserViewProvider) Get(ctx context.Context, userID string) (*UserView, error) {
	profile, err := p.profiles.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if profile == nil {
		return nil, nil
	}

	cv, err := p.cvs.GetActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load active CV: %w", err)
	}
	if cv == nil || cv.Status != models.CVStatusCompleted || cv.Parsed == nil {
		return nil, nil
	}

	titles := append([]string{profile.PrimaryTitle}, profile.SecondaryTitles...)

	return &UserView{
		Profile:   profile,
		ParsedCV:  cv.Parsed,
		EmbedText: buildEmbedText(profile, cv.Parsed),
		Titles:    titles,
	}, nil
}

// buildEmbedText concatenates titles, top skills, recent roles and
// achievements, and preferred keywords into the user-side embedding input.
func buildEmbedText(profile *models.Profile, parsed *models.ParsedCV) string {
	var parts []string

	parts = append(parts, "Target roles: "+strings.Join(
		append([]string{profile.PrimaryTitle}, profile.SecondaryTitles...), ", "))

	var skills []string
	for _, s := range profile.TechnicalSkills {
		skills = append(skills, s.Name)
	}
	skills = append(skills, parsed.Skills...)
	if len(skills) > 0 {
		parts = append(parts, "Skills: "+strings.Join(dedupeStrings(skills), ", "))
	}

	roles := parsed.Experience
	if len(roles) > recentRoleCount {
		roles = roles[:recentRoleCount]
	}
	for _, role := range roles {
		line := role.Title + " at " + role.Company
		if len(role.Achievements) > 0 {
			line += ": " + strings.Join(role.Achievements, "; ")
		}
		parts = append(parts, line)
	}

	if parsed.Summary != "" {
		parts = append(parts, parsed.Summary)
	}
	if len(profile.PreferredKeywords) > 0 {
		parts = append(parts, "Keywords: "+strings.Join(profile.PreferredKeywords, ", "))
	}

	return strings.Join(parts, "\n")
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
