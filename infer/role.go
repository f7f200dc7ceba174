package infer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nexus-hq/nexus/llm"
)

// Role is one entry of a vendor's role catalog.
type Role struct {
	// Value is the role as it appears in the vendor's dropdown.
	Value string `json:"value"`

	// Description explains what the role grants, for prompting and tooling.
	Description string `json:"description"`

	// Keywords are job-title fragments that indicate this role.
	Keywords []string `json:"keywords"`
}

// RoleSuggestion is the outcome of matching a job title to a catalog role.
type RoleSuggestion struct {
	// Role is the chosen catalog value. Always a member of the catalog.
	Role string `json:"suggested_role"`

	// Confidence is the suggester's certainty, 0 to 1.
	Confidence float64 `json:"confidence"`

	// Reasoning explains the choice in operator-readable terms.
	Reasoning string `json:"reasoning"`
}

// RoleSuggester matches job titles to vendor role catalogs. When a
// completion client is configured it is consulted first; any failure or
// out-of-catalog answer falls back silently to keyword scoring.
type RoleSuggester struct {
	client llm.Client
	logger *slog.Logger
}

// NewRoleSuggester creates a suggester. Both arguments may be nil: a nil
// client disables the LLM path entirely, and a nil logger discards debug
// output.
func NewRoleSuggester(client llm.Client, logger *slog.Logger) *RoleSuggester {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RoleSuggester{client: client, logger: logger}
}

// Suggest picks the best catalog role for a job title. The department is
// optional context for the LLM path. The returned suggestion's Role is
// always present in the catalog; an empty catalog yields an error.
func (s *RoleSuggester) Suggest(ctx context.Context, jobTitle string, catalog []Role, department string) (RoleSuggestion, error) {
	if len(catalog) == 0 {
		return RoleSuggestion{}, fmt.Errorf("role catalog is empty")
	}

	if s.client != nil {
		if sug, err := s.suggestLLM(ctx, jobTitle, catalog, department); err == nil {
			return sug, nil
		} else {
			s.logger.Debug("llm role suggestion unavailable, using keyword scoring", "error", err)
		}
	}

	return keywordScore(jobTitle, catalog), nil
}

// keywordScore is the normative fallback: each role scores one point per
// keyword substring found in the job title, highest score wins, ties
// broken by catalog order.
func keywordScore(jobTitle string, catalog []Role) RoleSuggestion {
	title := strings.ToLower(jobTitle)

	var best *Role
	bestScore := 0
	var bestKeywords []string

	for i := range catalog {
		score := 0
		var matched []string
		for _, kw := range catalog[i].Keywords {
			if kw != "" && strings.Contains(title, strings.ToLower(kw)) {
				score++
				matched = append(matched, kw)
			}
		}
		if score > bestScore {
			bestScore = score
			best = &catalog[i]
			bestKeywords = matched
		}
	}

	if bestScore == 0 {
		def := &catalog[0]
		for i := range catalog {
			if catalog[i].Value == "User" {
				def = &catalog[i]
				break
			}
		}
		return RoleSuggestion{
			Role:       def.Value,
			Confidence: 0.3,
			Reasoning:  fmt.Sprintf("no keywords matched; defaulting to %q", def.Value),
		}
	}

	confidence := 0.5 + 0.15*float64(bestScore)
	if confidence > 0.95 {
		confidence = 0.95
	}
	return RoleSuggestion{
		Role:       best.Value,
		Confidence: confidence,
		Reasoning:  "matched keywords: " + strings.Join(bestKeywords, ", "),
	}
}

func (s *RoleSuggester) suggestLLM(ctx context.Context, jobTitle string, catalog []Role, department string) (RoleSuggestion, error) {
	var roles strings.Builder
	for _, r := range catalog {
		fmt.Fprintf(&roles, "- %s: %s\n", r.Value, r.Description)
	}

	prompt := fmt.Sprintf(`Given a user's job title, suggest the most appropriate role from the available options.

Job Title: %s
`, jobTitle)
	if department != "" {
		prompt += fmt.Sprintf("Department: %s\n", department)
	}
	prompt += fmt.Sprintf(`
Available Roles:
%s
Select the SINGLE most appropriate role. Respond with ONLY valid JSON in this exact format:
{"suggested_role": "RoleName", "confidence": 0.95, "reasoning": "Brief explanation"}

The confidence must be a number between 0 and 1.
`, roles.String())

	resp, err := s.client.Complete(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}},
		llm.WithMaxTokens(500))
	if err != nil {
		return RoleSuggestion{}, err
	}

	var sug RoleSuggestion
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &sug); err != nil {
		return RoleSuggestion{}, fmt.Errorf("unparseable suggestion: %w", err)
	}
	for _, r := range catalog {
		if r.Value == sug.Role {
			return sug, nil
		}
	}
	return RoleSuggestion{}, fmt.Errorf("suggested role %q not in catalog", sug.Role)
}

// stripFences removes a wrapping markdown code fence from a model reply.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
	} else {
		return s
	}
	if j := strings.Index(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}

// LoadRoleCatalog reads a roles.json file sitting next to a vendor config.
// A missing file is not an error: the single-entry default catalog is
// returned so the suggester always has something to choose from.
func LoadRoleCatalog(configPath string) ([]Role, error) {
	path := filepath.Join(filepath.Dir(configPath), "roles.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRoleCatalog(), nil
		}
		return nil, fmt.Errorf("read role catalog: %w", err)
	}

	var doc struct {
		Roles []Role `json:"roles"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse role catalog %s: %w", path, err)
	}
	if len(doc.Roles) == 0 {
		return DefaultRoleCatalog(), nil
	}
	return doc.Roles, nil
}

// DefaultRoleCatalog is the catalog used when a vendor ships no roles.json.
func DefaultRoleCatalog() []Role {
	return []Role{
		{Value: "User", Description: "Standard User", Keywords: []string{"user", "officer", "specialist"}},
	}
}
