// Package policy defines the rule configuration for the PR description gate.
// Policies are plain data: swapping heading schemes or evidence keywords is a
// config change, not a code change.
package policy

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SectionSpec declares one section the gate looks for. Aliases are the literal
// heading labels (case-insensitive) accepted as evidence of the section; the
// first alias is the primary one used in user-facing messages.
type SectionSpec struct {
	Key      string   `yaml:"key"`
	Aliases  []string `yaml:"aliases"`
	Optional bool     `yaml:"optional"`
}

// PrimaryAlias returns the label reported to users for this section.
func (s SectionSpec) PrimaryAlias() string {
	if len(s.Aliases) == 0 {
		return s.Key
	}
	return s.Aliases[0]
}

// Policy is the full rule configuration consumed by the evaluator.
type Policy struct {
	Name     string        `yaml:"name"`
	Sections []SectionSpec `yaml:"sections"`

	// TestingKey names the section subject to the evidence rule.
	TestingKey       string   `yaml:"testing_key"`
	EvidenceKeywords []string `yaml:"evidence_keywords"`

	// RequireSubstantive additionally rejects sections whose body is only
	// template scaffolding (list dashes, empty checkboxes, punctuation).
	RequireSubstantive bool `yaml:"require_substantive_sections"`

	// PersonaLabels is the allowed persona label set; the PR must carry
	// exactly one. Empty disables the check.
	PersonaLabels []string `yaml:"persona_labels"`

	// AckPhrase is searched across the whole body, not a specific section.
	// An unchecked checkbox in front of the phrase still counts as present.
	AckPhrase         string `yaml:"ack_phrase"`
	AckMissingIsError bool   `yaml:"ack_missing_is_error"`

	TitlePrefixes []string `yaml:"title_prefixes"`
}

// DefaultPolicy returns the current PR template rules: the multi-section
// heading scheme with legacy heading labels kept as aliases.
func DefaultPolicy() *Policy {
	return &Policy{
		Name: "default",
		Sections: []SectionSpec{
			{Key: "summary", Aliases: []string{"Summary"}},
			{Key: "scope", Aliases: []string{"Scope"}},
			{Key: "in_scope_out_of_scope", Aliases: []string{"In Scope / Out of Scope", "Out of Scope"}},
			{Key: "files_changed", Aliases: []string{"Files Changed"}, Optional: true},
			{Key: "verification_testing", Aliases: []string{"Verification / Testing", "Testing"}},
			{Key: "risk_rollback", Aliases: []string{"Risk & Rollback", "Risks", "Rollback"}},
		},
		TestingKey:        "verification_testing",
		EvidenceKeywords:  []string{"pytest", "ruff", "go test", "docker compose", "curl"},
		PersonaLabels:     []string{"persona:core", "persona:infra", "persona:docs"},
		AckPhrase:         "Guardrails followed",
		AckMissingIsError: false,
		TitlePrefixes:     []string{"PR", "Chore", "Feat", "Fix", "Docs", "Refactor", "Test", "CI"},
	}
}

// LegacyPolicy returns the older single-scheme rules: only summary and testing
// are required and a missing acknowledgement blocks the gate.
func LegacyPolicy() *Policy {
	return &Policy{
		Name: "legacy",
		Sections: []SectionSpec{
			{Key: "summary", Aliases: []string{"Summary"}},
			{Key: "verification_testing", Aliases: []string{"Testing", "Verification / Testing"}},
		},
		TestingKey:        "verification_testing",
		EvidenceKeywords:  []string{"pytest", "docker compose", "curl"},
		PersonaLabels:     []string{"persona:core", "persona:infra", "persona:docs"},
		AckPhrase:         "Guardrails followed",
		AckMissingIsError: true,
		TitlePrefixes:     []string{"PR", "Chore", "Feat", "Fix", "Docs", "Refactor"},
	}
}

// LoadPolicy loads a policy from a YAML file.
func LoadPolicy(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy config: %w", err)
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}

	return &p, nil
}

// SavePolicy writes a policy to a YAML file.
func SavePolicy(p *Policy, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal policy: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write policy config: %w", err)
	}

	return nil
}

// Section returns the spec for a canonical key, if configured.
func (p *Policy) Section(key string) (SectionSpec, bool) {
	for _, s := range p.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return SectionSpec{}, false
}

// Validate checks the policy for consistency and returns a list of problems.
func (p *Policy) Validate() []string {
	var problems []string

	if len(p.Sections) == 0 {
		problems = append(problems, "policy defines no sections")
	}

	seen := make(map[string]bool)
	aliasOwner := make(map[string]string)
	for _, s := range p.Sections {
		if s.Key == "" {
			problems = append(problems, "section with empty key")
			continue
		}
		if seen[s.Key] {
			problems = append(problems, fmt.Sprintf("duplicate section key: %s", s.Key))
		}
		seen[s.Key] = true

		if len(s.Aliases) == 0 {
			problems = append(problems, fmt.Sprintf("section %s has no heading aliases", s.Key))
		}
		for _, a := range s.Aliases {
			norm := strings.ToLower(strings.Join(strings.Fields(a), " "))
			if owner, dup := aliasOwner[norm]; dup && owner != s.Key {
				problems = append(problems, fmt.Sprintf("alias %q claimed by both %s and %s", a, owner, s.Key))
			}
			aliasOwner[norm] = s.Key
		}
	}

	if p.TestingKey != "" && !seen[p.TestingKey] {
		problems = append(problems, fmt.Sprintf("testing_key %q is not a configured section", p.TestingKey))
	}

	return problems
}
