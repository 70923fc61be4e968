// Package gates evaluates pull-request descriptions against a section policy.
// The evaluator is a pure function from (title, body, policy) to an Outcome:
// no I/O, no shared state, safe to call from any number of goroutines.
package gates

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sawpanic/prgate/internal/policy"
)

// scaffoldRe matches section bodies that are nothing but template leftovers:
// list dashes, empty checkboxes, emphasis markers, stray punctuation.
var scaffoldRe = regexp.MustCompile("^[-\\s\\[\\]()*`'\"._,]*$")

// Check records the result of a single rule evaluation.
type Check struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// Outcome aggregates every rule's verdict. Errors block the gate, warnings do
// not. Passed holds iff Errors is empty. Failure is always represented here as
// data; nothing inside the evaluator panics or returns an error.
type Outcome struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Checks   []Check  `json:"checks"`
	Passed   bool     `json:"passed"`
}

func (o *Outcome) addError(name, msg string) {
	o.Checks = append(o.Checks, Check{Name: name, Passed: false, Detail: msg})
	o.Errors = append(o.Errors, msg)
}

func (o *Outcome) addWarning(name, msg string) {
	o.Checks = append(o.Checks, Check{Name: name, Passed: true, Detail: msg})
	o.Warnings = append(o.Warnings, msg)
}

func (o *Outcome) addPass(name, detail string) {
	o.Checks = append(o.Checks, Check{Name: name, Passed: true, Detail: detail})
}

// Evaluator applies one policy to PR descriptions.
type Evaluator struct {
	policy  *policy.Policy
	matcher *headingMatcher
}

// NewEvaluator builds an evaluator for the given policy.
func NewEvaluator(p *policy.Policy) (*Evaluator, error) {
	matcher, err := newHeadingMatcher(p.Sections)
	if err != nil {
		return nil, fmt.Errorf("invalid section policy: %w", err)
	}
	return &Evaluator{policy: p, matcher: matcher}, nil
}

// Validate runs every rule and returns the aggregated outcome. Rules do not
// short-circuit each other; a single run surfaces the full remediation list.
// The one exception is a fully empty body, which suppresses the content rules
// (there is nothing to partition) while the title rule still runs.
func (e *Evaluator) Validate(title, body string) *Outcome {
	out := &Outcome{Errors: []string{}, Warnings: []string{}}

	if strings.TrimSpace(body) == "" {
		out.addError("body", "PR description is required")
		e.checkTitle(title, out)
		out.Passed = len(out.Errors) == 0
		return out
	}

	spans := partition(body, e.matcher.scan(body))

	for _, s := range e.policy.Sections {
		name := "section:" + s.Key
		if span, ok := spans[s.Key]; ok {
			if e.policy.RequireSubstantive && span != "" && scaffoldRe.MatchString(span) {
				out.addError(name, fmt.Sprintf("Section '%s' must include meaningful content.", s.PrimaryAlias()))
			} else {
				out.addPass(name, fmt.Sprintf("%s section present", s.PrimaryAlias()))
			}
			continue
		}
		if s.Optional {
			out.addWarning(name, fmt.Sprintf("Missing optional section: %s", s.PrimaryAlias()))
		} else {
			out.addError(name, fmt.Sprintf("Missing section: %s", s.PrimaryAlias()))
		}
	}

	e.checkTestingEvidence(spans, out)
	e.checkAcknowledgement(body, out)
	e.checkTitle(title, out)

	out.Passed = len(out.Errors) == 0
	return out
}

// checkTestingEvidence requires the testing section, when present, to hold
// either a known command keyword or a backtick code span. A heading with
// nothing under it is its own failure, distinct from a missing heading.
func (e *Evaluator) checkTestingEvidence(spans map[string]string, out *Outcome) {
	if e.policy.TestingKey == "" {
		return
	}
	span, present := spans[e.policy.TestingKey]
	if !present {
		return // missing heading already reported by the section rule
	}

	if span == "" {
		out.addError("testing_evidence", "Testing section present but empty.")
		return
	}

	lower := strings.ToLower(span)
	for _, kw := range e.policy.EvidenceKeywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			out.addPass("testing_evidence", fmt.Sprintf("evidence keyword %q found", kw))
			return
		}
	}
	if strings.Count(span, "`") >= 2 {
		out.addPass("testing_evidence", "code span found")
		return
	}

	out.addError("testing_evidence", "Testing section present but no commands/evidence detected.")
}

// checkAcknowledgement searches the whole body for the acknowledgement phrase.
// Checkbox state is irrelevant: an unchecked "- [ ] Guardrails followed" still
// counts as present.
func (e *Evaluator) checkAcknowledgement(body string, out *Outcome) {
	if e.policy.AckPhrase == "" {
		return
	}

	if strings.Contains(strings.ToLower(body), strings.ToLower(e.policy.AckPhrase)) {
		out.addPass("acknowledgement", "acknowledgement phrase present")
		return
	}

	msg := fmt.Sprintf("Missing acknowledgement: add a '%s' confirmation.", e.policy.AckPhrase)
	if e.policy.AckMissingIsError {
		out.addError("acknowledgement", msg)
	} else {
		out.addWarning("acknowledgement", msg)
	}
}

// CheckPersonaLabel verifies the PR carries exactly one of the allowed persona
// labels. Labels ride on the hosting platform's metadata rather than the
// description text, so callers append this onto an existing outcome after
// Validate; the check never blocks the gate.
func (e *Evaluator) CheckPersonaLabel(labels []string, out *Outcome) {
	if len(e.policy.PersonaLabels) == 0 {
		return
	}

	var found []string
	for _, label := range labels {
		for _, allowed := range e.policy.PersonaLabels {
			if strings.EqualFold(strings.TrimSpace(label), allowed) {
				found = append(found, allowed)
			}
		}
	}

	switch len(found) {
	case 1:
		out.addPass("persona_label", fmt.Sprintf("persona label %s applied", found[0]))
	case 0:
		out.addWarning("persona_label", fmt.Sprintf("Missing persona label: add exactly one of %s.",
			strings.Join(e.policy.PersonaLabels, " / ")))
	default:
		out.addWarning("persona_label", fmt.Sprintf("Multiple persona labels found: %s. Keep only one.",
			strings.Join(found, ", ")))
	}
	out.Passed = len(out.Errors) == 0
}

// checkTitle warns when a non-empty title lacks a conventional prefix. Never
// an error; an empty title produces no check at all.
func (e *Evaluator) checkTitle(title string, out *Outcome) {
	if strings.TrimSpace(title) == "" || len(e.policy.TitlePrefixes) == 0 {
		return
	}

	for _, prefix := range e.policy.TitlePrefixes {
		if len(title) <= len(prefix) || !strings.EqualFold(title[:len(prefix)], prefix) {
			continue
		}
		switch title[len(prefix)] {
		case '-', ':', ' ':
			out.addPass("title_prefix", fmt.Sprintf("title prefix %q", prefix))
			return
		}
	}

	out.addWarning("title_prefix", fmt.Sprintf("Title %q does not start with a conventional prefix (%s).",
		title, strings.Join(e.policy.TitlePrefixes, ", ")))
}
