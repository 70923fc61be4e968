package gates

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/prgate/internal/policy"
)

const passingBody = `## Summary
Fix the importer crash on empty manifests.

## Scope
Importer package only.

## In Scope / Out of Scope
In: importer. Out: exporter, CLI.

## Files Changed
- internal/importer/reader.go

## Verification / Testing
` + "```\ngo test ./internal/importer/...\n```" + `

## Risk & Rollback
Low. Revert the single commit.

- [x] Guardrails followed
`

func newDefaultEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	ev, err := NewEvaluator(policy.DefaultPolicy())
	require.NoError(t, err)
	return ev
}

func TestValidate_WellFormedBodyPasses(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("Fix: importer crash", passingBody)
	assert.True(t, out.Passed)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Warnings)
}

func TestValidate_AllRequiredSectionsMissing(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("", "free text without any headings")
	assert.False(t, out.Passed)
	assert.Equal(t, []string{
		"Missing section: Summary",
		"Missing section: Scope",
		"Missing section: In Scope / Out of Scope",
		"Missing section: Verification / Testing",
		"Missing section: Risk & Rollback",
	}, out.Errors)
	assert.Contains(t, out.Warnings, "Missing optional section: Files Changed")
}

func TestValidate_InsufficientTestingEvidence(t *testing.T) {
	ev := newDefaultEvaluator(t)

	body := `## Summary
Fixes a thing.

## Scope
Small.

## In Scope / Out of Scope
In: one file.

## Verification / Testing
ran it locally

## Risk & Rollback
None.

- [ ] Guardrails followed
`
	out := ev.Validate("", body)
	require.Equal(t, []string{"Testing section present but no commands/evidence detected."}, out.Errors)
	for _, w := range out.Warnings {
		assert.NotContains(t, w, "acknowledgement", "unchecked box still counts as acknowledged")
	}
}

func TestValidate_NonstandardTitlePrefixWarnsOnly(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("update readme", passingBody)
	assert.True(t, out.Passed)
	assert.Empty(t, out.Errors)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "conventional prefix")
}

func TestValidate_WhitespaceOnlyBodyShortCircuits(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("", " ")
	assert.False(t, out.Passed)
	assert.Equal(t, []string{"PR description is required"}, out.Errors)
	assert.Empty(t, out.Warnings)
}

func TestValidate_EmptyBodyStillChecksTitle(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("update readme", "")
	assert.Equal(t, []string{"PR description is required"}, out.Errors)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "conventional prefix")
}

func TestValidate_LegacyTestingHeadingWithCodeSpan(t *testing.T) {
	ev, err := NewEvaluator(policy.LegacyPolicy())
	require.NoError(t, err)

	body := "## Summary\nLegacy-style body.\n\n## Testing\n`pytest -q`\n\nGuardrails followed\n"
	out := ev.Validate("PR: legacy template", body)
	assert.True(t, out.Passed)
	assert.Empty(t, out.Errors)
	assert.Empty(t, out.Warnings)
}

func TestValidate_CodeSpanAloneIsEvidence(t *testing.T) {
	ev := newDefaultEvaluator(t)

	body := `## Summary
s

## Scope
s

## In Scope / Out of Scope
s

## Verification / Testing
Ran ` + "`make smoke`" + ` twice.

## Risk & Rollback
s

Guardrails followed
`
	out := ev.Validate("", body)
	assert.Empty(t, out.Errors)
}

func TestValidate_TestingPresentButEmpty(t *testing.T) {
	ev := newDefaultEvaluator(t)

	body := "## Summary\nx\n\n## Verification / Testing\n\n   \n## Risk & Rollback\ny\n"
	out := ev.Validate("", body)
	assert.Contains(t, out.Errors, "Testing section present but empty.")
	assert.NotContains(t, out.Errors, "Missing section: Verification / Testing")
}

func TestValidate_StrictAcknowledgement(t *testing.T) {
	pol := policy.DefaultPolicy()
	pol.AckMissingIsError = true
	ev, err := NewEvaluator(pol)
	require.NoError(t, err)

	body := `## Summary
s

## Scope
s

## In Scope / Out of Scope
s

## Verification / Testing
` + "`pytest -q`" + `

## Risk & Rollback
s
`
	out := ev.Validate("", body)
	assert.False(t, out.Passed)
	assert.Contains(t, out.Errors, "Missing acknowledgement: add a 'Guardrails followed' confirmation.")
}

func TestValidate_TitlePrefixSeparators(t *testing.T) {
	ev := newDefaultEvaluator(t)

	cases := map[string]bool{
		"Fix: crash":     true,
		"fix crash":      true,
		"PR-1042 import": true,
		"docs - typo":    true,
		"Fix":            false, // no separator
		"Fixing crash":   false,
		"update readme":  false,
	}
	for title, ok := range cases {
		out := ev.Validate(title, passingBody)
		if ok {
			assert.Emptyf(t, out.Warnings, "title %q should satisfy the convention", title)
		} else {
			require.Lenf(t, out.Warnings, 1, "title %q should warn", title)
			assert.Contains(t, out.Warnings[0], "conventional prefix")
		}
	}
}

func TestValidate_ScaffoldingOnlySectionRejectedWhenStrict(t *testing.T) {
	pol := policy.DefaultPolicy()
	pol.RequireSubstantive = true
	ev, err := NewEvaluator(pol)
	require.NoError(t, err)

	body := strings.Replace(passingBody, "Importer package only.", "- [ ] *", 1)
	out := ev.Validate("Fix: importer crash", body)
	assert.False(t, out.Passed)
	assert.Equal(t, []string{"Section 'Scope' must include meaningful content."}, out.Errors)
}

func TestValidate_ScaffoldingOnlySectionPassesByDefault(t *testing.T) {
	ev := newDefaultEvaluator(t)

	body := strings.Replace(passingBody, "Importer package only.", "- [ ] *", 1)
	out := ev.Validate("Fix: importer crash", body)
	assert.True(t, out.Passed)
	assert.Empty(t, out.Errors)
}

func TestCheckPersonaLabel_ExactlyOnePasses(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("Fix: importer crash", passingBody)
	ev.CheckPersonaLabel([]string{"persona:core", "area/importer"}, out)
	assert.True(t, out.Passed)
	assert.Empty(t, out.Warnings)
}

func TestCheckPersonaLabel_MissingWarnsWithoutBlocking(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("Fix: importer crash", passingBody)
	ev.CheckPersonaLabel([]string{"area/importer"}, out)
	assert.True(t, out.Passed, "label guardrail never blocks the gate")
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Missing persona label")
	assert.Contains(t, out.Warnings[0], "persona:core / persona:infra / persona:docs")
}

func TestCheckPersonaLabel_MultipleWarnsKeepOnlyOne(t *testing.T) {
	ev := newDefaultEvaluator(t)

	out := ev.Validate("Fix: importer crash", passingBody)
	ev.CheckPersonaLabel([]string{"persona:core", "Persona:Docs"}, out)
	assert.True(t, out.Passed)
	require.Len(t, out.Warnings, 1)
	assert.Contains(t, out.Warnings[0], "Multiple persona labels found")
	assert.Contains(t, out.Warnings[0], "Keep only one")
}

func TestCheckPersonaLabel_DisabledWhenUnconfigured(t *testing.T) {
	pol := policy.DefaultPolicy()
	pol.PersonaLabels = nil
	ev, err := NewEvaluator(pol)
	require.NoError(t, err)

	out := ev.Validate("Fix: importer crash", passingBody)
	ev.CheckPersonaLabel(nil, out)
	assert.Empty(t, out.Warnings)
}

func TestValidate_Idempotent(t *testing.T) {
	ev := newDefaultEvaluator(t)

	first := ev.Validate("update readme", passingBody)
	second := ev.Validate("update readme", passingBody)
	assert.Equal(t, first, second)
}
