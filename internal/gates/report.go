package gates

import (
	"fmt"
	"strings"
)

// RenderOptions controls report formatting. Icons is for interactive
// terminals; plain output is used when piped into CI logs.
type RenderOptions struct {
	Icons bool
}

// Render formats an outcome deterministically: on failure every error in
// input order, then every warning; on success a single pass line, then any
// warnings. Exit-code mapping belongs to the caller.
func Render(o *Outcome, opts RenderOptions) string {
	pass, fail, warn := "PASS", "FAIL", "WARN"
	if opts.Icons {
		pass, fail, warn = "✅ PASS", "❌ FAIL", "⚠️"
	}

	var sb strings.Builder
	if o.Passed {
		sb.WriteString(fmt.Sprintf("● PR GATE — %s\n", pass))
		sb.WriteString("  - all required sections present\n")
	} else {
		noun := "problems"
		if len(o.Errors) == 1 {
			noun = "problem"
		}
		sb.WriteString(fmt.Sprintf("● PR GATE — %s (%d %s)\n", fail, len(o.Errors), noun))
		for _, e := range o.Errors {
			sb.WriteString(fmt.Sprintf("  - %s\n", e))
		}
	}

	for _, w := range o.Warnings {
		sb.WriteString(fmt.Sprintf("  - %s %s\n", warn, w))
	}

	return sb.String()
}
