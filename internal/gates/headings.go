package gates

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/sawpanic/prgate/internal/policy"
)

// HeadingMatch is one located section heading. Start is the offset of the
// heading line; ContentStart is the offset immediately after it.
type HeadingMatch struct {
	Key          string
	Start        int
	ContentStart int
}

// headingMatcher resolves markdown-style headings back to canonical section
// keys. A heading is a line of 1-3 leading '#' markers followed by one of the
// configured alias labels; deeper headings and inline mentions do not count.
type headingMatcher struct {
	re      *regexp.Regexp
	byAlias map[string]string // normalized alias -> canonical key
}

func newHeadingMatcher(sections []policy.SectionSpec) (*headingMatcher, error) {
	byAlias := make(map[string]string)
	var aliases []string
	for _, s := range sections {
		for _, a := range s.Aliases {
			byAlias[normalizeAlias(a)] = s.Key
			aliases = append(aliases, a)
		}
	}
	if len(aliases) == 0 {
		return nil, fmt.Errorf("no heading aliases configured")
	}

	// Longer aliases first so "verification / testing" wins over "testing"
	// when both could match at the same position.
	sort.Slice(aliases, func(i, j int) bool { return len(aliases[i]) > len(aliases[j]) })

	parts := make([]string, len(aliases))
	for i, a := range aliases {
		// Spaces in an alias tolerate tight spellings, e.g. "Verification/Testing".
		parts[i] = strings.ReplaceAll(regexp.QuoteMeta(a), " ", `[ \t]*`)
	}

	pattern := `(?mi)^[ \t]*#{1,3}[ \t]+(` + strings.Join(parts, "|") + `)\b`
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to compile heading pattern: %w", err)
	}

	return &headingMatcher{re: re, byAlias: byAlias}, nil
}

// scan returns one HeadingMatch per canonical key found in body. When the same
// key is headed more than once, the first occurrence is authoritative and
// later ones are ignored.
func (hm *headingMatcher) scan(body string) []HeadingMatch {
	var matches []HeadingMatch
	claimed := make(map[string]bool)

	for _, loc := range hm.re.FindAllStringSubmatchIndex(body, -1) {
		alias := body[loc[2]:loc[3]]
		key, ok := hm.byAlias[normalizeAlias(alias)]
		if !ok || claimed[key] {
			continue
		}
		claimed[key] = true

		contentStart := len(body)
		if nl := strings.IndexByte(body[loc[0]:], '\n'); nl >= 0 {
			contentStart = loc[0] + nl + 1
		}

		matches = append(matches, HeadingMatch{
			Key:          key,
			Start:        loc[0],
			ContentStart: contentStart,
		})
	}

	return matches
}

// normalizeAlias strips spacing so "Verification/Testing" and
// "verification / testing" resolve to the same alias entry.
func normalizeAlias(a string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, strings.ToLower(a))
}
