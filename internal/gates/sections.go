package gates

import (
	"sort"
	"strings"
)

// partition converts heading matches into one trimmed text span per canonical
// key. Span boundaries follow document order across all matched headings: a
// section ends where the next heading begins, whatever key that heading maps
// to, and the last section runs to end of document.
//
// Keys with no heading produce no entry at all. "Missing section" and
// "present but empty" are distinct conditions downstream.
func partition(body string, matches []HeadingMatch) map[string]string {
	spans := make(map[string]string, len(matches))
	if len(matches) == 0 {
		return spans
	}

	ordered := make([]HeadingMatch, len(matches))
	copy(ordered, matches)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Start < ordered[j].Start })

	for i, m := range ordered {
		end := len(body)
		if i+1 < len(ordered) {
			end = ordered[i+1].Start
		}
		if end < m.ContentStart {
			end = m.ContentStart
		}
		spans[m.Key] = strings.TrimSpace(body[m.ContentStart:end])
	}

	return spans
}
