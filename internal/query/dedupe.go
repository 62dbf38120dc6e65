package query

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

func normalizePassage(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// DedupePassages removes passages whose whitespace-normalized text matches
// an earlier passage, keeping the first occurrence and preserving order.
// Survivors keep their original, un-normalized text.
func DedupePassages(passages []string) []string {
	seen := make(map[string]struct{}, len(passages))
	unique := make([]string, 0, len(passages))

	for _, passage := range passages {
		normalized := normalizePassage(passage)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		unique = append(unique, passage)
	}

	return unique
}
