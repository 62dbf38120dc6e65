package ingestion

import (
	"regexp"
	"strings"
)

// Lines matching any of these are dropped wholesale before chunking.
// Matching is line-local: a line is either removed or kept, never partially
// redacted.
var boilerplatePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*page\s*\d+\s*(of\s*\d+)?\s*$`),
	regexp.MustCompile(`(?i)^\s*confidential\s*$`),
	regexp.MustCompile(`(?i)government\s+of\s+telangana`),
}

// CleanText strips headers, footers and other repeated boilerplate from
// extracted page text and joins the surviving lines with single spaces.
// A document that is entirely boilerplate yields an empty string; callers
// treat that as an empty document, not a failure.
func CleanText(raw string) string {
	lines := strings.Split(raw, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		if isBoilerplate(stripped) {
			continue
		}
		cleaned = append(cleaned, stripped)
	}

	return strings.Join(cleaned, " ")
}

func isBoilerplate(line string) bool {
	for _, pattern := range boilerplatePatterns {
		if pattern.MatchString(line) {
			return true
		}
	}
	return false
}
