// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeAndTrimLower removes duplicates and empty strings from a slice,
// trimming whitespace and lowercasing each element. Order is preserved.
//
// Domain names compare case-insensitively, so callers that accept candidate
// domain lists run them through here before issuing registrar checks.
//
// Example:
//
//	DedupeAndTrimLower([]string{"  Foo.NL ", "bar.nl", "foo.nl", ""})
//	// Returns: []string{"foo.nl", "bar.nl"}
func DedupeAndTrimLower(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		trimmed := strings.ToLower(strings.TrimSpace(v))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}

	return result
}
