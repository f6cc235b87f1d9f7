// Package dnsname normalizes and validates fully-qualified domain names.
package dnsname

import (
	"regexp"
	"strings"
)

const (
	maxDomainLength = 253
	maxLabelLength  = 63
)

var labelPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// Normalize canonicalizes user input: trims whitespace, lowercases, and
// strips a URL scheme and trailing dot when present. It does not validate;
// run the result through IsValid.
func Normalize(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	for _, scheme := range []string{"https://", "http://"} {
		s = strings.TrimPrefix(s, scheme)
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSuffix(s, ".")
}

// IsValid reports whether s is a well-formed, already-normalized domain:
// at least two dot-separated labels, each 1-63 chars of [a-z0-9-] without
// leading or trailing hyphens, 253 chars total at most.
func IsValid(s string) bool {
	if s == "" || len(s) > maxDomainLength {
		return false
	}
	labels := strings.Split(s, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > maxLabelLength {
			return false
		}
		if !labelPattern.MatchString(label) {
			return false
		}
	}
	return true
}

// TLD returns the top-level domain including the leading dot, e.g.
// ".online" for "sub.mijnzorg.online". Empty when there is no dot.
func TLD(domain string) string {
	i := strings.LastIndex(domain, ".")
	if i < 0 {
		return ""
	}
	return domain[i:]
}
