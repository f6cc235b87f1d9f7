// Package suggest derives candidate domain names from a person's name and
// profession.
package suggest

import (
	"regexp"
	"strings"

	pstrings "zorgsites/pkg/platform/strings"
)

const (
	minBaseLength = 3
	maxBaseLength = 30

	// MaxSuggestions caps the candidate list a single request produces.
	MaxSuggestions = 20
)

// TLDs is the ordered list candidates are crossed with; the order doubles as
// ranking priority (.nl first for a Dutch audience).
var TLDs = []string{".nl", ".eu", ".com"}

// Keywords per profession, used to build name+keyword candidates. The
// fallback keeps suggestions useful for professions we have not curated.
var professionKeywords = map[string][]string{
	"verpleegkundige": {"zorg", "verpleging", "thuiszorg"},
	"fysiotherapeut":  {"fysio", "therapie", "zorg"},
	"psycholoog":      {"psycholoog", "praktijk", "zorg"},
	"huisarts":        {"huisarts", "praktijk", "zorg"},
	"tandarts":        {"tandarts", "praktijk", "mondzorg"},
	"verloskundige":   {"verloskunde", "zorg", "praktijk"},
	"logopedist":      {"logopedie", "praktijk", "zorg"},
	"dietist":         {"dieet", "voeding", "zorg"},
}

var fallbackKeywords = []string{"zorg"}

var nonNameChar = regexp.MustCompile(`[^a-z0-9\s-]`)

// Candidate is one suggested domain with its ranking inputs.
type Candidate struct {
	Domain string
	TLD    string
	// Order is the candidate's position in generation order, used as a
	// final tie-breaker when ranking results.
	Order int
}

// Generate builds the ranked candidate set for a person and profession.
// The result is deduplicated and capped at MaxSuggestions.
func Generate(name, profession string) []Candidate {
	parts := normalizeName(name)
	if len(parts) == 0 {
		return nil
	}

	firstName := parts[0]
	lastName := parts[len(parts)-1]
	fullName := strings.Join(parts, "")
	fullNameDash := strings.Join(parts, "-")

	keywords := keywordsFor(profession)

	bases := []string{
		fullName,
		fullNameDash,
		firstName,
		firstName + lastName,
		firstName + "-" + lastName,
	}
	for _, kw := range keywords {
		bases = append(bases,
			firstName+kw,
			firstName+"-"+kw,
			fullName+kw,
		)
	}

	bases = pstrings.DedupeAndTrimLower(bases)

	candidates := make([]Candidate, 0, MaxSuggestions)
	seen := make(map[string]struct{})
	for _, base := range bases {
		if len(base) < minBaseLength || len(base) > maxBaseLength {
			continue
		}
		for _, tld := range TLDs {
			domain := base + tld
			if _, ok := seen[domain]; ok {
				continue
			}
			seen[domain] = struct{}{}
			candidates = append(candidates, Candidate{
				Domain: domain,
				TLD:    tld,
				Order:  len(candidates),
			})
			if len(candidates) == MaxSuggestions {
				return candidates
			}
		}
	}
	return candidates
}

// TLDPriority ranks a TLD for result ordering; lower is better. TLDs outside
// the preferred list rank last.
func TLDPriority(tld string) int {
	for i, t := range TLDs {
		if t == tld {
			return i
		}
	}
	return len(TLDs)
}

// normalizeName lowercases, strips everything outside [a-z0-9 -] and splits
// on whitespace.
func normalizeName(name string) []string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonNameChar.ReplaceAllString(s, "")
	return strings.Fields(s)
}

func keywordsFor(profession string) []string {
	p := strings.ToLower(strings.TrimSpace(profession))
	if kws, ok := professionKeywords[p]; ok {
		return kws
	}
	return fallbackKeywords
}
