package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func domains(cs []Candidate) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Domain)
	}
	return out
}

func TestGenerate_NameAndProfession(t *testing.T) {
	got := Generate("Lisa de Vries", "verpleegkundige")
	require.NotEmpty(t, got)

	ds := domains(got)
	assert.Contains(t, ds, "lisadevries.nl")
	assert.Contains(t, ds, "lisa-de-vries.nl")
	assert.Contains(t, ds, "lisa-zorg.nl")
}

func TestGenerate_CapAndUniqueness(t *testing.T) {
	got := Generate("Lisa de Vries", "verpleegkundige")
	assert.LessOrEqual(t, len(got), MaxSuggestions)

	seen := make(map[string]struct{})
	for _, c := range got {
		_, dup := seen[c.Domain]
		assert.False(t, dup, "duplicate %s", c.Domain)
		seen[c.Domain] = struct{}{}
	}
}

func TestGenerate_UnknownProfessionFallsBackToZorg(t *testing.T) {
	got := Generate("Jan Smit", "astronaut")
	assert.Contains(t, domains(got), "janzorg.nl")
}

func TestGenerate_StripsNoise(t *testing.T) {
	got := Generate("  Ólafur   O'Brien!  ", "")
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.NotContains(t, c.Domain, "'")
		assert.NotContains(t, c.Domain, " ")
	}
}

func TestGenerate_EmptyName(t *testing.T) {
	assert.Empty(t, Generate("   ", "huisarts"))
}

func TestGenerate_SkipsTooShortBases(t *testing.T) {
	// Single-letter first name keeps the keyword variants but not the
	// bare name.
	got := Generate("J Smit", "huisarts")
	assert.NotContains(t, domains(got), "j.nl")
}

func TestTLDPriority(t *testing.T) {
	assert.Less(t, TLDPriority(".nl"), TLDPriority(".eu"))
	assert.Less(t, TLDPriority(".eu"), TLDPriority(".com"))
	assert.Equal(t, len(TLDs), TLDPriority(".online"))
}
