package semantic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpander_NoSynonyms(t *testing.T) {
	e := NewExpander(nil)
	assert.Equal(t, "xyzzy", e.Expand("xyzzy"))
}

func TestExpander_OriginalQueryComesFirst(t *testing.T) {
	e := NewExpander(nil)
	terms := strings.Split(e.Expand("budget"), " ")
	assert.Equal(t, "budget", terms[0])
	assert.Contains(t, terms, "funds")
}

func TestExpander_CapsAtFiveTerms(t *testing.T) {
	// Both words have synonyms; total must still be capped.
	expanded := NewExpander(nil).Expand("budget plan")
	terms := strings.Fields(expanded)
	// "budget plan" counts as one term (the original query).
	assert.LessOrEqual(t, len(terms), maxExpansionTerms+1)

	lexicon := map[string][]string{
		"alpha": {"a1", "a2", "a3", "a4", "a5", "a6", "a7"},
	}
	expanded = NewExpander(lexicon).Expand("alpha")
	assert.Equal(t, "alpha a1 a2 a3 a4", expanded)
}

func TestExpander_NoDuplicateTerms(t *testing.T) {
	lexicon := map[string][]string{
		"cat": {"feline", "kitty"},
		"dog": {"canine", "feline"}, // "feline" repeats
	}
	expanded := NewExpander(lexicon).Expand("cat dog")
	terms := strings.Fields(expanded)

	seen := map[string]bool{}
	for _, term := range terms {
		assert.False(t, seen[term], "duplicate term %q", term)
		seen[term] = true
	}
}

func TestExpander_CaseInsensitiveLookup(t *testing.T) {
	e := NewExpander(nil)
	assert.Contains(t, e.Expand("Budget"), "funds")
}
