package semantic

import "strings"

// maxExpansionTerms bounds query drift: the expanded query carries at
// most this many terms, the original query included.
const maxExpansionTerms = 5

// defaultLexicon is a small near-synonym table standing in for a full
// thesaurus. Keys and values are lowercase single words.
var defaultLexicon = map[string][]string{
	"budget":   {"funds", "finances", "money"},
	"funds":    {"budget", "money", "capital"},
	"money":    {"funds", "cash", "budget"},
	"cost":     {"price", "expense"},
	"expense":  {"cost", "spending"},
	"plan":     {"schedule", "agenda", "strategy"},
	"schedule": {"plan", "timetable", "agenda"},
	"meeting":  {"appointment", "session"},
	"project":  {"task", "initiative"},
	"task":     {"job", "assignment", "project"},
	"home":     {"house", "residence"},
	"car":      {"vehicle", "automobile"},
	"doctor":   {"physician", "medic"},
	"food":     {"meal", "groceries"},
	"travel":   {"trip", "journey"},
	"work":     {"job", "employment"},
	"buy":      {"purchase", "acquire"},
	"fix":      {"repair", "mend"},
	"error":    {"fault", "bug", "mistake"},
	"report":   {"summary", "document"},
}

// Expander widens a query with near-synonyms before a vault search.
type Expander struct {
	lexicon map[string][]string
}

// NewExpander creates an Expander. A nil lexicon selects the built-in
// table.
func NewExpander(lexicon map[string][]string) *Expander {
	if lexicon == nil {
		lexicon = defaultLexicon
	}
	return &Expander{lexicon: lexicon}
}

// Expand returns the query widened with synonyms of each of its words,
// capped at maxExpansionTerms terms total. The original query is always
// the first term; duplicates are not added.
func (e *Expander) Expand(query string) string {
	terms := []string{query}
	seen := map[string]bool{query: true}

	for _, word := range strings.Fields(strings.ToLower(query)) {
		for _, syn := range e.lexicon[word] {
			if seen[syn] {
				continue
			}
			terms = append(terms, syn)
			seen[syn] = true
			if len(terms) >= maxExpansionTerms {
				return strings.Join(terms, " ")
			}
		}
	}
	return strings.Join(terms, " ")
}
