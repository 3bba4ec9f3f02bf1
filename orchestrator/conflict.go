// Package orchestrator merges the Tier-2 and Tier-3 context slots into
// one prompt-ready block, deciding precedence by recency.
package orchestrator

import (
	"fmt"
	"strings"

	"github.com/BaSui01/nexuscore/types"
)

// NoContextMarker is emitted when neither external tier is active.
const NoContextMarker = "[NO EXTERNAL DOCUMENTS LOADED]"

const (
	tier2Label = "=== TIER 2: PAST SESSION LOG ==="
	tier3Label = "=== TIER 3: DOCUMENT VAULT ==="

	// conflictInstruction steers the generator when both tiers carry
	// data; it accompanies every conflict warning.
	conflictInstruction = "INSTRUCTION: If the two sources below state conflicting facts, " +
		"trust the prioritized tier and treat the other as historical background."
)

// Merge produces the prompt block for the given slots. It is a pure
// function: identical inputs always produce identical output, and the
// slots are never mutated.
//
// With both tiers active, the slot with the strictly greater timestamp
// is declared authoritative; both contents are still included under
// their labels. Equal timestamps resolve to Tier 2, whose timestamps
// are always real write times, so a vault document that defaulted to
// epoch 0 can never win a tie.
func Merge(episodic, semantic *types.ContextSlot) string {
	switch {
	case episodic == nil && semantic == nil:
		return NoContextMarker

	case semantic == nil:
		return tier2Label + "\n" + episodic.Content

	case episodic == nil:
		return tier3Label + "\n" + semantic.Content
	}

	authoritative := "Tier 2 (past sessions)"
	if semantic.Timestamp > episodic.Timestamp {
		authoritative = "Tier 3 (document vault)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[CONFLICT NOTICE] Both memory tiers are active; %s holds the most recent data and is prioritized.\n", authoritative)
	b.WriteString(conflictInstruction)
	b.WriteString("\n\n")
	b.WriteString(tier2Label)
	b.WriteString("\n")
	b.WriteString(episodic.Content)
	b.WriteString("\n\n")
	b.WriteString(tier3Label)
	b.WriteString("\n")
	b.WriteString(semantic.Content)
	return b.String()
}
