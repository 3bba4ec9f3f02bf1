package types

// ContextSlot is a memory tier's currently active injected context.
// Slots are value objects: adapters produce a fresh slot on every
// successful recall, and the orchestrator reads copies. At most one
// slot is active per tier at any time.
type ContextSlot struct {
	// Content is the prompt-ready text recalled from the tier.
	Content string `json:"content"`

	// Timestamp is seconds since the Unix epoch, fractional. It is
	// comparable across tiers without unit conversion and decides
	// precedence when two tiers disagree.
	Timestamp float64 `json:"timestamp"`

	// Source is a human-readable origin tag (tier label plus, for the
	// vault, the originating document name).
	Source string `json:"source"`

	// Distance is the similarity score of a vault match (cosine
	// distance, 0 = identical). Nil for episodic slots.
	Distance *float64 `json:"distance,omitempty"`
}

// Clone returns an independent copy of the slot.
func (s *ContextSlot) Clone() *ContextSlot {
	if s == nil {
		return nil
	}
	cp := *s
	if s.Distance != nil {
		d := *s.Distance
		cp.Distance = &d
	}
	return &cp
}
