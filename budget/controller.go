package budget

import (
	"go.uber.org/zap"
)

// PruneFraction is the share of Tier 1 handed to background
// summarization whenever the buffer exceeds its live ceiling.
const PruneFraction = 0.25

// Config holds the static budget parameters.
type Config struct {
	// BaseLimit is the Tier-1 token ceiling while external context is
	// active.
	BaseLimit int `yaml:"base_limit"`

	// Reserve is added to the ceiling only while no Tier-2/Tier-3 slot
	// is active, letting the raw conversation stretch further.
	Reserve int `yaml:"reserve"`
}

// State is the budget snapshot derived for one turn. It is recomputed
// every turn and never cached across turns.
type State struct {
	BaseLimit      int
	Reserve        int
	ActiveSlots    int
	EffectiveLimit int
	CurrentTokens  int
}

// Exceeded reports whether the buffer is over its ceiling.
func (s State) Exceeded() bool {
	return s.CurrentTokens > s.EffectiveLimit
}

// Controller computes the live Tier-1 ceiling from the slot set.
type Controller struct {
	cfg    Config
	est    *Estimator
	logger *zap.Logger
}

// NewController creates a Controller.
func NewController(cfg Config, est *Estimator, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{cfg: cfg, est: est, logger: logger}
}

// EffectiveLimit returns baseLimit plus the reserve when no external
// context slot is active.
func (c *Controller) EffectiveLimit(activeSlots int) int {
	if activeSlots > 0 {
		return c.cfg.BaseLimit
	}
	return c.cfg.BaseLimit + c.cfg.Reserve
}

// Evaluate derives the budget state for the current turn from the
// formatted Tier-1 buffer and the number of active context slots.
func (c *Controller) Evaluate(formattedHistory string, activeSlots int) State {
	s := State{
		BaseLimit:      c.cfg.BaseLimit,
		Reserve:        c.cfg.Reserve,
		ActiveSlots:    activeSlots,
		EffectiveLimit: c.EffectiveLimit(activeSlots),
		CurrentTokens:  c.est.Estimate(formattedHistory),
	}
	if s.Exceeded() {
		c.logger.Info("history over elastic ceiling",
			zap.Int("current_tokens", s.CurrentTokens),
			zap.Int("effective_limit", s.EffectiveLimit),
			zap.Int("active_slots", activeSlots))
	}
	return s
}
