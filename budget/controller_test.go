package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func testController(base, reserve int) *Controller {
	est := NewEstimator(failingTokenizer{}, zap.NewNop()) // word heuristic
	return NewController(Config{BaseLimit: base, Reserve: reserve}, est, zap.NewNop())
}

func TestController_EffectiveLimit(t *testing.T) {
	c := testController(2048, 512)

	// Reserve applies only while no external slot is active.
	assert.Equal(t, 2560, c.EffectiveLimit(0))
	assert.Equal(t, 2048, c.EffectiveLimit(1))
	assert.Equal(t, 2048, c.EffectiveLimit(2))
}

func TestController_Evaluate(t *testing.T) {
	c := testController(10, 5)

	// 12 words -> round(12*1.3) = 16 tokens.
	history := strings.Repeat("word ", 12)

	s := c.Evaluate(history, 0)
	assert.Equal(t, 15, s.EffectiveLimit)
	assert.Equal(t, 16, s.CurrentTokens)
	assert.True(t, s.Exceeded())

	// Same buffer, slot active: ceiling shrinks to base.
	s = c.Evaluate(history, 1)
	assert.Equal(t, 10, s.EffectiveLimit)
	assert.True(t, s.Exceeded())

	s = c.Evaluate("short", 0)
	assert.False(t, s.Exceeded())
}
