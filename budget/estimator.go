// Package budget provides token budgeting for the context window: a
// degradation-safe estimator over the tokenizer and the elastic Tier-1
// ceiling controller.
package budget

import (
	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/tokenizer"
)

// Estimator wraps a Tokenizer and substitutes the word-count heuristic
// when the underlying counter fails. Errors never cross this boundary.
type Estimator struct {
	inner  tokenizer.Tokenizer
	logger *zap.Logger
}

// NewEstimator creates an Estimator. A nil logger is replaced with a nop.
func NewEstimator(inner tokenizer.Tokenizer, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Estimator{inner: inner, logger: logger}
}

// Estimate returns the token count for text, falling back to
// round(wordCount * 1.3) if the tokenizer fails.
func (e *Estimator) Estimate(text string) int {
	count, err := e.inner.CountTokens(text)
	if err != nil {
		e.logger.Warn("token counter failed, using word-count heuristic",
			zap.String("tokenizer", e.inner.Name()),
			zap.Error(err))
		return tokenizer.EstimateTokens(text)
	}
	return count
}
