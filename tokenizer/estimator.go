package tokenizer

import (
	"math"
	"strings"
)

// wordsPerTokenRatio converts a whitespace word count into an approximate
// token count. English prose averages roughly 1.3 tokens per word.
const wordsPerTokenRatio = 1.3

// EstimatorTokenizer approximates token counts from the word count.
// It never fails, which makes it the fallback when the BPE tokenizer
// cannot load its encoding data.
type EstimatorTokenizer struct{}

// NewEstimatorTokenizer creates an EstimatorTokenizer.
func NewEstimatorTokenizer() *EstimatorTokenizer {
	return &EstimatorTokenizer{}
}

// CountTokens returns round(wordCount * 1.3). The error is always nil.
func (t *EstimatorTokenizer) CountTokens(text string) (int, error) {
	return EstimateTokens(text), nil
}

// Name returns the tokenizer's name.
func (t *EstimatorTokenizer) Name() string {
	return "estimator"
}

// EstimateTokens is the shared word-count heuristic.
func EstimateTokens(text string) int {
	words := len(strings.Fields(text))
	return int(math.Round(float64(words) * wordsPerTokenRatio))
}
