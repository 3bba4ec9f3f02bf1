// Package tokenizer provides token counting for prompt budgeting.
//
// The primary implementation wraps tiktoken; EstimatorTokenizer is a
// dependency-free approximation used as the degraded fallback.
package tokenizer

// Tokenizer is the token counting interface.
type Tokenizer interface {
	// CountTokens returns the token count for the given text.
	CountTokens(text string) (int, error)

	// Name returns the tokenizer's name.
	Name() string
}
