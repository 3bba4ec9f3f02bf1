package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimatorTokenizer_CountTokens(t *testing.T) {
	est := NewEstimatorTokenizer()

	tests := []struct {
		name string
		text string
		want int
	}{
		{"empty", "", 0},
		{"one word", "hello", 1},                          // round(1 * 1.3) = 1
		{"two words", "hello world", 3},                   // round(2.6) = 3
		{"ten words", "a b c d e f g h i j", 13},          // round(13.0)
		{"collapses whitespace", "  a   b\t\nc  ", 4},     // 3 words, round(3.9)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := est.CountTokens(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEstimatorTokenizer_Name(t *testing.T) {
	assert.Equal(t, "estimator", NewEstimatorTokenizer().Name())
}

func TestNewTiktokenTokenizer_Defaults(t *testing.T) {
	tok := NewTiktokenTokenizer("")
	assert.Equal(t, "tiktoken-"+DefaultEncoding, tok.Name())
}
