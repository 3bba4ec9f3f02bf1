// Package history implements the Tier-1 rolling conversation buffer.
//
// The buffer is owned by the main turn loop and is never touched by
// background tasks; pruning hands back a detached snapshot whose
// archival is the caller's responsibility.
package history

import (
	"math"
	"strings"

	"github.com/BaSui01/nexuscore/types"
)

// Buffer is an append-only short-term turn log. It enforces no size
// limit itself; the elastic budget controller decides when to prune.
type Buffer struct {
	turns []types.Turn
}

// NewBuffer creates an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append adds a turn to the end of the buffer.
func (b *Buffer) Append(t types.Turn) {
	b.turns = append(b.turns, t)
}

// Len returns the number of buffered turns.
func (b *Buffer) Len() int {
	return len(b.turns)
}

// Turns returns a copy of the buffered turns in conversational order.
func (b *Buffer) Turns() []types.Turn {
	out := make([]types.Turn, len(b.turns))
	copy(out, b.turns)
	return out
}

// Format renders the full buffer as prompt text, one line per turn.
func (b *Buffer) Format() string {
	return FormatTurns(b.turns)
}

// PruneOldest removes the front max(1, floor(len*fraction)) turns and
// returns them as a detached slice for archival. It is a no-op on an
// empty buffer and never removes below zero.
func (b *Buffer) PruneOldest(fraction float64) []types.Turn {
	n := len(b.turns)
	if n == 0 {
		return nil
	}
	remove := int(math.Floor(float64(n) * fraction))
	if remove < 1 {
		remove = 1
	}
	if remove > n {
		remove = n
	}

	removed := make([]types.Turn, remove)
	copy(removed, b.turns[:remove])
	b.turns = append([]types.Turn(nil), b.turns[remove:]...)
	return removed
}

// Clear drops every buffered turn.
func (b *Buffer) Clear() {
	b.turns = nil
}

// FormatTurns renders a detached turn slice the same way Format does,
// so archival summaries see the text the prompt would have carried.
func FormatTurns(turns []types.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, len(turns))
	for i, t := range turns {
		lines[i] = t.Format()
	}
	return strings.Join(lines, "\n")
}
