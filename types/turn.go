package types

import "fmt"

// Speaker identifies the originator of a conversation turn.
type Speaker string

const (
	SpeakerUser  Speaker = "user"
	SpeakerAgent Speaker = "agent"
)

// Turn is one exchange unit in the rolling conversation buffer.
// Turns are immutable once created; the buffer owns their order.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// Format renders the turn as a single prompt line.
func (t Turn) Format() string {
	switch t.Speaker {
	case SpeakerUser:
		return fmt.Sprintf("USER: %s", t.Text)
	case SpeakerAgent:
		return fmt.Sprintf("ASSISTANT: %s", t.Text)
	default:
		return fmt.Sprintf("%s: %s", t.Speaker, t.Text)
	}
}
