// Package identity loads the assistant persona profile and renders it
// into the fixed-overhead system block that precedes every prompt.
package identity

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/types"
)

// OverheadBudget caps the rendered persona block. A profile that grows
// past it has its LESSONS section collapsed to a placeholder rather
// than eating into the conversation budget.
const OverheadBudget = 500

const lessonsPlaceholder = "LESSONS: [Summarized for space]"

// Profile is the on-disk persona definition.
type Profile struct {
	UserName       string   `yaml:"user_name"`
	AssistantName  string   `yaml:"assistant_name"`
	Preferences    []string `yaml:"core_preferences"`
	BehaviorRules  []string `yaml:"behavior_rules"`
	LessonsLearned []string `yaml:"lessons_learned"`
}

// Loader renders persona blocks with a live timestamp.
type Loader struct {
	estimator *budget.Estimator
	logger    *zap.Logger
	now       func() time.Time
}

// NewLoader creates a Loader. The estimator is required; it enforces
// the overhead budget.
func NewLoader(estimator *budget.Estimator, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{estimator: estimator, logger: logger, now: time.Now}
}

// LoadFile reads a YAML profile and renders it.
func (l *Loader) LoadFile(path string) (string, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, types.NewError(types.ErrInvalidInput,
			fmt.Sprintf("read profile %s", path)).WithCause(err)
	}

	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return "", 0, types.NewError(types.ErrInvalidInput,
			fmt.Sprintf("parse profile %s", path)).WithCause(err)
	}
	return l.Render(p)
}

// Render builds the persona block for the profile and returns it with
// its token count. When the block exceeds OverheadBudget the lessons
// section is replaced by a placeholder and the count re-taken.
func (l *Loader) Render(p Profile) (string, int, error) {
	currentTime := l.now().Format("Monday, January 2, 2006 at 3:04 PM")

	block := fmt.Sprintf(`
[SYSTEM OVERHEAD / TIER 0]
Current Time: %s
User: %s
Assistant: %s

PREFERENCES: %s
RULES: %s
LESSONS: %s
`,
		currentTime,
		p.UserName,
		p.AssistantName,
		strings.Join(p.Preferences, ", "),
		strings.Join(p.BehaviorRules, ", "),
		strings.Join(p.LessonsLearned, ", "))

	count := l.estimator.Estimate(block)
	if count > OverheadBudget {
		l.logger.Warn("persona block over budget, collapsing lessons",
			zap.Int("tokens", count),
			zap.Int("budget", OverheadBudget))
		head, _, _ := strings.Cut(block, "LESSONS:")
		block = head + lessonsPlaceholder
		count = l.estimator.Estimate(block)
	}
	return block, count, nil
}
