package identity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/tokenizer"
)

func testLoader() *Loader {
	l := NewLoader(budget.NewEstimator(tokenizer.NewEstimatorTokenizer(), zap.NewNop()), zap.NewNop())
	l.now = func() time.Time {
		return time.Date(2026, time.March, 9, 14, 30, 0, 0, time.UTC)
	}
	return l
}

func sampleProfile() Profile {
	return Profile{
		UserName:       "Dana",
		AssistantName:  "Nexus",
		Preferences:    []string{"concise answers", "metric units"},
		BehaviorRules:  []string{"never guess dates"},
		LessonsLearned: []string{"user dislikes bullet lists"},
	}
}

func TestRender_ContainsSections(t *testing.T) {
	block, count, err := testLoader().Render(sampleProfile())
	require.NoError(t, err)

	assert.Contains(t, block, "[SYSTEM OVERHEAD / TIER 0]")
	assert.Contains(t, block, "Current Time: Monday, March 9, 2026 at 2:30 PM")
	assert.Contains(t, block, "User: Dana")
	assert.Contains(t, block, "Assistant: Nexus")
	assert.Contains(t, block, "PREFERENCES: concise answers, metric units")
	assert.Contains(t, block, "RULES: never guess dates")
	assert.Contains(t, block, "LESSONS: user dislikes bullet lists")
	assert.LessOrEqual(t, count, OverheadBudget)
}

func TestRender_CollapsesLessonsWhenOverBudget(t *testing.T) {
	p := sampleProfile()
	// Enough lesson text to push the block well past 500 tokens.
	p.LessonsLearned = nil
	for i := 0; i < 200; i++ {
		p.LessonsLearned = append(p.LessonsLearned, "another remembered correction about formatting")
	}

	block, count, err := testLoader().Render(p)
	require.NoError(t, err)

	assert.Contains(t, block, "LESSONS: [Summarized for space]")
	assert.NotContains(t, block, "remembered correction")
	assert.Contains(t, block, "PREFERENCES:", "sections before lessons survive the trim")
	assert.LessOrEqual(t, count, OverheadBudget)
}

func TestLoadFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	raw := strings.Join([]string{
		"user_name: Dana",
		"assistant_name: Nexus",
		"core_preferences: [concise answers]",
		"behavior_rules: [never guess dates]",
		"lessons_learned: [user dislikes bullet lists]",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	block, count, err := testLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Contains(t, block, "User: Dana")
	assert.Positive(t, count)
}

func TestLoadFile_MissingFile(t *testing.T) {
	_, _, err := testLoader().LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadFile_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("user_name: [unclosed"), 0o644))

	_, _, err := testLoader().LoadFile(path)
	require.Error(t, err)
}
