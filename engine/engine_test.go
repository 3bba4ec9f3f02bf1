package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/history"
	"github.com/BaSui01/nexuscore/internal/task"
	"github.com/BaSui01/nexuscore/tokenizer"
	"github.com/BaSui01/nexuscore/types"
)

type stubRecaller struct {
	slot *types.ContextSlot
	err  error
}

func (s *stubRecaller) Recall(context.Context, string) (*types.ContextSlot, error) {
	return s.slot, s.err
}

type stubSearcher struct {
	slot *types.ContextSlot
	err  error
}

func (s *stubSearcher) Search(context.Context, string) (*types.ContextSlot, error) {
	return s.slot, s.err
}

type recordingArchiver struct {
	mu        sync.Mutex
	summaries []string
	saveErr   error
	events    []string
}

func (a *recordingArchiver) SaveSummary(_ context.Context, historyText string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.saveErr != nil {
		return a.saveErr
	}
	a.summaries = append(a.summaries, historyText)
	a.events = append(a.events, "save")
	return nil
}

func (a *recordingArchiver) Consolidate(context.Context) (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, "consolidate")
	return false, nil
}

func (a *recordingArchiver) saved() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.summaries...)
}

type scriptedService struct {
	reply string
	err   error

	systems  []string
	contexts []string
	prompts  []string
}

func (s *scriptedService) Generate(_ context.Context, system, contextBlock, prompt string) (string, error) {
	s.systems = append(s.systems, system)
	s.contexts = append(s.contexts, contextBlock)
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func (s *scriptedService) Warmup(context.Context) error { return nil }

type fixture struct {
	engine   *Engine
	buffer   *history.Buffer
	archiver *recordingArchiver
	service  *scriptedService
	recaller *stubRecaller
	searcher *stubSearcher
}

func newFixture(t *testing.T, cfg budget.Config) *fixture {
	t.Helper()
	est := budget.NewEstimator(tokenizer.NewEstimatorTokenizer(), zap.NewNop())
	f := &fixture{
		buffer:   history.NewBuffer(),
		archiver: &recordingArchiver{},
		service:  &scriptedService{reply: "ok"},
		recaller: &stubRecaller{},
		searcher: &stubSearcher{},
	}
	f.engine = New(Deps{
		Persona:    "[SYSTEM OVERHEAD / TIER 0]\nAssistant: Nexus",
		Controller: budget.NewController(cfg, est, zap.NewNop()),
		History:    f.buffer,
		Episodic:   f.recaller,
		Semantic:   f.searcher,
		Archiver:   f.archiver,
		Inference:  f.service,
		Runner:     task.NewRunner(zap.NewNop()),
		Logger:     zap.NewNop(),
	})
	return f
}

func TestProcessTurn_AppendsBothTurnsOnSuccess(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	f.service.reply = "hello there"

	reply, err := f.engine.ProcessTurn(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply)

	turns := f.buffer.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, types.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "hi", turns[0].Text)
	assert.Equal(t, types.SpeakerAgent, turns[1].Speaker)
	assert.Equal(t, "hello there", turns[1].Text)
}

func TestProcessTurn_PromptCarriesHistoryAndPersona(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})

	_, err := f.engine.ProcessTurn(context.Background(), "first question")
	require.NoError(t, err)
	_, err = f.engine.ProcessTurn(context.Background(), "second question")
	require.NoError(t, err)

	require.Len(t, f.service.prompts, 2)
	assert.Equal(t, "USER: first question", f.service.prompts[0])
	assert.Equal(t,
		"USER: first question\nASSISTANT: ok\nUSER: second question",
		f.service.prompts[1])
	assert.Contains(t, f.service.systems[0], "Assistant: Nexus")
}

func TestProcessTurn_FailureLeavesHistoryUntouched(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	_, err := f.engine.ProcessTurn(context.Background(), "works")
	require.NoError(t, err)

	f.service.err = types.NewError(types.ErrInferenceFailed, "model offline")
	_, err = f.engine.ProcessTurn(context.Background(), "fails")
	require.Error(t, err)

	assert.Equal(t, 2, f.buffer.Len(), "abandoned turn must not mutate the buffer")
}

func TestProcessTurn_PrunesAndArchivesWhenOverBudget(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 40, Reserve: 0})
	for i := 0; i < 8; i++ {
		f.buffer.Append(types.Turn{
			Speaker: types.SpeakerUser,
			Text:    fmt.Sprintf("turn %d with several filler words attached here", i),
		})
	}

	_, err := f.engine.ProcessTurn(context.Background(), "next")
	require.NoError(t, err)

	// 8 turns over budget: a quarter removed before inference.
	assert.Equal(t, 6+2, f.buffer.Len())
	remaining := f.buffer.Format()
	assert.NotContains(t, remaining, "turn 0")
	assert.NotContains(t, remaining, "turn 1")
	assert.Contains(t, remaining, "turn 2")

	f.engine.Close(context.Background())
	var archived string
	for _, s := range f.archiver.saved() {
		if strings.Contains(s, "turn 0") {
			archived = s
		}
	}
	require.NotEmpty(t, archived, "pruned snapshot must reach the archiver")
	assert.Contains(t, archived, "turn 1")
	assert.NotContains(t, archived, "turn 2")
}

func TestProcessTurn_UnderBudgetNeverPrunes(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	for i := 0; i < 3; i++ {
		_, err := f.engine.ProcessTurn(context.Background(), fmt.Sprintf("short turn %d", i))
		require.NoError(t, err)
	}
	assert.Equal(t, 6, f.buffer.Len())
	assert.Empty(t, f.archiver.saved())
}

func TestVaultSearch_AcceptedMatchBecomesSoleSlot(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	d := 0.3
	f.searcher.slot = &types.ContextSlot{
		Content:   "reactor manual revision three",
		Timestamp: 1700000000,
		Source:    "Tier 3 Vault (manual.txt)",
		Distance:  &d,
	}

	slot, err := f.engine.VaultSearch(context.Background(), "reactor")
	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.Equal(t, 1, f.engine.ActiveSlots())

	block := f.engine.AssembleContext()
	assert.Contains(t, block, "=== TIER 3: DOCUMENT VAULT ===")
	assert.Contains(t, block, "reactor manual revision three")
	assert.NotContains(t, block, "=== TIER 2")
	assert.NotContains(t, block, "[CONFLICT NOTICE]")
}

func TestRecall_NoMatchLeavesPriorSlot(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	f.recaller.slot = &types.ContextSlot{Content: "earlier sessions", Timestamp: 10, Source: "Tier 2 Ledger"}

	_, err := f.engine.Recall(context.Background(), "earlier")
	require.NoError(t, err)
	assert.Equal(t, 1, f.engine.ActiveSlots())

	f.recaller.slot = nil
	slot, err := f.engine.Recall(context.Background(), "nothing matches this")
	require.NoError(t, err)
	assert.Nil(t, slot)
	assert.Equal(t, 1, f.engine.ActiveSlots(), "empty recall must not drop the active slot")
}

func TestClearSlots_RestoresIdleState(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	f.recaller.slot = &types.ContextSlot{Content: "x", Timestamp: 1, Source: "Tier 2 Ledger"}
	_, err := f.engine.Recall(context.Background(), "x")
	require.NoError(t, err)
	require.Equal(t, 1, f.engine.ActiveSlots())

	f.engine.ClearSlots()
	assert.Equal(t, 0, f.engine.ActiveSlots())
	assert.Equal(t, "[NO EXTERNAL DOCUMENTS LOADED]", f.engine.AssembleContext())
}

func TestClose_ArchivesThenConsolidates(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	_, err := f.engine.ProcessTurn(context.Background(), "remember this session")
	require.NoError(t, err)

	require.NoError(t, f.engine.Close(context.Background()))

	require.Len(t, f.archiver.saved(), 1)
	assert.Contains(t, f.archiver.saved()[0], "remember this session")
	assert.Equal(t, []string{"save", "consolidate"}, f.archiver.events)
}

func TestClose_EmptyHistorySkipsArchival(t *testing.T) {
	f := newFixture(t, budget.Config{BaseLimit: 2048, Reserve: 512})
	require.NoError(t, f.engine.Close(context.Background()))
	assert.Empty(t, f.archiver.saved())
	assert.Equal(t, []string{"consolidate"}, f.archiver.events)
}
