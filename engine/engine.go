// Package engine drives the per-turn memory loop: budget enforcement,
// context assembly across the three tiers, the inference call, and the
// session-end archival sequence.
package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/history"
	"github.com/BaSui01/nexuscore/inference"
	"github.com/BaSui01/nexuscore/internal/metrics"
	"github.com/BaSui01/nexuscore/internal/task"
	"github.com/BaSui01/nexuscore/orchestrator"
	"github.com/BaSui01/nexuscore/types"
)

// EpisodicRecaller is the Tier-2 recall boundary.
type EpisodicRecaller interface {
	Recall(ctx context.Context, query string) (*types.ContextSlot, error)
}

// SemanticSearcher is the Tier-3 search boundary.
type SemanticSearcher interface {
	Search(ctx context.Context, query string) (*types.ContextSlot, error)
}

// Archiver is the consolidation boundary: summary persistence and the
// threshold-driven batch archive.
type Archiver interface {
	SaveSummary(ctx context.Context, historyText string) error
	Consolidate(ctx context.Context) (bool, error)
}

// Deps wires an Engine.
type Deps struct {
	Persona    string
	Controller *budget.Controller
	History    *history.Buffer
	Episodic   EpisodicRecaller
	Semantic   SemanticSearcher
	Archiver   Archiver
	Inference  inference.Service
	Runner     *task.Runner
	Logger     *zap.Logger
}

// Engine owns the Tier-1 buffer and the two active context slots. It
// is single-threaded by contract: slots and buffer are touched only by
// the loop goroutine, while background archival tasks receive immutable
// snapshots.
type Engine struct {
	persona    string
	controller *budget.Controller
	buffer     *history.Buffer
	episodic   EpisodicRecaller
	semantic   SemanticSearcher
	archiver   Archiver
	svc        inference.Service
	runner     *task.Runner
	logger     *zap.Logger

	episodicSlot *types.ContextSlot
	semanticSlot *types.ContextSlot
}

// New creates an Engine.
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		persona:    deps.Persona,
		controller: deps.Controller,
		buffer:     deps.History,
		episodic:   deps.Episodic,
		semantic:   deps.Semantic,
		archiver:   deps.Archiver,
		svc:        deps.Inference,
		runner:     deps.Runner,
		logger:     logger,
	}
}

// ActiveSlots returns the number of active external context slots.
func (e *Engine) ActiveSlots() int {
	n := 0
	if e.episodicSlot != nil {
		n++
	}
	if e.semanticSlot != nil {
		n++
	}
	return n
}

// ProcessTurn runs one full user turn and returns the assistant reply.
// On a collaborator failure the turn is abandoned with the buffer
// untouched, so a retry sees the exact same history.
func (e *Engine) ProcessTurn(ctx context.Context, userText string) (string, error) {
	state := e.controller.Evaluate(e.buffer.Format(), e.ActiveSlots())
	if state.Exceeded() {
		e.pruneAndArchive(state)
	}

	contextBlock := orchestrator.Merge(e.episodicSlot.Clone(), e.semanticSlot.Clone())

	userTurn := types.Turn{Speaker: types.SpeakerUser, Text: userText}
	prompt := userTurn.Format()
	if formatted := e.buffer.Format(); formatted != "" {
		prompt = formatted + "\n" + prompt
	}

	reply, err := e.svc.Generate(ctx, e.persona, contextBlock, prompt)
	if err != nil {
		metrics.TurnsFailed.Inc()
		e.logger.Error("turn abandoned at inference boundary", zap.Error(err))
		return "", err
	}

	e.buffer.Append(userTurn)
	e.buffer.Append(types.Turn{Speaker: types.SpeakerAgent, Text: reply})
	metrics.TurnsProcessed.Inc()
	return reply, nil
}

// pruneAndArchive removes the oldest quarter of the buffer and hands
// the detached snapshot to a background summarize-and-archive task. The
// task never touches the live buffer and its outcome is only logged.
func (e *Engine) pruneAndArchive(state budget.State) {
	removed := e.buffer.PruneOldest(budget.PruneFraction)
	if len(removed) == 0 {
		return
	}
	metrics.PrunesTriggered.Inc()
	e.logger.Info("history over budget, pruned oldest turns",
		zap.Int("current_tokens", state.CurrentTokens),
		zap.Int("effective_limit", state.EffectiveLimit),
		zap.Int("removed_turns", len(removed)))

	snapshot := history.FormatTurns(removed)
	e.runner.Go("archive-pruned-history", func(ctx context.Context) error {
		if err := e.archiver.SaveSummary(ctx, snapshot); err != nil {
			return err
		}
		metrics.BackgroundSummaries.Inc()
		return nil
	})
}

// Recall runs a Tier-2 query. A match replaces the active episodic
// slot; no match leaves the prior slot in place.
func (e *Engine) Recall(ctx context.Context, query string) (*types.ContextSlot, error) {
	slot, err := e.episodic.Recall(ctx, query)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		e.episodicSlot = slot
	}
	return slot.Clone(), nil
}

// VaultSearch runs a Tier-3 query through the gatekeeper. An accepted
// match replaces the active semantic slot; a rejection or no match
// leaves the prior slot in place.
func (e *Engine) VaultSearch(ctx context.Context, query string) (*types.ContextSlot, error) {
	slot, err := e.semantic.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if slot != nil {
		e.semanticSlot = slot
	}
	return slot.Clone(), nil
}

// ClearSlots deactivates both external context slots, restoring the
// budget reserve on the next turn.
func (e *Engine) ClearSlots() {
	e.episodicSlot = nil
	e.semanticSlot = nil
}

// AssembleContext returns the current merged context block, as the next
// inference call would see it.
func (e *Engine) AssembleContext() string {
	return orchestrator.Merge(e.episodicSlot.Clone(), e.semanticSlot.Clone())
}

// Close runs the session-end sequence: wait for detached background
// tasks, archive the remaining conversation, then consolidate the
// ledger. Each step is best-effort; a failure is reported and the
// sequence continues.
func (e *Engine) Close(ctx context.Context) error {
	e.runner.Wait()

	if e.buffer.Len() > 0 {
		if err := e.archiver.SaveSummary(ctx, e.buffer.Format()); err != nil {
			e.logger.Error("session-end archival failed", zap.Error(err))
		}
	}

	archived, err := e.archiver.Consolidate(ctx)
	if err != nil {
		e.logger.Error("consolidation failed", zap.Error(err))
		return err
	}
	if archived {
		e.logger.Info("ledger consolidated at session end")
	}
	return nil
}

// Describe returns a short status line for the REPL.
func (e *Engine) Describe() string {
	var parts []string
	if e.episodicSlot != nil {
		parts = append(parts, "tier2:"+e.episodicSlot.Source)
	}
	if e.semanticSlot != nil {
		parts = append(parts, "tier3:"+e.semanticSlot.Source)
	}
	if len(parts) == 0 {
		return "no external context active"
	}
	return strings.Join(parts, ", ")
}
