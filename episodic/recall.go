package episodic

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/budget"
	"github.com/BaSui01/nexuscore/types"
)

// RecallTokenCap is the hard ceiling on an injected episodic block.
// It is independent of the elastic Tier-1 budget.
const RecallTokenCap = 800

// SourceLabel tags episodic slots in assembled prompts.
const SourceLabel = "Tier 2 Ledger"

const recallHeader = "--- RELEVANT PAST CONTEXT ---"

// RecallAdapter formats ledger search results into a Tier-2 context slot.
type RecallAdapter struct {
	store  Store
	est    *budget.Estimator
	logger *zap.Logger
}

// NewRecallAdapter creates a RecallAdapter.
func NewRecallAdapter(store Store, est *budget.Estimator, logger *zap.Logger) *RecallAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecallAdapter{store: store, est: est, logger: logger}
}

// Recall searches the ledger and returns a slot holding the matched
// entries, newest first, capped at RecallTokenCap estimated tokens.
// An empty query or zero matches yields (nil, nil).
func (a *RecallAdapter) Recall(ctx context.Context, query string) (*types.ContextSlot, error) {
	if query == "" {
		return nil, nil
	}

	entries, err := a.store.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		a.logger.Debug("no episodic matches", zap.String("query", query))
		return nil, nil
	}

	block := recallHeader
	included := 0
	for _, e := range entries {
		line := fmt.Sprintf("\n[%s] %s", formatTimestamp(e.Timestamp), e.Content)
		if a.est.Estimate(block+line) > RecallTokenCap {
			break
		}
		block += line
		included++
	}

	a.logger.Info("episodic recall",
		zap.String("query", query),
		zap.Int("matched", len(entries)),
		zap.Int("included", included))

	return &types.ContextSlot{
		Content:   block,
		Timestamp: entries[0].Timestamp, // newest match: results are recency-ordered
		Source:    SourceLabel,
	}, nil
}

// formatTimestamp renders an epoch-seconds value for prompt annotation.
func formatTimestamp(ts float64) string {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec).Format("2006-01-02 15:04:05")
}
