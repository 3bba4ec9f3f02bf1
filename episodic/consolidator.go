package episodic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/inference"
	"github.com/BaSui01/nexuscore/internal/metrics"
)

// ConsolidationThreshold is the unarchived-entry count that triggers a
// batch archive of the ledger.
const ConsolidationThreshold = 7

// summarySystem is the fixed system-role instruction for session
// summaries; the conversational persona is deliberately not used here.
const summarySystem = "You are a summarization subsystem. Produce a single factual paragraph " +
	"summarizing the conversation below. State only what was said. No commentary, no preamble."

// Consolidator writes session summaries into the ledger and archives
// the backlog once the accumulation threshold is reached.
type Consolidator struct {
	store  Store
	svc    inference.Service
	logger *zap.Logger
	now    func() time.Time
}

// NewConsolidator creates a Consolidator.
func NewConsolidator(store Store, svc inference.Service, logger *zap.Logger) *Consolidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consolidator{store: store, svc: svc, logger: logger, now: time.Now}
}

// SaveSummary summarizes historyText through the inference service and
// persists the result with content-hash deduplication. An empty history
// is a no-op. Both background archival and session-end archival use
// this path.
func (c *Consolidator) SaveSummary(ctx context.Context, historyText string) error {
	if historyText == "" {
		return nil
	}

	summary, err := c.svc.Generate(ctx, summarySystem, "", historyText)
	if err != nil {
		return err
	}
	if summary == "" {
		c.logger.Warn("empty summary from inference service, nothing persisted")
		return nil
	}

	hash := ContentHash(summary)
	ts := float64(c.now().UnixNano()) / 1e9
	inserted, err := c.store.Insert(ctx, summary, ts, hash)
	if err != nil {
		return err
	}
	if !inserted {
		c.logger.Info("summary already in ledger", zap.String("hash", hash))
		return nil
	}

	c.logger.Info("session summary persisted",
		zap.Float64("timestamp", ts),
		zap.Int("summary_len", len(summary)))
	return nil
}

// Consolidate archives the whole unarchived backlog once it reaches
// ConsolidationThreshold entries. Below the threshold it is a no-op.
// Archived entries never un-archive.
func (c *Consolidator) Consolidate(ctx context.Context) (archived bool, err error) {
	count, err := c.store.CountUnarchived(ctx)
	if err != nil {
		return false, err
	}
	if count < ConsolidationThreshold {
		return false, nil
	}

	if err := c.store.ArchiveAll(ctx); err != nil {
		return false, err
	}
	metrics.Consolidations.Inc()
	c.logger.Info("ledger consolidated", zap.Int64("archived_entries", count))
	return true, nil
}

// ContentHash returns the hex sha256 of a summary body, the ledger's
// deduplication key.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
