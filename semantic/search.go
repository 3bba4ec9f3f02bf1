package semantic

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/internal/metrics"
	"github.com/BaSui01/nexuscore/types"
)

// GatekeeperThreshold is the maximum cosine distance a vault match may
// have and still be injected as context. Matches above it are reported
// as "no data", not as errors, so low-confidence text is never
// presented to the generator as ground truth.
const GatekeeperThreshold = 0.5

// SearchAdapter runs gated single-best-match searches against the vault
// and shapes the result into a Tier-3 context slot.
type SearchAdapter struct {
	store    Store
	expander *Expander
	logger   *zap.Logger
}

// NewSearchAdapter creates a SearchAdapter. A nil expander selects the
// built-in lexicon.
func NewSearchAdapter(store Store, expander *Expander, logger *zap.Logger) *SearchAdapter {
	if expander == nil {
		expander = NewExpander(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchAdapter{store: store, expander: expander, logger: logger}
}

// Search expands the query, asks the vault for its single best match,
// and applies the gatekeeper. An empty query, an empty vault, or a
// rejected match all yield (nil, nil).
func (a *SearchAdapter) Search(ctx context.Context, query string) (*types.ContextSlot, error) {
	if query == "" {
		return nil, nil
	}

	expanded := a.expander.Expand(query)
	results, err := a.store.Search(ctx, expanded, 1)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		a.logger.Debug("vault is empty or returned no candidates", zap.String("query", query))
		return nil, nil
	}

	best := results[0]
	if best.Distance > GatekeeperThreshold {
		metrics.GatekeeperRejections.Inc()
		a.logger.Info("gatekeeper: best vault match too weak, ignoring",
			zap.Float64("distance", best.Distance),
			zap.Float64("threshold", GatekeeperThreshold),
			zap.String("source", best.Document.Meta.SourceName))
		return nil, nil
	}

	source := best.Document.Meta.SourceName
	if source == "" {
		source = "Unknown"
	}
	distance := best.Distance

	return &types.ContextSlot{
		Content:   best.Document.Content,
		Timestamp: best.Document.Meta.Timestamp, // zero when the document has none
		Source:    fmt.Sprintf("Tier 3 Vault (%s)", source),
		Distance:  &distance,
	}, nil
}
