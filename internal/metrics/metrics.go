// Package metrics exposes process-level counters for the memory engine.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TurnsProcessed counts completed user turns.
	TurnsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "turns_processed_total",
		Help:      "Number of user turns fully processed.",
	})

	// TurnsFailed counts turns abandoned at the inference boundary.
	TurnsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "turns_failed_total",
		Help:      "Number of turns abandoned due to collaborator failure.",
	})

	// PrunesTriggered counts Tier-1 prunes dispatched to background archival.
	PrunesTriggered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "prunes_triggered_total",
		Help:      "Number of Tier-1 prune operations.",
	})

	// BackgroundSummaries counts completed background archival tasks.
	BackgroundSummaries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "background_summaries_total",
		Help:      "Number of background summarize-and-archive tasks completed.",
	})

	// Consolidations counts batch archival events in the episodic ledger.
	Consolidations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "consolidations_total",
		Help:      "Number of episodic ledger consolidation events.",
	})

	// GatekeeperRejections counts vault matches rejected by the
	// distance threshold.
	GatekeeperRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nexuscore",
		Name:      "gatekeeper_rejections_total",
		Help:      "Number of semantic matches rejected as low-confidence.",
	})
)

// Handler returns the HTTP handler serving the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
