// Package inference defines the generation boundary and its local
// Ollama-backed implementation.
package inference

import "context"

// Service is the inference boundary. Calls are blocking; a failure is
// fatal to the current turn only and is never retried automatically.
type Service interface {
	// Generate produces a reply from a system/persona string, an
	// assembled context block (may be empty), and the user text.
	Generate(ctx context.Context, system, contextBlock, prompt string) (string, error)

	// Warmup force-loads the model so the first real turn is not
	// penalized by a cold start.
	Warmup(ctx context.Context) error
}
