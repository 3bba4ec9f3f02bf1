// Package semantic implements the Tier-3 vault: a vector-similarity
// document store, its query-expansion step, and the gatekeeper search
// adapter that produces prompt context slots.
package semantic

import "context"

// Metadata carries the ingestion-time facts a search result needs for
// conflict orchestration.
type Metadata struct {
	// Timestamp is ingestion time in seconds since the Unix epoch.
	// Zero means the document carries no temporal claim.
	Timestamp float64 `json:"timestamp"`

	// SourceName is the originating document name.
	SourceName string `json:"source_name"`
}

// Document is one ingested vault entry.
type Document struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float64 `json:"embedding,omitempty"`
	Meta      Metadata  `json:"meta"`
}

// SearchResult is a distance-scored match. Distance follows the cosine
// distance convention: 0 = identical, larger = less similar.
type SearchResult struct {
	Document Document `json:"document"`
	Distance float64  `json:"distance"`
}

// Store is the Tier-3 vault boundary.
type Store interface {
	// AddDocuments ingests documents, embedding any that arrive
	// without a vector.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns the topK closest documents to the query text,
	// ranked by ascending distance.
	Search(ctx context.Context, query string, topK int) ([]SearchResult, error)

	// HasDocument reports whether a document with the given ID exists.
	HasDocument(ctx context.Context, id string) (bool, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)
}
