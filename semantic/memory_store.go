package semantic

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/BaSui01/nexuscore/types"
)

// InMemoryVectorStore keeps documents and embeddings in process memory.
// Suitable for a single-user session vault and for tests.
type InMemoryVectorStore struct {
	embedder Embedder
	docs     []Document
	byID     map[string]int
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewInMemoryVectorStore creates an empty store over the given embedder.
func NewInMemoryVectorStore(embedder Embedder, logger *zap.Logger) *InMemoryVectorStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryVectorStore{
		embedder: embedder,
		byID:     make(map[string]int),
		logger:   logger,
	}
}

// AddDocuments ingests documents, embedding any without a vector.
// A document whose ID is already present is skipped.
func (s *InMemoryVectorStore) AddDocuments(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, doc := range docs {
		if _, exists := s.byID[doc.ID]; exists {
			continue
		}
		if doc.Embedding == nil {
			emb, err := s.embedder.Embed(ctx, doc.Content)
			if err != nil {
				return types.NewError(types.ErrStoreUnavailable, "embed document "+doc.ID).WithCause(err)
			}
			doc.Embedding = emb
		}
		s.byID[doc.ID] = len(s.docs)
		s.docs = append(s.docs, doc)
		added++
	}

	s.logger.Info("documents added to vault",
		zap.Int("count", added),
		zap.Int("total", len(s.docs)))
	return nil
}

// Search embeds the query and returns the topK closest documents by
// cosine distance, ascending.
func (s *InMemoryVectorStore) Search(ctx context.Context, query string, topK int) ([]SearchResult, error) {
	queryEmb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, types.NewError(types.ErrStoreUnavailable, "embed query").WithCause(err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return []SearchResult{}, nil
	}

	results := make([]SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, SearchResult{
			Document: doc,
			Distance: CosineDistance(queryEmb, doc.Embedding),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// HasDocument reports whether id is present.
func (s *InMemoryVectorStore) HasDocument(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byID[id]
	return ok, nil
}

// Count returns the number of stored documents.
func (s *InMemoryVectorStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// CosineDistance returns 1 minus the cosine similarity of a and b.
// Mismatched or zero-magnitude vectors yield the maximum distance.
func CosineDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
