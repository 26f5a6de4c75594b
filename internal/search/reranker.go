package search

import (
	"context"
	"sort"
)

// maxRerankChars is the pair-text truncation applied before scoring, matching
// the reference pipeline's text[:512] cross-encoder input.
const maxRerankChars = 512

// RerankResult represents a single reranked result
type RerankResult struct {
	// Index is the original position in the input documents slice
	Index int
	// Score is the relevance score (0.0 to 1.0)
	Score float64
	// Document is the original document content
	Document string
}

// Reranker reranks search results using a cross-encoder model.
// Cross-encoders jointly encode query-document pairs for more accurate
// relevance scoring than bi-encoders, but at higher computational cost.
type Reranker interface {
	// Rerank scores and reorders documents by relevance to the query.
	// Returns results sorted by score descending.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - query: The search query
	//   - documents: Documents to rerank (max ~50-100 for reasonable latency)
	//   - topK: Optional limit on results (0 = return all)
	//
	// Returns:
	//   - Results sorted by score descending
	//   - Error if reranking fails
	Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error)

	// Available checks if the reranker service is available
	Available(ctx context.Context) bool

	// Close releases resources
	Close() error
}

// NoOpReranker is a reranker that returns results in original order.
// Used when reranking is disabled or unavailable.
type NoOpReranker struct{}

// Rerank returns documents in original order with decreasing scores.
func (n *NoOpReranker) Rerank(_ context.Context, _ string, documents []string, topK int) ([]RerankResult, error) {
	results := make([]RerankResult, len(documents))
	for i, doc := range documents {
		// Assign decreasing scores to maintain original order
		results[i] = RerankResult{
			Index:    i,
			Score:    1.0 - float64(i)*0.01, // 1.0, 0.99, 0.98, ...
			Document: doc,
		}
	}

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}

	return results, nil
}

// Available always returns false for NoOpReranker, so the engine never
// mistakes it for a real cross-encoder and never attaches its synthetic
// scores to a result.
func (n *NoOpReranker) Available(_ context.Context) bool {
	return false
}

// Close is a no-op for NoOpReranker.
func (n *NoOpReranker) Close() error {
	return nil
}

// Verify interface implementation at compile time
var _ Reranker = (*NoOpReranker)(nil)

// ScoreFunc scores a single (query, text) pair, treated as a pure function
// backed by an external cross-encoder model runtime.
type ScoreFunc func(ctx context.Context, query, text string) (float64, error)

// CrossEncoderReranker scores each document against the query with a
// jointly-encoded cross-encoder pair score, obtained through a ScoreFunc
// supplied by the embedding/reranker model runtime.
type CrossEncoderReranker struct {
	score     ScoreFunc
	available func(ctx context.Context) bool
}

// NewCrossEncoderReranker builds a reranker backed by score. availability
// defaults to always-true if nil.
func NewCrossEncoderReranker(score ScoreFunc, availability func(ctx context.Context) bool) *CrossEncoderReranker {
	if availability == nil {
		availability = func(context.Context) bool { return true }
	}
	return &CrossEncoderReranker{score: score, available: availability}
}

// Rerank scores every document against query and returns them sorted by
// score descending, truncated to topK pairs built as (query, text[:512]).
func (r *CrossEncoderReranker) Rerank(ctx context.Context, query string, documents []string, topK int) ([]RerankResult, error) {
	results := make([]RerankResult, len(documents))
	for i, doc := range documents {
		text := doc
		if len(text) > maxRerankChars {
			text = text[:maxRerankChars]
		}
		s, err := r.score(ctx, query, text)
		if err != nil {
			return nil, err
		}
		results[i] = RerankResult{Index: i, Score: s, Document: doc}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

// Available reports whether the backing cross-encoder model is reachable.
func (r *CrossEncoderReranker) Available(ctx context.Context) bool {
	return r.available(ctx)
}

// Close is a no-op; the model runtime's lifecycle is managed separately.
func (r *CrossEncoderReranker) Close() error {
	return nil
}

var _ Reranker = (*CrossEncoderReranker)(nil)
