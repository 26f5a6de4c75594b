// Package search implements the hybrid retrieval pipeline: query expansion,
// dense and sparse candidate search (one after the other, not concurrently),
// Reciprocal Rank Fusion, and optional cross-encoder reranking.
package search

import "context"

// SearchMethod records which stages of the pipeline produced a result set.
type SearchMethod string

const (
	// MethodNone is returned when the subject's collection is empty.
	MethodNone SearchMethod = "none"
	// MethodHybrid is RRF-fused dense+sparse candidates, unreranked.
	MethodHybrid SearchMethod = "hybrid"
	// MethodHybridRerank is MethodHybrid with a cross-encoder pass applied.
	MethodHybridRerank SearchMethod = "hybrid+rerank"
)

// Options configures one Search call.
type Options struct {
	// Limit is the maximum number of results to return.
	Limit int

	// UseExpansion runs the query through the domain synonym/subject-context
	// expander before searching. Defaults to true.
	UseExpansion bool

	// UseReranking applies the cross-encoder pass when one is available and
	// more than one candidate survives fusion. Defaults to true.
	UseReranking bool
}

// Result is one ranked hit returned by Search.
type Result struct {
	ChunkID      string
	Text         string
	Page         int
	Filename     string
	Header       string
	ParentHeader string
	ChunkType    string
	DocumentID   string

	VectorScore     float64
	BM25Score       float64
	VectorRank      int
	BM25Rank        int
	RRFScore        float64
	ImportanceScore float64

	// Score is rrf_score * importance_score, rounded to 4 decimals. Before
	// returning, Search overwrites it with FinalScore(), rounded to 4
	// decimals, so a reranked result carries its rerank score here.
	Score float64

	// RerankScore is the cross-encoder's pair score. Zero-value RerankScore
	// with HasRerankScore false means no rerank was applied to this result.
	RerankScore    float64
	HasRerankScore bool
}

// FinalScore returns RerankScore if present, else Score, per the pipeline's
// final-score rule.
func (r Result) FinalScore() float64 {
	if r.HasRerankScore {
		return r.RerankScore
	}
	return r.Score
}

// Response is the full outcome of one Search call.
type Response struct {
	Query        string
	ExpandedQuery string
	SearchMethod SearchMethod
	Results      []Result
}

// Embedder turns a batch of texts into unit-normalized dense vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}
