package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sentinel-rag/sentinel/internal/bm25"
	"github.com/sentinel-rag/sentinel/internal/vectorstore"
)

type stubEmbedder struct {
	vector []float32
}

func (s *stubEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func seedEngine(t *testing.T) (*Engine, *vectorstore.Store, *bm25.Store) {
	t.Helper()
	vecs := vectorstore.NewStore(3)
	sparse := bm25.NewStore()

	col := vecs.GetOrCreate("networks")
	require.NoError(t, col.Add(
		[]string{"doc1_0", "doc1_1"},
		[][]float32{{1, 0, 0}, {0, 1, 0}},
		[]string{"packet routing over tcp", "unrelated passage about cooking"},
		[]map[string]string{
			{"document_id": "doc1", "filename": "net.md", "importance_score": "1.2"},
			{"document_id": "doc1", "filename": "net.md", "importance_score": "1.0"},
		},
	))

	idx, _ := sparse.GetOrCreate("networks")
	idx.AddDocument("doc1_0", "packet routing over tcp", map[string]string{"document_id": "doc1", "filename": "net.md", "importance_score": "1.2"})
	idx.AddDocument("doc1_1", "unrelated passage about cooking", map[string]string{"document_id": "doc1", "filename": "net.md", "importance_score": "1.0"})

	embedder := &stubEmbedder{vector: []float32{1, 0, 0}}
	engine := NewEngine(vecs, sparse, embedder)
	return engine, vecs, sparse
}

func TestSearchEmptySubjectReturnsMethodNone(t *testing.T) {
	engine, _, _ := seedEngine(t)
	resp, err := engine.Search(context.Background(), "nonexistent", "routing", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, MethodNone, resp.SearchMethod)
	assert.Empty(t, resp.Results)
}

func TestSearchReturnsFusedResultsRankedFirstHit(t *testing.T) {
	engine, _, _ := seedEngine(t)
	resp, err := engine.Search(context.Background(), "networks", "packet routing", DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "doc1_0", resp.Results[0].ChunkID)
	assert.Equal(t, MethodHybrid, resp.SearchMethod)
}

func TestSearchAppliesRerankingWhenConfigured(t *testing.T) {
	engine, _, _ := seedEngine(t)
	engine.reranker = NewCrossEncoderReranker(
		func(_ context.Context, _ string, text string) (float64, error) {
			if text == "unrelated passage about cooking" {
				return 0.99, nil
			}
			return 0.1, nil
		},
		nil,
	)

	resp, err := engine.Search(context.Background(), "networks", "packet routing", DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, MethodHybridRerank, resp.SearchMethod)
	assert.Equal(t, "doc1_1", resp.Results[0].ChunkID)
	assert.True(t, resp.Results[0].HasRerankScore)
}

func TestSearchRerankFailureFallsBackToHybrid(t *testing.T) {
	engine, _, _ := seedEngine(t)
	engine.reranker = NewCrossEncoderReranker(
		func(context.Context, string, string) (float64, error) { return 0, assert.AnError },
		nil,
	)

	resp, err := engine.Search(context.Background(), "networks", "packet routing", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, MethodHybrid, resp.SearchMethod)
}

func TestSearchWithoutExpansionUsesRawQuery(t *testing.T) {
	engine, _, _ := seedEngine(t)
	opts := DefaultOptions()
	opts.UseExpansion = false
	resp, err := engine.Search(context.Background(), "networks", "packet routing", opts)
	require.NoError(t, err)
	assert.Equal(t, "packet routing", resp.ExpandedQuery)
}

func TestSearchRespectsLimit(t *testing.T) {
	engine, _, _ := seedEngine(t)
	opts := DefaultOptions()
	opts.Limit = 1
	resp, err := engine.Search(context.Background(), "networks", "packet routing", opts)
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}
