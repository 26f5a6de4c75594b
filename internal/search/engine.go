package search

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/sentinel-rag/sentinel/internal/bm25"
	"github.com/sentinel-rag/sentinel/internal/telemetry"
	"github.com/sentinel-rag/sentinel/internal/vectorstore"
)

// Engine orchestrates the hybrid retrieval pipeline: expansion, dense and
// sparse candidate search, RRF fusion, and optional cross-encoder
// reranking. The dense search runs first and the sparse search after it,
// on the calling goroutine; the two are not run concurrently. It holds no subject-specific state of its own; subject indices
// live in the shared bm25.Store and vectorstore.Store registries.
type Engine struct {
	vectors  *vectorstore.Store
	sparse   *bm25.Store
	embedder Embedder
	expander *QueryExpander
	reranker Reranker
	metrics  *telemetry.QueryMetrics
	log      *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithExpander sets the query expander used when Options.UseExpansion is true.
func WithExpander(e *QueryExpander) EngineOption {
	return func(eng *Engine) { eng.expander = e }
}

// WithReranker sets the cross-encoder reranker used when
// Options.UseReranking is true.
func WithReranker(r Reranker) EngineOption {
	return func(eng *Engine) { eng.reranker = r }
}

// WithQueryMetrics attaches a telemetry collector; every Search call records
// one QueryEvent. Telemetry never influences ranking or returned results.
func WithQueryMetrics(m *telemetry.QueryMetrics) EngineOption {
	return func(eng *Engine) { eng.metrics = m }
}

// WithLogger overrides the engine's logger; defaults to slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(eng *Engine) { eng.log = l }
}

// NewEngine builds an Engine over the given subject registries and embedder.
func NewEngine(vectors *vectorstore.Store, sparse *bm25.Store, embedder Embedder, opts ...EngineOption) *Engine {
	e := &Engine{
		vectors:  vectors,
		sparse:   sparse,
		embedder: embedder,
		expander: NewQueryExpander(),
		reranker: &NoOpReranker{},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultOptions returns Options with expansion and reranking enabled and a
// limit of 10.
func DefaultOptions() Options {
	return Options{Limit: 10, UseExpansion: true, UseReranking: true}
}

// Search executes the hybrid retrieval pipeline for subject and returns the
// ranked results.
func (e *Engine) Search(ctx context.Context, subject, query string, opts Options) (*Response, error) {
	start := time.Now()
	if opts.Limit <= 0 {
		opts.Limit = DefaultOptions().Limit
	}

	resp, err := e.search(ctx, subject, query, opts)
	if e.metrics != nil && resp != nil {
		e.metrics.Record(telemetry.QueryEvent{
			Query:       query,
			ResultCount: len(resp.Results),
			Latency:     time.Since(start),
			Timestamp:   time.Now(),
		})
	}
	return resp, err
}

func (e *Engine) search(ctx context.Context, subject, query string, opts Options) (*Response, error) {
	vecCollection, haveVec := e.vectors.Get(subject)
	bm25Index, bm25Lock, haveBM25 := e.sparse.Get(subject)

	n := 0
	if haveVec {
		n = vecCollection.Count()
	}
	if haveBM25 {
		bm25Lock.RLock()
		if bm25Index.DocCount > n {
			n = bm25Index.DocCount
		}
		bm25Lock.RUnlock()
	}
	if n == 0 {
		return &Response{Query: query, ExpandedQuery: query, SearchMethod: MethodNone}, nil
	}

	expanded := query
	if opts.UseExpansion {
		expanded = e.expander.Expand(query, subject)
	}

	candidatePool := CandidatePoolSize(opts.Limit, n)

	var vectorRanked, sparseRanked []RankedID
	var vecByID map[string]vectorstore.Match
	var bm25ByID map[string]bm25.Result

	if haveVec && e.embedder != nil {
		vecs, err := e.embedder.EmbedBatch(ctx, []string{expanded})
		if err != nil {
			return nil, err
		}
		if len(vecs) > 0 {
			matches, err := vecCollection.Query(vecs[0], candidatePool)
			if err != nil {
				return nil, err
			}
			vecByID = make(map[string]vectorstore.Match, len(matches))
			for _, m := range matches {
				vectorRanked = append(vectorRanked, RankedID{ID: m.ID, Score: float64(m.Similarity)})
				vecByID[m.ID] = m
			}
		}
	}

	if haveBM25 {
		bm25Lock.RLock()
		results := bm25Index.Search(expanded, candidatePool)
		bm25Lock.RUnlock()
		bm25ByID = make(map[string]bm25.Result, len(results))
		for _, r := range results {
			sparseRanked = append(sparseRanked, RankedID{ID: r.DocID, Score: r.Score})
			bm25ByID[r.DocID] = r
		}
	}

	fused := FuseRRF(vectorRanked, sparseRanked, candidatePool)

	results := make([]Result, 0, len(fused))
	for _, c := range fused {
		var text, filename, header, parentHeader, chunkType, documentID string
		var page int
		var importance float64 = 1.0

		if m, ok := vecByID[c.ID]; ok {
			text = m.Document
			filename = m.Metadata["filename"]
			header = m.Metadata["header"]
			parentHeader = m.Metadata["parent_header"]
			chunkType = m.Metadata["chunk_type"]
			documentID = m.Metadata["document_id"]
			page = parsePage(m.Metadata["page"])
			if v, ok := m.Metadata["importance_score"]; ok {
				importance = parseImportance(v)
			}
		} else if r, ok := bm25ByID[c.ID]; ok {
			text = r.Text
			if r.Metadata != nil {
				filename = r.Metadata["filename"]
				header = r.Metadata["header"]
				parentHeader = r.Metadata["parent_header"]
				chunkType = r.Metadata["chunk_type"]
				documentID = r.Metadata["document_id"]
				page = parsePage(r.Metadata["page"])
				if v, ok := r.Metadata["importance_score"]; ok {
					importance = parseImportance(v)
				}
			}
		}

		results = append(results, Result{
			ChunkID:         c.ID,
			Text:            text,
			Page:            page,
			Filename:        filename,
			Header:          header,
			ParentHeader:    parentHeader,
			ChunkType:       chunkType,
			DocumentID:      documentID,
			VectorScore:     c.VectorScore,
			BM25Score:       c.BM25Score,
			VectorRank:      c.VectorRank,
			BM25Rank:        c.BM25Rank,
			RRFScore:        c.RRFScore,
			ImportanceScore: importance,
			Score:           round4(c.RRFScore * importance),
		})
	}

	method := MethodHybrid
	if opts.UseReranking && e.reranker != nil && e.reranker.Available(ctx) && len(results) > 1 {
		reranked, err := e.rerank(ctx, query, results, opts.Limit)
		if err != nil {
			e.log.Warn("rerank failed, falling back to fused order", "error", err)
		} else {
			results = reranked
			method = MethodHybridRerank
		}
	}

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	for i := range results {
		results[i].Score = round4(results[i].FinalScore())
	}

	return &Response{Query: query, ExpandedQuery: expanded, SearchMethod: method, Results: results}, nil
}

func (e *Engine) rerank(ctx context.Context, query string, results []Result, limit int) ([]Result, error) {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	ranked, err := e.reranker.Rerank(ctx, query, texts, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Result, len(ranked))
	for i, rr := range ranked {
		out[i] = results[rr.Index]
		out[i].RerankScore = rr.Score
		out[i].HasRerankScore = true
	}
	return out, nil
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

func parseImportance(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 1.0
	}
	return f
}

func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
