// Package core is the facade the host talks to: it translates the four
// external operations — process_document, search, delete_document,
// list_documents — into calls against the processor and search engine, and
// shapes their results into the exact structures the host expects.
package core

import (
	"context"
	"log/slog"

	"github.com/sentinel-rag/sentinel/internal/bm25"
	"github.com/sentinel-rag/sentinel/internal/chunk"
	"github.com/sentinel-rag/sentinel/internal/config"
	sentinelerrors "github.com/sentinel-rag/sentinel/internal/errors"
	"github.com/sentinel-rag/sentinel/internal/processor"
	"github.com/sentinel-rag/sentinel/internal/search"
	"github.com/sentinel-rag/sentinel/internal/telemetry"
	"github.com/sentinel-rag/sentinel/internal/vectorstore"
)

// MaxSearchLimit is the upper bound the search operation accepts. It is
// separate from config.MaxResultsPerSearch, which Search does not read; the
// default applied when a caller omits limit is search.DefaultOptions().Limit.
const MaxSearchLimit = 20

// Embedder is the embedding contract a Context requires, re-exported so
// callers constructing one don't need to import internal/processor directly.
type Embedder = processor.Embedder

// Context is the single owner of a running core's state: the subject
// registries, the processor that keeps them in lock-step, and the search
// engine built over them. It replaces the scattered globals and per-subject
// maps a first-draft port would otherwise carry forward.
type Context struct {
	cfg       *config.Config
	vectors   *vectorstore.Store
	sparse    *bm25.Store
	processor *processor.Processor
	engine    *search.Engine
	metrics   *telemetry.QueryMetrics
	log       *slog.Logger
}

// New constructs a Context. embedder is required; reranker may be nil, in
// which case reranking is a no-op regardless of Options.UseReranking. If
// cfg.PersistDirectory holds a prior snapshot, it is loaded into the dense
// store before the sparse index is rebuilt from it.
func New(cfg *config.Config, embedder processor.Embedder, reranker search.Reranker, log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}

	vectors := vectorstore.NewStore(cfg.EmbeddingDimension)
	sparse := bm25.NewStore()
	chunker := chunk.NewSemanticChunker()
	chunker.ChunkSize = cfg.ChunkSize
	chunker.ChunkOverlap = cfg.ChunkOverlap
	if cfg.MinChunkSize > 0 {
		chunker.MinChunkSize = cfg.MinChunkSize
	}

	proc := processor.NewProcessor(vectors, sparse, chunker, embedder)

	metrics := telemetry.NewQueryMetrics(nil)

	engineOpts := []search.EngineOption{search.WithLogger(log), search.WithQueryMetrics(metrics)}
	if reranker != nil {
		engineOpts = append(engineOpts, search.WithReranker(reranker))
	}
	engine := search.NewEngine(vectors, sparse, embedder, engineOpts...)

	if cfg.PersistDirectory != "" {
		if err := vectors.LoadAll(cfg.PersistDirectory); err != nil {
			log.Warn("failed to load persisted state", "error", err, "dir", cfg.PersistDirectory)
		}
	}
	proc.RestoreSubjects(vectors.Subjects())

	RebuildBM25FromVectorStore(vectors, sparse)

	return &Context{cfg: cfg, vectors: vectors, sparse: sparse, processor: proc, engine: engine, metrics: metrics, log: log}
}

// Save persists the dense store's current state to cfg.PersistDirectory. It
// is a no-op if no persist directory was configured.
func (c *Context) Save() error {
	if c.cfg.PersistDirectory == "" {
		return nil
	}
	return c.vectors.SaveAll(c.cfg.PersistDirectory)
}

// Stats returns a snapshot of the query telemetry collected across every
// Search call so far.
func (c *Context) Stats() *telemetry.QueryMetricsSnapshot {
	return c.metrics.Snapshot()
}

// Close flushes and releases the Context's telemetry collector.
func (c *Context) Close() error {
	return c.metrics.Close()
}

// RebuildBM25FromVectorStore re-exposes processor.RebuildBM25FromVectorStore
// so callers constructing a Context over a dense store restored from disk
// can trigger the same startup reconciliation New performs automatically.
func RebuildBM25FromVectorStore(vectors *vectorstore.Store, sparse *bm25.Store) {
	processor.RebuildBM25FromVectorStore(vectors, sparse)
}

// ProcessDocumentResult is process_document's exact output shape.
type ProcessDocumentResult struct {
	PageCount      int `json:"page_count"`
	ChunkCount     int `json:"chunk_count"`
	TotalChars     int `json:"total_chars"`
	HeadersFound   int `json:"headers_found"`
	CodeBlocksFound int `json:"code_blocks_found"`
	TablesFound    int `json:"tables_found"`
}

// ProcessDocument extracts, chunks, embeds, and indexes content under
// subjectID, atomically across the dense and sparse stores.
func (c *Context) ProcessDocument(ctx context.Context, content []byte, filename, documentID, subjectID string) (ProcessDocumentResult, error) {
	if subjectID == "" {
		return ProcessDocumentResult{}, sentinelerrors.Validation(sentinelerrors.ErrCodeUnknownSubject, "subject_id must not be empty", nil)
	}
	if len(content) == 0 {
		return ProcessDocumentResult{}, sentinelerrors.Validation(sentinelerrors.ErrCodeEmptyDocument, "content must not be empty", nil)
	}

	stats, err := c.processor.ProcessDocument(ctx, content, filename, documentID, subjectID)
	if err != nil {
		return ProcessDocumentResult{}, err
	}

	if err := c.Save(); err != nil {
		c.log.Warn("failed to persist state after processing document", "error", err, "document_id", documentID)
	}

	return ProcessDocumentResult{
		PageCount:       stats.PageCount,
		ChunkCount:      stats.ChunkCount,
		TotalChars:      stats.TotalChars,
		HeadersFound:    stats.HeaderCount,
		CodeBlocksFound: stats.CodeBlockCount,
		TablesFound:     stats.TableCount,
	}, nil
}

// Match is one entry of SearchResult.Matches.
type Match struct {
	Text        string  `json:"text"`
	Page        int     `json:"page"`
	Filename    string  `json:"filename"`
	Score       float64 `json:"score"`
	Header      string  `json:"header,omitempty"`
	ChunkType   string  `json:"chunk_type,omitempty"`
	VectorScore float64 `json:"vector_score,omitempty"`
	RRFScore    float64 `json:"rrf_score,omitempty"`
}

// SearchResult is search's exact output shape.
type SearchResult struct {
	Matches        []Match `json:"matches"`
	TotalSearched  int     `json:"total_searched"`
	SearchMethod   string  `json:"search_method"`
	QueryExpanded  bool    `json:"query_expanded"`
}

// Search runs the hybrid retrieval pipeline for subjectID. A negative limit
// or one above MaxSearchLimit is rejected with a validation error; zero falls
// back to the engine default.
func (c *Context) Search(ctx context.Context, subjectID, query string, limit int, useExpansion, useReranking bool) (SearchResult, error) {
	if query == "" {
		return SearchResult{}, sentinelerrors.Validation(sentinelerrors.ErrCodeEmptyQuery, "query must not be empty", nil)
	}
	if limit < 0 || limit > MaxSearchLimit {
		return SearchResult{}, sentinelerrors.Validation(sentinelerrors.ErrCodeInvalidLimit, "limit must be between 1 and 20", nil)
	}

	opts := search.DefaultOptions()
	opts.UseExpansion = useExpansion
	opts.UseReranking = useReranking
	if limit > 0 {
		opts.Limit = limit
	}

	resp, err := c.engine.Search(ctx, subjectID, query, opts)
	if err != nil {
		return SearchResult{}, err
	}

	matches := make([]Match, len(resp.Results))
	for i, r := range resp.Results {
		matches[i] = Match{
			Text:        r.Text,
			Page:        r.Page,
			Filename:    r.Filename,
			Score:       r.FinalScore(),
			Header:      r.Header,
			ChunkType:   r.ChunkType,
			VectorScore: r.VectorScore,
			RRFScore:    r.RRFScore,
		}
	}

	totalSearched := 0
	if col, ok := c.vectors.Get(subjectID); ok {
		totalSearched = col.Count()
	}

	return SearchResult{
		Matches:       matches,
		TotalSearched: totalSearched,
		SearchMethod:  string(resp.SearchMethod),
		QueryExpanded: resp.ExpandedQuery != resp.Query,
	}, nil
}

// DeleteResult is delete_document's exact output shape.
type DeleteResult struct {
	DeletedIDs int `json:"deleted_ids"`
}

// DeleteDocument removes every chunk of documentID from every subject it
// appears in and reports how many ids were removed.
func (c *Context) DeleteDocument(documentID string) DeleteResult {
	before := c.subjectChunkTotal()
	c.processor.DeleteDocument(documentID)
	after := c.subjectChunkTotal()
	if err := c.Save(); err != nil {
		c.log.Warn("failed to persist state after deleting document", "error", err, "document_id", documentID)
	}
	return DeleteResult{DeletedIDs: before - after}
}

func (c *Context) subjectChunkTotal() int {
	total := 0
	for _, col := range c.vectors.AllCollections() {
		total += col.Count()
	}
	return total
}

// DocumentEntry is one entry of list_documents' exact output shape.
type DocumentEntry struct {
	DocumentID string   `json:"document_id"`
	Filename   string   `json:"filename"`
	ChunkCount int      `json:"chunk_count"`
	ChunkTypes []string `json:"chunk_types"`
}

// ListDocuments reports every document currently indexed for subjectID.
func (c *Context) ListDocuments(subjectID string) []DocumentEntry {
	summaries := c.processor.ListDocuments(subjectID)
	out := make([]DocumentEntry, len(summaries))
	for i, s := range summaries {
		out[i] = DocumentEntry{
			DocumentID: s.DocumentID,
			Filename:   s.Filename,
			ChunkCount: s.ChunkCount,
			ChunkTypes: s.ChunkTypes,
		}
	}
	return out
}
