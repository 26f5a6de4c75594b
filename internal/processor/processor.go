// Package processor implements the document lifecycle operations that keep
// the BM25 and dense indices for a subject in lock-step: ingesting a
// document's chunks into both, deleting a document's chunks from both, and
// listing what is currently indexed for a subject.
package processor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/sentinel-rag/sentinel/internal/bm25"
	"github.com/sentinel-rag/sentinel/internal/chunk"
	sentinelerrors "github.com/sentinel-rag/sentinel/internal/errors"
	"github.com/sentinel-rag/sentinel/internal/pdfextract"
	"github.com/sentinel-rag/sentinel/internal/vectorstore"
)

// Embedder turns a batch of texts into unit-normalized dense vectors. It is
// the processor's view of the same contract search.Embedder exposes.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Stats summarises one ProcessDocument call.
type Stats struct {
	PageCount      int
	ChunkCount     int
	TotalChars     int
	HeaderCount    int
	CodeBlockCount int
	TableCount     int
}

// DocumentSummary is one entry of a ListDocuments result.
type DocumentSummary struct {
	DocumentID string
	Filename   string
	ChunkCount int
	ChunkTypes []string
}

// Processor owns document ingestion, deletion and listing across the
// shared subject registries.
type Processor struct {
	vectors  *vectorstore.Store
	sparse   *bm25.Store
	chunker  *chunk.SemanticChunker
	embedder Embedder

	mu       sync.Mutex
	subjects map[string]struct{}
}

// NewProcessor builds a Processor over the given subject registries.
func NewProcessor(vectors *vectorstore.Store, sparse *bm25.Store, chunker *chunk.SemanticChunker, embedder Embedder) *Processor {
	return &Processor{
		vectors:  vectors,
		sparse:   sparse,
		chunker:  chunker,
		embedder: embedder,
		subjects: make(map[string]struct{}),
	}
}

func (p *Processor) noteSubject(subject string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects[subject] = struct{}{}
}

// RestoreSubjects marks every id in subjects as known, used on startup after
// the dense store has been reloaded from a persisted snapshot so that
// DeleteDocument sweeps cover subjects the processor never saw an
// in-process ProcessDocument call for.
func (p *Processor) RestoreSubjects(subjects []string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range subjects {
		p.subjects[s] = struct{}{}
	}
}

func (p *Processor) knownSubjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.subjects))
	for s := range p.subjects {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// ProcessDocument extracts pages from data, chunks each page, embeds the
// chunks, and atomically adds them to both indices under subjectID. Chunk
// ids follow "{documentID}_{i}" in page-then-positional traversal order.
func (p *Processor) ProcessDocument(ctx context.Context, data []byte, filename, documentID, subjectID string) (Stats, error) {
	pages, err := pdfextract.ExtractPages(data)
	if err != nil {
		return Stats{}, err
	}

	var chunks []*chunk.Chunk
	for _, page := range pages {
		chunks = append(chunks, p.chunker.ChunkText(page.Text, page.Number, filename)...)
	}

	stats := Stats{PageCount: len(pages)}
	if len(chunks) == 0 {
		return stats, nil
	}

	ids := make([]string, len(chunks))
	storedTexts := make([]string, len(chunks))
	embedTexts := make([]string, len(chunks))
	metadatas := make([]map[string]string, len(chunks))

	for i, c := range chunks {
		ids[i] = fmt.Sprintf("%s_%d", documentID, i)
		storedTexts[i] = c.Text

		if prefix := c.ContextPrefix(); prefix != "" {
			embedTexts[i] = prefix + ": " + c.Text
		} else {
			embedTexts[i] = c.Text
		}

		metadatas[i] = map[string]string{
			"document_id":      documentID,
			"filename":         filename,
			"page":             strconv.Itoa(c.Page),
			"header":           c.Header,
			"parent_header":    c.ParentHeader,
			"chunk_type":       string(c.ChunkType),
			"importance_score": strconv.FormatFloat(c.ImportanceScore, 'f', 2, 64),
		}

		stats.TotalChars += len(c.Text)
		if c.Header != "" {
			stats.HeaderCount++
		}
		switch c.ChunkType {
		case chunk.ContentTypeCode:
			stats.CodeBlockCount++
		case chunk.ContentTypeTable:
			stats.TableCount++
		}
	}
	stats.ChunkCount = len(chunks)

	vectors, err := p.embedder.EmbedBatch(ctx, embedTexts)
	if err != nil {
		return Stats{}, sentinelerrors.Model(sentinelerrors.ErrCodeEmbeddingFailed, "failed to embed document chunks", err)
	}

	collection := p.vectors.GetOrCreate(subjectID)
	if err := collection.Add(ids, vectors, storedTexts, metadatas); err != nil {
		return Stats{}, err
	}

	if err := p.addToBM25(subjectID, ids, storedTexts, metadatas); err != nil {
		// Compensating delete: the dense add already succeeded, so the two
		// indices must not diverge.
		collection.Delete(ids)
		return Stats{}, err
	}

	p.noteSubject(subjectID)
	return stats, nil
}

// addToBM25 folds a batch into subject's BM25 index under its exclusive
// lock. AddDocument cannot itself fail; the error return exists so a future
// backing index that can fail (e.g. one with an I/O-bound posting store)
// still fits this call site's compensating-delete contract.
func (p *Processor) addToBM25(subject string, ids, texts []string, metadatas []map[string]string) error {
	idx, lock := p.sparse.GetOrCreate(subject)
	lock.Lock()
	defer lock.Unlock()
	for i, id := range ids {
		idx.AddDocument(id, texts[i], metadatas[i])
	}
	return nil
}

// DeleteDocument removes every chunk carrying documentID from every subject
// collection it appears in, dense store first then BM25. Missing ids are
// tolerated, making repeated calls idempotent.
func (p *Processor) DeleteDocument(documentID string) {
	for _, subject := range p.knownSubjects() {
		collection, ok := p.vectors.Get(subject)
		if !ok {
			continue
		}
		matches := collection.Get(documentID)
		if len(matches) == 0 {
			continue
		}
		ids := make([]string, len(matches))
		for i, m := range matches {
			ids[i] = m.ID
		}
		collection.Delete(ids)

		if idx, lock, ok := p.sparse.Get(subject); ok {
			lock.Lock()
			for _, id := range ids {
				idx.RemoveDocument(id)
			}
			lock.Unlock()
		}
	}
}

// ListDocuments groups every chunk currently indexed for subject by
// document id and reports its filename, chunk count, and distinct chunk
// types.
func (p *Processor) ListDocuments(subject string) []DocumentSummary {
	collection, ok := p.vectors.Get(subject)
	if !ok {
		return nil
	}

	byDoc := make(map[string]*DocumentSummary)
	typeSets := make(map[string]map[string]struct{})

	for _, md := range collection.AllMetadata() {
		docID := md["document_id"]
		if docID == "" {
			continue
		}
		summary, ok := byDoc[docID]
		if !ok {
			summary = &DocumentSummary{DocumentID: docID, Filename: md["filename"]}
			byDoc[docID] = summary
			typeSets[docID] = make(map[string]struct{})
		}
		summary.ChunkCount++
		if ct := md["chunk_type"]; ct != "" {
			typeSets[docID][ct] = struct{}{}
		}
	}

	out := make([]DocumentSummary, 0, len(byDoc))
	for docID, summary := range byDoc {
		types := make([]string, 0, len(typeSets[docID]))
		for t := range typeSets[docID] {
			types = append(types, t)
		}
		sort.Strings(types)
		summary.ChunkTypes = types
		out = append(out, *summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DocumentID < out[j].DocumentID })
	return out
}
