// Package bm25 implements Okapi BM25 scoring over an in-memory inverted
// index, hand-rolled rather than backed by a general-purpose search library
// so that doc_freqs, avgdl, and the inverted index stay inspectable maps —
// an invariant a library's opaque on-disk index could not expose.
package bm25

import (
	"math"
	"sort"
)

const (
	defaultK1 = 1.5
	defaultB  = 0.75
)

// Result is one scored hit from Search.
type Result struct {
	DocID    string
	Score    float64
	Text     string
	Metadata map[string]string
}

// Index is an in-memory Okapi BM25 inverted index for one subject. It is not
// safe for concurrent use; callers serialize access via a subject-scoped lock.
type Index struct {
	K1 float64
	B  float64

	DocCount      int
	AvgDL         float64
	DocLengths    map[string]int
	DocFreqs      map[string]int
	InvertedIndex map[string]map[string]int
	DocTexts      map[string]string
	DocMetadata   map[string]map[string]string
}

// NewIndex builds an empty index with the standard Okapi parameters.
func NewIndex() *Index {
	return &Index{
		K1:            defaultK1,
		B:             defaultB,
		DocLengths:    make(map[string]int),
		DocFreqs:      make(map[string]int),
		InvertedIndex: make(map[string]map[string]int),
		DocTexts:      make(map[string]string),
		DocMetadata:   make(map[string]map[string]string),
	}
}

// AddDocument tokenizes text and folds it into the postings under docID.
// Re-adding an existing docID first removes its previous postings.
func (idx *Index) AddDocument(docID, text string, metadata map[string]string) {
	if _, exists := idx.DocLengths[docID]; exists {
		idx.RemoveDocument(docID)
	}

	tokens := Tokenize(text)
	idx.DocLengths[docID] = len(tokens)
	idx.DocTexts[docID] = text
	idx.DocMetadata[docID] = metadata

	termFreqs := make(map[string]int)
	for _, tok := range tokens {
		termFreqs[tok]++
	}
	for term, freq := range termFreqs {
		idx.DocFreqs[term]++
		if idx.InvertedIndex[term] == nil {
			idx.InvertedIndex[term] = make(map[string]int)
		}
		idx.InvertedIndex[term][docID] = freq
	}

	idx.DocCount++
	idx.recomputeAvgDL()
}

// RemoveDocument drops docID's postings. Removing an unknown id is a no-op.
func (idx *Index) RemoveDocument(docID string) {
	text, exists := idx.DocTexts[docID]
	if !exists {
		return
	}
	tokens := Tokenize(text)
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, done := seen[tok]; done {
			continue
		}
		seen[tok] = struct{}{}
		idx.DocFreqs[tok]--
		if postings, ok := idx.InvertedIndex[tok]; ok {
			delete(postings, docID)
			if len(postings) == 0 {
				delete(idx.InvertedIndex, tok)
			}
		}
		if idx.DocFreqs[tok] <= 0 {
			delete(idx.DocFreqs, tok)
		}
	}

	delete(idx.DocLengths, docID)
	delete(idx.DocTexts, docID)
	delete(idx.DocMetadata, docID)
	idx.DocCount--
	idx.recomputeAvgDL()
}

func (idx *Index) recomputeAvgDL() {
	if idx.DocCount <= 0 {
		idx.AvgDL = 0
		return
	}
	total := 0
	for _, l := range idx.DocLengths {
		total += l
	}
	idx.AvgDL = float64(total) / float64(idx.DocCount)
}

// Search scores every document containing at least one query term and
// returns the top `limit` results, sorted by descending score.
func (idx *Index) Search(query string, limit int) []Result {
	if idx.DocCount == 0 {
		return nil
	}
	queryTokens := Tokenize(query)
	scores := make(map[string]float64)

	for _, term := range queryTokens {
		postings, ok := idx.InvertedIndex[term]
		if !ok {
			continue
		}
		df := idx.DocFreqs[term]
		idf := math.Log((float64(idx.DocCount)-float64(df)+0.5)/(float64(df)+0.5) + 1.0)
		for docID, tf := range postings {
			dl := float64(idx.DocLengths[docID])
			tfNorm := (float64(tf) * (idx.K1 + 1)) /
				(float64(tf) + idx.K1*(1-idx.B+idx.B*dl/idx.AvgDL))
			scores[docID] += idf * tfNorm
		}
	}

	results := make([]Result, 0, len(scores))
	for docID, score := range scores {
		results = append(results, Result{
			DocID:    docID,
			Score:    score,
			Text:     idx.DocTexts[docID],
			Metadata: idx.DocMetadata[docID],
		})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].DocID < results[j].DocID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// AllIDs returns every document id currently indexed, in no particular order.
func (idx *Index) AllIDs() []string {
	ids := make([]string, 0, len(idx.DocTexts))
	for id := range idx.DocTexts {
		ids = append(ids, id)
	}
	return ids
}

// Clear empties the index back to its zero state.
func (idx *Index) Clear() {
	idx.DocCount = 0
	idx.AvgDL = 0
	idx.DocLengths = make(map[string]int)
	idx.DocFreqs = make(map[string]int)
	idx.InvertedIndex = make(map[string]map[string]int)
	idx.DocTexts = make(map[string]string)
	idx.DocMetadata = make(map[string]map[string]string)
}
