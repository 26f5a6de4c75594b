package search

import "sort"

// RRFConstant, VectorWeight and BM25Weight are the frozen Reciprocal Rank
// Fusion parameters baked into the hybrid pipeline.
const (
	RRFConstant = 60
	VectorWeight = 0.6
	BM25Weight   = 0.4
)

// RankedID is one entry of a single ranked result list (dense or sparse),
// in rank order — the first element is rank 1.
type RankedID struct {
	ID    string
	Score float64
}

// FusedCandidate is one document surviving RRF fusion, carrying both source
// scores/ranks so later pipeline stages can materialise the full result.
type FusedCandidate struct {
	ID         string
	RRFScore   float64
	VectorScore float64
	VectorRank  int
	BM25Score   float64
	BM25Rank    int
}

// FuseRRF computes rrf[d] = vectorWeight/(k+rankV(d)) + bm25Weight/(k+rankB(d))
// for the union of ids appearing in vector and sparse, treating a missing
// rank as a zero contribution from that list. The result is sorted by RRF
// score descending, ties broken lexicographically by id, and truncated to
// candidatePool entries.
func FuseRRF(vector, sparse []RankedID, candidatePool int) []FusedCandidate {
	candidates := make(map[string]*FusedCandidate)

	get := func(id string) *FusedCandidate {
		c, ok := candidates[id]
		if !ok {
			c = &FusedCandidate{ID: id}
			candidates[id] = c
		}
		return c
	}

	for i, r := range vector {
		rank := i + 1
		c := get(r.ID)
		c.VectorScore = r.Score
		c.VectorRank = rank
		c.RRFScore += VectorWeight / float64(RRFConstant+rank)
	}
	for i, r := range sparse {
		rank := i + 1
		c := get(r.ID)
		c.BM25Score = r.Score
		c.BM25Rank = rank
		c.RRFScore += BM25Weight / float64(RRFConstant+rank)
	}

	out := make([]FusedCandidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RRFScore != out[j].RRFScore {
			return out[i].RRFScore > out[j].RRFScore
		}
		return out[i].ID < out[j].ID
	})

	if candidatePool > 0 && candidatePool < len(out) {
		out = out[:candidatePool]
	}
	return out
}

// CandidatePoolSize computes C = min(4*limit, collectionSize, 20).
func CandidatePoolSize(limit, collectionSize int) int {
	c := 4 * limit
	if collectionSize < c {
		c = collectionSize
	}
	if c > 20 {
		c = 20
	}
	return c
}
