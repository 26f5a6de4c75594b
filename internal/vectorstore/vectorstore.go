// Package vectorstore wraps a cosine-space ANN store (github.com/coder/hnsw)
// behind a per-subject collection registry, grounded on the teacher's
// internal/store/hnsw.go and generalized from one process-wide graph to a
// registry keyed by subject.
package vectorstore

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/coder/hnsw"

	sentinelerrors "github.com/sentinel-rag/sentinel/internal/errors"
)

// Match is one hit returned by Query or Get.
type Match struct {
	ID         string
	Distance   float32
	Similarity float32
	Document   string
	Metadata   map[string]string
}

// CollectionName derives the per-subject collection name: "sentinel_" plus
// the subject id with every "-" replaced by "_".
func CollectionName(subject string) string {
	return "sentinel_" + strings.ReplaceAll(subject, "-", "_")
}

// Collection is a single subject's cosine-space ANN collection, holding
// vectors plus their associated documents (chunk text) and metadata.
type Collection struct {
	mu         sync.RWMutex
	dimensions int
	graph      *hnsw.Graph[uint64]
	idToKey    map[string]uint64
	keyToID    map[uint64]string
	nextKey    uint64
	documents  map[string]string
	metadata   map[string]map[string]string
	vectors    map[string][]float32
}

func newCollection(dimensions int) *Collection {
	g := hnsw.NewGraph[uint64]()
	g.Distance = hnsw.CosineDistance
	g.M = 16
	g.Ml = 0.25
	g.EfSearch = 20
	return &Collection{
		dimensions: dimensions,
		graph:      g,
		idToKey:    make(map[string]uint64),
		keyToID:    make(map[uint64]string),
		documents:  make(map[string]string),
		metadata:   make(map[string]map[string]string),
		vectors:    make(map[string][]float32),
	}
}

// Add inserts vectors with their ids, documents, and metadatas. All slices
// must share length; ids already present in the collection are replaced.
func (c *Collection) Add(ids []string, vectors [][]float32, documents []string, metadatas []map[string]string) error {
	if len(ids) == 0 {
		return nil
	}
	if len(ids) != len(vectors) || len(ids) != len(documents) || len(ids) != len(metadatas) {
		return sentinelerrors.Index(sentinelerrors.ErrCodeIndexAddFailed,
			"ids, vectors, documents and metadatas must share length", nil)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, v := range vectors {
		if len(v) != c.dimensions {
			return sentinelerrors.Validation(sentinelerrors.ErrCodeDimensionMismatch,
				"embedding dimension mismatch", nil).
				WithDetail("expected", strconv.Itoa(c.dimensions)).WithDetail("got", strconv.Itoa(len(v)))
		}
	}

	for i, id := range ids {
		if existing, ok := c.idToKey[id]; ok {
			// Lazy deletion: orphan the old key rather than remove it from
			// the graph, avoiding a coder/hnsw bug deleting the last node.
			delete(c.keyToID, existing)
			delete(c.idToKey, id)
		}

		key := c.nextKey
		c.nextKey++

		vec := make([]float32, len(vectors[i]))
		copy(vec, vectors[i])
		normalize(vec)

		c.graph.Add(hnsw.MakeNode(key, vec))
		c.idToKey[id] = key
		c.keyToID[key] = id
		c.documents[id] = documents[i]
		c.metadata[id] = metadatas[i]
		c.vectors[id] = vec
	}
	return nil
}

// Query runs an ANN search for the k nearest neighbors of vector, in rank order.
func (c *Collection) Query(vector []float32, k int) ([]Match, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(vector) != c.dimensions {
		return nil, sentinelerrors.Validation(sentinelerrors.ErrCodeDimensionMismatch,
			"query vector dimension mismatch", nil)
	}
	if c.graph.Len() == 0 {
		return nil, nil
	}

	q := make([]float32, len(vector))
	copy(q, vector)
	normalize(q)

	nodes := c.graph.Search(q, k)
	matches := make([]Match, 0, len(nodes))
	for _, node := range nodes {
		id, ok := c.keyToID[node.Key]
		if !ok {
			continue
		}
		dist := c.graph.Distance(q, node.Value)
		matches = append(matches, Match{
			ID:         id,
			Distance:   dist,
			Similarity: 1 - dist,
			Document:   c.documents[id],
			Metadata:   c.metadata[id],
		})
	}
	return matches, nil
}

// Get returns every entry whose metadata["document_id"] equals documentID.
func (c *Collection) Get(documentID string) []Match {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []Match
	for id := range c.idToKey {
		md := c.metadata[id]
		if md == nil || md["document_id"] != documentID {
			continue
		}
		out = append(out, Match{ID: id, Document: c.documents[id], Metadata: md})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Delete removes ids from the collection. Unknown ids are tolerated.
func (c *Collection) Delete(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if key, ok := c.idToKey[id]; ok {
			delete(c.keyToID, key)
			delete(c.idToKey, id)
		}
		delete(c.documents, id)
		delete(c.metadata, id)
		delete(c.vectors, id)
	}
}

// AllIDs returns every live id in the collection.
func (c *Collection) AllIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.idToKey))
	for id := range c.idToKey {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of live vectors in the collection.
func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.idToKey)
}

// AllMetadata returns metadata for every id currently in the collection,
// used when rebuilding the BM25 index from the dense store on startup.
func (c *Collection) AllMetadata() map[string]map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]map[string]string, len(c.metadata))
	for id, md := range c.metadata {
		out[id] = md
	}
	return out
}

// AllDocuments returns the stored chunk text for every id currently in the collection.
func (c *Collection) AllDocuments() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.documents))
	for id, doc := range c.documents {
		out[id] = doc
	}
	return out
}

// AllVectors returns the (normalized) embedding stored for every id currently
// in the collection, used when persisting a snapshot to disk. The ANN graph
// itself exposes no way to look a node back up by key, so Add keeps this side
// map in step with the graph instead.
func (c *Collection) AllVectors() map[string][]float32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string][]float32, len(c.vectors))
	for id, v := range c.vectors {
		cp := make([]float32, len(v))
		copy(cp, v)
		out[id] = cp
	}
	return out
}

// Dimensions returns the embedding dimensionality the collection was created with.
func (c *Collection) Dimensions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dimensions
}

// Store is the per-subject registry of collections.
type Store struct {
	mu          sync.Mutex
	dimensions  int
	collections map[string]*Collection
	// subjects records the original subject id behind each collection name.
	// CollectionName is lossy (it folds "-" into "_"), so this is the only
	// way to recover a subject id for persistence once a collection exists.
	subjects map[string]string
}

// NewStore creates an empty registry for collections of the given dimensionality.
func NewStore(dimensions int) *Store {
	return &Store{dimensions: dimensions, collections: make(map[string]*Collection), subjects: make(map[string]string)}
}

// GetOrCreate returns subject's collection, creating it with cosine distance
// if it does not yet exist.
func (s *Store) GetOrCreate(subject string) *Collection {
	name := CollectionName(subject)
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	if !ok {
		col = newCollection(s.dimensions)
		s.collections[name] = col
		s.subjects[name] = subject
	}
	return col
}

// Subjects returns every subject id registered so far, in the form originally
// passed to GetOrCreate, suitable for driving a per-subject SaveCollection sweep.
func (s *Store) Subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.subjects))
	for _, subject := range s.subjects {
		out = append(out, subject)
	}
	sort.Strings(out)
	return out
}

// Get returns subject's collection without creating it.
func (s *Store) Get(subject string) (*Collection, bool) {
	name := CollectionName(subject)
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.collections[name]
	return col, ok
}

// ListCollections returns every collection name currently registered.
func (s *Store) ListCollections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllCollections returns a snapshot of the collection name -> collection
// mapping, used to sweep every collection (the BM25 rebuild and
// delete_document's chunk count).
func (s *Store) AllCollections() map[string]*Collection {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]*Collection, len(s.collections))
	for name, col := range s.collections {
		out[name] = col
	}
	return out
}

func normalize(v []float32) {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return
	}
	inv := float32(1.0 / math.Sqrt(sumSq))
	for i := range v {
		v[i] *= inv
	}
}
