package processor

import (
	"sort"

	"github.com/sentinel-rag/sentinel/internal/bm25"
	"github.com/sentinel-rag/sentinel/internal/vectorstore"
)

// RebuildBM25FromVectorStore repopulates every subject's BM25 index from the
// dense store's current contents, in ascending id order within each
// collection. It is meant to run once at startup, after the dense store has
// been restored from its persisted state, since the BM25 index keeps no
// state of its own between runs.
func RebuildBM25FromVectorStore(vectors *vectorstore.Store, sparse *bm25.Store) {
	for name, collection := range vectors.AllCollections() {
		documents := collection.AllDocuments()
		metadatas := collection.AllMetadata()

		ids := make([]string, 0, len(documents))
		for id := range documents {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		idx, lock := sparse.GetOrCreateByName(name)
		lock.Lock()
		idx.Clear()
		for _, id := range ids {
			idx.AddDocument(id, documents[id], metadatas[id])
		}
		lock.Unlock()
	}
}
