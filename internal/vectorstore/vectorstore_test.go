package vectorstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectionNameReplacesHyphens(t *testing.T) {
	assert.Equal(t, "sentinel_ctf", CollectionName("ctf"))
	assert.Equal(t, "sentinel_web_security", CollectionName("web-security"))
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	store := NewStore(4)
	a := store.GetOrCreate("networks")
	b := store.GetOrCreate("networks")
	assert.Same(t, a, b)
}

func TestAddAndQueryReturnsNearestFirst(t *testing.T) {
	col := newCollection(3)
	err := col.Add(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0, 0}, {0, 1, 0}, {0.9, 0.1, 0}},
		[]string{"doc a", "doc b", "doc c"},
		[]map[string]string{{"document_id": "d1"}, {"document_id": "d2"}, {"document_id": "d1"}},
	)
	require.NoError(t, err)

	matches, err := col.Query([]float32{1, 0, 0}, 2)
	require.NoError(t, err)
	require.NotEmpty(t, matches)
	assert.Equal(t, "a", matches[0].ID)
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	col := newCollection(3)
	err := col.Add([]string{"a"}, [][]float32{{1, 0}}, []string{"x"}, []map[string]string{{}})
	assert.Error(t, err)
}

func TestDeleteRemovesFromAllIDs(t *testing.T) {
	col := newCollection(2)
	require.NoError(t, col.Add([]string{"a", "b"}, [][]float32{{1, 0}, {0, 1}}, []string{"x", "y"},
		[]map[string]string{{}, {}}))
	col.Delete([]string{"a"})
	ids := col.AllIDs()
	assert.NotContains(t, ids, "a")
	assert.Contains(t, ids, "b")
}

func TestGetFiltersByDocumentID(t *testing.T) {
	col := newCollection(2)
	require.NoError(t, col.Add(
		[]string{"a", "b", "c"},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
		[]string{"x", "y", "z"},
		[]map[string]string{{"document_id": "d1"}, {"document_id": "d2"}, {"document_id": "d1"}},
	))
	matches := col.Get("d1")
	require.Len(t, matches, 2)
	assert.Equal(t, "a", matches[0].ID)
	assert.Equal(t, "c", matches[1].ID)
}

func TestQueryEmptyCollectionReturnsNoMatches(t *testing.T) {
	col := newCollection(2)
	matches, err := col.Query([]float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestListCollectionsSorted(t *testing.T) {
	store := NewStore(2)
	store.GetOrCreate("ctf")
	store.GetOrCreate("linux")
	names := store.ListCollections()
	assert.Equal(t, []string{"sentinel_ctf", "sentinel_linux"}, names)
}
