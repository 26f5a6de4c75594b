package bm25

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddDocumentUpdatesInvariants(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "SQL injection attacks target databases", nil)
	idx.AddDocument("d2", "cross site scripting attacks target browsers", nil)

	assert.Equal(t, 2, idx.DocCount)
	assert.Greater(t, idx.AvgDL, 0.0)
	assert.Equal(t, 1, idx.DocFreqs["injection"])
	assert.Equal(t, 2, idx.DocFreqs["attacks"])
	assert.Contains(t, idx.InvertedIndex["attacks"], "d1")
	assert.Contains(t, idx.InvertedIndex["attacks"], "d2")
}

func TestRemoveDocumentReversesAdd(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "SQL injection attacks target databases", nil)
	idx.AddDocument("d2", "cross site scripting attacks target browsers", nil)

	idx.RemoveDocument("d1")

	assert.Equal(t, 1, idx.DocCount)
	assert.NotContains(t, idx.DocFreqs, "injection")
	assert.NotContains(t, idx.InvertedIndex["attacks"], "d1")
	assert.Contains(t, idx.InvertedIndex["attacks"], "d2")
}

func TestRemoveThenAddReturnsToPriorState(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "networking protocols over tcp and udp", nil)
	before := idx.DocCount
	beforeAvgDL := idx.AvgDL

	idx.AddDocument("d2", "more content about http and https traffic", nil)
	idx.RemoveDocument("d2")

	assert.Equal(t, before, idx.DocCount)
	assert.InDelta(t, beforeAvgDL, idx.AvgDL, 1e-9)
	assert.Len(t, idx.AllIDs(), 1)
}

func TestRemoveUnknownDocIsNoOp(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "some content here", nil)
	idx.RemoveDocument("does-not-exist")
	assert.Equal(t, 1, idx.DocCount)
}

func TestSearchRanksByBM25Score(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "firewall rules for network security", nil)
	idx.AddDocument("d2", "firewall firewall firewall configuration guide", nil)
	idx.AddDocument("d3", "unrelated cooking recipe content", nil)

	results := idx.Search("firewall", 10)
	require.Len(t, results, 2)
	assert.Equal(t, "d2", results[0].DocID)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestSearchRespectsLimit(t *testing.T) {
	idx := NewIndex()
	for i := 0; i < 5; i++ {
		idx.AddDocument(string(rune('a'+i)), "shared term appears in every document", nil)
	}
	results := idx.Search("shared", 3)
	assert.Len(t, results, 3)
}

func TestSearchEmptyIndexReturnsNil(t *testing.T) {
	idx := NewIndex()
	assert.Nil(t, idx.Search("anything", 5))
}

func TestClearResetsState(t *testing.T) {
	idx := NewIndex()
	idx.AddDocument("d1", "some content", nil)
	idx.Clear()
	assert.Equal(t, 0, idx.DocCount)
	assert.Equal(t, 0.0, idx.AvgDL)
	assert.Empty(t, idx.DocFreqs)
	assert.Empty(t, idx.InvertedIndex)
}

func TestTokenizeDropsStopWordsAndSingleChars(t *testing.T) {
	tokens := Tokenize("The quick brown fox and a dog")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "and")
	assert.NotContains(t, tokens, "a")
	assert.Contains(t, tokens, "quick")
	assert.Contains(t, tokens, "brown")
}
