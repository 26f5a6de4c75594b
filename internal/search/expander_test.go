package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandAddsSynonymsForMatchingPhrase(t *testing.T) {
	e := NewQueryExpander()
	out := e.Expand("what is sqli", "")
	assert.Contains(t, out, "sql injection")
}

func TestExpandIsMonotone(t *testing.T) {
	e := NewQueryExpander()
	query := "explain xss attacks"
	expanded := e.Expand(query, "")

	originalTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(query)) {
		originalTokens[tok] = struct{}{}
	}
	expandedTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(expanded)) {
		expandedTokens[tok] = struct{}{}
	}
	for tok := range originalTokens {
		assert.Contains(t, expandedTokens, tok)
	}
}

func TestExpandUnchangedWhenNoMatch(t *testing.T) {
	e := NewQueryExpander()
	query := "tell me about penguins"
	assert.Equal(t, query, e.Expand(query, ""))
}

func TestExpandAddsSubjectContext(t *testing.T) {
	e := NewQueryExpander()
	out := e.Expand("tell me more", "networks")
	assert.True(t,
		strings.Contains(out, "protocol") || strings.Contains(out, "packet") ||
			strings.Contains(out, "routing") || strings.Contains(out, "topology"))
}

func TestExpandUnknownSubjectIsSafe(t *testing.T) {
	e := NewQueryExpander()
	query := "tell me more"
	assert.Equal(t, query, e.Expand(query, "not-a-real-subject"))
}

func TestExpandPreservesOriginalCasing(t *testing.T) {
	e := NewQueryExpander()
	out := e.Expand("What About SQLi", "")
	assert.True(t, strings.HasPrefix(out, "What About SQLi"))
}
