package search

import (
	"sort"
	"strings"
)

// QueryExpander performs static domain-synonym lookup and subject-context
// injection, grounded on the reference query_expander.py and shaped like the
// teacher's QueryExpander struct-plus-options idiom.
type QueryExpander struct {
	expansions     map[string][]string
	subjectContext map[string][]string
}

// QueryExpanderOption configures a QueryExpander.
type QueryExpanderOption func(*QueryExpander)

// WithExpansions overrides the phrase-to-synonym table.
func WithExpansions(expansions map[string][]string) QueryExpanderOption {
	return func(e *QueryExpander) { e.expansions = expansions }
}

// WithSubjectContext overrides the subject-to-context-terms table.
func WithSubjectContext(ctx map[string][]string) QueryExpanderOption {
	return func(e *QueryExpander) { e.subjectContext = ctx }
}

// NewQueryExpander builds an expander seeded from the frozen Expansions and
// SubjectContext tables.
func NewQueryExpander(opts ...QueryExpanderOption) *QueryExpander {
	e := &QueryExpander{
		expansions:     Expansions,
		subjectContext: SubjectContext,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand lowercases the query, unions every matching expansion phrase's
// synonyms, adds up to 3 not-already-present subject context terms when
// subject is non-empty, and appends whatever new terms resulted — in the
// original query's casing — to the original query. If nothing was added the
// query is returned unchanged. Expansion is monotone: the returned string's
// token set is always a superset of the input's.
func (e *QueryExpander) Expand(query, subject string) string {
	lower := strings.ToLower(query)
	additions := make(map[string]struct{})

	for phrase, synonyms := range e.expansions {
		if strings.Contains(lower, phrase) {
			for _, syn := range synonyms {
				additions[syn] = struct{}{}
			}
		}
	}

	if subject != "" {
		if ctxTerms, ok := e.subjectContext[subject]; ok {
			added := 0
			for _, term := range ctxTerms {
				if added >= 3 {
					break
				}
				if strings.Contains(lower, term) {
					continue
				}
				additions[term] = struct{}{}
				added++
			}
		}
	}

	if len(additions) == 0 {
		return query
	}

	originalTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(query) {
		originalTokens[strings.ToLower(tok)] = struct{}{}
	}

	var extra []string
	for term := range additions {
		if _, present := originalTokens[strings.ToLower(term)]; !present {
			extra = append(extra, term)
		}
	}
	if len(extra) == 0 {
		return query
	}
	sort.Strings(extra)

	return query + " " + strings.Join(extra, " ")
}
