package bm25

// DefaultStopWords is the frozen stop-word list excluded from tokenization,
// carried verbatim from the reference BM25 implementation. It is versioned
// with the index format: changing it invalidates existing postings.
var DefaultStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {}, "on": {},
	"at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {}, "from": {}, "as": {},
	"is": {}, "was": {}, "are": {}, "were": {}, "been": {}, "be": {}, "have": {}, "has": {},
	"had": {}, "do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "must": {}, "shall": {}, "can": {}, "need": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "it": {}, "its": {}, "they": {},
	"them": {}, "their": {}, "what": {}, "which": {}, "who": {}, "whom": {}, "when": {},
	"where": {}, "why": {}, "how": {}, "all": {}, "each": {}, "every": {}, "both": {},
	"few": {}, "more": {}, "most": {}, "other": {}, "some": {}, "such": {}, "no": {},
	"nor": {}, "not": {}, "only": {}, "own": {}, "same": {}, "so": {}, "than": {}, "too": {},
	"very": {}, "just": {}, "also": {}, "now": {}, "here": {}, "there": {}, "about": {},
	"into": {}, "over": {}, "after": {}, "below": {}, "between": {}, "under": {}, "again": {},
	"then": {}, "once": {}, "during": {}, "while": {}, "before": {}, "above": {}, "being": {},
	"through": {}, "further": {}, "because": {}, "until": {},
}
