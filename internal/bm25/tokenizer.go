package bm25

import (
	"regexp"
	"strings"
)

// tokenPattern matches the reference implementation's tokenizer: hyphenated
// or dotted identifiers of length >= 2, or any single word character.
var tokenPattern = regexp.MustCompile(`\b[a-zA-Z0-9][\w\-.]*[a-zA-Z0-9]\b|\b\w\b`)

// Tokenize lowercases text, extracts tokens, and drops stop words and
// single-character tokens.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := tokenPattern.FindAllString(lower, -1)
	tokens := make([]string, 0, len(raw))
	for _, tok := range raw {
		if len(tok) <= 1 {
			continue
		}
		if _, stop := DefaultStopWords[tok]; stop {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
