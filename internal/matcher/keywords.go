package matcher

import (
	"strings"
	"unicode"
)

// Words carrying no retrieval signal, dropped during extraction.
var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {},
	"is": {}, "are": {}, "was": {}, "were": {},
	"and": {}, "or": {}, "but": {}, "for": {}, "with": {},
}

// ExtractKeywords turns raw text into a deduplicated set of normalized
// tokens: lower-cased, split on whitespace, surrounding punctuation trimmed,
// stop words removed. An empty result means the text has no usable keywords
// and the matcher treats it as a guaranteed miss.
func ExtractKeywords(text string) []string {
	seen := make(map[string]struct{})
	var keywords []string

	for _, word := range strings.Fields(strings.ToLower(text)) {
		token := strings.TrimFunc(word, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if token == "" {
			continue
		}
		if _, stop := stopWords[token]; stop {
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		keywords = append(keywords, token)
	}

	return keywords
}
