// Package crisis screens user messages for self-harm risk with a keyword
// pre-filter and an ensemble of two independent model scores.
package crisis

import (
	"strings"
)

// defaultKeywords are matched case-insensitively as substrings.
var defaultKeywords = []string{
	"kill myself",
	"suicide",
	"end my life",
	"want to die",
	"hurt myself",
	"self harm",
	"cut myself",
	"overdose",
	"not worth living",
	"better off dead",
	"no reason to live",
}

// KeywordMatcher is the zero-latency crisis pre-filter.
type KeywordMatcher struct {
	keywords []string
}

// NewKeywordMatcher creates a matcher over the built-in crisis terms.
func NewKeywordMatcher() *KeywordMatcher {
	return NewKeywordMatcherWith(defaultKeywords)
}

// NewKeywordMatcherWith creates a matcher over custom terms.
func NewKeywordMatcherWith(keywords []string) *KeywordMatcher {
	m := &KeywordMatcher{keywords: make([]string, 0, len(keywords))}
	for _, kw := range keywords {
		if kw = normalizeText(kw); kw != "" {
			m.keywords = append(m.keywords, kw)
		}
	}
	return m
}

// Match returns the first crisis term found in input.
func (m *KeywordMatcher) Match(input string) (string, bool) {
	lower := normalizeText(input)
	for _, kw := range m.keywords {
		if strings.Contains(lower, kw) {
			return kw, true
		}
	}
	return "", false
}

// normalizeText lowercases and folds hyphens and runs of whitespace to single spaces,
// so "Self-harm" and "self  harm" match "self harm".
func normalizeText(s string) string {
	s = strings.ToLower(strings.ReplaceAll(s, "-", " "))
	return strings.Join(strings.Fields(s), " ")
}
