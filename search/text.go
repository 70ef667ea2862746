package search

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// normalize lower-cases text for case-insensitive matching.
// A Caser is not safe for concurrent use, so one is built per call.
func normalize(text string) string {
	return cases.Lower(language.Und).String(text)
}

// normalizeAll lower-cases every element of a list.
func normalizeAll(texts []string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = normalize(text)
	}
	return out
}

// containsAny reports whether any of the candidates contains query.
func containsAny(candidates []string, query string) bool {
	for _, candidate := range candidates {
		if strings.Contains(candidate, query) {
			return true
		}
	}
	return false
}

// joinCodes renders target codes as a human-readable match.
func joinCodes(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return strings.Join(codes, ", ")
}
