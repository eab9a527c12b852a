package usecase

import (
	"regexp"
	"strings"
	"unicode"
)

// multiSpacePattern collapses runs of whitespace inside a search term
var multiSpacePattern = regexp.MustCompile(`\s+`)

// normalizeQuery trims a free-text search term, drops control characters
// and collapses inner whitespace. Case and punctuation are kept: both
// retailers search case-insensitively and "&" or "%" can be meaningful.
func normalizeQuery(q string) string {
	q = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, q)
	q = multiSpacePattern.ReplaceAllString(q, " ")
	return strings.TrimSpace(q)
}

// normalizeName lowercases and trims a basket or category name for comparisons
func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
