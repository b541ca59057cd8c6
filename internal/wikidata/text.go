package wikidata

import (
	"strings"
	"unicode"
)

// NormalizeText collapses any run of whitespace to a single space and trims
// the result.
func NormalizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			lastSpace = true
			continue
		}
		b.WriteRune(r)
		lastSpace = false
	}
	return strings.TrimSuffix(b.String(), " ")
}

// Tokenize casefolds and normalizes s, then splits it into maximal runs of
// letters and digits (mirroring a Unicode-aware `[^\W_]+` regex).
func Tokenize(s string) []string {
	normalized := strings.ToLower(NormalizeText(s))
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range normalized {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// DefaultStopwords is a multilingual function-word list. Nothing in the
// repository reads it: the store's SQL full-text helper functions carry
// their own English stopword lists (see internal/store/schema.go).
var DefaultStopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {},
	"by": {}, "das": {}, "de": {}, "del": {}, "der": {}, "des": {}, "di": {},
	"die": {}, "du": {}, "e": {}, "el": {}, "en": {}, "ein": {}, "eine": {},
	"et": {}, "for": {}, "from": {}, "gli": {}, "i": {}, "il": {}, "in": {},
	"is": {}, "la": {}, "las": {}, "le": {}, "les": {}, "lo": {}, "los": {},
	"of": {}, "on": {}, "or": {}, "per": {}, "the": {}, "to": {}, "un": {},
	"una": {}, "und": {}, "uno": {}, "von": {}, "with": {}, "y": {}, "zu": {},
}
