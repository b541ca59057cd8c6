// Package retrieval implements the retrieval core: query normalization,
// candidate reranking, and end-to-end lookup orchestration on top of the
// entity store's fuzzy search.
package retrieval

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// typeHintPattern is the allowed character set for a single coarse/fine type
// hint token: letters, digits, underscore, dot, colon, slash, hyphen.
var typeHintPattern = regexp.MustCompile(`^[A-Za-z0-9_.:/-]+$`)

// NormalizeExactText reduces s to a canonical comparison form: Unicode NFC
// normalization, casefold, NFKD decomposition, combining-mark removal, then
// collapsing every run of non-alphanumeric characters to a single space and
// trimming. Two strings that differ only in accents, case, or compatibility
// variants (e.g. full-width digits) normalize identically.
func NormalizeExactText(s string) string {
	folded := strings.ToLower(norm.NFC.String(s))
	decomposed := norm.NFKD.String(folded)

	var stripped strings.Builder
	stripped.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		stripped.WriteRune(r)
	}

	var collapsed strings.Builder
	collapsed.Grow(stripped.Len())
	lastWasSpace := true // swallow leading separators
	for _, r := range stripped.String() {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			collapsed.WriteRune(r)
			lastWasSpace = false
			continue
		}
		if !lastWasSpace {
			collapsed.WriteByte(' ')
			lastWasSpace = true
		}
	}

	return strings.TrimSpace(collapsed.String())
}

// CompactCrosslinkHints strips each raw crosslink hint down to a compact ref
// via [wikidata.CompactCrosslinkHint] (stripping the Wikipedia/DBpedia
// canonical URL prefixes and percent-decoding), dropping anything empty
// after trimming and deduplicating the compacted values in first-seen order.
// The result is what both crosslink_hints and crosslink_terms are built
// from — never the caller's raw, uncompacted hint text.
func CompactCrosslinkHints(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, s := range raw {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		compacted := wikidata.CompactCrosslinkHint(trimmed)
		if compacted == "" {
			compacted = trimmed
		}
		if _, dup := seen[compacted]; dup {
			continue
		}
		seen[compacted] = struct{}{}
		out = append(out, compacted)
	}
	return out
}

// NormalizeTermList tokenizes and casefolds raw (via [wikidata.Tokenize]),
// then returns the unique tokens in first-seen order. Used for context_terms
// and crosslink_terms.
func NormalizeTermList(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, s := range raw {
		for _, tok := range wikidata.Tokenize(s) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

// NormalizeTypeHints validates and deduplicates a list of coarse/fine type
// hint labels. A hint that is empty after trimming, or that contains any
// character outside [A-Za-z0-9_.:/-], is dropped rather than rejected
// outright — callers see only the hints that survived. Accepted hints are
// upper-cased and deduplicated, preserving first-seen order.
func NormalizeTypeHints(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, s := range raw {
		trimmed := strings.ToUpper(strings.TrimSpace(s))
		if trimmed == "" || !typeHintPattern.MatchString(trimmed) {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

// NormalizedQuery is the fully normalized form of a lookup request, ready
// for cache-key construction and candidate search.
type NormalizedQuery struct {
	Mention        string
	MentionNorm    string
	ContextTerms   []string
	CrosslinkHints []string
	CrosslinkTerms []string
	CoarseHints    []string
	FineHints      []string
	Limit          int
	IncludeTopK    bool
}

// BuildCacheKey returns the hex-encoded SHA-256 digest of q's canonical JSON
// form: object keys sorted, slices in their normalized (already-deterministic)
// order. Two logically-identical requests always produce the same key.
func BuildCacheKey(q NormalizedQuery) string {
	payload := map[string]any{
		"mention_norm":    q.MentionNorm,
		"context_terms":   orEmpty(q.ContextTerms),
		"crosslink_terms": orEmpty(q.CrosslinkTerms),
		"coarse_hints":    orEmpty(q.CoarseHints),
		"fine_hints":      orEmpty(q.FineHints),
		"limit":           q.Limit,
		"include_top_k":   q.IncludeTopK,
	}
	canonical := canonicalJSON(payload)
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// canonicalJSON marshals v with object keys sorted at every level, so the
// byte output is stable regardless of map iteration order.
func canonicalJSON(v any) []byte {
	var b strings.Builder
	writeCanonical(&b, v)
	return []byte(b.String())
}

func writeCanonical(b *strings.Builder, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			keyBytes, _ := json.Marshal(k)
			b.Write(keyBytes)
			b.WriteByte(':')
			writeCanonical(b, val[k])
		}
		b.WriteByte('}')
	default:
		encoded, _ := json.Marshal(val)
		b.Write(encoded)
	}
}
