// Phonetic reconciliation for noisy crosslink hint text (e.g. OCR'd page
// titles) arriving at the HTTP edge layer. The Lexical NER Typer's own clue
// matching is exact-token-only, so this is not used there — it exists only
// to help normalize a crosslink hint against a small set of known reference
// titles before it reaches the Query Normalizer.
//
// The algorithm proceeds in two stages:
//
//  1. Phonetic candidate filtering: Double Metaphone codes are computed for
//     each word in the input hint and for each known reference title. If
//     any code from the hint overlaps with any code from a title, the title
//     becomes a phonetic candidate.
//
//  2. Jaro-Winkler ranking: among phonetic candidates, the title with the
//     highest Jaro-Winkler similarity is selected, provided its score
//     is at least the phonetic threshold (0.70). When no phonetic
//     candidate is found, a secondary pass tests pure Jaro-Winkler
//     similarity against all titles using a higher fuzzy threshold (0.85).
package retrieval

import (
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85
)

// CrosslinkReconciler resolves a noisy crosslink hint string to the closest
// known reference title, when one is phonetically or lexically close
// enough. It is read-only after construction and safe for concurrent use.
type CrosslinkReconciler struct {
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewCrosslinkReconciler returns a reconciler using the default thresholds
// (0.70 phonetic, 0.85 fuzzy fallback).
func NewCrosslinkReconciler() *CrosslinkReconciler {
	return &CrosslinkReconciler{
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
}

// Reconcile attempts to find the titles entry closest to hint. When matched
// is false, corrected equals hint unchanged and confidence is 0.
func (r *CrosslinkReconciler) Reconcile(hint string, titles []string) (corrected string, confidence float64, matched bool) {
	if len(titles) == 0 || strings.TrimSpace(hint) == "" {
		return hint, 0, false
	}

	hintLower := strings.ToLower(strings.TrimSpace(hint))
	hintTokens := strings.Fields(hintLower)
	hintCodes := codesForTokens(hintTokens)

	type candidate struct {
		title    string
		score    float64
		phonetic bool
	}
	var best candidate

	for _, title := range titles {
		titleLower := strings.ToLower(strings.TrimSpace(title))
		if titleLower == "" {
			continue
		}
		titleTokens := strings.Fields(titleLower)
		titleCodes := codesForTokens(titleTokens)
		phoneticMatch := codesOverlap(hintCodes, titleCodes)
		jwScore := bestJWScore(hintTokens, titleTokens, hintLower, titleLower)

		if phoneticMatch {
			if jwScore >= r.phoneticThreshold {
				if !best.phonetic || jwScore > best.score {
					best = candidate{title: title, score: jwScore, phonetic: true}
				}
			}
		} else if !best.phonetic {
			if jwScore >= r.fuzzyThreshold && jwScore > best.score {
				best = candidate{title: title, score: jwScore, phonetic: false}
			}
		}
	}

	if best.title != "" {
		return best.title, best.score, true
	}
	return hint, 0, false
}

func codesForTokens(tokens []string) map[string]struct{} {
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		p, s := matchr.DoubleMetaphone(t)
		if p != "" {
			codes[p] = struct{}{}
		}
		if s != "" {
			codes[s] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}

// bestJWScore computes the highest Jaro-Winkler similarity between the hint
// and the title across three strategies: full-string comparison,
// space-stripped comparison, and the best pairwise token comparison.
func bestJWScore(hintTokens, titleTokens []string, hintFull, titleFull string) float64 {
	score := matchr.JaroWinkler(hintFull, titleFull, false)

	if len(hintTokens) > 1 || len(titleTokens) > 1 {
		concat1 := strings.Join(hintTokens, "")
		concat2 := strings.Join(titleTokens, "")
		if s := matchr.JaroWinkler(concat1, concat2, false); s > score {
			score = s
		}
	}

	for _, ht := range hintTokens {
		for _, tt := range titleTokens {
			if s := matchr.JaroWinkler(ht, tt, false); s > score {
				score = s
			}
		}
	}

	return score
}
