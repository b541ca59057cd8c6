package retrieval

import (
	"sort"
	"strings"

	"github.com/entityretrieval/entityretrieval/internal/store"
	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

// RankedResult is one reranked candidate, carrying its component scores
// alongside the final weighted score used for ordering.
type RankedResult struct {
	Candidate    store.Candidate
	NameScore    float64
	ContextScore float64
	TypeScore    float64
	PriorScore   float64
	ExactMatch   bool
	FinalScore   float64
}

// Rerank deduplicates candidates by QID (keeping the first, highest-scored
// occurrence — candidates arrive pre-sorted by the store's SQL-side score),
// computes the four component scores, and returns them sorted by
// (final score desc, exact-match first, prior desc, qid asc).
//
// exactMode gates the exact-match name-score pin (name_score forced to 1.0)
// and the [ExactMatchBonus] added to the final score: both apply only when
// exactMode is true. With exactMode false (the default end-to-end behavior),
// an exact match still contributes to ExactMatch/sort order but receives no
// score pin or bonus.
func Rerank(q NormalizedQuery, candidates []store.Candidate, weights LookupWeights, exactMode bool) []RankedResult {
	deduped := dedupeCandidates(candidates)
	if len(deduped) == 0 {
		return nil
	}

	minScore, maxScore := deduped[0].Score, deduped[0].Score
	for _, c := range deduped[1:] {
		if c.Score < minScore {
			minScore = c.Score
		}
		if c.Score > maxScore {
			maxScore = c.Score
		}
	}

	contextTermSet := make(map[string]struct{}, len(q.ContextTerms))
	for _, t := range q.ContextTerms {
		contextTermSet[t] = struct{}{}
	}
	coarseSet := toSet(q.CoarseHints)
	fineSet := toSet(q.FineHints)

	results := make([]RankedResult, 0, len(deduped))
	for _, c := range deduped {
		nameScore := normalizeScoreRange(c.Score, minScore, maxScore)
		contextScore := contextOverlapScore(c.ContextString, contextTermSet)
		typeScore := typeMatchScore(c, coarseSet, fineSet)
		priorScore := c.Prior

		exact := isExactMatch(q.MentionNorm, c)
		if exact && exactMode {
			nameScore = 1.0
		}

		final := weights.Name*nameScore + weights.Context*contextScore + weights.Type*typeScore + weights.Prior*priorScore
		if exact && exactMode {
			final += ExactMatchBonus
		}

		results = append(results, RankedResult{
			Candidate:    c,
			NameScore:    nameScore,
			ContextScore: contextScore,
			TypeScore:    typeScore,
			PriorScore:   priorScore,
			ExactMatch:   exact,
			FinalScore:   final,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.FinalScore != b.FinalScore {
			return a.FinalScore > b.FinalScore
		}
		if a.ExactMatch != b.ExactMatch {
			return a.ExactMatch
		}
		if a.PriorScore != b.PriorScore {
			return a.PriorScore > b.PriorScore
		}
		return a.Candidate.QID < b.Candidate.QID
	})

	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results
}

func dedupeCandidates(candidates []store.Candidate) []store.Candidate {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]store.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := seen[c.QID]; dup {
			continue
		}
		seen[c.QID] = struct{}{}
		out = append(out, c)
	}
	return out
}

// normalizeScoreRange min-max normalizes score into [0,1]. When every raw
// score in the candidate set is equal, a positive common value normalizes to
// 1.0 for every candidate; an all-zero set normalizes to 0.0 (there was no
// SQL-side signal at all, so no candidate should be treated as a top match).
func normalizeScoreRange(score, min, max float64) float64 {
	if max <= min {
		if max > 0 {
			return 1.0
		}
		return 0.0
	}
	return (score - min) / (max - min)
}

func contextOverlapScore(contextString string, contextTermSet map[string]struct{}) float64 {
	if len(contextTermSet) == 0 {
		return 0
	}
	candidateTokens := wikidata.Tokenize(contextString)
	if len(candidateTokens) == 0 {
		return 0
	}
	candidateSet := make(map[string]struct{}, len(candidateTokens))
	for _, t := range candidateTokens {
		candidateSet[t] = struct{}{}
	}
	matched := 0
	for t := range contextTermSet {
		if _, ok := candidateSet[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(contextTermSet))
}

// typeMatchScore implements the priority branch: a fine-type match (when
// fine hints were supplied) always wins outright at 1.0, regardless of
// whether coarse hints also matched; only when no fine hint matched (or none
// was supplied) does a coarse-type match fall back to 0.5.
func typeMatchScore(c store.Candidate, coarseSet, fineSet map[string]struct{}) float64 {
	if len(fineSet) > 0 {
		if _, ok := fineSet[strings.ToUpper(c.FineType)]; ok {
			return 1.0
		}
	}
	if len(coarseSet) > 0 {
		if _, ok := coarseSet[strings.ToUpper(c.CoarseType)]; ok {
			return 0.5
		}
	}
	return 0.0
}

func isExactMatch(mentionNorm string, c store.Candidate) bool {
	if mentionNorm == "" {
		return false
	}
	if NormalizeExactText(c.Label) == mentionNorm {
		return true
	}
	for _, alias := range c.Aliases {
		if NormalizeExactText(alias) == mentionNorm {
			return true
		}
	}
	return false
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToUpper(v)] = struct{}{}
	}
	return set
}
