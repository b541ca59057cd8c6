package retrieval

import (
	"testing"

	"github.com/entityretrieval/entityretrieval/internal/store"
)

func TestRerankDedupesByQID(t *testing.T) {
	q := NormalizedQuery{MentionNorm: "apple inc", Limit: 10}
	candidates := []store.Candidate{
		{QID: "Q312", Label: "Apple Inc.", Score: 9.0, Prior: 0.8},
		{QID: "Q312", Label: "Apple Inc.", Score: 1.0, Prior: 0.8},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, false)
	if len(ranked) != 1 {
		t.Fatalf("Rerank returned %d results, want 1 deduped", len(ranked))
	}
}

func TestRerankExactMatchOutranksHigherPriorFuzzyMatch(t *testing.T) {
	// With exact_mode enabled, the name-score pin plus bonus let an exact
	// match win even against a much higher raw SQL-side score and prior.
	q := NormalizedQuery{MentionNorm: "apple inc", Limit: 10}
	candidates := []store.Candidate{
		{QID: "Q1", Label: "Apple Incorporated", Score: 8.0, Prior: 0.95},
		{QID: "Q312", Label: "Apple Inc.", Score: 5.0, Prior: 0.10},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, true)
	if len(ranked) != 2 {
		t.Fatalf("Rerank returned %d results, want 2", len(ranked))
	}
	if !ranked[0].ExactMatch || ranked[0].Candidate.QID != "Q312" {
		t.Fatalf("top result = %+v, want exact match Q312 first", ranked[0])
	}
}

func TestRerankExactMatchDoesNotOutrankByDefault(t *testing.T) {
	// exact_mode defaults to false: an exact match gets no score pin or
	// bonus, so a much higher raw score still wins.
	q := NormalizedQuery{MentionNorm: "apple inc", Limit: 10}
	candidates := []store.Candidate{
		{QID: "Q1", Label: "Apple Incorporated", Score: 8.0, Prior: 0.95},
		{QID: "Q312", Label: "Apple Inc.", Score: 5.0, Prior: 0.10},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, false)
	if len(ranked) != 2 {
		t.Fatalf("Rerank returned %d results, want 2", len(ranked))
	}
	if ranked[0].Candidate.QID != "Q1" {
		t.Fatalf("top result = %+v, want Q1 first (no exact-match bonus by default)", ranked[0])
	}
	if !ranked[1].ExactMatch {
		t.Fatalf("second result = %+v, want ExactMatch true even though unpinned", ranked[1])
	}
}

func TestRerankTruncatesToLimit(t *testing.T) {
	q := NormalizedQuery{MentionNorm: "berlin", Limit: 1}
	candidates := []store.Candidate{
		{QID: "Q1", Label: "Berlin", Score: 5.0, Prior: 0.5},
		{QID: "Q2", Label: "Berlin (film)", Score: 3.0, Prior: 0.2},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, false)
	if len(ranked) != 1 {
		t.Fatalf("Rerank = %d results, want 1 (limit)", len(ranked))
	}
}

func TestRerankTieBreaksByQIDAscending(t *testing.T) {
	q := NormalizedQuery{MentionNorm: "unrelated mention", Limit: 10}
	candidates := []store.Candidate{
		{QID: "Q900", Label: "Something Else", Score: 5.0, Prior: 0.3},
		{QID: "Q100", Label: "Something Else Too", Score: 5.0, Prior: 0.3},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, false)
	if len(ranked) != 2 || ranked[0].Candidate.QID != "Q100" {
		t.Fatalf("Rerank tie-break = %+v, want Q100 first", ranked)
	}
}

func TestContextOverlapScoreRewardsSharedTerms(t *testing.T) {
	q := NormalizedQuery{MentionNorm: "acme", ContextTerms: []string{"technology", "robotics"}, Limit: 10}
	candidates := []store.Candidate{
		{QID: "Q1", Label: "Acme", Score: 5.0, Prior: 0.4, ContextString: "technology; robotics; california"},
		{QID: "Q2", Label: "Acme", Score: 5.0, Prior: 0.4, ContextString: "unrelated; topics"},
	}
	ranked := Rerank(q, candidates, DefaultLookupWeights, false)
	if len(ranked) != 2 {
		t.Fatalf("Rerank = %d results, want 2", len(ranked))
	}
	if ranked[0].Candidate.QID != "Q1" {
		t.Fatalf("top result = %+v, want Q1 (higher context overlap)", ranked[0])
	}
}

func TestNormalizeScoreRangeAllZeroYieldsZero(t *testing.T) {
	if got := normalizeScoreRange(0, 0, 0); got != 0.0 {
		t.Fatalf("normalizeScoreRange(0,0,0) = %v, want 0.0", got)
	}
}

func TestNormalizeScoreRangeFlatPositiveYieldsOne(t *testing.T) {
	if got := normalizeScoreRange(3, 3, 3); got != 1.0 {
		t.Fatalf("normalizeScoreRange(3,3,3) = %v, want 1.0", got)
	}
}

func TestTypeMatchScoreFinePriorityOverCoarse(t *testing.T) {
	coarseSet := toSet([]string{"ORG"})
	fineSet := toSet([]string{"COMPANY"})

	fineMatchOnly := store.Candidate{CoarseType: "PERSON", FineType: "COMPANY"}
	if got := typeMatchScore(fineMatchOnly, coarseSet, fineSet); got != 1.0 {
		t.Fatalf("typeMatchScore(fine match, coarse miss) = %v, want 1.0 (fine short-circuits)", got)
	}

	coarseMatchOnly := store.Candidate{CoarseType: "ORG", FineType: "NONMATCH"}
	if got := typeMatchScore(coarseMatchOnly, coarseSet, fineSet); got != 0.5 {
		t.Fatalf("typeMatchScore(coarse match only) = %v, want 0.5", got)
	}

	noMatch := store.Candidate{CoarseType: "PLACE", FineType: "CITY"}
	if got := typeMatchScore(noMatch, coarseSet, fineSet); got != 0.0 {
		t.Fatalf("typeMatchScore(no match) = %v, want 0.0", got)
	}

	coarseOnlyHints := store.Candidate{CoarseType: "ORG", FineType: "IRRELEVANT"}
	if got := typeMatchScore(coarseOnlyHints, coarseSet, nil); got != 0.5 {
		t.Fatalf("typeMatchScore(coarse hints only, match) = %v, want 0.5", got)
	}
}
