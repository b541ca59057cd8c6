package retrieval

import "testing"

func TestNormalizeExactTextFoldsAccentsAndCase(t *testing.T) {
	got := NormalizeExactText("Café  MÜLLER-Schmidt")
	want := "cafe muller schmidt"
	if got != want {
		t.Fatalf("NormalizeExactText = %q, want %q", got, want)
	}
}

func TestNormalizeExactTextCollapsesPunctuationRuns(t *testing.T) {
	got := NormalizeExactText("  Apple, Inc.!! ")
	want := "apple inc"
	if got != want {
		t.Fatalf("NormalizeExactText = %q, want %q", got, want)
	}
}

func TestNormalizeTermListDedupesPreservingOrder(t *testing.T) {
	got := NormalizeTermList([]string{"Berlin Germany", "GERMANY"})
	want := []string{"berlin", "germany"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTermList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeTermList[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestCompactCrosslinkHintsStripsKnownPrefixes(t *testing.T) {
	got := CompactCrosslinkHints([]string{
		"https://en.wikipedia.org/wiki/Apple_Inc.",
		"https://dbpedia.org/resource/Apple_Inc.",
		"Already_Compact",
	})
	want := []string{"Apple_Inc.", "Already_Compact"}
	if len(got) != len(want) {
		t.Fatalf("CompactCrosslinkHints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("CompactCrosslinkHints[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestCompactCrosslinkHintsDedupesAfterCompaction(t *testing.T) {
	got := CompactCrosslinkHints([]string{
		"https://en.wikipedia.org/wiki/Apple_Inc.",
		"Apple_Inc.",
	})
	want := []string{"Apple_Inc."}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("CompactCrosslinkHints = %v, want %v", got, want)
	}
}

func TestNormalizeTypeHintsDropsInvalidTokens(t *testing.T) {
	got := NormalizeTypeHints([]string{"organization", "  ", "bad label!", "company", "ORGANIZATION"})
	want := []string{"ORGANIZATION", "COMPANY"}
	if len(got) != len(want) {
		t.Fatalf("NormalizeTypeHints = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NormalizeTypeHints[%d] = %q, want %q (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestBuildCacheKeyIsStableAcrossIdenticalInput(t *testing.T) {
	q1 := NormalizedQuery{
		MentionNorm:  "apple inc",
		ContextTerms: []string{"technology", "cupertino"},
		Limit:        10,
	}
	q2 := q1
	q2.ContextTerms = []string{"technology", "cupertino"}

	if BuildCacheKey(q1) != BuildCacheKey(q2) {
		t.Fatalf("BuildCacheKey not stable across identical input")
	}
}

func TestBuildCacheKeyDiffersOnMention(t *testing.T) {
	base := NormalizedQuery{MentionNorm: "apple inc", Limit: 10}
	variant := base
	variant.MentionNorm = "apple inc."

	if BuildCacheKey(base) == BuildCacheKey(variant) {
		t.Fatalf("BuildCacheKey collided for distinct mentions")
	}
}
