package retrieval

// LookupWeights are the reranker's linear-combination weights over the four
// component scores (name, context, type, prior). They sum to 1.0 before the
// exact-match bonus is added on top.
type LookupWeights struct {
	Name    float64
	Context float64
	Type    float64
	Prior   float64
}

// DefaultLookupWeights mirrors the reference weighting: name similarity
// dominates, context and prior act as tie-breaking signals.
var DefaultLookupWeights = LookupWeights{
	Name:    0.62,
	Context: 0.23,
	Type:    0.10,
	Prior:   0.05,
}

// ExactMatchBonus is added to the final score when the candidate's label or
// an alias normalizes identically to the query mention and [Rerank] runs
// with exactMode set.
const ExactMatchBonus = 0.05

// DefaultFuzzyTopK bounds how many candidates the store's fuzzy search
// returns before reranking, when the caller does not specify a limit.
const DefaultFuzzyTopK = 20
