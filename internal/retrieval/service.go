package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/entityretrieval/entityretrieval/internal/store"
)

// MaxMentionLength is the upper bound on a raw (pre-normalization) mention's
// rune length.
const MaxMentionLength = 512

// LookupRequest is the caller-supplied input to [Service.Lookup], before
// normalization.
type LookupRequest struct {
	Mention        string
	ContextHints   []string
	CrosslinkHints []string
	CoarseHints    []string
	FineHints      []string
	Limit          int
	IncludeTopK    bool

	// ExactMode gates the exact-match name-score pin and bonus in the
	// reranker (see [Rerank]). Defaults to false, matching the production
	// call site's hardcoded behavior.
	ExactMode bool
}

// ResultEntity is one ranked entity returned to the caller.
type ResultEntity struct {
	QID          string  `json:"qid"`
	Label        string  `json:"label"`
	CoarseType   string  `json:"coarse_type,omitempty"`
	FineType     string  `json:"fine_type,omitempty"`
	Score        float64 `json:"score"`
	Prior        float64 `json:"prior"`
	WikipediaRef string  `json:"wikipedia_ref,omitempty"`
	DBpediaRef   string  `json:"dbpedia_ref,omitempty"`
}

// LookupResponse is the full result of a lookup, echoing back the
// normalized request alongside the ranked entity (or entities).
type LookupResponse struct {
	Mention        string         `json:"mention"`
	MentionNorm    string         `json:"mention_norm"`
	ContextTerms   []string       `json:"context_terms"`
	CrosslinkHints []string       `json:"crosslink_hints"`
	CrosslinkTerms []string       `json:"crosslink_terms"`
	CoarseHints    []string       `json:"coarse_hints"`
	FineHints      []string       `json:"fine_hints"`
	Strategy       string         `json:"strategy"`
	Returned       int            `json:"returned"`
	Top1           *ResultEntity  `json:"top1,omitempty"`
	CacheHit       bool           `json:"cache_hit"`
	TopK           []ResultEntity `json:"top_k,omitempty"`
}

// Service orchestrates a lookup end to end: normalize, check the query
// cache, fall back to fuzzy search plus reranking, and write through to the
// cache on a miss.
type Service struct {
	store   *store.Store
	weights LookupWeights
}

// NewService returns a Service backed by s, using the default lookup
// weights.
func NewService(s *store.Store) *Service {
	return &Service{store: s, weights: DefaultLookupWeights}
}

// Lookup validates and normalizes req, returns a cached response when one
// exists for the resulting cache key, and otherwise runs fuzzy search plus
// reranking and writes the response back to the cache before returning it.
//
// A shape violation (empty or over-long mention, out-of-range top_k) is
// reported as a [ValidationError] and never reaches the cache or the store.
// A store failure at query time is reported as an [UpstreamError].
func (svc *Service) Lookup(ctx context.Context, req LookupRequest) (LookupResponse, error) {
	trimmedMention := strings.TrimSpace(req.Mention)
	if trimmedMention == "" {
		return LookupResponse{}, &ValidationError{Reason: "mention must be non-empty"}
	}
	if n := utf8.RuneCountInString(trimmedMention); n > MaxMentionLength {
		return LookupResponse{}, &ValidationError{Reason: fmt.Sprintf("mention must be at most %d characters, got %d", MaxMentionLength, n)}
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultFuzzyTopK
	} else if limit < 1 || limit > 100 {
		return LookupResponse{}, &ValidationError{Reason: fmt.Sprintf("top_k must be between 1 and 100, got %d", limit)}
	}

	compactedCrosslinks := CompactCrosslinkHints(req.CrosslinkHints)

	q := NormalizedQuery{
		Mention:        req.Mention,
		MentionNorm:    NormalizeExactText(req.Mention),
		ContextTerms:   NormalizeTermList(req.ContextHints),
		CrosslinkHints: compactedCrosslinks,
		CrosslinkTerms: NormalizeTermList(compactedCrosslinks),
		CoarseHints:    NormalizeTypeHints(req.CoarseHints),
		FineHints:      NormalizeTypeHints(req.FineHints),
		Limit:          limit,
		IncludeTopK:    req.IncludeTopK,
	}

	if q.MentionNorm == "" {
		return LookupResponse{}, &ValidationError{Reason: "mention must contain at least one alphanumeric character"}
	}

	cacheKey := BuildCacheKey(q)

	if cached, err := svc.store.GetQueryCache(ctx, cacheKey); err != nil {
		return LookupResponse{}, &UpstreamError{Op: "get query cache", Err: err}
	} else if cached != nil {
		resp, err := decodeCachedResponse(cached)
		if err != nil {
			return LookupResponse{}, fmt.Errorf("retrieval: lookup: decode cache hit: %w", err)
		}
		resp.CacheHit = true
		return resp, nil
	}

	searchSize := limit
	if searchSize < DefaultFuzzyTopK {
		searchSize = DefaultFuzzyTopK
	}

	candidates, err := svc.store.SearchCandidatesFuzzy(ctx, store.SearchParams{
		MentionQuery:   q.MentionNorm,
		ContextQuery:   strings.Join(q.ContextTerms, " "),
		CrosslinkQuery: strings.Join(q.CrosslinkTerms, " "),
		CoarseHints:    q.CoarseHints,
		FineHints:      q.FineHints,
		Size:           searchSize,
	})
	if err != nil {
		return LookupResponse{}, &UpstreamError{Op: "fuzzy search", Err: err}
	}

	ranked := Rerank(q, candidates, svc.weights, req.ExactMode)

	resp := LookupResponse{
		Mention:        req.Mention,
		MentionNorm:    q.MentionNorm,
		ContextTerms:   q.ContextTerms,
		CrosslinkHints: q.CrosslinkHints,
		CrosslinkTerms: q.CrosslinkTerms,
		CoarseHints:    q.CoarseHints,
		FineHints:      q.FineHints,
		Strategy:       "fuzzy",
		Returned:       len(ranked),
		CacheHit:       false,
	}

	if len(ranked) > 0 {
		top1 := toResultEntity(ranked[0])
		resp.Top1 = &top1
	}
	if req.IncludeTopK {
		resp.TopK = make([]ResultEntity, len(ranked))
		for i, r := range ranked {
			resp.TopK[i] = toResultEntity(r)
		}
	}

	if encoded, err := encodeForCache(resp); err == nil {
		_ = svc.store.PutQueryCache(ctx, cacheKey, encoded)
	}

	return resp, nil
}

func toResultEntity(r RankedResult) ResultEntity {
	return ResultEntity{
		QID:          r.Candidate.QID,
		Label:        r.Candidate.Label,
		CoarseType:   r.Candidate.CoarseType,
		FineType:     r.Candidate.FineType,
		Score:        r.FinalScore,
		Prior:        r.PriorScore,
		WikipediaRef: r.Candidate.WikipediaRef,
		DBpediaRef:   r.Candidate.DBpediaRef,
	}
}

// encodeForCache round-trips resp through JSON into a generic map, since
// [store.Store.PutQueryCache] stores opaque JSON blobs. cache_hit is
// deliberately not part of the stored shape — it is set fresh on every read.
func encodeForCache(resp LookupResponse) (map[string]any, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func decodeCachedResponse(cached map[string]any) (LookupResponse, error) {
	raw, err := json.Marshal(cached)
	if err != nil {
		return LookupResponse{}, err
	}
	var resp LookupResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return LookupResponse{}, err
	}
	return resp, nil
}
