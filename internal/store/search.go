package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Candidate is one fuzzy-search result row, matching the shape the
// Reranker (4.K) expects from the Candidate Searcher (4.J).
type Candidate struct {
	QID           string
	Label         string
	Aliases       []string
	ContextString string
	CoarseType    string
	FineType      string
	ItemCategory  string
	Popularity    float64
	Prior         float64
	WikipediaRef  string
	DBpediaRef    string
	Score         float64
}

// SearchParams is the normalized input to [Store.SearchCandidatesFuzzy],
// produced by the Query Normalizer (4.I).
type SearchParams struct {
	MentionQuery   string
	ContextQuery   string
	CrosslinkQuery string
	CoarseHints    []string
	FineHints      []string
	Size           int
}

const aliasesExpr = "COALESCE(entityretrieval_join_text_array(aliases), '')"
const crossRefExpr = "(COALESCE(wikipedia_url, '') || ' ' || COALESCE(dbpedia_url, ''))"
const aliasesNonemptyPred = "COALESCE(array_length(aliases, 1), 0) > 0"
const crossRefsNonemptyPred = "(COALESCE(wikipedia_url, '') <> '' OR COALESCE(dbpedia_url, '') <> '')"

// SearchCandidatesFuzzy executes the single-strategy fuzzy recall query:
// full-text match OR trigram label/alias similarity OR (when a crosslink
// hint is present) trigram cross-reference similarity, each gated by
// coarse/fine type-hint filters when supplied. Ordered by
// (score DESC, prior DESC, qid ASC), capped at size.
//
// The SQL-side score's fourth term is gated on context-query presence (not
// crosslink presence) — see DESIGN.md for why this departs from the
// original reference implementation's gating.
func (s *Store) SearchCandidatesFuzzy(ctx context.Context, p SearchParams) ([]Candidate, error) {
	if p.MentionQuery == "" || p.Size <= 0 {
		return nil, nil
	}

	args := []any{p.MentionQuery} // score terms first
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	mentionArg2 := next(p.MentionQuery)
	mentionArg3 := next(p.MentionQuery)
	crosslinkArg1 := next(p.CrosslinkQuery)
	crosslinkArg2 := next(p.CrosslinkQuery)
	contextArg1 := next(p.ContextQuery)
	contextArg2 := next(p.ContextQuery)

	scoreExpr := fmt.Sprintf(`
        COALESCE(ts_rank_cd(search_vector, plainto_tsquery('simple', $1)), 0.0) * 5.0 +
        GREATEST(
            COALESCE(similarity(label, %s), 0.0),
            COALESCE(similarity(%s, %s), 0.0)
        ) * 2.0 +
        CASE
            WHEN %s <> '' THEN COALESCE(similarity(%s, %s), 0.0) * 1.5
            ELSE 0.0
        END +
        CASE
            WHEN %s <> '' THEN COALESCE(
                ts_rank_cd(
                    to_tsvector('simple', entityretrieval_filter_fts_context(LEFT(context_string, 256))),
                    plainto_tsquery('simple', %s)
                ),
                0.0
            )
            ELSE 0.0
        END
    `, mentionArg2, aliasesExpr, mentionArg3, crosslinkArg1, crossRefExpr, crosslinkArg2, contextArg1, contextArg2)

	whereMentionArg := next(p.MentionQuery)
	whereLabelArg := next(p.MentionQuery)
	whereAliasesArg := next(p.MentionQuery)
	whereCrosslinkPresentArg := next(p.CrosslinkQuery)
	whereCrosslinkArg := next(p.CrosslinkQuery)

	predicate := fmt.Sprintf(
		"(search_vector @@ plainto_tsquery('simple', %s) OR label %% %s OR (%s AND %s %% %s) OR "+
			"(%s <> '' AND %s AND %s %% %s))",
		whereMentionArg, whereLabelArg,
		aliasesNonemptyPred, aliasesExpr, whereAliasesArg,
		whereCrosslinkPresentArg, crossRefsNonemptyPred, crossRefExpr, whereCrosslinkArg,
	)

	conditions := []string{predicate}
	if len(p.CoarseHints) > 0 {
		conditions = append(conditions, "coarse_type = ANY("+next(p.CoarseHints)+")")
	}
	if len(p.FineHints) > 0 {
		conditions = append(conditions, "fine_type = ANY("+next(p.FineHints)+")")
	}

	limitArg := next(p.Size)

	sql := fmt.Sprintf(`
        SELECT
            qid, label, aliases, context_string,
            coarse_type, fine_type, item_category, popularity, prior, wikipedia_url, dbpedia_url,
            (%s) AS score
        FROM entities
        WHERE %s
        ORDER BY score DESC, prior DESC, qid ASC
        LIMIT %s
    `, scoreExpr, strings.Join(conditions, " AND "), limitArg)

	var candidates []Candidate
	err := s.guardQuery(func() error {
		rows, qErr := s.pool.Query(ctx, sql, args...)
		if qErr != nil {
			return qErr
		}
		defer rows.Close()

		collected, cErr := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Candidate, error) {
			var c Candidate
			var aliases []string
			if err := row.Scan(
				&c.QID, &c.Label, &aliases, &c.ContextString,
				&c.CoarseType, &c.FineType, &c.ItemCategory, &c.Popularity, &c.Prior,
				&c.WikipediaRef, &c.DBpediaRef, &c.Score,
			); err != nil {
				return Candidate{}, err
			}
			c.Aliases = aliases
			return c, nil
		})
		if cErr != nil {
			return cErr
		}
		candidates = collected
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: search candidates fuzzy: %w", err)
	}
	return candidates, nil
}
