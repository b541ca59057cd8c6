package store

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"

	"github.com/entityretrieval/entityretrieval/internal/wikidata"
)

const sqlUpsertWithVector = `
INSERT INTO entities (
    qid, label, context_string,
    aliases, search_vector,
    coarse_type, fine_type, item_category, popularity, prior,
    wikipedia_url, dbpedia_url
) VALUES (
    $1, $2, $3,
    $4::text[],
    (
        setweight(to_tsvector('simple', entityretrieval_filter_fts_text($5)), 'A') ||
        setweight(to_tsvector('simple', entityretrieval_filter_fts_text($6)), 'B') ||
        setweight(to_tsvector('simple', entityretrieval_filter_fts_context($7)), 'D')
    ),
    $8, $9, $10, $11, $12,
    $13, $14
)
ON CONFLICT (qid) DO UPDATE SET
    label = EXCLUDED.label,
    context_string = EXCLUDED.context_string,
    aliases = EXCLUDED.aliases,
    search_vector = EXCLUDED.search_vector,
    coarse_type = EXCLUDED.coarse_type,
    fine_type = EXCLUDED.fine_type,
    item_category = EXCLUDED.item_category,
    popularity = EXCLUDED.popularity,
    prior = EXCLUDED.prior,
    wikipedia_url = EXCLUDED.wikipedia_url,
    dbpedia_url = EXCLUDED.dbpedia_url,
    updated_at = now()
`

const sqlUpsertWithoutVector = `
INSERT INTO entities (
    qid, label, context_string,
    aliases, search_vector,
    coarse_type, fine_type, item_category, popularity, prior,
    wikipedia_url, dbpedia_url
) VALUES (
    $1, $2, $3,
    $4::text[],
    ''::tsvector,
    $5, $6, $7, $8, $9,
    $10, $11
)
ON CONFLICT (qid) DO UPDATE SET
    label = EXCLUDED.label,
    context_string = EXCLUDED.context_string,
    aliases = EXCLUDED.aliases,
    search_vector = EXCLUDED.search_vector,
    coarse_type = EXCLUDED.coarse_type,
    fine_type = EXCLUDED.fine_type,
    item_category = EXCLUDED.item_category,
    popularity = EXCLUDED.popularity,
    prior = EXCLUDED.prior,
    wikipedia_url = EXCLUDED.wikipedia_url,
    dbpedia_url = EXCLUDED.dbpedia_url,
    updated_at = now()
`

const sqlUpsertContextInputs = `
INSERT INTO entity_context_inputs (qid, relation_object_qids, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (qid) DO UPDATE SET
    relation_object_qids = EXCLUDED.relation_object_qids,
    updated_at = now()
`

// UpsertEntities batch-inserts or replaces rows. This is an ingestion write
// path: it is never wrapped in the query-path circuit breaker and never
// retried on failure, per the error handling design.
//
// When buildSearchVector is false the search_vector column is left empty;
// it is expected to be rebuilt later by [Store.UpdateContextStrings] once
// pass 2 has resolved context strings.
func (s *Store) UpsertEntities(ctx context.Context, rows []EntityRecord, buildSearchVector bool) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		cols := buildSearchColumns(row)
		if buildSearchVector {
			batch.Queue(sqlUpsertWithVector,
				row.QID, row.Label, row.ContextString,
				cols.lookupAliases,
				wikidata.NormalizeText(row.Label), cols.aliasesText, cols.contextSearchText,
				row.CoarseType, row.FineType, row.ItemCategory, row.Popularity, cols.prior,
				cols.wikipediaURL, cols.dbpediaURL,
			)
		} else {
			batch.Queue(sqlUpsertWithoutVector,
				row.QID, row.Label, row.ContextString,
				cols.lookupAliases,
				row.CoarseType, row.FineType, row.ItemCategory, row.Popularity, cols.prior,
				cols.wikipediaURL, cols.dbpediaURL,
			)
		}

		relationJSON, err := canonicalJSON(row.RelationObjectQIDs)
		if err != nil {
			return 0, fmt.Errorf("store: encode relation_object_qids for %s: %w", row.QID, err)
		}
		batch.Queue(sqlUpsertContextInputs, row.QID, relationJSON)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("store: upsert entities: %w", err)
		}
	}
	return len(rows), nil
}

// canonicalJSON encodes v with sonic, the fast JSON codec used throughout
// the dump-facing hot paths.
func canonicalJSON(v any) ([]byte, error) {
	if v == nil {
		v = []string{}
	}
	return sonic.Marshal(v)
}

// IterEntityIDs calls yield with successive ordered batches of at most
// batchSize qids, stopping early if yield returns false.
func (s *Store) IterEntityIDs(ctx context.Context, batchSize int, yield func([]string) bool) error {
	if batchSize <= 0 {
		return fmt.Errorf("store: iter entity ids: batchSize must be > 0")
	}
	rows, err := s.pool.Query(ctx, `SELECT qid FROM entities ORDER BY qid`)
	if err != nil {
		return fmt.Errorf("store: iter entity ids: %w", err)
	}
	defer rows.Close()

	batch := make([]string, 0, batchSize)
	for rows.Next() {
		var qid string
		if err := rows.Scan(&qid); err != nil {
			return fmt.Errorf("store: iter entity ids: scan: %w", err)
		}
		batch = append(batch, qid)
		if len(batch) == batchSize {
			if !yield(batch) {
				return nil
			}
			batch = make([]string, 0, batchSize)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("store: iter entity ids: %w", err)
	}
	if len(batch) > 0 {
		yield(batch)
	}
	return nil
}

// ContextInput is one row of (qid, relation_object_qids) loaded for pass 2.
type ContextInput struct {
	QID                string
	RelationObjectQIDs []string
}

// LoadContextInputs returns the relation-object lists for qids, sorted by
// qid for deterministic downstream processing.
func (s *Store) LoadContextInputs(ctx context.Context, qids []string) ([]ContextInput, error) {
	if len(qids) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT qid, relation_object_qids FROM entity_context_inputs WHERE qid = ANY($1)`,
		qids,
	)
	if err != nil {
		return nil, fmt.Errorf("store: load context inputs: %w", err)
	}
	defer rows.Close()

	var out []ContextInput
	for rows.Next() {
		var qid string
		var raw []byte
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, fmt.Errorf("store: load context inputs: scan: %w", err)
		}
		var related []string
		_ = sonic.Unmarshal(raw, &related)
		out = append(out, ContextInput{QID: qid, RelationObjectQIDs: related})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: load context inputs: %w", err)
	}
	sortContextInputs(out)
	return out, nil
}

func sortContextInputs(inputs []ContextInput) {
	for i := 1; i < len(inputs); i++ {
		for j := i; j > 0 && inputs[j].QID < inputs[j-1].QID; j-- {
			inputs[j], inputs[j-1] = inputs[j-1], inputs[j]
		}
	}
}

// ResolveLabels returns a best-effort qid-to-label map. Any qid missing from
// the main entities table is retried against sample_entity_cache, the
// auxiliary cache fed by external sample-fetch tooling.
func (s *Store) ResolveLabels(ctx context.Context, qids []string) (map[string]string, error) {
	if len(qids) == 0 {
		return map[string]string{}, nil
	}

	resolved := map[string]string{}
	rows, err := s.pool.Query(ctx, `SELECT qid, label FROM entities WHERE qid = ANY($1)`, qids)
	if err != nil {
		return nil, fmt.Errorf("store: resolve labels: %w", err)
	}
	for rows.Next() {
		var qid, label string
		if err := rows.Scan(&qid, &label); err != nil {
			rows.Close()
			return nil, fmt.Errorf("store: resolve labels: scan: %w", err)
		}
		if label != "" {
			resolved[qid] = label
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("store: resolve labels: %w", err)
	}
	rows.Close()

	var missing []string
	for _, qid := range qids {
		if _, ok := resolved[qid]; !ok {
			missing = append(missing, qid)
		}
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	fallback, err := s.resolveSampleCacheLabels(ctx, missing)
	if err != nil {
		return nil, err
	}
	for qid, label := range fallback {
		if _, ok := resolved[qid]; !ok && label != "" {
			resolved[qid] = label
		}
	}
	return resolved, nil
}

func (s *Store) resolveSampleCacheLabels(ctx context.Context, qids []string) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT qid, entity_json FROM sample_entity_cache WHERE qid = ANY($1)`,
		qids,
	)
	if err != nil {
		return nil, fmt.Errorf("store: resolve sample cache labels: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var qid string
		var raw []byte
		if err := rows.Scan(&qid, &raw); err != nil {
			return nil, fmt.Errorf("store: resolve sample cache labels: scan: %w", err)
		}
		label := extractSampleEntityLabel(raw)
		if label != "" {
			out[qid] = label
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: resolve sample cache labels: %w", err)
	}
	return out, nil
}

// extractSampleEntityLabel picks a best-effort label from a raw dump-shaped
// entity blob: the English label if present, else the lexicographically
// first non-empty label across languages.
func extractSampleEntityLabel(raw []byte) string {
	var doc struct {
		Labels map[string]struct {
			Value string `json:"value"`
		} `json:"labels"`
	}
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return ""
	}
	if en, ok := doc.Labels["en"]; ok {
		if v := wikidata.NormalizeText(en.Value); v != "" {
			return v
		}
	}
	var bestLang, bestValue string
	for lang, payload := range doc.Labels {
		v := wikidata.NormalizeText(payload.Value)
		if v == "" {
			continue
		}
		if bestLang == "" || lang < bestLang {
			bestLang, bestValue = lang, v
		}
	}
	return bestValue
}

const sqlUpdateContextString = `
UPDATE entities
SET context_string = $1,
    search_vector = (
        setweight(to_tsvector('simple', entityretrieval_filter_fts_text(COALESCE(label, ''))), 'A') ||
        setweight(
            to_tsvector(
                'simple',
                entityretrieval_filter_fts_text(COALESCE(entityretrieval_join_text_array(aliases), ''))
            ),
            'B'
        ) ||
        setweight(
            to_tsvector(
                'simple',
                entityretrieval_filter_fts_context(LEFT(COALESCE($1::text, ''), 256))
            ),
            'D'
        )
    ),
    updated_at = now()
WHERE qid = $2
`

// ContextUpdate is one (qid, context_string) pair written by pass 2.
type ContextUpdate struct {
	QID           string
	ContextString string
}

// UpdateContextStrings writes the resolved context string for each row and
// rebuilds that row's search_vector using the label=A/aliases=B/context=D
// weighting scheme. An ingestion write path: not circuit-guarded.
func (s *Store) UpdateContextStrings(ctx context.Context, rows []ContextUpdate) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(sqlUpdateContextString, row.ContextString, row.QID)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return 0, fmt.Errorf("store: update context strings: %w", err)
		}
	}
	return len(rows), nil
}

// CountEntities returns the total row count of the entities table.
func (s *Store) CountEntities(ctx context.Context) (int64, error) {
	var count int64
	err := s.guardQuery(func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM entities`).Scan(&count)
	})
	if err != nil {
		return 0, fmt.Errorf("store: count entities: %w", err)
	}
	return count, nil
}
