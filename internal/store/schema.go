package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ddlFunctions installs the SQL helper functions the search vector and
// score-query expressions depend on: joining an alias array into searchable
// text, and stopword/short-token filtering for the label/alias and context
// tsvector inputs respectively.
const ddlFunctions = `
CREATE OR REPLACE FUNCTION entityretrieval_join_text_array(arr TEXT[])
RETURNS TEXT
LANGUAGE SQL
IMMUTABLE
PARALLEL SAFE
RETURNS NULL ON NULL INPUT
AS $$
    SELECT array_to_string(arr, ' ');
$$;

CREATE OR REPLACE FUNCTION entityretrieval_filter_fts_text(txt TEXT)
RETURNS TEXT
LANGUAGE SQL
IMMUTABLE
PARALLEL SAFE
RETURNS NULL ON NULL INPUT
AS $$
    SELECT COALESCE(string_agg(tok, ' ' ORDER BY ord), '')
    FROM (
        SELECT m.match_arr[1] AS tok, m.ord
        FROM regexp_matches(lower(txt), '[[:alnum:]]+', 'g')
             WITH ORDINALITY AS m(match_arr, ord)
    ) AS parts
    WHERE char_length(tok) >= 2
      AND tok <> ALL(ARRAY[
            'a','an','the','and','or','but',
            'of','in','on','at','to','for','from','by','with','without',
            'into','onto','over','under','after','before','during',
            'between','among','via','per',
            'is','are','was','were','be','been','being',
            'this','that','these','those'
        ]::text[]);
$$;

CREATE OR REPLACE FUNCTION entityretrieval_filter_fts_context(txt TEXT)
RETURNS TEXT
LANGUAGE SQL
IMMUTABLE
PARALLEL SAFE
RETURNS NULL ON NULL INPUT
AS $$
    SELECT COALESCE(string_agg(tok, ' ' ORDER BY first_ord), '')
    FROM (
        SELECT tok, MIN(ord) AS first_ord
        FROM (
            SELECT m.match_arr[1] AS tok, m.ord
            FROM regexp_matches(lower(txt), '[[:alnum:]]+', 'g')
                 WITH ORDINALITY AS m(match_arr, ord)
        ) AS parts
        WHERE char_length(tok) >= 3
          AND tok !~ '^[0-9]+$'
          AND tok <> ALL(ARRAY[
                'a','an','the','and','or','but',
                'of','in','on','at','to','for','from','by','with','without',
                'into','onto','over','under','after','before','during',
                'between','among','via','per',
                'is','are','was','were','be','been','being',
                'this','that','these','those',
                'monday','tuesday','wednesday','thursday','friday','saturday','sunday',
                'january','february','march','april','may','june',
                'july','august','september','october','november','december'
            ]::text[])
        GROUP BY tok
        ORDER BY MIN(ord)
        LIMIT 64
    ) AS filtered;
$$;
`

const ddlEntities = `
CREATE TABLE IF NOT EXISTS entities (
    qid            TEXT         PRIMARY KEY,
    label          TEXT         NOT NULL,
    context_string TEXT         NOT NULL DEFAULT '',
    aliases        TEXT[]       NOT NULL DEFAULT ARRAY[]::text[],
    search_vector  TSVECTOR     NOT NULL DEFAULT ''::tsvector,
    coarse_type    TEXT         NOT NULL DEFAULT '',
    fine_type      TEXT         NOT NULL DEFAULT '',
    item_category  TEXT         NOT NULL DEFAULT '',
    popularity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    prior          DOUBLE PRECISION NOT NULL DEFAULT 0,
    wikipedia_url  TEXT         NOT NULL DEFAULT '',
    dbpedia_url    TEXT         NOT NULL DEFAULT '',
    updated_at     TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_entities_coarse_type ON entities (coarse_type);
CREATE INDEX IF NOT EXISTS idx_entities_fine_type ON entities (fine_type);
CREATE INDEX IF NOT EXISTS idx_entities_item_category ON entities (item_category);
`

// ddlContextInputs backs the auxiliary table the Pass-2 Context Builder
// reads from (relation_object_qids per qid). Dropped by [Store.CompactForLookup]
// once context has been finalized.
const ddlContextInputs = `
CREATE TABLE IF NOT EXISTS entity_context_inputs (
    qid                   TEXT         PRIMARY KEY,
    relation_object_qids  JSONB        NOT NULL DEFAULT '[]'::jsonb,
    updated_at            TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

const ddlQueryCache = `
CREATE TABLE IF NOT EXISTS query_cache (
    cache_key  TEXT         PRIMARY KEY,
    result     JSONB        NOT NULL,
    created_at TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_query_cache_created_at ON query_cache (created_at);
`

// ddlSampleEntityCache backs the resolve_labels fallback path (spec.md
// §6 "sample cache"). Populated only by out-of-scope tooling; this store
// only reads from it.
const ddlSampleEntityCache = `
CREATE TABLE IF NOT EXISTS sample_entity_cache (
    qid         TEXT         PRIMARY KEY,
    entity_json JSONB        NOT NULL,
    source_url  TEXT         NOT NULL DEFAULT '',
    updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
`

// Migrate creates every table and helper function this store needs. It is
// idempotent and safe to call on every process start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		ddlFunctions,
		ddlEntities,
		ddlContextInputs,
		ddlQueryCache,
		ddlSampleEntityCache,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// EnsureSearchIndexes creates the pg_trgm extension and the GIN/trigram
// indexes the Candidate Searcher's match predicate depends on. Separate
// from [Migrate] because a bulk pass-1-only load may prefer to defer index
// maintenance until after all rows land.
func EnsureSearchIndexes(ctx context.Context, pool *pgxpool.Pool) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS pg_trgm;

CREATE INDEX IF NOT EXISTS idx_entities_search_vector ON entities USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_entities_label_trgm ON entities USING GIN (label gin_trgm_ops);
CREATE INDEX IF NOT EXISTS idx_entities_aliases_trgm
ON entities USING GIN (entityretrieval_join_text_array(aliases) gin_trgm_ops)
WHERE COALESCE(array_length(aliases, 1), 0) > 0;
CREATE INDEX IF NOT EXISTS idx_entities_cross_refs_trgm
ON entities USING GIN ((COALESCE(wikipedia_url, '') || ' ' || COALESCE(dbpedia_url, '')) gin_trgm_ops)
WHERE (COALESCE(wikipedia_url, '') <> '' OR COALESCE(dbpedia_url, '') <> '');
`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("store: ensure search indexes: %w", err)
	}
	return nil
}

// CompactForLookup drops entity_context_inputs, which exists only to feed
// the Pass-2 Context Builder; once context has been finalized for every
// row it is dead weight at query time.
func CompactForLookup(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS entity_context_inputs`); err != nil {
		return fmt.Errorf("store: compact for lookup: %w", err)
	}
	return nil
}
