package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/entityretrieval/entityretrieval/internal/ingest"
	"github.com/entityretrieval/entityretrieval/internal/pipeline"
	"github.com/entityretrieval/entityretrieval/internal/store"
)

func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("ENTITYRETRIEVAL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ENTITYRETRIEVAL_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	cleanPool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(cleanPool.Close)
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS query_cache CASCADE",
		"DROP TABLE IF EXISTS sample_entity_cache CASCADE",
		"DROP TABLE IF EXISTS entity_context_inputs CASCADE",
		"DROP TABLE IF EXISTS entities CASCADE",
	} {
		_, err := cleanPool.Exec(ctx, stmt)
		require.NoError(t, err)
	}

	s, err := store.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

const sampleDump = `[
{"id":"Q312","labels":{"en":{"language":"en","value":"Apple Inc."}},"claims":{"P452":[{"mainsnak":{"snaktype":"value","datavalue":{"value":{"id":"Q880"},"type":"wikibase-entityid"}}}]}},
{"id":"Q880","labels":{"en":{"language":"en","value":"Consumer electronics industry"}}}
]
`

func writeSampleDump(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleDump), 0o644))
	return path
}

func TestRun_Pass1AndPass2ProduceQueryableEntities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	dumpPath := writeSampleDump(t)

	var phases []string
	res, err := pipeline.Run(ctx, s, pipeline.Options{
		Pass1: ingest.Pass1Options{
			DumpPath:          dumpPath,
			LanguageAllowlist: []string{"en"},
		},
	}, func(phase string) { phases = append(phases, phase) })
	require.NoError(t, err)
	require.Equal(t, 2, res.Pass1.Stored)
	require.Equal(t, []string{"pass1", "pass2", "index"}, phases)

	candidates, err := s.SearchCandidatesFuzzy(ctx, store.SearchParams{
		MentionQuery: "apple inc",
		Size:         10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	require.Equal(t, "Q312", candidates[0].QID)
	require.Contains(t, candidates[0].ContextString, "Consumer electronics industry")
}

func TestRun_SkipsPhasesPerFlags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var phases []string
	_, err := pipeline.Run(ctx, s, pipeline.Options{
		SkipPass1: true,
		SkipPass2: true,
		Compact:   true,
	}, func(phase string) { phases = append(phases, phase) })
	require.NoError(t, err)
	require.Equal(t, []string{"index", "compact"}, phases)
}
