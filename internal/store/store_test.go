package store_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/entityretrieval/entityretrieval/internal/store"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if ENTITYRETRIEVAL_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("ENTITYRETRIEVAL_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ENTITYRETRIEVAL_TEST_POSTGRES_DSN not set — skipping PostgreSQL integration tests")
	}
	return dsn
}

// newTestStore creates a fresh [store.Store] with a clean schema.
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

func TestUpsertAndResolveLabels(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	rows := []store.EntityRecord{
		{
			QID:        "Q312",
			Label:      "Apple Inc.",
			Labels:     map[string]string{"en": "Apple Inc."},
			Aliases:    map[string][]string{"en": {"Apple Computer"}},
			CoarseType: "ORGANIZATION",
			FineType:   "COMPANY",
			Popularity: 100,
		},
	}
	n, err := s.UpsertEntities(ctx, rows, true)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	labels, err := s.ResolveLabels(ctx, []string{"Q312"})
	require.NoError(t, err)
	require.Equal(t, "Apple Inc.", labels["Q312"])
}

func TestSearchCandidatesFuzzyFindsByLabel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.EnsureSearchIndexes(ctx, s.Pool()))

	_, err := s.UpsertEntities(ctx, []store.EntityRecord{
		{
			QID:        "Q312",
			Label:      "Apple Inc.",
			Labels:     map[string]string{"en": "Apple Inc."},
			CoarseType: "ORGANIZATION",
			FineType:   "COMPANY",
			Popularity: 100,
		},
	}, true)
	require.NoError(t, err)

	candidates, err := s.SearchCandidatesFuzzy(ctx, store.SearchParams{
		MentionQuery: "apple",
		Size:         10,
	})
	require.NoError(t, err)
	require.NotEmpty(t, candidates)
	require.Equal(t, "Q312", candidates[0].QID)
}

func TestQueryCacheRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutQueryCache(ctx, "key-1", map[string]any{"qid": "Q312"}))
	got, err := s.GetQueryCache(ctx, "key-1")
	require.NoError(t, err)
	require.Equal(t, "Q312", got["qid"])

	missing, err := s.GetQueryCache(ctx, "does-not-exist")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestPruneQueryCache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutQueryCache(ctx, "old-key", map[string]any{"x": 1}))

	n, err := s.PruneQueryCache(ctx, time.Nanosecond)
	require.NoError(t, err)
	require.GreaterOrEqual(t, n, int64(1))
}
