package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/entityretrieval/entityretrieval/internal/httpapi"
	"github.com/entityretrieval/entityretrieval/internal/retrieval"
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

func newTestServer(t *testing.T) *httpapi.Server {
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
	require.NoError(t, store.EnsureSearchIndexes(ctx, s.Pool()))

	_, err = s.UpsertEntities(ctx, []store.EntityRecord{
		{
			QID:        "Q937",
			Label:      "Albert Einstein",
			Labels:     map[string]string{"en": "Albert Einstein"},
			CoarseType: "PERSON",
			FineType:   "SCIENTIST",
			Popularity: 500,
		},
	}, true)
	require.NoError(t, err)

	return httpapi.New(retrieval.NewService(s), s, nil)
}

func TestHandleLookup_ReturnsRankedResult(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lookup?mention=Albert+Einstein")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body retrieval.LookupResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Top1)
	require.Equal(t, "Q937", body.Top1.QID)
	require.False(t, body.CacheHit)
}

func TestHandleLookup_MissingMentionReturns400(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lookup")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLookup_TopKZeroReturns400(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lookup?mention=Albert+Einstein&top_k=0")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLookup_TopKOver100Returns400(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lookup?mention=Albert+Einstein&top_k=101")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleLookup_PunctuationOnlyMentionReturns400(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/lookup?mention=" + url.QueryEscape("!!!"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthz_ReturnsOK(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics_ServesPrometheusExposition(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
