package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
)

// GetQueryCache returns the cached response blob for cacheKey, or nil if
// absent. The result is decoded into a generic map since query cache
// contents are opaque JSON from the retrieval core's point of view.
func (s *Store) GetQueryCache(ctx context.Context, cacheKey string) (map[string]any, error) {
	var raw []byte
	err := s.guardQuery(func() error {
		return s.pool.QueryRow(ctx, `SELECT result FROM query_cache WHERE cache_key = $1`, cacheKey).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("store: get query cache: %w", err)
	}
	var result map[string]any
	if err := sonic.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("store: get query cache: decode: %w", err)
	}
	return result, nil
}

// PutQueryCache upserts the cached response blob for cacheKey, stamping
// created_at to now. A query-path side effect, not an ingestion write, but
// cheap enough it is not worth circuit-guarding on its own.
func (s *Store) PutQueryCache(ctx context.Context, cacheKey string, result map[string]any) error {
	encoded, err := sonic.Marshal(result)
	if err != nil {
		return fmt.Errorf("store: put query cache: encode: %w", err)
	}
	const sql = `
        INSERT INTO query_cache (cache_key, result, created_at)
        VALUES ($1, $2::jsonb, now())
        ON CONFLICT (cache_key) DO UPDATE SET
            result = EXCLUDED.result,
            created_at = now()
    `
	if _, err := s.pool.Exec(ctx, sql, cacheKey, encoded); err != nil {
		return fmt.Errorf("store: put query cache: %w", err)
	}
	return nil
}

// PruneQueryCache deletes every cache entry older than maxAge, returning
// the number of rows removed. Not run automatically — exposed for the
// operator-driven `cache prune` CLI subcommand.
func (s *Store) PruneQueryCache(ctx context.Context, maxAge time.Duration) (int64, error) {
	if maxAge <= 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM query_cache WHERE created_at < (now() - ($1 * INTERVAL '1 second'))`,
		maxAge.Seconds(),
	)
	if err != nil {
		return 0, fmt.Errorf("store: prune query cache: %w", err)
	}
	return tag.RowsAffected(), nil
}
