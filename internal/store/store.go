package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/entityretrieval/entityretrieval/internal/resilience"
)

// Store is the PostgreSQL-backed Entity Store (spec component 4.F). All
// methods are safe for concurrent use; ingestion (pass 1 / pass 2) is
// expected to be single-tenant per run, but concurrent query-path readers
// are always permitted.
type Store struct {
	pool    *pgxpool.Pool
	breaker *resilience.CircuitBreaker
}

// NewStore opens a connection pool against dsn and runs [Migrate]. The
// returned Store wraps query-path calls (never batch ingestion writes) in a
// circuit breaker so a degraded database does not cascade into unbounded
// query-path latency; it never retries on the caller's behalf.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:         "entity-store-query-path",
		MaxFailures:  5,
		ResetTimeout: 10 * time.Second,
	})

	return &Store{pool: pool, breaker: breaker}, nil
}

// Pool exposes the underlying connection pool for components (schema
// migration helpers, CLI maintenance subcommands) that need direct access.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

// Close releases all pooled connections.
func (s *Store) Close() {
	s.pool.Close()
}

// guardQuery runs fn through the query-path circuit breaker. Ingestion
// writes must never call this — they are expected to fail fast, not trip a
// breaker meant to protect the read path.
func (s *Store) guardQuery(fn func() error) error {
	return s.breaker.Execute(fn)
}
