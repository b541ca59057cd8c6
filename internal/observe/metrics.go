// Package observe provides application-wide observability primitives for
// the entity retrieval service: OpenTelemetry metrics, distributed tracing,
// structured logging, and HTTP middleware that ties them together.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so that metrics can still be
// scraped via the standard /metrics endpoint. A package-level default
// [Metrics] instance ([DefaultMetrics]) is provided for convenience; tests
// should use [NewMetrics] with a custom [metric.MeterProvider] to avoid
// cross-test pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all service metrics.
const meterName = "github.com/entityretrieval/entityretrieval"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use — the underlying OTel types handle
// their own synchronisation.
type Metrics struct {
	// --- Latency histograms ---

	// LookupDuration tracks end-to-end lookup request latency.
	LookupDuration metric.Float64Histogram

	// FuzzySearchDuration tracks the entity store's fuzzy-search query
	// latency.
	FuzzySearchDuration metric.Float64Histogram

	// IngestBatchDuration tracks per-batch transform+upsert latency during
	// pass 1 and per-batch context-resolution latency during pass 2.
	IngestBatchDuration metric.Float64Histogram

	// --- Counters ---

	// LookupRequests counts lookup requests. Use with attributes:
	//   attribute.String("strategy", ...), attribute.Bool("cache_hit", ...)
	LookupRequests metric.Int64Counter

	// CacheHits and CacheMisses count query cache outcomes.
	CacheHits   metric.Int64Counter
	CacheMisses metric.Int64Counter

	// EntitiesIngested counts entities successfully upserted during pass 1.
	EntitiesIngested metric.Int64Counter

	// EntitiesTyped counts entities the lexical NER typer assigned a
	// coarse or fine type to, during pass 1.
	EntitiesTyped metric.Int64Counter

	// ContextStringsBuilt counts entities whose context string was
	// (re)written during pass 2.
	ContextStringsBuilt metric.Int64Counter

	// --- Error counters ---

	// StoreErrors counts entity store errors. Use with attribute:
	//   attribute.String("operation", ...)
	StoreErrors metric.Int64Counter

	// CircuitBreakerTrips counts transitions of the query-path circuit
	// breaker into the open state.
	CircuitBreakerTrips metric.Int64Counter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// latencyBuckets defines histogram bucket boundaries (in seconds) optimised
// for interactive lookup latencies.
var latencyBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5,
}

// ingestBatchBuckets defines histogram bucket boundaries (in seconds) sized
// for batch-oriented ingestion work, an order of magnitude coarser than
// interactive lookup latencies.
var ingestBatchBuckets = []float64{
	0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.LookupDuration, err = m.Float64Histogram("entityretrieval.lookup.duration",
		metric.WithDescription("End-to-end lookup request latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FuzzySearchDuration, err = m.Float64Histogram("entityretrieval.fuzzy_search.duration",
		metric.WithDescription("Entity store fuzzy-search query latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(latencyBuckets...),
	); err != nil {
		return nil, err
	}
	if met.IngestBatchDuration, err = m.Float64Histogram("entityretrieval.ingest.batch.duration",
		metric.WithDescription("Per-batch ingestion pipeline latency."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ingestBatchBuckets...),
	); err != nil {
		return nil, err
	}

	if met.LookupRequests, err = m.Int64Counter("entityretrieval.lookup.requests",
		metric.WithDescription("Total lookup requests by strategy and cache outcome."),
	); err != nil {
		return nil, err
	}
	if met.CacheHits, err = m.Int64Counter("entityretrieval.cache.hits",
		metric.WithDescription("Total query cache hits."),
	); err != nil {
		return nil, err
	}
	if met.CacheMisses, err = m.Int64Counter("entityretrieval.cache.misses",
		metric.WithDescription("Total query cache misses."),
	); err != nil {
		return nil, err
	}
	if met.EntitiesIngested, err = m.Int64Counter("entityretrieval.ingest.entities",
		metric.WithDescription("Total entities upserted during pass 1."),
	); err != nil {
		return nil, err
	}
	if met.EntitiesTyped, err = m.Int64Counter("entityretrieval.ingest.entities_typed",
		metric.WithDescription("Total entities assigned a coarse or fine NER type during pass 1."),
	); err != nil {
		return nil, err
	}
	if met.ContextStringsBuilt, err = m.Int64Counter("entityretrieval.ingest.context_strings_built",
		metric.WithDescription("Total entities whose context string was rebuilt during pass 2."),
	); err != nil {
		return nil, err
	}

	if met.StoreErrors, err = m.Int64Counter("entityretrieval.store.errors",
		metric.WithDescription("Total entity store errors by operation."),
	); err != nil {
		return nil, err
	}
	if met.CircuitBreakerTrips, err = m.Int64Counter("entityretrieval.circuit_breaker.trips",
		metric.WithDescription("Total query-path circuit breaker trips into the open state."),
	); err != nil {
		return nil, err
	}

	if met.HTTPRequestDuration, err = m.Float64Histogram("entityretrieval.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Subsequent calls return the same
// pointer. Panics if instrument creation fails (should not happen with the
// global provider).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String] to reduce verbosity at
// call sites.
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// RecordLookup is a convenience method that records a lookup request
// counter increment with the standard attribute set, and routes the cache
// outcome to the hit/miss counters.
func (m *Metrics) RecordLookup(ctx context.Context, strategy string, cacheHit bool) {
	m.LookupRequests.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("strategy", strategy),
			attribute.Bool("cache_hit", cacheHit),
		),
	)
	if cacheHit {
		m.CacheHits.Add(ctx, 1)
	} else {
		m.CacheMisses.Add(ctx, 1)
	}
}

// RecordStoreError is a convenience method that records a store error
// counter increment for the given operation name.
func (m *Metrics) RecordStoreError(ctx context.Context, operation string) {
	m.StoreErrors.Add(ctx, 1,
		metric.WithAttributes(attribute.String("operation", operation)),
	)
}
