// Package httpapi exposes the entity retrieval core over HTTP: a /lookup
// endpoint backed by [retrieval.Service], liveness/readiness probes, and a
// Prometheus /metrics endpoint.
package httpapi

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/entityretrieval/entityretrieval/internal/health"
	"github.com/entityretrieval/entityretrieval/internal/observe"
	"github.com/entityretrieval/entityretrieval/internal/retrieval"
	"github.com/entityretrieval/entityretrieval/internal/store"
)

// Server wires the lookup service, health checks, and metrics exporter into
// a single [http.Handler]. The query-path circuit breaker lives inside
// [store.Store] itself, not here — every Store query-path read already
// guards its call (the PutQueryCache write is not guarded).
type Server struct {
	svc      *retrieval.Service
	metrics  *observe.Metrics
	health   *health.Handler
	reconcil *retrieval.CrosslinkReconciler
}

// New constructs a Server. metrics may be nil, in which case
// [observe.DefaultMetrics] is used.
func New(svc *retrieval.Service, s *store.Store, metrics *observe.Metrics) *Server {
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	checkers := []health.Checker{
		{Name: "store", Check: func(ctx context.Context) error {
			return s.Pool().Ping(ctx)
		}},
	}
	return &Server{
		svc:      svc,
		metrics:  metrics,
		health:   health.New(checkers...),
		reconcil: retrieval.NewCrosslinkReconciler(),
	}
}

// Handler returns the fully wired HTTP handler, with tracing/metrics/logging
// middleware applied to every route.
func (srv *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /lookup", srv.handleLookup)
	srv.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(srv.metrics)(mux)
}
