package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tendril-lang/tendril/hooks"
)

// metricsEngineHooks counts engine traversal and binding events into
// Prometheus counters, following holomush's observability server
// pattern: a private registry instead of the global one, so constructing
// the hooks more than once in one process never panics on double
// registration (SPEC_FULL.md §11.4).
type metricsEngineHooks struct {
	registry   *prometheus.Registry
	nodesTotal *prometheus.CounterVec
	bindsTotal *prometheus.CounterVec
}

func newMetricsEngineHooks() *metricsEngineHooks {
	registry := prometheus.NewRegistry()
	m := &metricsEngineHooks{
		registry: registry,
		nodesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_nodes_visited_total",
				Help: "Total number of pattern nodes the engine entered, by node type.",
			},
			[]string{"node_type"},
		),
		bindsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tendril_bindings_total",
				Help: "Total number of variable bindings made, by kind.",
			},
			[]string{"kind"},
		),
	}
	registry.MustRegister(m.nodesTotal, m.bindsTotal)
	return m
}

func (m *metricsEngineHooks) OnEnter(nodeType string, _ any, _ string) {
	m.nodesTotal.WithLabelValues(nodeType).Inc()
}

func (m *metricsEngineHooks) OnExit(string, any, string, bool) {}

func (m *metricsEngineHooks) OnBind(kind, _ string, _ any) {
	m.bindsTotal.WithLabelValues(kind).Inc()
}

var _ hooks.EngineHooks = (*metricsEngineHooks)(nil)

// serveMetrics exposes m's registry on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, m *metricsEngineHooks) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("tendril: listen on %s: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv.Serve(listener)
}
