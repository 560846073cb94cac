// Package metrics exposes flowgraph's Prometheus counters.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/ports"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics owns a registry so tests and servers do not share global state.
type Metrics struct {
	registry *prometheus.Registry

	StoreOperations *prometheus.CounterVec
	RecipesBuilt    *prometheus.CounterVec
	LintRuns        *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	FlowEvents      *prometheus.CounterVec
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgraph_store_operations_total",
				Help: "Total number of flow store operations",
			},
			[]string{"op", "result"},
		),
		RecipesBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgraph_recipes_built_total",
				Help: "Total number of nodes built from recipes",
			},
			[]string{"recipe"},
		),
		LintRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgraph_lint_runs_total",
				Help: "Total number of flow lint runs",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgraph_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "code"},
		),
		FlowEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flowgraph_flow_events_total",
				Help: "Total number of flow lifecycle events",
			},
			[]string{"type"},
		),
	}
	m.registry.MustRegister(
		m.StoreOperations,
		m.RecipesBuilt,
		m.LintRuns,
		m.HTTPRequests,
		m.FlowEvents,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}

// ObserveRecipe counts a successful recipe build.
func (m *Metrics) ObserveRecipe(name string) {
	m.RecipesBuilt.WithLabelValues(name).Inc()
}

// ObserveLint counts a lint run by outcome.
func (m *Metrics) ObserveLint(err error) {
	m.LintRuns.WithLabelValues(result(err)).Inc()
}

// ObserveHTTP counts a served request by route pattern and status.
func (m *Metrics) ObserveHTTP(route string, code int) {
	m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}

// Hooks returns lifecycle hooks that log and count flow events.
func (m *Metrics) Hooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnFlowSaved: func(ctx context.Context, e *domain.FlowEvent) {
			logger.Info("flow_saved",
				"flow_uuid", e.FlowUUID,
				"revision", e.Revision,
			)
			m.FlowEvents.WithLabelValues(string(e.Type)).Inc()
		},
		OnFlowDeleted: func(ctx context.Context, e *domain.FlowEvent) {
			logger.Info("flow_deleted", "flow_uuid", e.FlowUUID)
			m.FlowEvents.WithLabelValues(string(e.Type)).Inc()
		},
	}
}

// InstrumentStore wraps store so every call is counted.
func (m *Metrics) InstrumentStore(store ports.FlowStore) ports.FlowStore {
	return &instrumentedStore{next: store, ops: m.StoreOperations}
}

type instrumentedStore struct {
	next ports.FlowStore
	ops  *prometheus.CounterVec
}

func (s *instrumentedStore) Save(ctx context.Context, flow *domain.Flow) error {
	err := s.next.Save(ctx, flow)
	s.ops.WithLabelValues("save", result(err)).Inc()
	return err
}

func (s *instrumentedStore) Load(ctx context.Context, uuid string) (*domain.Flow, error) {
	flow, err := s.next.Load(ctx, uuid)
	s.ops.WithLabelValues("load", result(err)).Inc()
	return flow, err
}

func (s *instrumentedStore) Delete(ctx context.Context, uuid string) error {
	err := s.next.Delete(ctx, uuid)
	s.ops.WithLabelValues("delete", result(err)).Inc()
	return err
}

func (s *instrumentedStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.next.List(ctx)
	s.ops.WithLabelValues("list", result(err)).Inc()
	return ids, err
}
