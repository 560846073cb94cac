// Package http serves flows, recipes and lint results over HTTP with chi.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/flowgraph"
	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/internal/metrics"
	"github.com/aretw0/flowgraph/internal/presentation/graph"
	"github.com/aretw0/flowgraph/internal/validator"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/flows"
	"github.com/aretw0/flowgraph/pkg/typeconfig"
)

// MaxBodyBytes bounds request documents.
const MaxBodyBytes = 4 << 20

// Server holds the dependencies of the HTTP handlers.
type Server struct {
	Flows   *flows.Manager
	Linter  *validator.Linter
	Types   typeconfig.Resolver
	Metrics *metrics.Metrics
	Streams *StreamManager
	Logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithTypes overrides the default type registry.
func WithTypes(r typeconfig.Resolver) Option {
	return func(s *Server) { s.Types = r }
}

// WithMetrics records request counters into m and serves it on /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.Metrics = m }
}

// WithStreams shares a StreamManager, normally one whose Hooks are
// installed on the flow manager.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithLogger configures request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.Logger = logger }
}

// NewServer creates a Server over mgr.
func NewServer(mgr *flows.Manager, opts ...Option) (*Server, error) {
	linter, err := validator.NewLinter()
	if err != nil {
		return nil, err
	}
	s := &Server{
		Flows:  mgr,
		Linter: linter,
		Types:  typeconfig.Default(),
		Logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Metrics == nil {
		s.Metrics = metrics.New()
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.Logger)
	}
	return s, nil
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.observe)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	r.Route("/flows", func(r chi.Router) {
		r.Get("/", s.ListFlows)
		r.Route("/{uuid}", func(r chi.Router) {
			r.Get("/", s.GetFlow)
			r.Put("/", s.PutFlow)
			r.Delete("/", s.DeleteFlow)
			r.Get("/nodes", s.GetRenderNodes)
			r.Get("/graph", s.GetGraph)
			r.Get("/events", s.SubscribeEvents)
		})
	})

	r.Post("/lint", s.Lint)
	r.Get("/recipes", s.ListRecipes)
	r.Post("/recipes/{name}", s.BuildRecipe)
	r.Get("/types", s.ListTypes)
	r.Get("/types/{type}", s.GetType)
	return r
}

func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.Metrics.ObserveHTTP(route, status)
		s.Logger.Debug("http request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
		)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":          "flowgraph-http",
		"version":      strings.TrimSpace(flowgraph.Version),
		"spec_version": domain.SpecVersion,
	})
}

// ListFlows handles GET /flows.
func (s *Server) ListFlows(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Flows.List(r.Context())
	if err != nil {
		s.fail(w, "ListFlows", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"flows": ids})
}

// GetFlow handles GET /flows/{uuid}. ?format=yaml returns YAML.
func (s *Server) GetFlow(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	f, err := responseFormat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeDocument(w, flow, f)
}

// PutFlow handles PUT /flows/{uuid}. The document is linted before it is
// saved; the stored revision is returned.
func (s *Server) PutFlow(w http.ResponseWriter, r *http.Request) {
	uuid := chi.URLParam(r, "uuid")
	flow, ok := s.lintBody(w, r)
	if !ok {
		return
	}
	if flow.UUID != uuid {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("flow uuid %q does not match path %q", flow.UUID, uuid))
		return
	}

	diff, err := s.Flows.Save(r.Context(), flow)
	if err != nil {
		s.fail(w, "PutFlow", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"uuid":     flow.UUID,
		"revision": flow.Revision,
		"diff":     diff,
	})
}

// DeleteFlow handles DELETE /flows/{uuid}.
func (s *Server) DeleteFlow(w http.ResponseWriter, r *http.Request) {
	if err := s.Flows.Delete(r.Context(), chi.URLParam(r, "uuid")); err != nil {
		s.fail(w, "DeleteFlow", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRenderNodes handles GET /flows/{uuid}/nodes: the editor view of the
// flow with inbound connections indexed.
func (s *Server) GetRenderNodes(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	nodes := flow.RenderNodes()
	domain.IndexInboundConnections(nodes)
	writeJSON(w, http.StatusOK, nodes)
}

// GetGraph handles GET /flows/{uuid}/graph. Nodes with lint issues are
// flagged; ?selected= highlights one node.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.loadFlow(w, r)
	if !ok {
		return
	}
	overlay := &graph.GraphOverlay{Selected: r.URL.Query().Get("selected")}
	for _, issue := range validator.Issues(validator.ValidateFlow(flow)) {
		if issue.NodeUUID != "" {
			overlay.Flagged = append(overlay.Flagged, issue.NodeUUID)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, graph.GenerateMermaid(flow.RenderNodes(), overlay))
}

// SubscribeEvents handles GET /flows/{uuid}/events (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	uuid := chi.URLParam(r, "uuid")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(uuid)
	defer cancel()
	s.Logger.Info("SSE: Subscribing to flow updates", "flow_uuid", uuid)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "flow_uuid", uuid)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Lint handles POST /lint.
func (s *Server) Lint(w http.ResponseWriter, r *http.Request) {
	flow, ok := s.lintBody(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true, "uuid": flow.UUID})
}

type recipeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListRecipes handles GET /recipes.
func (s *Server) ListRecipes(w http.ResponseWriter, r *http.Request) {
	var out []recipeInfo
	for _, rec := range dsl.Recipes() {
		out = append(out, recipeInfo{Name: rec.Name, Description: rec.Description})
	}
	writeJSON(w, http.StatusOK, out)
}

// BuildRecipe handles POST /recipes/{name}. The optional JSON body holds
// the recipe parameters. ?ids=random draws missing uuids at random,
// ?ids=sequential&prefix=p numbers them; by default fixed uuids are used.
func (s *Server) BuildRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := dsl.LookupRecipe(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	params := map[string]any{}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}

	var ids dsl.UUIDSource
	switch q := r.URL.Query(); q.Get("ids") {
	case "":
	case "random":
		ids = dsl.RandomUUIDs()
	case "sequential":
		ids = dsl.SequentialUUIDs(q.Get("prefix"))
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown ids mode %q", q.Get("ids")))
		return
	}

	node, err := recipe.Build(params, ids)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Metrics.ObserveRecipe(recipe.Name)

	f, err := responseFormat(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeDocument(w, node, f)
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	lister, ok := s.Types.(interface{ List() []typeconfig.Config })
	if !ok {
		writeError(w, http.StatusNotImplemented, "type listing not supported")
		return
	}
	writeJSON(w, http.StatusOK, lister.List())
}

// GetType handles GET /types/{type}. Aliases resolve to their owner.
func (s *Server) GetType(w http.ResponseWriter, r *http.Request) {
	t := domain.Type(chi.URLParam(r, "type"))
	c, ok := s.Types.Get(t)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown type %q", t))
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// -- Helpers --

func (s *Server) loadFlow(w http.ResponseWriter, r *http.Request) (*domain.Flow, bool) {
	flow, err := s.Flows.Load(r.Context(), chi.URLParam(r, "uuid"))
	if err != nil {
		s.fail(w, "LoadFlow", err)
		return nil, false
	}
	return flow, true
}

// lintBody reads and lints a flow document, answering 422 with the issues
// when it is not valid.
func (s *Server) lintBody(w http.ResponseWriter, r *http.Request) (*domain.Flow, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	f, err := requestFormat(r)
	if err != nil {
		writeError(w, http.StatusUnsupportedMediaType, err.Error())
		return nil, false
	}

	flow, err := s.Linter.Lint(data, f)
	s.Metrics.ObserveLint(err)
	if err != nil {
		writeLintError(w, err)
		return nil, false
	}
	return flow, true
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, domain.ErrFlowNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.Logger.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

// requestFormat picks the body format from ?format=, then Content-Type.
func requestFormat(r *http.Request) (codec.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return codec.ParseFormat(q)
	}
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		return codec.YAML, nil
	}
	return codec.JSON, nil
}

// responseFormat picks the response format from ?format=, then Accept.
func responseFormat(r *http.Request) (codec.Format, error) {
	if q := r.URL.Query().Get("format"); q != "" {
		return codec.ParseFormat(q)
	}
	if strings.Contains(r.Header.Get("Accept"), "yaml") {
		return codec.YAML, nil
	}
	return codec.JSON, nil
}

type issueJSON struct {
	NodeUUID string `json:"node_uuid,omitempty"`
	Path     string `json:"path,omitempty"`
	Reason   string `json:"reason"`
}

func writeLintError(w http.ResponseWriter, err error) {
	issues := validator.Issues(err)
	if issues == nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	out := make([]issueJSON, 0, len(issues))
	for _, i := range issues {
		out = append(out, issueJSON{NodeUUID: i.NodeUUID, Path: i.Path, Reason: i.Reason})
	}
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error":  "flow is not valid",
		"issues": out,
	})
}

func writeDocument(w http.ResponseWriter, v any, f codec.Format) {
	data, err := codec.Encode(v, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if f == codec.YAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
