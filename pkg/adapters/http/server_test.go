package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/internal/metrics"
	flowhttp "github.com/aretw0/flowgraph/pkg/adapters/http"
	"github.com/aretw0/flowgraph/pkg/adapters/memory"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/flows"
)

type fixture struct {
	handler http.Handler
	streams *flowhttp.StreamManager
	mgr     *flows.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	m := metrics.New()
	streams := flowhttp.NewStreamManager(nil)
	mgr := flows.NewManager(memory.NewStore(), flows.WithHooks(domain.CombineHooks(
		m.Hooks(logging.NewNop()),
		streams.Hooks(),
	)))
	srv, err := flowhttp.NewServer(mgr, flowhttp.WithMetrics(m), flowhttp.WithStreams(streams))
	require.NoError(t, err)
	return fixture{handler: srv.Handler(), streams: streams, mgr: mgr}
}

func (f fixture) do(t *testing.T, method, target string, body []byte, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func validFlow(t *testing.T, uuid string) *domain.Flow {
	t.Helper()
	flow, err := dsl.New(uuid, "Hooked").
		Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).
		Build()
	require.NoError(t, err)
	return flow
}

func encode(t *testing.T, v any, f codec.Format) []byte {
	t.Helper()
	data, err := codec.Encode(v, f)
	require.NoError(t, err)
	return data
}

func TestFlowsCRUD(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/flows/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/flows/flow-1", encode(t, validFlow(t, "flow-1"), codec.JSON))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var saved struct {
		UUID     string `json:"uuid"`
		Revision int    `json:"revision"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 1, saved.Revision)

	// YAML bodies are accepted too.
	rec = f.do(t, http.MethodPut, "/flows/flow-1", encode(t, validFlow(t, "flow-1"), codec.YAML), "Content-Type", "application/yaml")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, 2, saved.Revision)

	rec = f.do(t, http.MethodGet, "/flows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"flows":["flow-1"]}`, rec.Body.String())

	rec = f.do(t, http.MethodGet, "/flows/flow-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loaded, err := codec.DecodeFlow(rec.Body.Bytes(), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, "Hooked", loaded.Name)

	rec = f.do(t, http.MethodGet, "/flows/flow-1?format=yaml", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "name: Hooked")

	rec = f.do(t, http.MethodDelete, "/flows/flow-1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, http.MethodGet, "/flows/flow-1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutFlow_Rejects(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPut, "/flows/other", encode(t, validFlow(t, "flow-1"), codec.JSON))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	broken := validFlow(t, "flow-1")
	broken.Nodes[0].Exits[0].DestinationNodeUUID = domain.Ptr("nowhere")
	rec = f.do(t, http.MethodPut, "/flows/flow-1", encode(t, broken, codec.JSON))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Issues []struct {
			NodeUUID string `json:"node_uuid"`
			Reason   string `json:"reason"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Issues)
	assert.Equal(t, broken.Nodes[0].UUID, body.Issues[0].NodeUUID)

	rec = f.do(t, http.MethodPut, "/flows/flow-1?format=toml", []byte("x"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	_, err := f.mgr.Load(context.Background(), "flow-1")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestLint(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/lint", encode(t, validFlow(t, "flow-1"), codec.JSON))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true,"uuid":"flow-1"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/lint", []byte(`{"uuid":"x"}`))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRenderNodesAndGraph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ask := dsl.WaitRouterNode(
		[]domain.Exit{dsl.NamedExit("to-hook", "All", dsl.WebhookRouterNode(dsl.WebhookConfig{}).Node.UUID)},
		nil,
		dsl.WaitRouterConfig{UUID: "ask", DefaultExitUUID: domain.Ptr("to-hook")},
	)
	flow, err := dsl.New("flow-2", "Graph").
		Add(ask).
		Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).
		Build()
	require.NoError(t, err)
	_, err = f.mgr.Save(ctx, flow)
	require.NoError(t, err)

	rec := f.do(t, http.MethodGet, "/flows/flow-2/nodes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var nodes []domain.RenderNode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &nodes))
	require.Len(t, nodes, 2)
	assert.Equal(t, domain.InboundConnections{"to-hook": "ask"}, nodes[1].InboundConnections)

	rec = f.do(t, http.MethodGet, "/flows/flow-2/graph?selected=ask", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD\n"))
	assert.Contains(t, rec.Body.String(), `ask -- "All" -->`)
	assert.Contains(t, rec.Body.String(), "class ask current;")
}

func TestRecipes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/recipes", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"split_by_groups"`)

	rec = f.do(t, http.MethodPost, "/recipes/webhook", []byte(`{"url":"https://example.com/hook","method":"post"}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	node, err := codec.DecodeRenderNode(rec.Body.Bytes(), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, domain.TypeSplitByWebhook, node.UI.Type)
	hook := node.Node.Actions[0].(domain.CallWebhook)
	assert.Equal(t, "POST", hook.Method)

	rec = f.do(t, http.MethodPost, "/recipes/start_flow?ids=sequential&prefix=sub", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	node, err = codec.DecodeRenderNode(rec.Body.Bytes(), codec.JSON)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(node.Node.UUID, "sub-"))

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/recipes/nope", nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/recipes/webhook", []byte(`{"bogus":1}`)).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/recipes/webhook", []byte(`{`)).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/recipes/webhook?ids=weird", nil).Code)
}

func TestTypes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/types/split_by_subflow", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"start_flow"`)

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/types/nope", nil).Code)

	rec = f.do(t, http.MethodGet, "/types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"type":"send_msg"`)
}

func TestHealthInfoMetrics(t *testing.T) {
	f := newFixture(t)

	assert.JSONEq(t, `{"status":"ok"}`, f.do(t, http.MethodGet, "/health", nil).Body.String())
	assert.Contains(t, f.do(t, http.MethodGet, "/info", nil).Body.String(), `"spec_version":"13.1.0"`)

	rec := f.do(t, http.MethodOptions, "/flows", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `flowgraph_http_requests_total{code="200",route="/health"} 1`)
}

func TestSubscribeEvents(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/flows/flow-1/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.handler.ServeHTTP(rec, req)
	}()

	require.Eventually(t, func() bool { return f.streams.Subscribers("flow-1") == 1 }, time.Second, 5*time.Millisecond)

	_, err := f.mgr.Save(context.Background(), validFlow(t, "flow-1"))
	require.NoError(t, err)

	// Let the handler drain the buffered event before disconnecting.
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event: ping\ndata: connected")
	assert.Contains(t, body, `"type":"flow_saved"`)
	assert.Contains(t, body, `"flow_uuid":"flow-1"`)
	assert.Equal(t, 0, f.streams.Subscribers("flow-1"))
}
