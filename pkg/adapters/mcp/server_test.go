package mcp_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flowmcp "github.com/aretw0/flowgraph/pkg/adapters/mcp"
	"github.com/aretw0/flowgraph/pkg/adapters/memory"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/flows"
)

func newServer(t *testing.T) (*flowmcp.Server, *flows.Manager) {
	t.Helper()
	mgr := flows.NewManager(memory.NewStore())
	srv, err := flowmcp.NewServer(mgr)
	require.NoError(t, err)
	return srv, mgr
}

// rpc sends one JSON-RPC message after initializing the session.
func rpc(t *testing.T, srv *flowmcp.Server, method string, params map[string]any) json.RawMessage {
	t.Helper()
	ctx := context.Background()

	initMsg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      0,
		"method":  "initialize",
		"params": map[string]any{
			"protocolVersion": "2025-03-26",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "test", "version": "1.0.0"},
		},
	})
	require.NoError(t, err)
	require.NotNil(t, srv.MCPServer().HandleMessage(ctx, initMsg))

	reqMsg, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)
	resp := srv.MCPServer().HandleMessage(ctx, reqMsg)
	require.NotNil(t, resp)

	respBytes, err := json.Marshal(resp)
	require.NoError(t, err)
	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(respBytes, &rpcResp))
	if rpcResp.Error != nil {
		t.Fatalf("JSON-RPC error: %s", rpcResp.Error.Message)
	}
	return rpcResp.Result
}

func callTool(t *testing.T, srv *flowmcp.Server, name string, args map[string]any) (string, bool) {
	t.Helper()
	raw := rpc(t, srv, "tools/call", map[string]any{"name": name, "arguments": args})
	var result mcp.CallToolResult
	require.NoError(t, json.Unmarshal(raw, &result))
	require.NotEmpty(t, result.Content)
	return mcp.GetTextFromContent(result.Content[0]), result.IsError
}

func TestTools_Listed(t *testing.T) {
	srv, _ := newServer(t)
	raw := rpc(t, srv, "tools/list", map[string]any{})
	for _, name := range []string{"list_recipes", "build_recipe", "lint_flow", "get_flow", "list_flows"} {
		assert.Contains(t, string(raw), `"name":"`+name+`"`)
	}
}

func TestListRecipes(t *testing.T) {
	srv, _ := newServer(t)
	text, isErr := callTool(t, srv, "list_recipes", map[string]any{})
	require.False(t, isErr)

	var out struct {
		Recipes []struct{ Name string } `json:"recipes"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Recipes, len(dsl.Recipes()))
	assert.Equal(t, dsl.RecipeSplitByGroups, out.Recipes[0].Name)
}

func TestBuildRecipe(t *testing.T) {
	srv, _ := newServer(t)

	text, isErr := callTool(t, srv, "build_recipe", map[string]any{
		"name":   dsl.RecipeWaitForResponse,
		"params": map[string]any{"uuid": "ask", "categories": []any{"Red", "Blue"}},
	})
	require.False(t, isErr, text)
	node, err := codec.DecodeRenderNode([]byte(text), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, "ask", node.Node.UUID)
	assert.Len(t, node.Node.Exits, 3)

	text, isErr = callTool(t, srv, "build_recipe", map[string]any{
		"name": dsl.RecipeSplitByGroups,
		"ids":  "sequential",
	})
	require.False(t, isErr, text)
	node, err = codec.DecodeRenderNode([]byte(text), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, "split_by_groups-0", node.Node.UUID)

	_, isErr = callTool(t, srv, "build_recipe", map[string]any{"name": "nope"})
	assert.True(t, isErr)
	_, isErr = callTool(t, srv, "build_recipe", map[string]any{"name": dsl.RecipeWebhook, "ids": "weird"})
	assert.True(t, isErr)
}

func TestLintFlow(t *testing.T) {
	srv, _ := newServer(t)
	flow, err := dsl.New("flow-1", "Lint").Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).Build()
	require.NoError(t, err)
	yamlDoc, err := codec.Encode(flow, codec.YAML)
	require.NoError(t, err)

	text, isErr := callTool(t, srv, "lint_flow", map[string]any{"document": string(yamlDoc), "format": "yaml"})
	require.False(t, isErr, text)
	assert.JSONEq(t, `{"valid":true,"uuid":"flow-1"}`, text)

	flow.Nodes[0].Exits[0].DestinationNodeUUID = domain.Ptr("ghost")
	jsonDoc, err := codec.Encode(flow, codec.JSON)
	require.NoError(t, err)
	var obj map[string]any
	require.NoError(t, json.Unmarshal(jsonDoc, &obj))

	text, isErr = callTool(t, srv, "lint_flow", map[string]any{"flow": obj})
	require.False(t, isErr, text)
	assert.Contains(t, text, `"valid":false`)
	assert.Contains(t, text, "ghost")

	_, isErr = callTool(t, srv, "lint_flow", map[string]any{})
	assert.True(t, isErr)
}

func TestGetFlow(t *testing.T) {
	srv, mgr := newServer(t)
	flow, err := dsl.New("flow-1", "Stored").Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).Build()
	require.NoError(t, err)
	_, err = mgr.Save(context.Background(), flow)
	require.NoError(t, err)

	text, isErr := callTool(t, srv, "get_flow", map[string]any{"uuid": "flow-1"})
	require.False(t, isErr, text)
	loaded, err := codec.DecodeFlow([]byte(text), codec.JSON)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.Revision)

	text, isErr = callTool(t, srv, "get_flow", map[string]any{"uuid": "flow-1", "view": "graph"})
	require.False(t, isErr)
	assert.True(t, strings.HasPrefix(text, "graph TD"))

	text, isErr = callTool(t, srv, "list_flows", map[string]any{})
	require.False(t, isErr)
	assert.JSONEq(t, `{"flows":["flow-1"]}`, text)

	text, isErr = callTool(t, srv, "get_flow", map[string]any{"uuid": "missing"})
	assert.True(t, isErr)
	assert.Contains(t, text, "not found")
}

func TestGetFlow_NodesView(t *testing.T) {
	srv, mgr := newServer(t)
	hook := dsl.WebhookRouterNode(dsl.WebhookConfig{})
	ask := dsl.WaitRouterNode(
		[]domain.Exit{dsl.NamedExit("to-hook", "All", hook.Node.UUID)},
		nil,
		dsl.WaitRouterConfig{UUID: "ask", DefaultExitUUID: domain.Ptr("to-hook")},
	)
	flow, err := dsl.New("flow-2", "Graph").Add(ask).Add(hook).Build()
	require.NoError(t, err)
	_, err = mgr.Save(context.Background(), flow)
	require.NoError(t, err)

	text, isErr := callTool(t, srv, "get_flow", map[string]any{"uuid": "flow-2", "view": "nodes"})
	require.False(t, isErr, text)

	var out struct {
		Nodes []domain.RenderNode `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, domain.InboundConnections{}, out.Nodes[0].InboundConnections)
	assert.Equal(t, domain.InboundConnections{"to-hook": "ask"}, out.Nodes[1].InboundConnections)
}

func TestTypesResource(t *testing.T) {
	srv, _ := newServer(t)
	raw := rpc(t, srv, "resources/read", map[string]any{"uri": flowmcp.TypesURI})
	assert.Contains(t, string(raw), `split_by_groups`)
}
