// Package mcp exposes flow recipes, linting and stored flows as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/flowgraph"
	"github.com/aretw0/flowgraph/internal/logging"
	"github.com/aretw0/flowgraph/internal/presentation/graph"
	"github.com/aretw0/flowgraph/internal/validator"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/flows"
	"github.com/aretw0/flowgraph/pkg/typeconfig"
)

// TypesURI is the resource listing the editor type catalog.
const TypesURI = "flowgraph://types"

// Server exposes flowgraph as an MCP server.
type Server struct {
	flows     *flows.Manager
	linter    *validator.Linter
	types     *typeconfig.Registry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger configures a logger for the Server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithTypes overrides the default type registry.
func WithTypes(r *typeconfig.Registry) Option {
	return func(s *Server) { s.types = r }
}

// NewServer creates a new MCP Server over mgr.
func NewServer(mgr *flows.Manager, opts ...Option) (*Server, error) {
	linter, err := validator.NewLinter()
	if err != nil {
		return nil, err
	}
	s := &Server{
		flows:     mgr,
		linter:    linter,
		types:     typeconfig.Default(),
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("flowgraph-mcp", strings.TrimSpace(flowgraph.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List the node recipes that build_recipe can assemble."),
	), s.handleListRecipes)

	s.mcpServer.AddTool(mcp.NewTool("build_recipe",
		mcp.WithDescription("Assemble a render node from a recipe. Returns the node as JSON."),
		mcp.WithString("name", mcp.Required(), mcp.Description("Recipe name, see list_recipes")),
		mcp.WithObject("params", mcp.Description("Recipe parameters")),
		mcp.WithString("ids", mcp.Description("How missing uuids are filled: fixed (default), random or sequential")),
		mcp.WithString("prefix", mcp.Description("Prefix for sequential uuids")),
	), s.handleBuildRecipe)

	s.mcpServer.AddTool(mcp.NewTool("lint_flow",
		mcp.WithDescription("Validate a flow definition. Returns the issues found, if any."),
		mcp.WithObject("flow", mcp.Description("Flow definition as an object")),
		mcp.WithString("document", mcp.Description("Flow definition as JSON or YAML text")),
		mcp.WithString("format", mcp.Description("Format of document: json (default) or yaml")),
	), s.handleLintFlow)

	s.mcpServer.AddTool(mcp.NewTool("get_flow",
		mcp.WithDescription("Fetch a stored flow by uuid."),
		mcp.WithString("uuid", mcp.Required(), mcp.Description("Flow uuid")),
		mcp.WithString("view", mcp.Description("definition (default), nodes or graph")),
	), s.handleGetFlow)

	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the uuids of stored flows."),
	), s.handleListFlows)
}

type recipeInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []recipeInfo
	for _, r := range dsl.Recipes() {
		out = append(out, recipeInfo{Name: r.Name, Description: r.Description})
	}
	return marshalResult(map[string]any{"recipes": out})
}

func (s *Server) handleBuildRecipe(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}
	recipe, err := dsl.LookupRecipe(name)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var ids dsl.UUIDSource
	switch mode := req.GetString("ids", "fixed"); mode {
	case "fixed", "":
	case "random":
		ids = dsl.RandomUUIDs()
	case "sequential":
		ids = dsl.SequentialUUIDs(req.GetString("prefix", recipe.Name))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown ids mode %q", mode)), nil
	}

	node, err := recipe.Build(mcp.ParseStringMap(req, "params", map[string]any{}), ids)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return marshalResult(node)
}

type lintResult struct {
	Valid  bool        `json:"valid"`
	UUID   string      `json:"uuid,omitempty"`
	Issues []lintIssue `json:"issues,omitempty"`
}

type lintIssue struct {
	NodeUUID string `json:"node_uuid,omitempty"`
	Path     string `json:"path,omitempty"`
	Reason   string `json:"reason"`
}

func (s *Server) handleLintFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var (
		data []byte
		f    = codec.JSON
	)
	if obj := mcp.ParseStringMap(req, "flow", nil); obj != nil {
		raw, err := json.Marshal(obj)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid flow: %v", err)), nil
		}
		data = raw
	} else if doc := req.GetString("document", ""); doc != "" {
		data = []byte(doc)
		parsed, err := codec.ParseFormat(req.GetString("format", "json"))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		f = parsed
	} else {
		return mcp.NewToolResultError("one of flow or document is required"), nil
	}

	flow, err := s.linter.Lint(data, f)
	res := lintResult{Valid: err == nil}
	if flow != nil {
		res.UUID = flow.UUID
	}
	if err != nil {
		issues := validator.Issues(err)
		if issues == nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		for _, i := range issues {
			res.Issues = append(res.Issues, lintIssue{NodeUUID: i.NodeUUID, Path: i.Path, Reason: i.Reason})
		}
	}
	return marshalResult(res)
}

func (s *Server) handleGetFlow(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uuid, err := req.RequireString("uuid")
	if err != nil {
		return mcp.NewToolResultError("uuid is required"), nil
	}
	flow, err := s.flows.Load(ctx, uuid)
	if err != nil {
		if errors.Is(err, domain.ErrFlowNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("flow %s not found", uuid)), nil
		}
		s.logger.Error("MCP get_flow failed", "flow_uuid", uuid, "err", err)
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}

	switch view := req.GetString("view", "definition"); view {
	case "definition", "":
		return marshalResult(flow)
	case "nodes":
		nodes := flow.RenderNodes()
		domain.IndexInboundConnections(nodes)
		return marshalResult(map[string]any{"nodes": nodes})
	case "graph":
		return mcp.NewToolResultText(graph.GenerateMermaid(flow.RenderNodes(), nil)), nil
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown view %q", view)), nil
	}
}

func (s *Server) handleListFlows(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := s.flows.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
	}
	return marshalResult(map[string]any{"flows": ids})
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(TypesURI, "Editor Type Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.types.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode types: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      TypesURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}

func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
