package graph_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/flowgraph/internal/presentation/graph"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
)

func msgNode(uuid string, exits ...domain.Exit) domain.RenderNode {
	return dsl.NewRenderNode(
		[]domain.Action{dsl.SendMsg(dsl.SendMsgConfig{UUID: uuid + "-msg"})},
		exits,
		dsl.NodeConfig{UUID: uuid},
	)
}

func TestGenerateMermaid(t *testing.T) {
	tests := []struct {
		name     string
		nodes    []domain.RenderNode
		contains []string
		excludes []string
	}{
		{
			name:  "Entry Node Shape",
			nodes: []domain.RenderNode{msgNode("start")},
			contains: []string{
				`start(("start <br/> send_msg"))`,
			},
			excludes: []string{"flow_end"},
		},
		{
			name: "Split Shapes",
			nodes: []domain.RenderNode{
				msgNode("entry"),
				dsl.WebhookRouterNode(dsl.WebhookConfig{UUID: "hook"}),
				dsl.WaitRouterNode(nil, nil, dsl.WaitRouterConfig{UUID: "ask", Timeout: 60}),
				dsl.GroupsRouterNode([]domain.Group{}, dsl.GroupsConfig{UUID: "groups"}),
			},
			contains: []string{
				`hook[["hook <br/> split_by_webhook"]]`,
				`ask[/"ask <br/> wait_for_response <br/> ⏱️ 60s"/]`,
				`groups{"groups <br/> split_by_groups"}`,
			},
		},
		{
			name: "ID Sanitization",
			nodes: []domain.RenderNode{
				msgNode("first"),
				msgNode("path/to/node.v1"),
				msgNode("hyphen-ated"),
			},
			contains: []string{
				`path_to_node_v1["path/to/node.v1 <br/> send_msg"]`,
				`hyphen_ated["hyphen-ated <br/> send_msg"]`,
			},
		},
		{
			name: "Exit Edges",
			nodes: []domain.RenderNode{
				msgNode("a", dsl.NamedExit("e1", `say "hi"`, "b")),
				msgNode("b", dsl.Exit(dsl.ExitConfig{UUID: "e2", Destination: "c"})),
				msgNode("c", dsl.NamedExit("e3", "Done", "")),
				msgNode("d", dsl.Exit(dsl.ExitConfig{UUID: "e4", Terminal: true})),
			},
			contains: []string{
				`a -- "say 'hi'" --> b`,
				`b --> c`,
				`c -. "Done" .-> flow_end`,
				`d -.-> flow_end`,
				`flow_end(("end"))`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.nodes, nil)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, got, unwanted)
			}
		})
	}
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	nodes := []domain.RenderNode{msgNode("a-1"), msgNode("b")}

	got := graph.GenerateMermaid(nodes, &graph.GraphOverlay{
		Flagged:  []string{"b", "b", ""},
		Selected: "a-1",
	})

	assert.Contains(t, got, "classDef flagged")
	assert.Equal(t, 1, strings.Count(got, "class b flagged;"))
	assert.Contains(t, got, "class a_1 current;")
	assert.NotContains(t, graph.GenerateMermaid(nodes, nil), "Overlay")
}
