// Package graph renders flows as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// endID is the shared sink that terminal exits point to.
const endID = "flow_end"

// GraphOverlay highlights nodes on the rendered graph.
type GraphOverlay struct {
	// Flagged nodes are drawn in the issue style, e.g. nodes the linter
	// reported.
	Flagged  []string
	Selected string
}

// GenerateMermaid produces a Mermaid flowchart from render nodes.
// It applies semantic styling:
// - Entry (first node): ((Circle))
// - Webhook / Subflow: [[Subroutine]]
// - Wait for response: [/Parallelogram/]
// - Other splits: {Rhombus}
// - Action-only: [Rectangle]
// Terminal exits point to a single end node.
func GenerateMermaid(nodes []domain.RenderNode, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	hasEnd := false
	for i, rn := range nodes {
		node := rn.Node
		safeID := sanitizeMermaidID(node.UUID)

		opener, closer := "[", "]"
		switch {
		case i == 0:
			opener, closer = "((", "))"
		case rn.UI.Type == domain.TypeSplitByWebhook || rn.UI.Type == domain.TypeSplitBySubflow:
			opener, closer = "[[", "]]"
		case rn.UI.Type == domain.TypeWaitForResponse:
			opener, closer = "[/", "/]"
		case node.Router != nil:
			opener, closer = "{", "}"
		}

		text := fmt.Sprintf("%s <br/> %s", node.UUID, describe(rn))
		if node.Wait != nil && node.Wait.Timeout != nil {
			text += fmt.Sprintf(" <br/> ⏱️ %ds", *node.Wait.Timeout)
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, escape(text), closer))

		for _, exit := range node.Exits {
			target := endID
			if exit.IsTerminal() {
				hasEnd = true
			} else {
				target = sanitizeMermaidID(*exit.DestinationNodeUUID)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, edge(exit.Name, exit.IsTerminal()), target))
		}
	}

	if hasEnd {
		sb.WriteString(fmt.Sprintf("    %s((\"end\"))\n", endID))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef flagged fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.Flagged {
			safeID := sanitizeMermaidID(id)
			if !seen[safeID] && safeID != "" {
				seen[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s flagged;\n", safeID))
			}
		}

		if overlay.Selected != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Selected)))
		}
	}

	return sb.String()
}

// edge draws a solid arrow, or a dotted one into the end node, labeled
// with the exit name when there is one.
func edge(name *string, terminal bool) string {
	if name == nil || *name == "" {
		if terminal {
			return "-.->"
		}
		return "-->"
	}
	if terminal {
		return fmt.Sprintf("-. \"%s\" .->", escape(*name))
	}
	return fmt.Sprintf("-- \"%s\" -->", escape(*name))
}

// describe names what a node does: its split type, or its first action.
func describe(rn domain.RenderNode) string {
	if rn.Node.Router == nil && len(rn.Node.Actions) > 0 {
		return string(rn.Node.Actions[0].Type())
	}
	if rn.UI.Type != "" {
		return string(rn.UI.Type)
	}
	return string(domain.TypeSplitByExpression)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
