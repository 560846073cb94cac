/*
Package flowgraph models the flow definitions of a conversational flow editor: nodes made of
actions, routers that pick an exit, and exits that lead to the next node.

It separates the engine-facing definition (pkg/domain) from the editor metadata (node type,
position) carried alongside it in render nodes, so the same graph can be checked, drawn and
stored without an editor running.

# Concept

A flow is an ordered list of nodes; the first node is the entry point. Every node has at least
one exit. Exits with no destination end the flow. A router evaluates an operand against cases
(or splits at random) and each case names the exit it takes.

# Key Features

  - Builders: fixtures and recipes for every action, router and node shape (pkg/dsl).
  - Node assembly: actions, exits and editor metadata combined into render nodes, with inbound
    connections indexed across a graph.
  - Form contracts: the props a node editor receives, resolved from the type catalog
    (pkg/forms, pkg/typeconfig).
  - Linting: JSON Schema plus structural checks (dangling exits, unreachable nodes).
  - Storage: memory, file (JSON or YAML) and Redis stores behind one port, with revisions and
    diffs tracked by pkg/flows.

# Usage

Build a flow from recipes and save it through a manager:

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/flowgraph/pkg/adapters/memory"
		"github.com/aretw0/flowgraph/pkg/dsl"
		"github.com/aretw0/flowgraph/pkg/flows"
	)

	func main() {
		flow, err := dsl.New("flow-1", "Favorites").
			Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).
			Build()
		if err != nil {
			log.Fatal(err)
		}

		mgr := flows.NewManager(memory.NewStore())
		if _, err := mgr.Save(context.Background(), flow); err != nil {
			log.Fatal(err)
		}
		log.Println("saved revision", flow.Revision)
	}

The flowgraph command (cmd/flowgraph) exposes the same operations from the shell, over HTTP and
as MCP tools.
*/
package flowgraph
