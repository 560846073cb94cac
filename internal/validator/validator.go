// Package validator lints flow definitions: referential integrity between
// nodes, exits and cases, reachability, and the JSON shape.
package validator

import (
	"fmt"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// ValidateFlow checks the flow's structure and returns an *AggregateError
// listing every issue, or nil.
func ValidateFlow(flow *domain.Flow) error {
	var c collector
	if flow == nil {
		c.add("", "", "flow is nil")
		return c.err()
	}
	if flow.UUID == "" {
		c.add("", "uuid", "flow uuid is required")
	}
	if len(flow.Nodes) == 0 {
		c.add("", "nodes", "flow has no nodes")
		return c.err()
	}

	nodes := make(map[string]int, len(flow.Nodes))
	for i, n := range flow.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if n.UUID == "" {
			c.add("", path+".uuid", "node uuid is required")
			continue
		}
		if first, dup := nodes[n.UUID]; dup {
			c.add(n.UUID, path+".uuid", "duplicate node uuid, first used by nodes[%d]", first)
			continue
		}
		nodes[n.UUID] = i
	}

	for i, n := range flow.Nodes {
		validateNode(&c, fmt.Sprintf("nodes[%d]", i), n, nodes)
	}

	for uuid := range flow.UI.Nodes {
		if _, ok := nodes[uuid]; !ok {
			c.add(uuid, "_ui.nodes."+uuid, "ui metadata for unknown node")
		}
	}

	for _, uuid := range unreachable(flow, nodes) {
		c.add(uuid, fmt.Sprintf("nodes[%d]", nodes[uuid]), "node is unreachable from %s", flow.Nodes[0].UUID)
	}

	return c.err()
}

// ValidateNode checks a single node in isolation. Exit destinations are
// not checked.
func ValidateNode(n domain.FlowNode) error {
	var c collector
	validateNode(&c, "node", n, nil)
	return c.err()
}

func validateNode(c *collector, path string, n domain.FlowNode, nodes map[string]int) {
	actions := make(map[string]bool, len(n.Actions))
	for i, a := range n.Actions {
		ap := fmt.Sprintf("%s.actions[%d]", path, i)
		switch {
		case a.ActionUUID() == "":
			c.add(n.UUID, ap+".uuid", "action uuid is required")
		case actions[a.ActionUUID()]:
			c.add(n.UUID, ap+".uuid", "duplicate action uuid %s", a.ActionUUID())
		}
		actions[a.ActionUUID()] = true
	}

	exits := make(map[string]bool, len(n.Exits))
	for i, e := range n.Exits {
		ep := fmt.Sprintf("%s.exits[%d]", path, i)
		switch {
		case e.UUID == "":
			c.add(n.UUID, ep+".uuid", "exit uuid is required")
		case exits[e.UUID]:
			c.add(n.UUID, ep+".uuid", "duplicate exit uuid %s", e.UUID)
		}
		exits[e.UUID] = true

		if e.DestinationNodeUUID != nil && nodes != nil {
			if _, ok := nodes[*e.DestinationNodeUUID]; !ok {
				c.add(n.UUID, ep+".destination_node_uuid", "destination %s is not a node of this flow", *e.DestinationNodeUUID)
			}
		}
	}

	if n.Wait != nil {
		if !n.Wait.Type.Valid() {
			c.add(n.UUID, path+".wait.type", "unknown wait type %q", n.Wait.Type)
		}
		if n.Wait.Timeout != nil && *n.Wait.Timeout < 0 {
			c.add(n.UUID, path+".wait.timeout", "timeout must not be negative")
		}
		if n.Router == nil {
			c.add(n.UUID, path+".wait", "wait requires a router")
		}
	}

	if n.Router == nil {
		if len(n.Exits) > 1 {
			c.add(n.UUID, path+".exits", "node without router has %d exits, at most one is usable", len(n.Exits))
		}
		return
	}

	rp := path + ".router"
	if len(n.Exits) == 0 {
		c.add(n.UUID, rp, "router has no exits")
	}
	switch n.Router.RouterType() {
	case domain.RouterSwitch, domain.RouterRandom:
	default:
		c.add(n.UUID, rp+".type", "unknown router type %q", n.Router.RouterType())
	}

	sw, ok := domain.AsSwitch(n.Router)
	if !ok {
		return
	}
	if sw.Operand == "" {
		c.add(n.UUID, rp+".operand", "switch router needs an operand")
	}

	cases := make(map[string]bool, len(sw.Cases))
	for i, cs := range sw.Cases {
		cp := fmt.Sprintf("%s.cases[%d]", rp, i)
		switch {
		case cs.UUID == "":
			c.add(n.UUID, cp+".uuid", "case uuid is required")
		case cases[cs.UUID]:
			c.add(n.UUID, cp+".uuid", "duplicate case uuid %s", cs.UUID)
		}
		cases[cs.UUID] = true

		if !cs.Type.Valid() {
			c.add(n.UUID, cp+".type", "unknown operator %q", cs.Type)
		} else if len(cs.Arguments) < cs.Type.Arity() {
			c.add(n.UUID, cp+".arguments", "%s needs %d argument(s), got %d", cs.Type, cs.Type.Arity(), len(cs.Arguments))
		}
		if !exits[cs.ExitUUID] {
			c.add(n.UUID, cp+".exit_uuid", "case points at unknown exit %s", cs.ExitUUID)
		}
	}

	if sw.DefaultExitUUID != nil && !exits[*sw.DefaultExitUUID] {
		c.add(n.UUID, rp+".default_exit_uuid", "default points at unknown exit %s", *sw.DefaultExitUUID)
	}
}

// unreachable crawls the graph breadth-first from the first node and
// returns the nodes never visited, in flow order.
func unreachable(flow *domain.Flow, nodes map[string]int) []string {
	start := flow.Nodes[0].UUID
	visited := map[string]bool{start: true}
	queue := []string{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		i, ok := nodes[current]
		if !ok {
			continue
		}
		for _, e := range flow.Nodes[i].Exits {
			if e.DestinationNodeUUID == nil {
				continue
			}
			target := *e.DestinationNodeUUID
			if !visited[target] {
				visited[target] = true
				queue = append(queue, target)
			}
		}
	}

	var out []string
	for i, n := range flow.Nodes {
		// Skip unnamed and duplicate nodes; they are reported elsewhere.
		if first, ok := nodes[n.UUID]; !ok || first != i {
			continue
		}
		if !visited[n.UUID] {
			out = append(out, n.UUID)
		}
	}
	return out
}
