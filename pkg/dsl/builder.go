package dsl

import (
	"errors"
	"fmt"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// Builder assembles render nodes into a flow. Nodes keep insertion order;
// the first one added is the entry point.
type Builder struct {
	uuid  string
	name  string
	order []string
	nodes map[string]*domain.RenderNode
	errs  []error
}

// New creates a builder for the flow identified by uuid.
func New(uuid, name string) *Builder {
	return &Builder{
		uuid:  uuid,
		name:  name,
		nodes: make(map[string]*domain.RenderNode),
	}
}

// Add appends a node. Adding a second node with the same uuid is recorded
// as an error and reported by Build.
func (b *Builder) Add(node domain.RenderNode) *Builder {
	id := node.Node.UUID
	if id == "" {
		b.errs = append(b.errs, errors.New("node uuid is required"))
		return b
	}
	if _, ok := b.nodes[id]; ok {
		b.errs = append(b.errs, fmt.Errorf("duplicate node %q", id))
		return b
	}
	n := node
	n.Node.Exits = cloneSlice(node.Node.Exits)
	b.nodes[id] = &n
	b.order = append(b.order, id)
	return b
}

// Connect points the exit of node at the destination node.
func (b *Builder) Connect(nodeUUID, exitUUID, destination string) *Builder {
	return b.setDestination(nodeUUID, exitUUID, domain.Ptr(destination))
}

// Terminate makes the exit of node end the flow.
func (b *Builder) Terminate(nodeUUID, exitUUID string) *Builder {
	return b.setDestination(nodeUUID, exitUUID, nil)
}

func (b *Builder) setDestination(nodeUUID, exitUUID string, dest *string) *Builder {
	n, ok := b.nodes[nodeUUID]
	if !ok {
		b.errs = append(b.errs, fmt.Errorf("connect: unknown node %q", nodeUUID))
		return b
	}
	for i := range n.Node.Exits {
		if n.Node.Exits[i].UUID == exitUUID {
			n.Node.Exits[i].DestinationNodeUUID = dest
			return b
		}
	}
	b.errs = append(b.errs, fmt.Errorf("connect: node %q has no exit %q", nodeUUID, exitUUID))
	return b
}

// RenderNodes returns the nodes in insertion order with inbound
// connections indexed.
func (b *Builder) RenderNodes() ([]domain.RenderNode, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, fmt.Errorf("failed to build flow %s: %w", b.uuid, err)
	}
	out := make([]domain.RenderNode, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.nodes[id])
	}
	domain.IndexInboundConnections(out)
	return out, nil
}

// Build compiles the nodes into a Flow.
func (b *Builder) Build() (*domain.Flow, error) {
	nodes, err := b.RenderNodes()
	if err != nil {
		return nil, err
	}
	return domain.FlowFromRenderNodes(b.uuid, b.name, nodes), nil
}
