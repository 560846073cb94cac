package dsl

import "github.com/aretw0/flowgraph/pkg/domain"

// NodeConfig configures NewFlowNode and NewRenderNode.
// Router and Wait are embedded only when set. UI is ignored by NewFlowNode.
type NodeConfig struct {
	UUID   string
	Router domain.Router
	Wait   *domain.Wait
	UI     *domain.UINode
}

// NewFlowNode assembles a node from its parts. No validation happens here:
// a router without exits or a dangling case is representable.
func NewFlowNode(actions []domain.Action, exits []domain.Exit, cfg NodeConfig) domain.FlowNode {
	node := domain.FlowNode{
		UUID:    or(cfg.UUID, "node-0"),
		Actions: cloneSlice(actions),
		Exits:   cloneSlice(exits),
		Router:  normalizeRouter(cfg.Router),
	}
	if cfg.Wait != nil {
		w := *cfg.Wait
		if w.Timeout != nil {
			w.Timeout = domain.Ptr(*w.Timeout)
		}
		node.Wait = &w
	}
	return node
}

// NewRenderNode assembles a node with editor metadata. The UI defaults to
// a split_by_expression at the origin. Inbound connections are left
// unindexed.
func NewRenderNode(actions []domain.Action, exits []domain.Exit, cfg NodeConfig) domain.RenderNode {
	ui := domain.UINode{Type: domain.TypeSplitByExpression}
	if cfg.UI != nil {
		ui = *cfg.UI
	}
	return domain.RenderNode{
		Node: NewFlowNode(actions, exits, cfg),
		UI:   ui,
	}
}

// UIAt is shorthand for a UINode of type t at (left, top).
func UIAt(t domain.Type, left, top int) *domain.UINode {
	return &domain.UINode{
		Type:     t,
		Position: domain.Position{Left: left, Top: top},
	}
}

// normalizeRouter stores routers by value and treats typed nil pointers
// as no router.
func normalizeRouter(r domain.Router) domain.Router {
	switch v := r.(type) {
	case *domain.SwitchRouter:
		if v == nil {
			return nil
		}
		return *v
	case *domain.BaseRouter:
		if v == nil {
			return nil
		}
		return *v
	}
	return r
}
