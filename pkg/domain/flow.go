package domain

// FlowUI holds editor metadata for a whole flow, keyed by node uuid.
type FlowUI struct {
	Nodes map[string]UINode `json:"nodes"`
}

// Flow is a named, uuid-identified container of nodes. The first node is
// the entry point.
type Flow struct {
	UUID        string     `json:"uuid"`
	Name        string     `json:"name"`
	Language    string     `json:"language,omitempty"`
	Type        FlowType   `json:"type,omitempty"`
	Revision    int        `json:"revision"`
	SpecVersion string     `json:"spec_version,omitempty"`
	Nodes       []FlowNode `json:"nodes"`
	UI          FlowUI     `json:"_ui"`
}

// SpecVersion is the flow definition version written by this module.
const SpecVersion = "13.1.0"

// Node returns the node with the given uuid.
func (f *Flow) Node(uuid string) (FlowNode, bool) {
	for _, n := range f.Nodes {
		if n.UUID == uuid {
			return n, true
		}
	}
	return FlowNode{}, false
}

// RenderNodes joins each node with its UI metadata. Inbound connections
// are left unindexed (nil). Nodes without UI metadata get a
// split_by_expression placeholder at the origin.
func (f *Flow) RenderNodes() []RenderNode {
	out := make([]RenderNode, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		ui, ok := f.UI.Nodes[n.UUID]
		if !ok {
			ui = UINode{Type: TypeSplitByExpression}
		}
		out = append(out, RenderNode{Node: n, UI: ui})
	}
	return out
}

// FlowFromRenderNodes splits render nodes back into engine nodes and UI
// metadata, preserving node order.
func FlowFromRenderNodes(uuid, name string, nodes []RenderNode) *Flow {
	f := &Flow{
		UUID:        uuid,
		Name:        name,
		Type:        FlowTypeMessaging,
		SpecVersion: SpecVersion,
		Nodes:       make([]FlowNode, 0, len(nodes)),
		UI:          FlowUI{Nodes: make(map[string]UINode, len(nodes))},
	}
	for _, rn := range nodes {
		f.Nodes = append(f.Nodes, rn.Node)
		f.UI.Nodes[rn.Node.UUID] = rn.UI
	}
	return f
}
