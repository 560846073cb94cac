package domain

import (
	"encoding/json"
	"fmt"
)

// FlowNode is one step of a flow as the execution engine sees it.
// Actions run in order; then, unless Wait suspends the node, Router picks
// an exit. Router and Wait are omitted from the serialized form when nil.
type FlowNode struct {
	UUID    string   `json:"uuid"`
	Actions []Action `json:"actions"`
	Exits   []Exit   `json:"exits"`
	Router  Router   `json:"router,omitempty"`
	Wait    *Wait    `json:"wait,omitempty"`
}

// MarshalJSON always emits actions and exits as arrays.
func (n FlowNode) MarshalJSON() ([]byte, error) {
	type plain FlowNode
	p := plain(n)
	if p.Actions == nil {
		p.Actions = []Action{}
	}
	if p.Exits == nil {
		p.Exits = []Exit{}
	}
	return json.Marshal(p)
}

type flowNodeWire struct {
	UUID    string            `json:"uuid"`
	Actions []json.RawMessage `json:"actions"`
	Exits   []Exit            `json:"exits"`
	Router  json.RawMessage   `json:"router"`
	Wait    *Wait             `json:"wait"`
}

// UnmarshalJSON decodes the action and router unions.
func (n *FlowNode) UnmarshalJSON(data []byte) error {
	var w flowNodeWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	actions := make([]Action, 0, len(w.Actions))
	for i, raw := range w.Actions {
		a, err := DecodeAction(raw)
		if err != nil {
			return fmt.Errorf("node %s: action %d: %w", w.UUID, i, err)
		}
		actions = append(actions, a)
	}

	router, err := DecodeRouter(w.Router)
	if err != nil {
		return fmt.Errorf("node %s: %w", w.UUID, err)
	}

	exits := w.Exits
	if exits == nil {
		exits = []Exit{}
	}

	*n = FlowNode{
		UUID:    w.UUID,
		Actions: actions,
		Exits:   exits,
		Router:  router,
		Wait:    w.Wait,
	}
	return nil
}

// Exit returns the exit with the given uuid.
func (n FlowNode) Exit(uuid string) (Exit, bool) {
	for _, e := range n.Exits {
		if e.UUID == uuid {
			return e, true
		}
	}
	return Exit{}, false
}

// Position is a node's location on the editor canvas.
type Position struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

// UINode is editor-only presentation metadata for a node.
type UINode struct {
	Position Position       `json:"position"`
	Type     Type           `json:"type"`
	Config   map[string]any `json:"config,omitempty"`
}

// InboundConnections maps the uuid of an exit pointing at a node to the
// uuid of the node owning that exit.
type InboundConnections map[string]string

// RenderNode is a FlowNode plus the editor's presentation metadata and
// inbound edge index. A nil InboundConnections serializes as null and
// means "not indexed yet"; an empty, non-nil map means "indexed, no
// inbound edges".
type RenderNode struct {
	Node               FlowNode           `json:"node"`
	UI                 UINode             `json:"ui"`
	InboundConnections InboundConnections `json:"inboundConnections"`
}

// Indexed reports whether inbound connections have been computed.
func (r RenderNode) Indexed() bool {
	return r.InboundConnections != nil
}

// IndexInboundConnections fills InboundConnections for every node from
// the exits of every other node. Nodes with no inbound edges receive an
// empty map. Exits pointing at unknown nodes are ignored.
func IndexInboundConnections(nodes []RenderNode) {
	byUUID := make(map[string]int, len(nodes))
	for i := range nodes {
		nodes[i].InboundConnections = InboundConnections{}
		byUUID[nodes[i].Node.UUID] = i
	}

	for _, src := range nodes {
		for _, exit := range src.Node.Exits {
			if exit.DestinationNodeUUID == nil {
				continue
			}
			if i, ok := byUUID[*exit.DestinationNodeUUID]; ok {
				nodes[i].InboundConnections[exit.UUID] = src.Node.UUID
			}
		}
	}
}
