// Package forms defines the contract between the flow model and the
// editor forms that edit a single action or a node's router.
package forms

import (
	"errors"

	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/typeconfig"
)

// ErrAmbiguousSettings is returned when NodeSettings carries both an
// original node and an original action, or neither.
var ErrAmbiguousSettings = errors.New("node settings must carry exactly one of original node or original action")

// NodeSettings tells a form what it is editing: a whole node (router
// forms) or a single action (action forms). Exactly one field is set.
type NodeSettings struct {
	OriginalNode   *domain.RenderNode
	OriginalAction domain.Action
}

// ForAction returns settings for editing action.
func ForAction(action domain.Action) NodeSettings {
	return NodeSettings{OriginalAction: action}
}

// ForNode returns settings for editing node. The node is copied.
func ForNode(node domain.RenderNode) NodeSettings {
	return NodeSettings{OriginalNode: &node}
}

// Validate checks the mutual exclusivity of the two fields.
func (s NodeSettings) Validate() error {
	if (s.OriginalNode == nil) == (s.OriginalAction == nil) {
		return ErrAmbiguousSettings
	}
	return nil
}

// EditsAction reports whether the settings target a single action.
func (s NodeSettings) EditsAction() bool {
	return s.OriginalAction != nil
}

// Handlers are the callbacks shared by every form.
type Handlers struct {
	OnClose      func(canceled bool)
	OnTypeChange func(config typeconfig.Config)
}

// ActionFormProps is handed to a form editing one action.
type ActionFormProps struct {
	UpdateAction func(action domain.Action)
	OnClose      func(canceled bool)
	OnTypeChange func(config typeconfig.Config)
	TypeConfig   typeconfig.Config
	NodeSettings NodeSettings
}

// RouterFormProps is handed to a form editing a node's router.
type RouterFormProps struct {
	UpdateRouter func(node domain.RenderNode)
	OnClose      func(canceled bool)
	OnTypeChange func(config typeconfig.Config)
	TypeConfig   typeconfig.Config
	NodeSettings NodeSettings
}

// NewActionFormProps builds props for editing action, resolving the type
// config from the action type.
func NewActionFormProps(r typeconfig.Resolver, action domain.Action, update func(domain.Action), h Handlers) ActionFormProps {
	settings := ForAction(action)
	return ActionFormProps{
		UpdateAction: update,
		OnClose:      h.OnClose,
		OnTypeChange: h.OnTypeChange,
		TypeConfig:   r.Determine(nil, action),
		NodeSettings: settings,
	}
}

// NewRouterFormProps builds props for editing node, resolving the type
// config from the node.
func NewRouterFormProps(r typeconfig.Resolver, node domain.RenderNode, update func(domain.RenderNode), h Handlers) RouterFormProps {
	settings := ForNode(node)
	return RouterFormProps{
		UpdateRouter: update,
		OnClose:      h.OnClose,
		OnTypeChange: h.OnTypeChange,
		TypeConfig:   r.Determine(settings.OriginalNode, nil),
		NodeSettings: settings,
	}
}

// ReplaceAction returns a copy of node with the action sharing action's
// uuid replaced, or action appended when no such action exists.
func ReplaceAction(node domain.RenderNode, action domain.Action) domain.RenderNode {
	actions := make([]domain.Action, 0, len(node.Node.Actions)+1)
	replaced := false
	for _, a := range node.Node.Actions {
		if a.ActionUUID() == action.ActionUUID() {
			actions = append(actions, action)
			replaced = true
			continue
		}
		actions = append(actions, a)
	}
	if !replaced {
		actions = append(actions, action)
	}
	node.Node.Actions = actions
	return node
}
