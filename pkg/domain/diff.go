package domain

import (
	"encoding/json"
	"reflect"
	"sort"
)

// FlowDiff summarizes the changes between two revisions of a flow.
// It is designed to be serialized for editors reconciling a remote save.
type FlowDiff struct {
	FlowUUID string `json:"flow_uuid"`

	Name *string `json:"name,omitempty"`

	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`

	// Moved lists nodes whose only difference is UI metadata.
	Moved []string `json:"moved,omitempty"`
}

// Diff calculates the difference between oldFlow and newFlow.
// If oldFlow is nil, every node of newFlow is reported as added.
// It returns nil when nothing changed.
func Diff(oldFlow, newFlow *Flow) *FlowDiff {
	if newFlow == nil {
		return nil
	}

	diff := &FlowDiff{FlowUUID: newFlow.UUID}
	if oldFlow == nil || oldFlow.Name != newFlow.Name {
		diff.Name = &newFlow.Name
	}

	oldNodes := indexNodes(oldFlow)
	newNodes := indexNodes(newFlow)

	for uuid, n := range newNodes {
		prev, exists := oldNodes[uuid]
		switch {
		case !exists:
			diff.Added = append(diff.Added, uuid)
		case !sameNode(prev, n):
			diff.Changed = append(diff.Changed, uuid)
		case oldFlow != nil && !reflect.DeepEqual(oldFlow.UI.Nodes[uuid], newFlow.UI.Nodes[uuid]):
			diff.Moved = append(diff.Moved, uuid)
		}
	}
	for uuid := range oldNodes {
		if _, exists := newNodes[uuid]; !exists {
			diff.Removed = append(diff.Removed, uuid)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Changed)
	sort.Strings(diff.Moved)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func indexNodes(f *Flow) map[string]FlowNode {
	if f == nil {
		return map[string]FlowNode{}
	}
	out := make(map[string]FlowNode, len(f.Nodes))
	for _, n := range f.Nodes {
		out[n.UUID] = n
	}
	return out
}

// sameNode compares nodes by their serialized form, so a nil and an
// empty action list are equal while router presence is not.
func sameNode(a, b FlowNode) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

// IsEmpty checks if the diff contains any changes.
func (d *FlowDiff) IsEmpty() bool {
	return d.Name == nil &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0 &&
		len(d.Changed) == 0 &&
		len(d.Moved) == 0
}
