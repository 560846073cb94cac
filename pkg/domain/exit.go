package domain

// Exit is a named edge leaving a node.
// A nil DestinationNodeUUID marks a terminal exit; a nil Name is an
// unnamed exit. Both keys are always serialized, as null when unset.
type Exit struct {
	UUID                string  `json:"uuid"`
	Name                *string `json:"name"`
	DestinationNodeUUID *string `json:"destination_node_uuid"`
}

// IsTerminal reports whether taking the exit ends the flow.
func (e Exit) IsTerminal() bool {
	return e.DestinationNodeUUID == nil
}

// DisplayName returns the exit name, or "" when unnamed.
func (e Exit) DisplayName() string {
	if e.Name == nil {
		return ""
	}
	return *e.Name
}

// Ptr returns a pointer to v. It is a convenience for nullable fields.
func Ptr[T any](v T) *T {
	return &v
}
