package domain

// Group is a contact group reference.
type Group struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Contact is a contact reference.
type Contact struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Label is a message label reference.
type Label struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Field is a custom contact field reference.
type Field struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Channel is a channel reference.
type Channel struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// FlowRef is a reference to another flow.
type FlowRef struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// Asset is a generic record supplied by an external asset service.
type Asset struct {
	ID   string    `json:"id"`
	Name string    `json:"name"`
	Type AssetType `json:"type"`
}
