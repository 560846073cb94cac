// Package typeconfig resolves editor type descriptors for actions and
// split nodes.
package typeconfig

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/flowgraph/pkg/domain"
)

//go:embed types.yaml
var catalogYAML []byte

// Kind separates action types from split (router) types.
type Kind string

const (
	KindAction Kind = "action"
	KindSplit  Kind = "split"
)

// Config describes one editor type.
type Config struct {
	Type        domain.Type       `yaml:"type" json:"type"`
	Kind        Kind              `yaml:"kind" json:"kind"`
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description" json:"description"`
	Aliases     []domain.Type     `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	FlowTypes   []domain.FlowType `yaml:"flow_types,omitempty" json:"flow_types,omitempty"`
	Advanced    bool              `yaml:"advanced,omitempty" json:"advanced,omitempty"`
}

// Allows reports whether the type may be used in a flow of type ft.
// An empty FlowTypes list allows every flow type.
func (c Config) Allows(ft domain.FlowType) bool {
	if len(c.FlowTypes) == 0 {
		return true
	}
	for _, t := range c.FlowTypes {
		if t == ft {
			return true
		}
	}
	return false
}

// Resolver looks up type configs. Registry is the default implementation.
type Resolver interface {
	Get(t domain.Type) (Config, bool)
	Determine(node *domain.RenderNode, action domain.Action) Config
}

// Registry holds type configs keyed by type and alias.
type Registry struct {
	mu      sync.RWMutex
	configs map[domain.Type]Config
	aliases map[domain.Type]domain.Type
	order   []domain.Type
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		configs: make(map[domain.Type]Config),
		aliases: make(map[domain.Type]domain.Type),
	}
}

// Load parses a YAML list of configs into a new registry.
func Load(data []byte) (*Registry, error) {
	var configs []Config
	if err := yaml.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse type catalog: %w", err)
	}
	r := NewRegistry()
	for i, c := range configs {
		if c.Type == "" {
			return nil, fmt.Errorf("type catalog entry %d has no type", i)
		}
		r.Register(c)
	}
	return r, nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the registry built from the embedded catalog.
func Default() *Registry {
	defaultOnce.Do(func() {
		r, err := Load(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultReg = r
	})
	return defaultReg
}

// Register adds or replaces a config and its aliases.
func (r *Registry) Register(c Config) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.configs[c.Type]; !exists {
		r.order = append(r.order, c.Type)
	}
	r.configs[c.Type] = c
	for _, alias := range c.Aliases {
		r.aliases[alias] = c.Type
	}
}

// Get returns the config for t, following aliases.
func (r *Registry) Get(t domain.Type) (Config, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.configs[t]; ok {
		return c, true
	}
	if owner, ok := r.aliases[t]; ok {
		c, ok := r.configs[owner]
		return c, ok
	}
	return Config{}, false
}

// List returns every config in registration order.
func (r *Registry) List() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Config, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.configs[t])
	}
	return out
}

// Determine picks the config for an edit session. An action being edited
// wins; otherwise the node's UI type, then its first action, then
// split_by_expression.
func (r *Registry) Determine(node *domain.RenderNode, action domain.Action) Config {
	if action != nil {
		if c, ok := r.Get(action.Type()); ok {
			return c
		}
	}
	if node != nil {
		if c, ok := r.Get(node.UI.Type); ok {
			return c
		}
		if len(node.Node.Actions) > 0 {
			if c, ok := r.Get(node.Node.Actions[0].Type()); ok {
				return c
			}
		}
	}
	if c, ok := r.Get(domain.TypeSplitByExpression); ok {
		return c
	}
	return Config{Type: domain.TypeSplitByExpression, Kind: KindSplit}
}
