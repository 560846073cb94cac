package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// Store implements ports.FlowStore in memory.
// Flows are kept in serialized form so callers never share state with
// the store. Safe for concurrent use.
type Store struct {
	data map[string][]byte
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string][]byte),
	}
}

// Save persists the flow in memory.
func (s *Store) Save(ctx context.Context, flow *domain.Flow) error {
	if flow == nil || flow.UUID == "" {
		return fmt.Errorf("flow uuid cannot be empty")
	}
	data, err := json.Marshal(flow)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[flow.UUID] = data
	return nil
}

// Load retrieves a flow from memory.
func (s *Store) Load(ctx context.Context, uuid string) (*domain.Flow, error) {
	s.mu.RLock()
	data, ok := s.data[uuid]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrFlowNotFound
	}

	var flow domain.Flow
	if err := json.Unmarshal(data, &flow); err != nil {
		return nil, fmt.Errorf("failed to unmarshal flow: %w", err)
	}
	return &flow, nil
}

// Delete removes the flow.
func (s *Store) Delete(ctx context.Context, uuid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, uuid)
	return nil
}

// List returns stored flow uuids in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flows := make([]string, 0, len(s.data))
	for id := range s.data {
		flows = append(flows, id)
	}
	sort.Strings(flows)
	return flows, nil
}
