package ports

import (
	"context"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// FlowStore persists flow definitions keyed by flow uuid.
type FlowStore interface {
	// Save creates or replaces the flow.
	Save(ctx context.Context, flow *domain.Flow) error

	// Load retrieves a flow by uuid.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, uuid string) (*domain.Flow, error)

	// Delete removes a flow. Deleting a missing flow is not an error.
	Delete(ctx context.Context, uuid string) error

	// List returns the uuids of every stored flow.
	List(ctx context.Context) ([]string, error)
}
