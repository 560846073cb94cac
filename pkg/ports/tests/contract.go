// Package tests holds contract suites shared by port implementations.
package tests

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/ports"
)

func sampleFlow(t *testing.T, uuid string) *domain.Flow {
	t.Helper()
	ask := dsl.WaitRouterNode(
		[]domain.Exit{dsl.NamedExit("yes", "Yes", "groups"), dsl.NamedExit("other", "Other", "")},
		[]domain.Case{dsl.Case("c-yes", domain.OpHasAnyWord, "yes", "yes")},
		dsl.WaitRouterConfig{UUID: "ask", Timeout: 300, DefaultExitUUID: domain.Ptr("other")},
	)
	flow, err := dsl.New(uuid, "Contract "+uuid).
		Add(ask).
		Add(dsl.GroupsRouterNode(nil, dsl.GroupsConfig{UUID: "groups"})).
		Build()
	require.NoError(t, err)
	return flow
}

// RunFlowStoreContract verifies that store adheres to the ports.FlowStore
// contract. The store should be empty.
func RunFlowStoreContract(t *testing.T, store ports.FlowStore) {
	ctx := context.Background()
	flowID := "contract-flow-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		flow := sampleFlow(t, flowID)
		require.NoError(t, store.Save(ctx, flow), "Save should not return error")

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, flow, loaded)

		wait := loaded.Nodes[0].Wait
		require.NotNil(t, wait)
		require.NotNil(t, wait.Timeout)
		assert.Equal(t, 300, *wait.Timeout)
	})

	t.Run("Copies", func(t *testing.T) {
		flow := sampleFlow(t, flowID+"-copy")
		require.NoError(t, store.Save(ctx, flow))
		defer func() { _ = store.Delete(ctx, flow.UUID) }()

		flow.Name = "mutated after save"
		loaded, err := store.Load(ctx, flow.UUID)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated after save", loaded.Name)

		loaded.Nodes[0].UUID = "mutated after load"
		again, err := store.Load(ctx, flow.UUID)
		require.NoError(t, err)
		assert.Equal(t, "ask", again.Nodes[0].UUID)
	})

	t.Run("Overwrite", func(t *testing.T) {
		flow := sampleFlow(t, flowID)
		flow.Revision = 7
		flow.Name = "renamed"
		require.NoError(t, store.Save(ctx, flow))

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Revision)
		assert.Equal(t, "renamed", loaded.Name)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleFlow(t, flowID)))

		require.NoError(t, store.Delete(ctx, flowID), "Delete should not return error")

		_, err := store.Load(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")

		assert.NoError(t, store.Delete(ctx, flowID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := flowID + "-1"
		id2 := flowID + "-2"
		require.NoError(t, store.Save(ctx, sampleFlow(t, id1)))
		require.NoError(t, store.Save(ctx, sampleFlow(t, id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		flows, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, flows, id1)
		assert.Contains(t, flows, id2)
	})

	t.Run("Concurrent Saves", func(t *testing.T) {
		flows := make([]*domain.Flow, 8)
		for i := range flows {
			flows[i] = sampleFlow(t, flowID+"-concurrent")
			flows[i].Revision = i
		}

		var wg sync.WaitGroup
		for _, flow := range flows {
			wg.Add(1)
			go func(flow *domain.Flow) {
				defer wg.Done()
				assert.NoError(t, store.Save(ctx, flow))
			}(flow)
		}
		wg.Wait()

		loaded, err := store.Load(ctx, flowID+"-concurrent")
		require.NoError(t, err)
		assert.Equal(t, flowID+"-concurrent", loaded.UUID)
		_ = store.Delete(ctx, flowID+"-concurrent")
	})
}
