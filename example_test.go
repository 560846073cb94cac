package flowgraph_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/flowgraph/pkg/adapters/memory"
	"github.com/aretw0/flowgraph/pkg/dsl"
	"github.com/aretw0/flowgraph/pkg/flows"
)

// Example builds a one-node flow from a recipe, saves it twice and prints
// the revision and rename reported by the second save.
func Example() {
	flow, err := dsl.New("flow-1", "Favorites").
		Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).
		Build()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	mgr := flows.NewManager(memory.NewStore())
	if _, err := mgr.Save(ctx, flow); err != nil {
		log.Fatal(err)
	}
	fmt.Println("revision", flow.Revision)

	flow.Name = "Favorite Colors"
	diff, err := mgr.Save(ctx, flow)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("revision", flow.Revision, "renamed to", *diff.Name)

	// Output:
	// revision 1
	// revision 2 renamed to Favorite Colors
}
