package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
	"github.com/aretw0/flowgraph/pkg/dsl"
)

// execute runs the root command with args. Flags keep their values between
// runs of a package-level command tree, so they are reset first.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolate points the store at a temp dir and clears inherited settings.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{
		"FLOWGRAPH_LOG_LEVEL", "FLOWGRAPH_LOG_FORMAT", "FLOWGRAPH_STORE_FORMAT",
		"FLOWGRAPH_REDIS_ADDR", "FLOWGRAPH_REDIS_TTL", "FLOWGRAPH_REDIS_DB",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("FLOWGRAPH_STORE", "file")
	t.Setenv("FLOWGRAPH_STORE_DIR", filepath.Join(dir, "flows"))
	return dir
}

func writeFlow(t *testing.T, dir, name string, flow *domain.Flow) string {
	t.Helper()
	f, err := codec.FormatFromPath(name)
	require.NoError(t, err)
	data, err := codec.Encode(flow, f)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func validFlow(t *testing.T, uuid string) *domain.Flow {
	t.Helper()
	flow, err := dsl.New(uuid, "Hooked").
		Add(dsl.WebhookRouterNode(dsl.WebhookConfig{})).
		Build()
	require.NoError(t, err)
	return flow
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "flowgraph version "))
}

func TestValidate(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, "validate", writeFlow(t, dir, "ok.yaml", validFlow(t, "flow-ok")))
	require.NoError(t, err)
	assert.Contains(t, out, "Flow flow-ok is valid")

	broken := validFlow(t, "flow-broken")
	broken.Nodes[0].Exits[0].DestinationNodeUUID = domain.Ptr("nowhere")
	out, err = execute(t, "validate", writeFlow(t, dir, "broken.json", broken))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, out, "nowhere")

	_, err = execute(t, "validate", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestGraph(t *testing.T) {
	dir := isolate(t)
	flow := validFlow(t, "flow-graph")
	broken := validFlow(t, "flow-graph")
	broken.Nodes[0].Exits[0].DestinationNodeUUID = domain.Ptr("nowhere")

	out, err := execute(t, "graph", writeFlow(t, dir, "g.json", flow), "--selected", flow.Nodes[0].UUID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "graph TD"))
	assert.Contains(t, out, "current;")
	assert.NotContains(t, out, "flagged;")

	out, err = execute(t, "graph", writeFlow(t, dir, "broken.json", broken))
	require.NoError(t, err)
	assert.Contains(t, out, "flagged;")
}

func TestRecipe(t *testing.T) {
	isolate(t)

	out, err := execute(t, "recipe")
	require.NoError(t, err)
	for _, r := range dsl.Recipes() {
		assert.Contains(t, out, r.Name)
	}

	out, err = execute(t, "recipe", dsl.RecipeWaitForResponse,
		"--param", `categories=["Red","Blue"]`,
		"--param", "timeout=300",
		"--ids", "sequential",
	)
	require.NoError(t, err)
	node, err := codec.DecodeRenderNode([]byte(out), codec.JSON)
	require.NoError(t, err)
	assert.Len(t, node.Node.Exits, 3)
	assert.True(t, strings.HasPrefix(node.Node.UUID, dsl.RecipeWaitForResponse))

	out, err = execute(t, "recipe", dsl.RecipeStartFlow, "-o", "yaml")
	require.NoError(t, err)
	_, err = codec.DecodeRenderNode([]byte(out), codec.YAML)
	require.NoError(t, err)

	_, err = execute(t, "recipe", "nope")
	assert.ErrorIs(t, err, dsl.ErrUnknownRecipe)
	_, err = execute(t, "recipe", dsl.RecipeWebhook, "--ids", "weird")
	assert.Error(t, err)
	_, err = execute(t, "recipe", dsl.RecipeWebhook, "--param", "novalue")
	assert.Error(t, err)
}

func TestConvert(t *testing.T) {
	dir := isolate(t)
	original := validFlow(t, "flow-conv")
	in := writeFlow(t, dir, "in.json", original)
	dest := filepath.Join(dir, "out.yaml")

	_, err := execute(t, "convert", in, dest)
	require.NoError(t, err)
	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	flow, err := codec.DecodeFlow(data, codec.YAML)
	require.NoError(t, err)
	assert.Equal(t, original.UUID, flow.UUID)
	require.Len(t, flow.Nodes, len(original.Nodes))
	assert.Equal(t, original.Nodes[0].UUID, flow.Nodes[0].UUID)

	out, err := execute(t, "convert", dest, "-", "--to", "json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "{"))
}

func TestFlowsLifecycle(t *testing.T) {
	dir := isolate(t)
	path := writeFlow(t, dir, "f.json", validFlow(t, "flow-1"))

	out, err := execute(t, "flows", "put", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved flow-1 at revision 1")

	out, err = execute(t, "flows", "put", path)
	require.NoError(t, err)
	assert.Contains(t, out, "revision 2")

	out, err = execute(t, "flows", "list")
	require.NoError(t, err)
	assert.Equal(t, "flow-1\n", out)

	out, err = execute(t, "flows", "get", "flow-1", "-o", "yaml")
	require.NoError(t, err)
	flow, err := codec.DecodeFlow([]byte(out), codec.YAML)
	require.NoError(t, err)
	assert.Equal(t, 2, flow.Revision)

	_, err = execute(t, "flows", "delete", "flow-1")
	require.NoError(t, err)
	_, err = execute(t, "flows", "get", "flow-1")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestConfigErrors(t *testing.T) {
	isolate(t)
	t.Setenv("FLOWGRAPH_STORE", "bogus")

	_, err := execute(t, "flows", "list")
	assert.Error(t, err)

	_, err = execute(t, "mcp", "--transport", "carrier-pigeon")
	assert.Error(t, err)
}
