package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/internal/presentation/graph"
	"github.com/aretw0/flowgraph/internal/validator"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <file>",
	Short: "Export the flow graph visualization",
	Long: `Reads a flow document and outputs a Mermaid diagram (graph TD) of its nodes and exits.
Nodes with lint issues are flagged.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, f, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		linter, err := validator.NewLinter()
		if err != nil {
			return err
		}
		flow, lintErr := linter.Lint(data, f)
		if flow == nil {
			return fmt.Errorf("cannot draw %s: %w", args[0], lintErr)
		}

		selected, _ := cmd.Flags().GetString("selected")
		overlay := &graph.GraphOverlay{Selected: selected}
		for _, issue := range validator.Issues(lintErr) {
			if issue.NodeUUID != "" {
				overlay.Flagged = append(overlay.Flagged, issue.NodeUUID)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(flow.RenderNodes(), overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("format", "", "Document format (json or yaml), defaults to the file extension")
	graphCmd.Flags().String("selected", "", "Highlight the node with this uuid")
}
