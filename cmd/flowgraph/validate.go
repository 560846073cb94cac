package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Lint a flow document",
	Long: `Checks a flow document against the flow schema, then checks the graph itself:
unique uuids, exits pointing at existing nodes, cases pointing at existing exits
and nodes unreachable from the first node.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().String("format", "", "Document format (json or yaml), defaults to the file extension")
}

func runValidate(cmd *cobra.Command, path string) error {
	data, f, err := readDocument(cmd, path)
	if err != nil {
		return err
	}
	linter, err := validator.NewLinter()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	flow, err := linter.Lint(data, f)
	if issues := validator.Issues(err); len(issues) > 0 {
		for _, issue := range issues {
			fmt.Fprintf(out, "  - %s\n", issue.Error())
		}
		return fmt.Errorf("validation failed: %d issue(s) in %s", len(issues), path)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Flow %s is valid! ✅\n", flow.UUID)
	return nil
}
