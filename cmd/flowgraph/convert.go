package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/pkg/codec"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert a flow document between JSON and YAML",
	Long: `Reads a flow document and writes it in the format of the output file extension.
Use "-" as output to print to stdout in the --to format.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, from, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		flow, err := codec.DecodeFlow(data, from)
		if err != nil {
			return fmt.Errorf("failed to decode %s: %w", args[0], err)
		}

		dest := args[1]
		var to codec.Format
		if dest == "-" {
			name, _ := cmd.Flags().GetString("to")
			to, err = codec.ParseFormat(name)
		} else {
			to, err = codec.FormatFromPath(dest)
		}
		if err != nil {
			return err
		}

		out, err := codec.Encode(flow, to)
		if err != nil {
			return err
		}
		if dest == "-" {
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}
		if err := os.WriteFile(dest, out, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().String("format", "", "Input format (json or yaml), defaults to the file extension")
	convertCmd.Flags().String("to", "yaml", "Output format when writing to stdout")
}
