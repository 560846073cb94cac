package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/internal/metrics"
	"github.com/aretw0/flowgraph/internal/validator"
	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/flows"
)

var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Manage stored flows",
	Long:  `Lists, reads, saves and deletes flows in the configured store.`,
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored flow uuids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(mgr *flows.Manager) error {
			ids, err := mgr.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		})
	},
}

var flowsGetCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Print a stored flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("output")
		f, err := codec.ParseFormat(name)
		if err != nil {
			return err
		}
		return withManager(cmd, func(mgr *flows.Manager) error {
			flow, err := mgr.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := codec.Encode(flow, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var flowsPutCmd = &cobra.Command{
	Use:   "put <file>",
	Short: "Lint a flow document and save it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, f, err := readDocument(cmd, args[0])
		if err != nil {
			return err
		}
		linter, err := validator.NewLinter()
		if err != nil {
			return err
		}
		flow, err := linter.Lint(data, f)
		if err != nil {
			return err
		}

		return withManager(cmd, func(mgr *flows.Manager) error {
			diff, err := mgr.Save(cmd.Context(), flow)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Saved %s at revision %d\n", flow.UUID, flow.Revision)
			if diff != nil {
				fmt.Fprintf(out, "  added: %d, removed: %d, changed: %d, moved: %d\n",
					len(diff.Added), len(diff.Removed), len(diff.Changed), len(diff.Moved))
			}
			return nil
		})
	},
}

var flowsDeleteCmd = &cobra.Command{
	Use:   "delete <uuid>",
	Short: "Delete a stored flow",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withManager(cmd, func(mgr *flows.Manager) error {
			return mgr.Delete(cmd.Context(), args[0])
		})
	},
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	flowsCmd.AddCommand(flowsListCmd, flowsGetCmd, flowsPutCmd, flowsDeleteCmd)

	flowsGetCmd.Flags().StringP("output", "o", "json", "Output format: json or yaml")
	flowsPutCmd.Flags().String("format", "", "Document format (json or yaml), defaults to the file extension")
}

// withManager opens the configured store for the duration of fn.
func withManager(cmd *cobra.Command, fn func(*flows.Manager) error) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	mgr, closeStore, err := newManager(cmd.Context(), cfg, logger, metrics.New())
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close store", "err", err)
		}
	}()
	return fn(mgr)
}
