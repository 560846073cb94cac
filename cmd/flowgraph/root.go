package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/internal/config"
	"github.com/aretw0/flowgraph/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "flowgraph",
	Short: "Flowgraph builds, checks and serves conversational flow graphs",
	Long: `Flowgraph works with flow definitions: nodes made of actions, routers and exits.
It lints flow documents, draws them as Mermaid graphs, builds nodes from recipes
and serves stored flows over HTTP or the Model Context Protocol.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (JSON or YAML)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
}

// loadConfig layers defaults, the --config file and FLOWGRAPH_* variables,
// then applies command line overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	format, _ := logging.ParseFormat(cfg.Log.Format)
	return cfg, logging.New(level, format), nil
}
