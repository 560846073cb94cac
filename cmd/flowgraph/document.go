package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flowgraph/pkg/codec"
)

// readDocument reads path ("-" is stdin). The format comes from --format
// when set, otherwise from the file extension.
func readDocument(cmd *cobra.Command, path string) ([]byte, codec.Format, error) {
	f, err := documentFormat(cmd, path)
	if err != nil {
		return nil, "", err
	}

	var data []byte
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, f, nil
}

func documentFormat(cmd *cobra.Command, path string) (codec.Format, error) {
	if name, _ := cmd.Flags().GetString("format"); name != "" {
		return codec.ParseFormat(name)
	}
	if path == "-" {
		return codec.JSON, nil
	}
	return codec.FormatFromPath(path)
}
