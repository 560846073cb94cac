// Package codec encodes flows and render nodes as JSON or YAML.
//
// YAML always goes through the JSON shape, so the distinctions the JSON form
// makes (absent key, explicit null, falsy value) survive a YAML round trip.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/flowgraph/pkg/domain"
)

// ErrUnsupportedFormat is returned for unknown formats or file extensions.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Format is a serialization format.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat parses a format name. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	if f == YAML {
		return ".yaml"
	}
	return ".json"
}

// Encode serializes v. JSON output is indented with two spaces.
func Encode(v any, f Format) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	switch f {
	case JSON:
		return append(data, '\n'), nil
	case YAML:
		return JSONToYAML(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Decode deserializes data into v.
func Decode(data []byte, f Format, v any) error {
	switch f {
	case JSON:
	case YAML:
		var err error
		if data, err = YAMLToJSON(data); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode json: %w", err)
	}
	return nil
}

// DecodeFlow decodes a flow document.
func DecodeFlow(data []byte, f Format) (*domain.Flow, error) {
	var flow domain.Flow
	if err := Decode(data, f, &flow); err != nil {
		return nil, err
	}
	return &flow, nil
}

// DecodeRenderNode decodes a single render node document.
func DecodeRenderNode(data []byte, f Format) (domain.RenderNode, error) {
	var rn domain.RenderNode
	if err := Decode(data, f, &rn); err != nil {
		return domain.RenderNode{}, err
	}
	return rn, nil
}

// JSONToYAML converts a JSON document to block-style YAML, keeping key
// order and nulls.
func JSONToYAML(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read json: %w", err)
	}
	blockStyle(&doc)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// YAMLToJSON converts a YAML document to compact JSON.
func YAMLToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to convert yaml to json: %w", err)
	}
	return out, nil
}

// blockStyle clears flow and quoting styles so the encoder picks plain
// block output. String scalars that would read back as another type are
// still quoted by the encoder because their tag stays !!str.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
