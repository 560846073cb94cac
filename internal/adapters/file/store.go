// Package file stores flows as JSON or YAML documents in a directory.
package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/flowgraph/pkg/codec"
	"github.com/aretw0/flowgraph/pkg/domain"
)

// DefaultDir is used when no directory is configured.
var DefaultDir = filepath.Join(".flowgraph", "flows")

const tmpPrefix = "tmp-"

// Store implements ports.FlowStore using the local filesystem.
// Each flow is one document named after its uuid.
type Store struct {
	BasePath string
	Format   codec.Format
}

type Option func(*Store)

// WithFormat sets the document format for new files. Defaults to JSON.
func WithFormat(f codec.Format) Option {
	return func(s *Store) {
		s.Format = f
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to DefaultDir.
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = DefaultDir
	}
	s := &Store{BasePath: basePath, Format: codec.JSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func checkUUID(uuid string) error {
	if uuid == "" {
		return fmt.Errorf("flow uuid cannot be empty")
	}
	if strings.ContainsAny(uuid, `/\`) || uuid == "." || uuid == ".." || strings.HasPrefix(uuid, tmpPrefix) {
		return fmt.Errorf("invalid flow uuid %q", uuid)
	}
	return nil
}

func (s *Store) path(uuid string) string {
	return filepath.Join(s.BasePath, uuid+s.Format.Ext())
}

// Save persists the flow atomically.
// It writes to a temporary file first, syncs it, then renames it over the
// destination.
func (s *Store) Save(ctx context.Context, flow *domain.Flow) error {
	if flow == nil {
		return fmt.Errorf("flow uuid cannot be empty")
	}
	if err := checkUUID(flow.UUID); err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure flow directory: %w", err)
	}

	data, err := codec.Encode(flow, s.Format)
	if err != nil {
		return fmt.Errorf("failed to marshal flow: %w", err)
	}

	// Same directory, so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, tmpPrefix+flow.UUID+"-*"+s.Format.Ext())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	destPath := s.path(flow.UUID)
	if err := os.Rename(tmpPath, destPath); err != nil {
		// Windows refuses to rename over an existing file.
		if rmErr := os.Remove(destPath); rmErr != nil && !os.IsNotExist(rmErr) {
			return fmt.Errorf("failed to remove existing flow file for overwrite: %w", rmErr)
		}
		if err := os.Rename(tmpPath, destPath); err != nil {
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return nil
}

// Load reads a flow. Documents in either format are found.
func (s *Store) Load(ctx context.Context, uuid string) (*domain.Flow, error) {
	if err := checkUUID(uuid); err != nil {
		return nil, err
	}

	for _, f := range s.formats() {
		data, err := os.ReadFile(filepath.Join(s.BasePath, uuid+f.Ext()))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read flow file: %w", err)
		}
		flow, err := codec.DecodeFlow(data, f)
		if err != nil {
			return nil, fmt.Errorf("failed to unmarshal flow %s: %w", uuid, err)
		}
		return flow, nil
	}
	return nil, domain.ErrFlowNotFound
}

// Delete removes the flow document in every format.
func (s *Store) Delete(ctx context.Context, uuid string) error {
	if err := checkUUID(uuid); err != nil {
		return err
	}
	for _, f := range s.formats() {
		err := os.Remove(filepath.Join(s.BasePath, uuid+f.Ext()))
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete flow file: %w", err)
		}
	}
	return nil
}

// List returns the uuids of stored flows in lexical order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}

	seen := make(map[string]bool)
	flows := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, tmpPrefix) {
			continue
		}
		ext := filepath.Ext(name)
		if ext != codec.JSON.Ext() && ext != codec.YAML.Ext() {
			continue
		}
		if id := strings.TrimSuffix(name, ext); !seen[id] {
			seen[id] = true
			flows = append(flows, id)
		}
	}
	sort.Strings(flows)
	return flows, nil
}

// formats returns the configured format first, then the other one.
func (s *Store) formats() []codec.Format {
	if s.Format == codec.YAML {
		return []codec.Format{codec.YAML, codec.JSON}
	}
	return []codec.Format{codec.JSON, codec.YAML}
}
