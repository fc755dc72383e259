// Package state persists migration manifests. The chain log is the only
// source of truth for remote state; manifests are derived artifacts for
// downstream reporting and packaging, so the store has no locking and no
// read-modify-write cycle.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/worldforge-io/worldforge/internal/diff"
	"github.com/worldforge-io/worldforge/internal/profile"
)

// Store is a manifest storage backend.
type Store interface {
	// Write persists the manifest.
	Write(ctx context.Context, m *diff.Manifest) error

	// Read loads the most recently written manifest. Returns nil with no
	// error when none exists yet.
	Read(ctx context.Context) (*diff.Manifest, error)
}

// NewStore builds a store from profile configuration. A nil configuration
// yields a local store in dir.
func NewStore(cfg *profile.StoreConfig, dir string) (Store, error) {
	if cfg == nil || cfg.Type == "" || cfg.Type == "local" {
		if cfg != nil && cfg.Dir != "" {
			dir = cfg.Dir
		}
		return NewLocalStore(dir), nil
	}

	switch cfg.Type {
	case "s3":
		return newS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown manifest store type: %s", cfg.Type)
	}
}

// localStore keeps the manifest as a JSON file on disk.
type localStore struct {
	path string
}

// NewLocalStore returns a store writing to dir/manifest.json.
func NewLocalStore(dir string) Store {
	return &localStore{path: filepath.Join(dir, "manifest.json")}
}

func (s *localStore) Write(_ context.Context, m *diff.Manifest) error {
	data, err := MarshalManifest(m)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

func (s *localStore) Read(_ context.Context) (*diff.Manifest, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m diff.Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return &m, nil
}

// MarshalManifest renders a manifest in the stored representation.
func MarshalManifest(m *diff.Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return append(data, '\n'), nil
}
