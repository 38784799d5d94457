// Package storage is the opaque blob store for capture images.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Blob uploads bytes under an opaque path and returns a storage reference.
type Blob interface {
	Upload(ctx context.Context, path string, data []byte) (string, error)
}

// Dir stores blobs on the local filesystem under a root directory.
type Dir struct {
	Root string
}

func NewDir(root string) *Dir {
	return &Dir{Root: root}
}

func (d *Dir) Upload(_ context.Context, path string, data []byte) (string, error) {
	full := filepath.Join(d.Root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("blob upload: %w", err)
	}
	return full, nil
}
