package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/quill/pkg/domain"
)

const ext = ".pen"

// Store implements ports.BlobStore using the local filesystem.
// It stores one <anchor>.pen file per anchor in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".quill/anchors".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".quill", "anchors")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(anchor string) (string, error) {
	if anchor == "" {
		return "", fmt.Errorf("anchor cannot be empty")
	}
	if strings.ContainsAny(anchor, `/\`) || anchor == "." || anchor == ".." {
		return "", fmt.Errorf("invalid anchor name %q", anchor)
	}
	return filepath.Join(s.BasePath, anchor+ext), nil
}

// Save persists the blob atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Save(ctx context.Context, anchor string, blob []byte) error {
	destPath, err := s.path(anchor)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure anchor directory: %w", err)
	}

	// Same directory so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+anchor+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // no-op once renamed
	}()

	if _, err := tmpFile.Write(blob); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing anchor file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to anchor file: %w", err)
	}
	return nil
}

// Load retrieves the blob of an anchor.
func (s *Store) Load(ctx context.Context, anchor string) ([]byte, error) {
	filePath, err := s.path(anchor)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrAnchorNotFound
		}
		return nil, fmt.Errorf("failed to read anchor file: %w", err)
	}
	return data, nil
}

// Delete removes the anchor file.
func (s *Store) Delete(ctx context.Context, anchor string) error {
	filePath, err := s.path(anchor)
	if err != nil {
		return err
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete anchor file: %w", err)
	}
	return nil
}

// List returns all anchors with a stored blob.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list anchors: %w", err)
	}

	anchors := []string{}
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
			anchors = append(anchors, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	sort.Strings(anchors)
	return anchors, nil
}
