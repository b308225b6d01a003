package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// localStorage keeps objects on the local filesystem, one file per key.
// It backs STORAGE_DRIVER=local for running the pipeline without S3.
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) *localStorage {
	return &localStorage{
		basePath: basePath,
	}
}

// generatePath converts a slash separated key to a path under basePath
func (s *localStorage) generatePath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if key == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.basePath, clean), nil
}

// Put writes data under key and returns a file:// URL
func (s *localStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyObject
	}
	path, err := s.generatePath(key)
	if err != nil {
		return "", err
	}

	// Ensure the directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}

	return "file://" + filepath.ToSlash(path), nil
}

// Delete removes the file stored under key
func (s *localStorage) Delete(ctx context.Context, key string) error {
	path, err := s.generatePath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("object %s not found: %w", key, err)
		}
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// Exists reports whether an object is stored under key
func (s *localStorage) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.generatePath(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}
