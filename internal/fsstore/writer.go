package fsstore

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// WriteYAML marshals v and writes it atomically to path
func (s *Store) WriteYAML(path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	return AtomicWrite(path, data)
}

// ReadYAML reads path and unmarshals it into v
func (s *Store) ReadYAML(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// AtomicWrite performs an atomic file write using temp file → sync → rename
func AtomicWrite(targetPath string, data []byte) error {
	// Temp file in the same directory keeps the rename on one filesystem
	dir := filepath.Dir(targetPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return DiskError(err, "Failed to create directory", dir)
	}

	tempFile, err := os.CreateTemp(dir, ".write-*.tmp")
	if err != nil {
		return DiskError(err, "Failed to create temp file", dir)
	}
	tempPath := tempFile.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return DiskError(err, "Failed to write temp file", tempPath)
	}

	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return DiskError(err, "Failed to sync temp file", tempPath)
	}

	if err := tempFile.Close(); err != nil {
		return DiskError(err, "Failed to close temp file", tempPath)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return DiskError(err, "Failed to rename temp file to target", targetPath)
	}

	success = true
	return nil
}
