// Package fsstore owns the launcher's on-disk layout: the version cache and
// the instances root. It performs I/O only and holds no business rules.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/vslauncher/launcher/internal/domain"
)

const (
	// VersionsDirName is the version cache directory below the data root
	VersionsDirName = "versions"
	// InstancesDirName is the instances root directory below the data root
	InstancesDirName = "instances"
	// ModsDirName is the per-instance mod folder
	ModsDirName = "mods"
	// ManifestFileName is the per-instance manifest file
	ManifestFileName = "manifest.yaml"
)

// Store resolves paths inside a data root and performs the raw filesystem operations
type Store struct {
	root string
}

// New creates a Store rooted at dataRoot
func New(dataRoot string) *Store {
	return &Store{root: dataRoot}
}

// Root returns the data root
func (s *Store) Root() string { return s.root }

// VersionsDir returns <root>/versions
func (s *Store) VersionsDir() string { return filepath.Join(s.root, VersionsDirName) }

// InstancesDir returns <root>/instances
func (s *Store) InstancesDir() string { return filepath.Join(s.root, InstancesDirName) }

// VersionDir returns the install directory of a version
func (s *Store) VersionDir(id string) string { return filepath.Join(s.VersionsDir(), id) }

// PartialDownloadPath is where an archive is streamed while a download is in progress
func (s *Store) PartialDownloadPath(id string) string {
	return filepath.Join(s.VersionsDir(), "."+id+".part")
}

// ArchivePath is where a fully downloaded and verified archive waits to be unpacked
func (s *Store) ArchivePath(id string) string {
	return filepath.Join(s.VersionsDir(), "."+id+".archive")
}

// StagingDir is where an archive is unpacked before being renamed into place
func (s *Store) StagingDir(id string) string {
	return filepath.Join(s.VersionsDir(), "."+id+".staging")
}

// InstanceDir returns the directory of an instance
func (s *Store) InstanceDir(name string) string { return filepath.Join(s.InstancesDir(), name) }

// InstanceStagingDir is where a new instance is assembled before it becomes visible
func (s *Store) InstanceStagingDir(name string) string {
	return filepath.Join(s.InstancesDir(), "."+name+".creating")
}

// ModsDir returns the mod folder of an instance
func (s *Store) ModsDir(name string) string { return filepath.Join(s.InstanceDir(name), ModsDirName) }

// ManifestPath returns the manifest file of an instance
func (s *Store) ManifestPath(name string) string {
	return filepath.Join(s.InstanceDir(name), ManifestFileName)
}

// EnsureLayout creates the versions and instances roots
func (s *Store) EnsureLayout(ctx context.Context) error {
	for _, dir := range []string{s.VersionsDir(), s.InstancesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return DiskError(err, "Failed to create data directory", dir).WithContext(ctx, "ensure_layout")
		}
	}
	return nil
}

// Exists reports whether path exists
func (s *Store) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory
func (s *Store) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// RemoveAll removes path and everything below it
func (s *Store) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return DiskError(err, "Failed to remove path", path)
	}
	return nil
}

// Rename moves oldPath to newPath in one filesystem operation
func (s *Store) Rename(oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return DiskError(err, "Failed to move path into place", newPath)
	}
	return nil
}

// IsHidden reports whether a directory entry is a staging or temporary artefact
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// IsNoSpace reports whether err was caused by a full disk
func IsNoSpace(err error) bool {
	return errors.Is(err, syscall.ENOSPC)
}

// DiskError wraps a filesystem failure as a DISK_ERROR
func DiskError(err error, message, path string) *domain.AppError {
	details := map[string]any{"path": path}
	if IsNoSpace(err) {
		details["reason"] = "insufficient disk space"
		message = fmt.Sprintf("%s: insufficient disk space", message)
	}
	return domain.NewAppErrorWithCause(domain.ErrDisk, message, 507, err, details)
}
