package fsstore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
)

// DirEntry is a visible subdirectory found by a scan
type DirEntry struct {
	Name string
	Path string
}

// ListDirs returns the visible subdirectories of dir sorted by name.
// Dot-prefixed staging entries and plain files are skipped; a missing dir yields no entries.
func (s *Store) ListDirs(ctx context.Context, dir string) ([]DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, DiskError(err, "Failed to read directory", dir)
	}

	dirs := make([]DirEntry, 0, len(entries))
	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if !entry.IsDir() || IsHidden(entry.Name()) {
			continue
		}
		dirs = append(dirs, DirEntry{Name: entry.Name(), Path: filepath.Join(dir, entry.Name())})
	}

	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs, nil
}

// ListVersionDirs lists the unpacked versions in the version cache
func (s *Store) ListVersionDirs(ctx context.Context) ([]DirEntry, error) {
	return s.ListDirs(ctx, s.VersionsDir())
}

// ListInstanceDirs lists the instance directories in the instances root
func (s *Store) ListInstanceDirs(ctx context.Context) ([]DirEntry, error) {
	return s.ListDirs(ctx, s.InstancesDir())
}

// CleanStaleArtifacts removes dot-prefixed leftovers (interrupted downloads or
// instance creations) from dir. Returns the removed paths.
func (s *Store) CleanStaleArtifacts(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, DiskError(err, "Failed to read directory", dir)
	}

	var removed []string
	for _, entry := range entries {
		if !IsHidden(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return removed, DiskError(err, "Failed to remove stale artifact", path)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
