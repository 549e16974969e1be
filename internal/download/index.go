package download

import (
	"context"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/fsstore"
)

// InstalledIndex maps installed version IDs to their install directories.
// It is rebuilt from a directory scan, never patched incrementally.
type InstalledIndex struct {
	store   *fsstore.Store
	mu      sync.RWMutex
	entries map[string]string
}

// NewInstalledIndex creates an empty index over the store's version cache
func NewInstalledIndex(store *fsstore.Store) *InstalledIndex {
	return &InstalledIndex{
		store:   store,
		entries: make(map[string]string),
	}
}

// Rebuild rescans the version cache and replaces the index wholesale
func (i *InstalledIndex) Rebuild(ctx context.Context) error {
	dirs, err := i.store.ListVersionDirs(ctx)
	if err != nil {
		return err
	}

	entries := make(map[string]string, len(dirs))
	for _, d := range dirs {
		entries[d.Name] = d.Path
	}

	i.mu.Lock()
	i.entries = entries
	i.mu.Unlock()

	log.Debug().Int("installed", len(entries)).Msg("Installed version index rebuilt")
	return nil
}

// Lookup returns the install directory of a version
func (i *InstalledIndex) Lookup(id string) (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	path, ok := i.entries[id]
	return path, ok
}

// List returns every installed version sorted by ID
func (i *InstalledIndex) List() []domain.InstalledVersion {
	i.mu.RLock()
	defer i.mu.RUnlock()

	list := make([]domain.InstalledVersion, 0, len(i.entries))
	for id, path := range i.entries {
		list = append(list, domain.InstalledVersion{ID: id, Path: path})
	}
	sort.Slice(list, func(a, b int) bool { return list[a].ID < list[b].ID })
	return list
}

// Len returns the number of installed versions
func (i *InstalledIndex) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}
