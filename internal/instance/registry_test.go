package instance

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/fsstore"
)

func newTestRegistry(t *testing.T) (*Registry, *fsstore.Store) {
	t.Helper()
	store := fsstore.New(t.TempDir())
	require.NoError(t, store.EnsureLayout(context.Background()))
	r := NewRegistry(store)
	r.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return r, store
}

func names(instances []domain.Instance) []string {
	out := make([]string, len(instances))
	for i, inst := range instances {
		out[i] = inst.Name
	}
	return out
}

func TestRegistry_CreateThenList(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	inst, err := r.Create(ctx, "foo", "1.20.11")
	require.NoError(t, err)
	assert.Equal(t, "foo", inst.Name)
	assert.Equal(t, "1.20.11", inst.Version)
	assert.Equal(t, store.InstanceDir("foo"), inst.Path)
	assert.Equal(t, store.ModsDir("foo"), inst.ModsPath)
	assert.DirExists(t, store.ModsDir("foo"))
	assert.FileExists(t, store.ManifestPath("foo"))
	assert.NoDirExists(t, store.InstanceStagingDir("foo"))

	list, warnings, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, list, 1)
	assert.Equal(t, "foo", list[0].Name)
	assert.Equal(t, "1.20.11", list[0].Version)
	assert.Equal(t, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), list[0].CreatedAt)
}

func TestRegistry_CreateDoesNotRequireInstalledVersion(t *testing.T) {
	r, _ := newTestRegistry(t)

	inst, err := r.Create(context.Background(), "future", "9.9.9-rc.1")
	require.NoError(t, err)
	assert.Equal(t, "9.9.9-rc.1", inst.Version)
}

func TestRegistry_CreateConflict(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "foo", "1.20.11")
	require.NoError(t, err)

	_, err = r.Create(ctx, "foo", "1.21.0")
	require.Error(t, err)
	assert.True(t, domain.IsNameConflict(err))

	got, err := r.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "1.20.11", got.Version, "existing instance untouched")
}

func TestRegistry_CreateInvalidNames(t *testing.T) {
	r, store := newTestRegistry(t)

	for _, name := range []string{"", ".", "..", ".hidden", "a/b", `a\b`, "con", "LPT1.txt", " padded", "dot.", "tab\tname", "star*"} {
		t.Run(name, func(t *testing.T) {
			_, err := r.Create(context.Background(), name, "1.20.11")
			require.Error(t, err)
			assert.True(t, domain.HasCode(err, domain.ErrInvalidName), "expected INVALID_NAME for %q, got %v", name, err)
		})
	}

	entries, err := os.ReadDir(store.InstancesDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRegistry_CreateInvalidVersion(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Create(context.Background(), "foo", "")
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))

	_, err = r.Create(context.Background(), "foo", "../1.20")
	assert.True(t, domain.HasCode(err, domain.ErrInvalidInput))
}

func TestRegistry_DeleteTwice(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "foo", "1.20.11")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.ModsDir("foo"), "mod.zip"), []byte("zip"), 0644))

	require.NoError(t, r.Delete(ctx, "foo"))

	list, _, err := r.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names(list), "foo")
	assert.NoDirExists(t, store.InstanceDir("foo"))

	err = r.Delete(ctx, "foo")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_ListToleratesBrokenManifests(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := r.Create(ctx, name, "1.20.11")
		require.NoError(t, err)
	}

	require.NoError(t, os.WriteFile(store.ManifestPath("beta"), []byte("name: [broken"), 0644))
	require.NoError(t, os.MkdirAll(store.InstanceDir("orphan"), 0755))
	require.NoError(t, os.WriteFile(store.ManifestPath("gamma"), []byte("name: gamma\n"), 0644))

	list, warnings, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha"}, names(list))

	require.Len(t, warnings, 3)
	byName := map[string]domain.Warning{}
	for _, w := range warnings {
		byName[w.Name] = w
	}
	assert.Equal(t, store.ManifestPath("beta"), byName["beta"].Path)
	assert.Contains(t, byName["beta"].Message, "unreadable")
	assert.Contains(t, byName["orphan"].Message, "missing")
	assert.Contains(t, byName["gamma"].Message, "no version")
}

func TestRegistry_ListSkipsStagingAndFiles(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "zeta", "1.20.11")
	require.NoError(t, err)
	_, err = r.Create(ctx, "Alpha", "1.20.11")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(store.InstanceStagingDir("half"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(store.InstancesDir(), "notes.txt"), []byte("x"), 0644))

	list, warnings, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"Alpha", "zeta"}, names(list))
}

func TestRegistry_DirectoryNameIsAuthoritative(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "real", "1.20.11")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(store.ManifestPath("real"), []byte("name: other\nversion: 1.19.0\n"), 0644))

	inst, err := r.Get(ctx, "real")
	require.NoError(t, err)
	assert.Equal(t, "real", inst.Name)
	assert.Equal(t, "1.19.0", inst.Version)
}

func TestRegistry_Rebind(t *testing.T) {
	r, _ := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "foo", "1.20.11")
	require.NoError(t, err)

	later := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return later }

	inst, err := r.Rebind(ctx, "foo", "1.21.0-rc.2")
	require.NoError(t, err)
	assert.Equal(t, "1.21.0-rc.2", inst.Version)

	got, err := r.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, "1.21.0-rc.2", got.Version)
	assert.Equal(t, later, got.UpdatedAt)
	assert.True(t, got.CreatedAt.Before(later))

	_, err = r.Rebind(ctx, "missing", "1.21.0")
	assert.True(t, domain.IsNotFound(err))
}

func TestRegistry_Rename(t *testing.T) {
	r, store := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Create(ctx, "old", "1.20.11")
	require.NoError(t, err)
	_, err = r.Create(ctx, "taken", "1.20.11")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(store.ModsDir("old"), "mod.zip"), []byte("zip"), 0644))

	_, err = r.Rename(ctx, "old", "taken")
	assert.True(t, domain.IsNameConflict(err))

	_, err = r.Rename(ctx, "old", "bad/name")
	assert.True(t, domain.HasCode(err, domain.ErrInvalidName))

	_, err = r.Rename(ctx, "ghost", "new")
	assert.True(t, domain.IsNotFound(err))

	inst, err := r.Rename(ctx, "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", inst.Name)
	assert.Equal(t, "1.20.11", inst.Version)
	assert.Equal(t, store.ModsDir("new"), inst.ModsPath)
	assert.FileExists(t, filepath.Join(store.ModsDir("new"), "mod.zip"))
	assert.NoDirExists(t, store.InstanceDir("old"))

	var manifest domain.Instance
	require.NoError(t, store.ReadYAML(store.ManifestPath("new"), &manifest))
	assert.Equal(t, "new", manifest.Name)

	same, err := r.Rename(ctx, "new", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", same.Name)
}

func TestRegistry_HealthCheck(t *testing.T) {
	r, _ := newTestRegistry(t)
	_, err := r.Create(context.Background(), "foo", "1.20.11")
	require.NoError(t, err)

	status := r.HealthCheck(context.Background())
	assert.Equal(t, domain.HealthStatusHealthy, status.Status)
	assert.Equal(t, 1, status.Details["instances"])
}

// Property: any safe name can be created and is then listed bound to its version
func TestRegistry_CreateListProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	properties := gopter.NewProperties(parameters)

	properties.Property("created instance is listed with its version", prop.ForAll(
		func(name string, patch int) bool {
			r, _ := newTestRegistry(t)
			version := "1.20." + strconv.Itoa(patch)

			if _, err := r.Create(context.Background(), name, version); err != nil {
				return false
			}
			list, warnings, err := r.List(context.Background())
			if err != nil || len(warnings) != 0 || len(list) != 1 {
				return false
			}
			return list[0].Name == name && list[0].Version == version
		},
		gen.Identifier().SuchThat(func(s string) bool {
			return len(s) > 0 && len(s) <= domain.MaxInstanceNameLength && domain.NewInputValidator().ValidateInstanceName(s) == nil
		}),
		gen.IntRange(0, 99),
	))

	properties.TestingRun(t)
}
