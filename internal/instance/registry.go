// Package instance manages named game profiles stored as directories under
// the instances root, each with a manifest and its own mod folder.
package instance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/fsstore"
)

var _ domain.InstanceRepository = (*Registry)(nil)

// Registry creates, renames, deletes, rebinds and enumerates instances.
// Every mutation of the instances root goes through the registry mutex.
type Registry struct {
	store     *fsstore.Store
	validator *domain.InputValidator
	mu        sync.Mutex
	now       func() time.Time
}

// NewRegistry creates a registry over the store's instances root
func NewRegistry(store *fsstore.Store) *Registry {
	return &Registry{
		store:     store,
		validator: domain.NewInputValidator(),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

// Create makes a new instance bound to version. The version does not need to be installed.
func (r *Registry) Create(ctx context.Context, name, version string) (*domain.Instance, error) {
	if err := r.validator.ValidateInstanceName(name); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateVersionID(version); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.exists(name) {
		return nil, nameConflict(name).WithContext(ctx, "create_instance")
	}

	staging := r.store.InstanceStagingDir(name)
	if err := r.store.RemoveAll(staging); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Join(staging, fsstore.ModsDirName), 0755); err != nil {
		return nil, fsstore.DiskError(err, "Failed to create instance directory", staging)
	}

	now := r.now()
	inst := domain.Instance{Name: name, Version: version, CreatedAt: now, UpdatedAt: now}
	if err := r.store.WriteYAML(filepath.Join(staging, fsstore.ManifestFileName), inst); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	if err := r.store.Rename(staging, r.store.InstanceDir(name)); err != nil {
		_ = os.RemoveAll(staging)
		return nil, err
	}

	r.fillPaths(&inst)
	log.Info().Str("instance", name).Str("version", version).Msg("Instance created")
	return &inst, nil
}

// Get loads a single instance
func (r *Registry) Get(ctx context.Context, name string) (*domain.Instance, error) {
	if err := r.validator.ValidateInstanceName(name); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.load(name)
	if err != nil {
		return nil, withContext(ctx, err, "get_instance")
	}
	return inst, nil
}

// List returns every readable instance sorted by name. Instances whose manifest is
// missing or unreadable are reported as warnings instead of failing the listing.
func (r *Registry) List(ctx context.Context) ([]domain.Instance, []domain.Warning, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	dirs, err := r.store.ListInstanceDirs(ctx)
	if err != nil {
		return nil, nil, err
	}

	instances := make([]domain.Instance, 0, len(dirs))
	var warnings []domain.Warning
	for _, dir := range dirs {
		inst, err := r.load(dir.Name)
		if err != nil {
			msg := err.Error()
			if appErr, ok := domain.AsAppError(err); ok {
				msg = appErr.Message
			}
			warnings = append(warnings, domain.Warning{
				Name:    dir.Name,
				Path:    r.store.ManifestPath(dir.Name),
				Message: msg,
			})
			log.Warn().Str("instance", dir.Name).Err(err).Msg("Skipping unreadable instance")
			continue
		}
		instances = append(instances, *inst)
	}

	return instances, warnings, nil
}

// Delete removes an instance directory and everything in it, mods included
func (r *Registry) Delete(ctx context.Context, name string) error {
	if err := r.validator.ValidateInstanceName(name); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	dir := r.store.InstanceDir(name)
	if !r.store.IsDir(dir) {
		return notFound(name).WithContext(ctx, "delete_instance")
	}
	if err := r.store.RemoveAll(dir); err != nil {
		return err
	}

	log.Info().Str("instance", name).Msg("Instance deleted")
	return nil
}

// Rebind points an instance at another game version
func (r *Registry) Rebind(ctx context.Context, name, version string) (*domain.Instance, error) {
	if err := r.validator.ValidateInstanceName(name); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateVersionID(version); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.load(name)
	if err != nil {
		return nil, withContext(ctx, err, "rebind_instance")
	}

	previous := inst.Version
	inst.Version = version
	inst.UpdatedAt = r.now()
	if err := r.store.WriteYAML(r.store.ManifestPath(name), inst); err != nil {
		return nil, err
	}

	log.Info().Str("instance", name).Str("from", previous).Str("version", version).Msg("Instance rebound")
	return inst, nil
}

// Rename moves an instance to a new name, keeping its mods and version binding
func (r *Registry) Rename(ctx context.Context, oldName, newName string) (*domain.Instance, error) {
	if err := r.validator.ValidateInstanceName(oldName); err != nil {
		return nil, err
	}
	if err := r.validator.ValidateInstanceName(newName); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	inst, err := r.load(oldName)
	if err != nil {
		return nil, withContext(ctx, err, "rename_instance")
	}
	if oldName == newName {
		return inst, nil
	}
	if r.exists(newName) {
		return nil, nameConflict(newName).WithContext(ctx, "rename_instance")
	}

	if err := r.store.Rename(r.store.InstanceDir(oldName), r.store.InstanceDir(newName)); err != nil {
		return nil, err
	}

	inst.Name = newName
	inst.UpdatedAt = r.now()
	if err := r.store.WriteYAML(r.store.ManifestPath(newName), inst); err != nil {
		// Put the directory back so the old name keeps working
		if rbErr := os.Rename(r.store.InstanceDir(newName), r.store.InstanceDir(oldName)); rbErr != nil {
			log.Error().Err(rbErr).Str("instance", newName).Msg("Failed to roll back instance rename")
		}
		return nil, err
	}

	r.fillPaths(inst)
	log.Info().Str("from", oldName).Str("instance", newName).Msg("Instance renamed")
	return inst, nil
}

// HealthCheck verifies that the instances root is writable
func (r *Registry) HealthCheck(ctx context.Context) domain.HealthStatus {
	status := domain.HealthStatus{Timestamp: time.Now()}

	dir := r.store.InstancesDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		status.Status = domain.HealthStatusUnhealthy
		status.Message = fmt.Sprintf("instances root unavailable: %v", err)
		return status
	}

	probe, err := os.CreateTemp(dir, ".health-*")
	if err != nil {
		status.Status = domain.HealthStatusUnhealthy
		status.Message = fmt.Sprintf("instances root not writable: %v", err)
		return status
	}
	probe.Close()
	_ = os.Remove(probe.Name())

	dirs, err := r.store.ListInstanceDirs(ctx)
	if err != nil {
		status.Status = domain.HealthStatusDegraded
		status.Message = err.Error()
		return status
	}

	status.Status = domain.HealthStatusHealthy
	status.Message = "instances root writable"
	status.Details = map[string]any{"instances": len(dirs), "path": dir}
	return status
}

// load reads an instance from disk. The directory name is authoritative for Name.
func (r *Registry) load(name string) (*domain.Instance, error) {
	dir := r.store.InstanceDir(name)
	if !r.store.IsDir(dir) {
		return nil, notFound(name)
	}

	var inst domain.Instance
	path := r.store.ManifestPath(name)
	if err := r.store.ReadYAML(path, &inst); err != nil {
		msg := "Instance manifest is unreadable"
		if errors.Is(err, os.ErrNotExist) {
			msg = "Instance manifest is missing"
		}
		return nil, domain.NewAppErrorWithCause(domain.ErrManifestInvalid, msg, 422, err,
			map[string]any{"instance": name, "path": path})
	}
	if inst.Version == "" {
		return nil, domain.NewAppError(domain.ErrManifestInvalid, "Instance manifest has no version", 422,
			map[string]any{"instance": name, "path": path})
	}

	if inst.Name != name {
		log.Debug().Str("instance", name).Str("manifest_name", inst.Name).Msg("Manifest name differs from directory")
	}
	inst.Name = name
	r.fillPaths(&inst)
	return &inst, nil
}

func (r *Registry) fillPaths(inst *domain.Instance) {
	inst.Path = r.store.InstanceDir(inst.Name)
	inst.ModsPath = r.store.ModsDir(inst.Name)
}

// exists reports whether anything, file or directory, already occupies the name
func (r *Registry) exists(name string) bool {
	_, err := os.Lstat(r.store.InstanceDir(name))
	return err == nil
}

func notFound(name string) *domain.AppError {
	return domain.NewAppError(domain.ErrNotFound, fmt.Sprintf("Instance %q not found", name), 404,
		map[string]any{"instance": name})
}

func nameConflict(name string) *domain.AppError {
	return domain.NewAppError(domain.ErrNameConflict, fmt.Sprintf("Instance %q already exists", name), 409,
		map[string]any{"instance": name})
}

func withContext(ctx context.Context, err error, op string) error {
	if appErr, ok := domain.AsAppError(err); ok {
		return appErr.WithContext(ctx, op)
	}
	return err
}
