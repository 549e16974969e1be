package domain

import "context"

// VersionCatalog fetches the list of downloadable game versions
type VersionCatalog interface {
	FetchCatalog(ctx context.Context) ([]GameVersion, error)
}

// InstalledVersions answers which versions are unpacked in the version cache
type InstalledVersions interface {
	Lookup(id string) (path string, ok bool)
	List() []InstalledVersion
}

// InstanceRepository defines the contract for instance storage operations
type InstanceRepository interface {
	Create(ctx context.Context, name, version string) (*Instance, error)
	Get(ctx context.Context, name string) (*Instance, error)
	List(ctx context.Context) ([]Instance, []Warning, error)
	Delete(ctx context.Context, name string) error
	Rebind(ctx context.Context, name, version string) (*Instance, error)
	Rename(ctx context.Context, oldName, newName string) (*Instance, error)

	// Health and monitoring
	HealthCheck(ctx context.Context) HealthStatus
}

// HealthChecker defines the interface for system health monitoring
type HealthChecker interface {
	CheckHealth(ctx context.Context) SystemHealth
	CheckComponent(ctx context.Context, component string) HealthStatus
}
