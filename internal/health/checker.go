package health

import (
	"context"
	"sync"
	"time"

	"github.com/vslauncher/launcher/internal/domain"
)

// Component names reported by the checker
const (
	ComponentStorage   = "storage"
	ComponentCatalog   = "catalog"
	ComponentDownloads = "downloads"
	ComponentMods      = "mods"
)

// CatalogProbe reports whether the remote catalog answers
type CatalogProbe interface {
	IsAvailable(ctx context.Context) bool
}

// DownloadLoad exposes the number of running downloads
type DownloadLoad interface {
	ActiveCount() int
}

// CacheReporter is a component with its own health and cache statistics
type CacheReporter interface {
	HealthCheck(ctx context.Context) domain.HealthStatus
	CacheStats() domain.CacheStats
}

// Dependencies are the components the checker inspects. Nil components are skipped.
type Dependencies struct {
	Instances    domain.InstanceRepository
	Installed    domain.InstalledVersions
	Catalog      CatalogProbe
	Downloads    DownloadLoad
	Mods         CacheReporter
	MaxDownloads int
}

// SystemHealthChecker implements launcher health monitoring
type SystemHealthChecker struct {
	deps Dependencies

	timeout   time.Duration
	startTime time.Time

	// Cached health status to avoid probing the remote catalog on every request
	lastCheck   time.Time
	lastHealth  domain.SystemHealth
	cacheTTL    time.Duration
	healthMutex sync.Mutex
}

var _ domain.HealthChecker = (*SystemHealthChecker)(nil)

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(deps Dependencies) *SystemHealthChecker {
	return &SystemHealthChecker{
		deps:      deps,
		timeout:   5 * time.Second,
		cacheTTL:  30 * time.Second,
		startTime: time.Now(),
	}
}

// CheckHealth performs a full health check, cached for a short period
func (h *SystemHealthChecker) CheckHealth(ctx context.Context) domain.SystemHealth {
	h.healthMutex.Lock()
	defer h.healthMutex.Unlock()

	if !h.lastCheck.IsZero() && time.Since(h.lastCheck) < h.cacheTTL {
		return h.lastHealth
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	now := time.Now()
	components := make(map[string]domain.HealthStatus)
	overallStatus := domain.HealthStatusHealthy

	for _, name := range h.componentNames() {
		status := h.CheckComponent(checkCtx, name)
		components[name] = status
		overallStatus = aggregateStatus(overallStatus, status.Status)
	}

	systemHealth := domain.SystemHealth{
		Status:     overallStatus,
		Timestamp:  now,
		Components: components,
		Metrics:    h.collectMetrics(),
		Uptime:     time.Since(h.startTime),
	}

	h.lastCheck = now
	h.lastHealth = systemHealth

	return systemHealth
}

// CheckComponent performs a health check on a specific component
func (h *SystemHealthChecker) CheckComponent(ctx context.Context, component string) domain.HealthStatus {
	switch {
	case component == ComponentStorage && h.deps.Instances != nil:
		return h.deps.Instances.HealthCheck(ctx)
	case component == ComponentCatalog && h.deps.Catalog != nil:
		return h.checkCatalog(ctx)
	case component == ComponentDownloads && h.deps.Downloads != nil:
		return h.checkDownloads()
	case component == ComponentMods && h.deps.Mods != nil:
		return h.deps.Mods.HealthCheck(ctx)
	default:
		return domain.HealthStatus{
			Status:    domain.HealthStatusUnhealthy,
			Message:   "Unknown component",
			Timestamp: time.Now(),
			Details: map[string]any{
				"component": component,
				"error":     "Component not found",
			},
		}
	}
}

// IsHealthy returns true if the system is healthy
func (h *SystemHealthChecker) IsHealthy(ctx context.Context) bool {
	return h.CheckHealth(ctx).Status == domain.HealthStatusHealthy
}

func (h *SystemHealthChecker) componentNames() []string {
	var names []string
	if h.deps.Instances != nil {
		names = append(names, ComponentStorage)
	}
	if h.deps.Catalog != nil {
		names = append(names, ComponentCatalog)
	}
	if h.deps.Downloads != nil {
		names = append(names, ComponentDownloads)
	}
	if h.deps.Mods != nil {
		names = append(names, ComponentMods)
	}
	return names
}

// checkCatalog reports an unreachable catalog as degraded: installed versions still launch
func (h *SystemHealthChecker) checkCatalog(ctx context.Context) domain.HealthStatus {
	if h.deps.Catalog.IsAvailable(ctx) {
		return domain.HealthStatus{
			Status:    domain.HealthStatusHealthy,
			Message:   "Version catalog is reachable",
			Timestamp: time.Now(),
		}
	}
	return domain.HealthStatus{
		Status:    domain.HealthStatusDegraded,
		Message:   "Version catalog is unreachable",
		Timestamp: time.Now(),
	}
}

func (h *SystemHealthChecker) checkDownloads() domain.HealthStatus {
	active := h.deps.Downloads.ActiveCount()
	status := domain.HealthStatus{
		Status:    domain.HealthStatusHealthy,
		Message:   "Download manager is idle",
		Timestamp: time.Now(),
		Details:   map[string]any{"active": active},
	}
	if active > 0 {
		status.Message = "Downloads in progress"
	}
	if h.deps.MaxDownloads > 0 {
		status.Details["max_concurrent"] = h.deps.MaxDownloads
		if active > h.deps.MaxDownloads {
			status.Message = "Downloads are queued"
		}
	}
	return status
}

func (h *SystemHealthChecker) collectMetrics() map[string]any {
	metrics := map[string]any{
		"uptime_seconds": time.Since(h.startTime).Seconds(),
	}
	if h.deps.Installed != nil {
		metrics["installed_versions"] = len(h.deps.Installed.List())
	}
	if h.deps.Mods != nil {
		stats := h.deps.Mods.CacheStats()
		metrics["mods_cache"] = map[string]any{
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"size":      stats.Size,
			"max_size":  stats.MaxSize,
			"hit_ratio": stats.HitRatio,
		}
	}
	return metrics
}

// aggregateStatus keeps the worst of two statuses: unhealthy > degraded > healthy
func aggregateStatus(current, componentStatus string) string {
	statusPriority := map[string]int{
		domain.HealthStatusHealthy:   0,
		domain.HealthStatusDegraded:  1,
		domain.HealthStatusUnhealthy: 2,
	}

	if statusPriority[componentStatus] > statusPriority[current] {
		return componentStatus
	}
	return current
}
