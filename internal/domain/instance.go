package domain

import "time"

// Instance is a named game profile with its own mod folder and a bound game version
// @Description Game instance (profile) bound to an installed version
type Instance struct {
	Name      string    `json:"name" yaml:"name" validate:"required,instancename" example:"survival"`
	Version   string    `json:"version" yaml:"version" validate:"required" example:"1.20.11"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`

	// Derived from the filesystem layout, never persisted
	Path     string `json:"path" yaml:"-"`
	ModsPath string `json:"mods_path" yaml:"-"`
}

// Warning reports a per-item problem found during a tolerant scan
type Warning struct {
	Name    string `json:"name"`    // Instance (directory) name the warning refers to
	Path    string `json:"path"`    // File that could not be used
	Message string `json:"message"` // What went wrong
}

// InstalledVersion is one entry of the installed-version index
type InstalledVersion struct {
	ID   string `json:"id"`
	Path string `json:"path"`
}

// ModInfo is the metadata of a mod listed by the remote mod repository
type ModInfo struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Author    string `json:"author,omitempty"`
	Downloads int64  `json:"downloads"`
	Follows   int64  `json:"follows"`
	Comments  int64  `json:"comments"`
}

// ModPage is one page of mod listings
type ModPage struct {
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
	Mods       []ModInfo `json:"mods"`
	CacheHit   bool      `json:"cache_hit"`
}

// CacheStats represents cache performance metrics
type CacheStats struct {
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	Size     int     `json:"size"`
	MaxSize  int     `json:"max_size"`
	HitRatio float64 `json:"hit_ratio"`
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status    string         `json:"status"` // "healthy", "unhealthy", "degraded"
	Message   string         `json:"message,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Health status constants
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
	HealthStatusDegraded  = "degraded"
)

// SystemHealth represents overall system health
type SystemHealth struct {
	Status     string                  `json:"status"`
	Timestamp  time.Time               `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
	Metrics    map[string]any          `json:"metrics,omitempty"`
	Uptime     time.Duration           `json:"uptime"`
}
