package api

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/catalog"
	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/download"
	"github.com/vslauncher/launcher/internal/launch"
	"github.com/vslauncher/launcher/internal/scheduler"
)

// DownloadService starts and tracks version downloads
type DownloadService interface {
	StartDownload(ctx context.Context, version domain.GameVersion) (*download.Task, error)
	Get(taskID string) (*download.Task, bool)
	List() []*download.Task
	Cancel(taskID string) error
}

// Launcher starts the game for an instance
type Launcher interface {
	Launch(ctx context.Context, inst *domain.Instance) (*launch.Process, error)
}

// ModBrowser lists remote mods page by page
type ModBrowser interface {
	FetchPage(ctx context.Context, page int) (*domain.ModPage, error)
}

// ReleaseTracker knows the newest stable release
type ReleaseTracker interface {
	Latest() (scheduler.ReleaseInfo, bool)
	Check(ctx context.Context) (scheduler.ReleaseInfo, error)
}

// Handlers contains all HTTP handlers for the launcher control API
type Handlers struct {
	catalog       domain.VersionCatalog
	installed     domain.InstalledVersions
	downloads     DownloadService
	instances     domain.InstanceRepository
	launcher      Launcher
	mods          ModBrowser
	releases      ReleaseTracker
	healthChecker domain.HealthChecker
	validator     *domain.InputValidator
}

// NewHandlers creates a new instance of API handlers
func NewHandlers(deps RouterDependencies) *Handlers {
	return &Handlers{
		catalog:       deps.Catalog,
		installed:     deps.Installed,
		downloads:     deps.Downloads,
		instances:     deps.Instances,
		launcher:      deps.Launcher,
		mods:          deps.Mods,
		releases:      deps.Releases,
		healthChecker: deps.HealthChecker,
		validator:     domain.NewInputValidator(),
	}
}

// ErrorResponse represents the standard error response format
// @Description Standard error response format
type ErrorResponse struct {
	Status  string `json:"status" example:"error"`
	Code    string `json:"code" example:"NAME_CONFLICT"`
	Message string `json:"message" example:"Instance already exists"`
	Details any    `json:"details,omitempty"`
}

// SuccessResponse represents the standard success response format
// @Description Standard success response format
type SuccessResponse struct {
	Status string `json:"status" example:"success"`
	Data   any    `json:"data"`
}

// VersionEntry is a catalog version annotated with its install state
// @Description Catalog version with install state
type VersionEntry struct {
	domain.GameVersion
	Installed bool `json:"installed" example:"false"`
}

// VersionListResponse represents the response for listing versions
// @Description Filtered and sorted catalog versions
type VersionListResponse struct {
	Versions []VersionEntry `json:"versions"`
	Count    int            `json:"count" example:"42"`
}

// HealthResponse represents the health check response
// @Description Health check response
type HealthResponse struct {
	Status     string                         `json:"status" example:"healthy"`
	Timestamp  string                         `json:"timestamp" example:"2025-01-01T12:00:00Z"`
	Components map[string]domain.HealthStatus `json:"components"`
	Metrics    map[string]any                 `json:"metrics,omitempty"`
	Uptime     string                         `json:"uptime" example:"1h2m3s"`
}

// ListVersionsHandler handles GET /v1/versions requests
// @Summary      List game versions
// @Description  Fetches the remote catalog, filters it by substring and channel, and sorts it by version
// @Tags         Versions
// @Produce      json
// @Param        q         query string false "Case-insensitive substring of the version ID"
// @Param        channels  query string false "Comma-separated channels: stable,rc,preview,dev"
// @Param        order     query string false "asc or desc (default desc)"
// @Param        installed query bool   false "Only installed versions"
// @Success      200 {object} SuccessResponse{data=VersionListResponse}
// @Failure      400 {object} ErrorResponse "Invalid filter"
// @Failure      502 {object} ErrorResponse "Catalog unreachable or malformed"
// @Router       /v1/versions [get]
func (h *Handlers) ListVersionsHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()

	mask, err := domain.ParseChannelMask(c.Query("channels"))
	if err != nil {
		return h.sendError(c, err)
	}
	order, err := domain.ParseSortOrder(c.Query("order"))
	if err != nil {
		return h.sendError(c, err)
	}
	onlyInstalled := c.QueryBool("installed", false)

	versions, err := h.catalog.FetchCatalog(ctx)
	if err != nil {
		return h.sendError(c, err)
	}

	versions = catalog.Sort(catalog.Filter(versions, strings.TrimSpace(c.Query("q")), mask), order)

	entries := make([]VersionEntry, 0, len(versions))
	for _, v := range versions {
		_, installed := h.installed.Lookup(v.ID)
		if onlyInstalled && !installed {
			continue
		}
		entries = append(entries, VersionEntry{GameVersion: v, Installed: installed})
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   VersionListResponse{Versions: entries, Count: len(entries)},
	})
}

// ListInstalledHandler handles GET /v1/versions/installed requests
// @Summary      List installed versions
// @Description  Returns the installed-version index without contacting the catalog
// @Tags         Versions
// @Produce      json
// @Success      200 {object} SuccessResponse{data=[]domain.InstalledVersion}
// @Router       /v1/versions/installed [get]
func (h *Handlers) ListInstalledHandler(c *fiber.Ctx) error {
	installed := h.installed.List()
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data: map[string]any{
			"versions": installed,
			"count":    len(installed),
		},
	})
}

// LatestReleaseHandler handles GET /v1/versions/latest requests
// @Summary      Newest stable release
// @Description  Returns the newest stable release, checking the catalog when no result is recorded yet
// @Tags         Versions
// @Produce      json
// @Success      200 {object} SuccessResponse{data=scheduler.ReleaseInfo}
// @Failure      404 {object} ErrorResponse "No stable release in the catalog"
// @Failure      502 {object} ErrorResponse "Catalog unreachable"
// @Router       /v1/versions/latest [get]
func (h *Handlers) LatestReleaseHandler(c *fiber.Ctx) error {
	info, ok := h.releases.Latest()
	if !ok || c.QueryBool("refresh", false) {
		var err error
		info, err = h.releases.Check(c.UserContext())
		if err != nil {
			return h.sendError(c, err)
		}
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: info})
}

// HealthHandler handles GET /health requests
// @Summary      Health check
// @Description  Returns the health of storage, catalog, downloads and the mod cache
// @Tags         System
// @Produce      json
// @Success      200 {object} HealthResponse "Launcher is healthy or degraded"
// @Failure      503 {object} HealthResponse "Launcher is unhealthy"
// @Router       /health [get]
func (h *Handlers) HealthHandler(c *fiber.Ctx) error {
	health := h.healthChecker.CheckHealth(c.UserContext())

	status := fiber.StatusOK
	if health.Status == domain.HealthStatusUnhealthy {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(HealthResponse{
		Status:     health.Status,
		Timestamp:  health.Timestamp.Format(time.RFC3339),
		Components: health.Components,
		Metrics:    health.Metrics,
		Uptime:     health.Uptime.Round(time.Second).String(),
	})
}

// ListModsHandler handles GET /v1/mods requests
// @Summary      Browse mods
// @Description  Returns one page of mods from the remote repository, newest first
// @Tags         Mods
// @Produce      json
// @Param        page query int false "1-based page number" default(1)
// @Success      200 {object} SuccessResponse{data=domain.ModPage}
// @Failure      400 {object} ErrorResponse "Invalid page"
// @Failure      502 {object} ErrorResponse "Mod repository unreachable"
// @Router       /v1/mods [get]
func (h *Handlers) ListModsHandler(c *fiber.Ctx) error {
	page, err := h.mods.FetchPage(c.UserContext(), c.QueryInt("page", 1))
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: page})
}

// sendError sends a standardized error response for any error
func (h *Handlers) sendError(c *fiber.Ctx, err error) error {
	appErr, ok := domain.AsAppError(err)
	if !ok {
		log.Error().
			Err(err).
			Str("request_id", requestID(c)).
			Str("path", c.Path()).
			Msg("Unclassified error")
		appErr = domain.NewAppErrorWithCause(domain.ErrInternal, "Internal server error", 500, err, nil)
	}

	status := appErr.StatusCode
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(ErrorResponse{
		Status:  "error",
		Code:    appErr.Code,
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

func requestID(c *fiber.Ctx) string {
	if rid, ok := c.Locals("requestid").(string); ok {
		return rid
	}
	return ""
}
