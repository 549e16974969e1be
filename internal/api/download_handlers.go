package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
	"github.com/vslauncher/launcher/internal/download"
)

// DownloadRequest represents the request payload for installing a game version
// @Description Request payload for starting a download
type DownloadRequest struct {
	Version string `json:"version" example:"1.20.11"`
}

// DownloadListResponse represents the response for listing download tasks
// @Description Active and recently finished download tasks
type DownloadListResponse struct {
	Downloads []download.Snapshot `json:"downloads"`
	Count     int                 `json:"count"`
}

// StartDownloadHandler handles POST /v1/downloads requests
// @Summary      Install a game version
// @Description  Starts downloading and unpacking a catalog version. Installed versions complete immediately.
// @Tags         Downloads
// @Accept       json
// @Produce      json
// @Param        request body DownloadRequest true "Version to install"
// @Success      200 {object} SuccessResponse{data=download.Snapshot} "Version already installed"
// @Success      202 {object} SuccessResponse{data=download.Snapshot} "Download started"
// @Failure      400 {object} ErrorResponse "Invalid version identifier"
// @Failure      404 {object} ErrorResponse "Version not in the catalog"
// @Failure      502 {object} ErrorResponse "Catalog unreachable"
// @Router       /v1/downloads [post]
func (h *Handlers) StartDownloadHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req DownloadRequest
	if err := c.BodyParser(&req); err != nil {
		return h.sendError(c, invalidPayload(err))
	}

	req.Version = strings.TrimPrefix(strings.TrimSpace(req.Version), "v")
	if err := h.validator.ValidateVersionID(req.Version); err != nil {
		return h.sendError(c, err)
	}

	version := domain.GameVersion{ID: req.Version}
	if _, installed := h.installed.Lookup(req.Version); !installed {
		found, err := h.lookupVersion(c, req.Version)
		if err != nil {
			return h.sendError(c, err)
		}
		version = found
	}

	task, err := h.downloads.StartDownload(ctx, version)
	if err != nil {
		return h.sendError(c, err)
	}

	status := fiber.StatusAccepted
	if task.State() == download.StateCompleted {
		status = fiber.StatusOK
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("task_id", task.ID).
		Str("version", version.ID).
		Str("state", string(task.State())).
		Msg("Download requested")

	return c.Status(status).JSON(SuccessResponse{Status: "success", Data: task.Snapshot()})
}

func (h *Handlers) lookupVersion(c *fiber.Ctx, id string) (domain.GameVersion, error) {
	versions, err := h.catalog.FetchCatalog(c.UserContext())
	if err != nil {
		return domain.GameVersion{}, err
	}
	for _, v := range versions {
		if v.ID == id {
			return v, nil
		}
	}
	return domain.GameVersion{}, domain.NewAppError(
		domain.ErrNotFound,
		"Version not found in catalog",
		404,
		map[string]any{"version": id},
	)
}

// ListDownloadsHandler handles GET /v1/downloads requests
// @Summary      List downloads
// @Description  Returns active downloads and recently finished ones
// @Tags         Downloads
// @Produce      json
// @Success      200 {object} SuccessResponse{data=DownloadListResponse}
// @Router       /v1/downloads [get]
func (h *Handlers) ListDownloadsHandler(c *fiber.Ctx) error {
	tasks := h.downloads.List()
	snapshots := make([]download.Snapshot, 0, len(tasks))
	for _, t := range tasks {
		snapshots = append(snapshots, t.Snapshot())
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   DownloadListResponse{Downloads: snapshots, Count: len(snapshots)},
	})
}

// GetDownloadHandler handles GET /v1/downloads/:id requests
// @Summary      Download progress
// @Description  Returns the state and byte progress of one download task
// @Tags         Downloads
// @Produce      json
// @Param        id path string true "Task ID"
// @Success      200 {object} SuccessResponse{data=download.Snapshot}
// @Failure      404 {object} ErrorResponse "Task not found"
// @Router       /v1/downloads/{id} [get]
func (h *Handlers) GetDownloadHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	task, ok := h.downloads.Get(id)
	if !ok {
		return h.sendError(c, domain.NewAppError(
			domain.ErrNotFound,
			"Download task not found",
			404,
			map[string]any{"task_id": id},
		))
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: task.Snapshot()})
}

// CancelDownloadHandler handles DELETE /v1/downloads/:id requests
// @Summary      Cancel a download
// @Description  Cancels a running download. The partial files are removed and nothing is installed.
// @Tags         Downloads
// @Param        id path string true "Task ID"
// @Success      204 "Cancellation requested"
// @Failure      404 {object} ErrorResponse "Task not found"
// @Router       /v1/downloads/{id} [delete]
func (h *Handlers) CancelDownloadHandler(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.downloads.Cancel(id); err != nil {
		return h.sendError(c, err)
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("task_id", id).
		Msg("Download cancellation requested")

	return c.SendStatus(fiber.StatusNoContent)
}
