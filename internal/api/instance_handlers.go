package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/vslauncher/launcher/internal/domain"
)

// CreateInstanceRequest represents the request payload for creating an instance
// @Description Request payload for instance creation
type CreateInstanceRequest struct {
	Name    string `json:"name" example:"survival"`
	Version string `json:"version" example:"1.20.11"`
}

// RebindRequest represents the request payload for changing an instance's version
// @Description Request payload for rebinding an instance
type RebindRequest struct {
	Version string `json:"version" example:"1.21.0"`
}

// RenameRequest represents the request payload for renaming an instance
// @Description Request payload for renaming an instance
type RenameRequest struct {
	Name string `json:"name" example:"creative"`
}

// InstanceListResponse represents the response for listing instances
// @Description Instances plus warnings for directories that could not be read
type InstanceListResponse struct {
	Instances []domain.Instance `json:"instances"`
	Warnings  []domain.Warning  `json:"warnings"`
	Count     int               `json:"count"`
}

// ListInstancesHandler handles GET /v1/instances requests
// @Summary      List instances
// @Description  Returns all instances sorted by name. Unreadable instances are reported as warnings.
// @Tags         Instances
// @Produce      json
// @Success      200 {object} SuccessResponse{data=InstanceListResponse}
// @Failure      507 {object} ErrorResponse "Instances directory unreadable"
// @Router       /v1/instances [get]
func (h *Handlers) ListInstancesHandler(c *fiber.Ctx) error {
	instances, warnings, err := h.instances.List(c.UserContext())
	if err != nil {
		return h.sendError(c, err)
	}
	if instances == nil {
		instances = []domain.Instance{}
	}
	if warnings == nil {
		warnings = []domain.Warning{}
	}

	return c.Status(fiber.StatusOK).JSON(SuccessResponse{
		Status: "success",
		Data:   InstanceListResponse{Instances: instances, Warnings: warnings, Count: len(instances)},
	})
}

// CreateInstanceHandler handles POST /v1/instances requests
// @Summary      Create an instance
// @Description  Creates an instance with an empty mods folder bound to a game version
// @Tags         Instances
// @Accept       json
// @Produce      json
// @Param        request body CreateInstanceRequest true "Instance name and version"
// @Success      201 {object} SuccessResponse{data=domain.Instance}
// @Failure      400 {object} ErrorResponse "Invalid payload or version"
// @Failure      409 {object} ErrorResponse "Name already taken"
// @Failure      422 {object} ErrorResponse "Unsafe instance name"
// @Router       /v1/instances [post]
func (h *Handlers) CreateInstanceHandler(c *fiber.Ctx) error {
	var req CreateInstanceRequest
	if err := c.BodyParser(&req); err != nil {
		return h.sendError(c, invalidPayload(err))
	}

	inst, err := h.instances.Create(c.UserContext(), req.Name, strings.TrimSpace(req.Version))
	if err != nil {
		return h.sendError(c, err)
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("instance", inst.Name).
		Str("version", inst.Version).
		Msg("Instance created via API")

	return c.Status(fiber.StatusCreated).JSON(SuccessResponse{Status: "success", Data: inst})
}

// GetInstanceHandler handles GET /v1/instances/:name requests
// @Summary      Get an instance
// @Tags         Instances
// @Produce      json
// @Param        name path string true "Instance name"
// @Success      200 {object} SuccessResponse{data=domain.Instance}
// @Failure      404 {object} ErrorResponse "Instance not found"
// @Router       /v1/instances/{name} [get]
func (h *Handlers) GetInstanceHandler(c *fiber.Ctx) error {
	inst, err := h.instances.Get(c.UserContext(), c.Params("name"))
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: inst})
}

// DeleteInstanceHandler handles DELETE /v1/instances/:name requests
// @Summary      Delete an instance
// @Description  Removes the instance directory including its mods
// @Tags         Instances
// @Param        name path string true "Instance name"
// @Success      204 "Instance deleted"
// @Failure      404 {object} ErrorResponse "Instance not found"
// @Router       /v1/instances/{name} [delete]
func (h *Handlers) DeleteInstanceHandler(c *fiber.Ctx) error {
	name := c.Params("name")
	if err := h.instances.Delete(c.UserContext(), name); err != nil {
		return h.sendError(c, err)
	}

	log.Info().
		Str("request_id", requestID(c)).
		Str("instance", name).
		Msg("Instance deleted via API")

	return c.SendStatus(fiber.StatusNoContent)
}

// RebindInstanceHandler handles PUT /v1/instances/:name/version requests
// @Summary      Change an instance's game version
// @Tags         Instances
// @Accept       json
// @Produce      json
// @Param        name    path string        true "Instance name"
// @Param        request body RebindRequest true "New version"
// @Success      200 {object} SuccessResponse{data=domain.Instance}
// @Failure      400 {object} ErrorResponse "Invalid version"
// @Failure      404 {object} ErrorResponse "Instance not found"
// @Router       /v1/instances/{name}/version [put]
func (h *Handlers) RebindInstanceHandler(c *fiber.Ctx) error {
	var req RebindRequest
	if err := c.BodyParser(&req); err != nil {
		return h.sendError(c, invalidPayload(err))
	}

	inst, err := h.instances.Rebind(c.UserContext(), c.Params("name"), strings.TrimSpace(req.Version))
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: inst})
}

// RenameInstanceHandler handles PUT /v1/instances/:name/name requests
// @Summary      Rename an instance
// @Tags         Instances
// @Accept       json
// @Produce      json
// @Param        name    path string        true "Current instance name"
// @Param        request body RenameRequest true "New name"
// @Success      200 {object} SuccessResponse{data=domain.Instance}
// @Failure      404 {object} ErrorResponse "Instance not found"
// @Failure      409 {object} ErrorResponse "New name already taken"
// @Failure      422 {object} ErrorResponse "Unsafe instance name"
// @Router       /v1/instances/{name}/name [put]
func (h *Handlers) RenameInstanceHandler(c *fiber.Ctx) error {
	var req RenameRequest
	if err := c.BodyParser(&req); err != nil {
		return h.sendError(c, invalidPayload(err))
	}

	inst, err := h.instances.Rename(c.UserContext(), c.Params("name"), req.Name)
	if err != nil {
		return h.sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(SuccessResponse{Status: "success", Data: inst})
}

// LaunchInstanceHandler handles POST /v1/instances/:name/launch requests
// @Summary      Launch an instance
// @Description  Starts the game for the instance with its own data and mods folders. The process is not tracked.
// @Tags         Instances
// @Produce      json
// @Param        name path string true "Instance name"
// @Success      202 {object} SuccessResponse{data=launch.Process}
// @Failure      404 {object} ErrorResponse "Instance not found"
// @Failure      409 {object} ErrorResponse "Bound version is not installed"
// @Failure      500 {object} ErrorResponse "Game failed to start"
// @Router       /v1/instances/{name}/launch [post]
func (h *Handlers) LaunchInstanceHandler(c *fiber.Ctx) error {
	ctx := c.UserContext()

	inst, err := h.instances.Get(ctx, c.Params("name"))
	if err != nil {
		return h.sendError(c, err)
	}

	proc, err := h.launcher.Launch(ctx, inst)
	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", requestID(c)).
			Str("instance", inst.Name).
			Str("version", inst.Version).
			Msg("Launch failed")
		return h.sendError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(SuccessResponse{Status: "success", Data: proc})
}

func invalidPayload(err error) *domain.AppError {
	return domain.NewAppError(
		domain.ErrInvalidInput,
		"Invalid JSON payload",
		400,
		map[string]string{"error": err.Error()},
	)
}
