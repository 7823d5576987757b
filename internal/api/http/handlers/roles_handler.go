package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// RolesHandler serves role administration and the module catalog.
type RolesHandler struct {
	service *service.RoleService
}

// NewRolesHandler constructs handler.
func NewRolesHandler(roleService *service.RoleService) *RolesHandler {
	return &RolesHandler{service: roleService}
}

// List GET /roles.
func (h *RolesHandler) List(c *fiber.Ctx) error {
	roles, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.RoleResponse, 0, len(roles))
	for i := range roles {
		items = append(items, roleResponse(&roles[i]))
	}
	return respond(c, fiber.StatusOK, "", items)
}

// Modules GET /roles/modules.
func (h *RolesHandler) Modules(c *fiber.Ctx) error {
	return respond(c, fiber.StatusOK, "", h.service.Modules())
}

// MyPermissions GET /roles/me/permissions.
func (h *RolesHandler) MyPermissions(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	perms, err := h.service.MyPermissions(c.UserContext(), actor)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", dto.EffectivePermissionsResponse{
		RoleName:     perms.RoleName,
		Unrestricted: perms.Unrestricted,
		Permissions:  perms.Permissions,
	})
}

// Get GET /roles/:id.
func (h *RolesHandler) Get(c *fiber.Ctx) error {
	role, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", roleResponse(role))
}

// Create POST /roles.
func (h *RolesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := h.service.Create(c.UserContext(), actor, service.RoleInput{
		RoleName:    req.RoleName,
		DisplayName: req.DisplayName,
		Description: req.Description,
		Permissions: req.Permissions,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "role created", roleResponse(role))
}

// Update PUT /roles/:id.
func (h *RolesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateRoleRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	role, err := h.service.Update(c.UserContext(), actor, c.Params("id"), service.RolePatch{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Permissions: req.Permissions,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "role updated", roleResponse(role))
}

// Delete DELETE /roles/:id.
func (h *RolesHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "role deleted", nil)
}
