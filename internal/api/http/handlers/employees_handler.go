package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/service"
)

// EmployeesHandler serves employee administration.
type EmployeesHandler struct {
	service *service.EmployeeService
}

// NewEmployeesHandler constructs handler.
func NewEmployeesHandler(employeeService *service.EmployeeService) *EmployeesHandler {
	return &EmployeesHandler{service: employeeService}
}

// List GET /employees.
func (h *EmployeesHandler) List(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	filter := repository.EmployeeFilter{
		Active:     optionalBoolQuery(c, "active"),
		CategoryID: optionalQuery(c, "category_id"),
	}
	if kind := c.Query("kind"); kind != "" {
		k := domain.EmployeeKind(kind)
		filter.Kind = &k
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 50)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	employees, err := h.service.List(c.UserContext(), actor, filter)
	if err != nil {
		return err
	}
	items := make([]dto.EmployeeResponse, 0, len(employees))
	for _, employee := range employees {
		items = append(items, employeeResponse(employee))
	}
	return respond(c, fiber.StatusOK, "", items)
}

// AvailableUsers GET /employees/available-users.
func (h *EmployeesHandler) AvailableUsers(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	identities, err := h.service.AvailableUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.IdentityResponse, 0, len(identities))
	for _, identity := range identities {
		items = append(items, dto.IdentityResponse{
			ID:          identity.ID,
			Username:    identity.Username,
			DisplayName: identity.DisplayName,
			Role:        identity.Role,
		})
	}
	return respond(c, fiber.StatusOK, "", items)
}

// Get GET /employees/:id.
func (h *EmployeesHandler) Get(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	employee, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", employeeResponse(employee))
}

// Create POST /employees.
func (h *EmployeesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var employee domain.Employee
	switch domain.EmployeeKind(req.Kind) {
	case domain.EmployeeKindManager:
		employee, err = h.service.CreateManager(c.UserContext(), actor, service.ManagerInput{
			IdentityRef:    req.IdentityRef,
			CustomRoleID:   req.CustomRoleID,
			CategoryIDs:    req.CategoryIDs,
			SubCategoryIDs: req.SubCategoryIDs,
		})
	default:
		employee, err = h.service.CreateWorker(c.UserContext(), actor, service.WorkerInput{
			DisplayName:    req.DisplayName,
			Username:       req.Username,
			Password:       req.Password,
			ContactPhone:   req.ContactPhone,
			CustomRoleID:   req.CustomRoleID,
			CategoryIDs:    req.CategoryIDs,
			SubCategoryIDs: req.SubCategoryIDs,
		})
	}
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "employee created", employeeResponse(employee))
}

// Update PUT /employees/:id.
func (h *EmployeesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateEmployeeRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	employee, err := h.service.Update(c.UserContext(), actor, c.Params("id"), domain.EmployeePatch{
		DisplayName:     req.DisplayName,
		CustomRoleID:    req.CustomRoleID,
		ClearCustomRole: req.ClearCustomRole,
		CategoryIDs:     req.CategoryIDs,
		SubCategoryIDs:  req.SubCategoryIDs,
		IsActive:        req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "employee updated", employeeResponse(employee))
}

// Delete DELETE /employees/:id deactivates the employee.
func (h *EmployeesHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Deactivate(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "employee deactivated", nil)
}
