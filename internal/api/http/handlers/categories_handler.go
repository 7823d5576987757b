package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// CategoriesHandler serves the complaint taxonomy.
type CategoriesHandler struct {
	service *service.CategoryService
}

// NewCategoriesHandler constructs handler.
func NewCategoriesHandler(categoryService *service.CategoryService) *CategoriesHandler {
	return &CategoriesHandler{service: categoryService}
}

// List GET /complaint-categories.
func (h *CategoriesHandler) List(c *fiber.Ctx) error {
	categories, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, categoryResponse(&categories[i]))
	}
	return respond(c, fiber.StatusOK, "", items)
}

// Active GET /complaint-categories/active.
func (h *CategoriesHandler) Active(c *fiber.Ctx) error {
	tree, err := h.service.ActiveTree(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", categoryTree(tree))
}

// Get GET /complaint-categories/:id.
func (h *CategoriesHandler) Get(c *fiber.Ctx) error {
	category, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "", categoryResponse(category))
}

// Create POST /complaint-categories.
func (h *CategoriesHandler) Create(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.service.Create(c.UserContext(), actor, service.CategoryInput{
		Name:         req.Name,
		ParentID:     req.ParentID,
		DisplayOrder: req.DisplayOrder,
		IsActive:     req.IsActive,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, "category created", categoryResponse(category))
}

// Update PUT /complaint-categories/:id.
func (h *CategoriesHandler) Update(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateCategoryRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	category, err := h.service.Update(c.UserContext(), actor, c.Params("id"), domain.CategoryPatch{
		Name:         req.Name,
		ParentID:     req.ParentID,
		ClearParent:  req.ClearParent,
		IsActive:     req.IsActive,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "category updated", categoryResponse(category))
}

// Delete DELETE /complaint-categories/:id.
func (h *CategoriesHandler) Delete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, "category deleted", nil)
}
