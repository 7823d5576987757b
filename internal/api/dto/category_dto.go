package dto

import "time"

// CreateCategoryRequest payload.
type CreateCategoryRequest struct {
	Name         string  `json:"name" validate:"max=120"`
	ParentID     *string `json:"parent_id"`
	DisplayOrder int     `json:"display_order" validate:"gte=0"`
	IsActive     *bool   `json:"is_active"`
}

// UpdateCategoryRequest payload. A null parent_id together with clear_parent promotes the
// category to the top level.
type UpdateCategoryRequest struct {
	Name         *string `json:"name" validate:"omitempty,max=120"`
	ParentID     *string `json:"parent_id"`
	ClearParent  bool    `json:"clear_parent"`
	DisplayOrder *int    `json:"display_order" validate:"omitempty,gte=0"`
	IsActive     *bool   `json:"is_active"`
}

// CategoryResponse is the flat category shape.
type CategoryResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ParentID     *string   `json:"parent_id"`
	IsActive     bool      `json:"is_active"`
	DisplayOrder int       `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CategoryTreeResponse is a root category with its children.
type CategoryTreeResponse struct {
	CategoryResponse
	Children []CategoryResponse `json:"children"`
}
