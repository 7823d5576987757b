package dto

import "time"

// CreateEmployeeRequest payload. kind=manager wraps identity_ref; kind=worker carries its own
// credentials.
type CreateEmployeeRequest struct {
	Kind           string   `json:"kind" validate:"required,oneof=manager worker"`
	IdentityRef    string   `json:"identity_ref" validate:"max=64"`
	DisplayName    string   `json:"display_name" validate:"max=120"`
	Username       string   `json:"username" validate:"max=64"`
	Password       string   `json:"password" validate:"max=72"`
	ContactPhone   string   `json:"contact_phone" validate:"max=32"`
	CustomRoleID   *string  `json:"custom_role_id"`
	CategoryIDs    []string `json:"category_ids"`
	SubCategoryIDs []string `json:"sub_category_ids"`
}

// UpdateEmployeeRequest payload.
type UpdateEmployeeRequest struct {
	DisplayName     *string   `json:"display_name" validate:"omitempty,max=120"`
	CustomRoleID    *string   `json:"custom_role_id"`
	ClearCustomRole bool      `json:"clear_custom_role"`
	CategoryIDs     *[]string `json:"category_ids"`
	SubCategoryIDs  *[]string `json:"sub_category_ids"`
	IsActive        *bool     `json:"is_active"`
}

// EmployeeResponse is the shared projection of both employee shapes.
type EmployeeResponse struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	DisplayName    string    `json:"display_name"`
	Username       string    `json:"username,omitempty"`
	IdentityRef    string    `json:"identity_ref,omitempty"`
	ContactPhone   string    `json:"contact_phone,omitempty"`
	CustomRoleID   *string   `json:"custom_role_id"`
	CategoryIDs    []string  `json:"category_ids"`
	SubCategoryIDs []string  `json:"sub_category_ids"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IdentityResponse is an identity-store account available for wrapping.
type IdentityResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}
