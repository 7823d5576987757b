package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CreateRoleRequest payload. Permission keys are module names.
type CreateRoleRequest struct {
	RoleName    string                         `json:"role_name" validate:"max=64"`
	DisplayName string                         `json:"display_name" validate:"max=120"`
	Description string                         `json:"description" validate:"max=500"`
	Permissions map[string]domain.OperationSet `json:"permissions"`
	IsActive    *bool                          `json:"is_active"`
}

// UpdateRoleRequest payload.
type UpdateRoleRequest struct {
	DisplayName *string                        `json:"display_name" validate:"omitempty,max=120"`
	Description *string                        `json:"description" validate:"omitempty,max=500"`
	Permissions map[string]domain.OperationSet `json:"permissions"`
	IsActive    *bool                          `json:"is_active"`
}

// RoleResponse projects a role.
type RoleResponse struct {
	ID             string                                `json:"id"`
	RoleName       string                                `json:"role_name"`
	DisplayName    string                                `json:"display_name"`
	Description    string                                `json:"description"`
	Permissions    map[domain.Module]domain.OperationSet `json:"permissions"`
	IsSystemRole   bool                                  `json:"is_system_role"`
	IsUnrestricted bool                                  `json:"is_unrestricted"`
	IsActive       bool                                  `json:"is_active"`
	CreatedAt      time.Time                             `json:"created_at"`
	UpdatedAt      time.Time                             `json:"updated_at"`
}

// EffectivePermissionsResponse is the caller's resolved matrix.
type EffectivePermissionsResponse struct {
	RoleName     string                                `json:"role_name"`
	Unrestricted bool                                  `json:"unrestricted"`
	Permissions  map[domain.Module]domain.OperationSet `json:"permissions"`
}
