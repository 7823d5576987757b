package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// RoleService manages roles and their permission matrices. Roles sit under the
// ticket_settings module.
type RoleService struct {
	store  repository.Store
	authz  Authorizer
	logger *zap.Logger
}

// RoleDependencies bundles collaborators for the role service.
type RoleDependencies struct {
	Store  repository.Store
	Authz  Authorizer
	Logger *zap.Logger
}

// RoleInput describes role creation.
type RoleInput struct {
	RoleName    string
	DisplayName string
	Description string
	Permissions map[string]domain.OperationSet
	IsActive    *bool
}

// RolePatch carries partial role updates. The role name is immutable.
type RolePatch struct {
	DisplayName *string
	Description *string
	Permissions map[string]domain.OperationSet
	IsActive    *bool
}

// EffectivePermissions is the caller's resolved matrix.
type EffectivePermissions struct {
	RoleName     string
	Unrestricted bool
	Permissions  domain.PermissionMatrix
}

// NewRoleService constructs the service.
func NewRoleService(deps RoleDependencies) *RoleService {
	return &RoleService{store: deps.Store, authz: deps.Authz, logger: orNop(deps.Logger)}
}

func roleNotFound(id string) error {
	return apperrors.NewNotFound("ROLE_NOT_FOUND", "role", map[string]any{"role_id": id})
}

func normalize(input map[string]domain.OperationSet) (domain.PermissionMatrix, error) {
	matrix, unknown, ok := domain.NormalizePermissions(input)
	if !ok {
		return nil, apperrors.NewValidationError("UNKNOWN_MODULE", "permissions reference an unknown module",
			map[string]any{"module": unknown})
	}
	return matrix, nil
}

// Create validates the name, normalizes the matrix, and stores a custom role.
func (s *RoleService) Create(ctx context.Context, actor domain.Actor, input RoleInput) (*domain.Role, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketSettings, domain.OpWrite); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.RoleName)
	if !domain.ValidRoleName(name) {
		return nil, apperrors.NewValidationError("INVALID_FORMAT", "role name must match ^[a-z_]+$",
			map[string]any{"role_name": input.RoleName})
	}
	matrix, err := normalize(input.Permissions)
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(input.DisplayName)
	if displayName == "" {
		displayName = name
	}
	role := &domain.Role{
		RoleName:    name,
		DisplayName: displayName,
		Description: strings.TrimSpace(input.Description),
		Permissions: matrix,
		IsActive:    true,
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}

	duplicateRole := apperrors.NewConflict("DUPLICATE_ROLE", "role name already exists", map[string]any{"role_name": name})
	repos := s.store.Repos()
	if _, err := repos.Roles.GetByName(ctx, name); err == nil {
		return nil, duplicateRole
	} else if !isNotFound(err) {
		return nil, storageErr(err, nil)
	}
	if err := repos.Roles.Create(ctx, role); err != nil {
		if isDuplicate(err) {
			return nil, duplicateRole
		}
		return nil, storageErr(err, nil)
	}
	s.logger.Info("role created", zap.String("role_id", role.ID), zap.String("role_name", role.RoleName))
	return role, nil
}

// Update re-normalizes the permissions and, in the same transaction, touches every employee
// that references the role. The cached copy is dropped after commit.
func (s *RoleService) Update(ctx context.Context, actor domain.Actor, id string, patch RolePatch) (*domain.Role, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketSettings, domain.OpUpdate); err != nil {
		return nil, err
	}

	var (
		updated *domain.Role
		touched int64
	)
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		role, err := repos.Roles.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, roleNotFound(id))
		}
		if patch.DisplayName != nil {
			role.DisplayName = strings.TrimSpace(*patch.DisplayName)
		}
		if patch.Description != nil {
			role.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.IsActive != nil {
			role.IsActive = *patch.IsActive
		}
		if patch.Permissions != nil {
			matrix, err := normalize(patch.Permissions)
			if err != nil {
				return err
			}
			role.Permissions = matrix
		} else {
			role.Permissions = role.Permissions.WithOverrides(nil)
		}

		if err := repos.Roles.Update(ctx, role); err != nil {
			return storageErr(err, roleNotFound(id))
		}
		touched, err = repos.Employees.TouchByCustomRole(ctx, role.ID)
		if err != nil {
			return storageErr(err, nil)
		}
		updated = role
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.authz.Invalidate(ctx, updated)
	s.logger.Info("role updated",
		zap.String("role_id", updated.ID),
		zap.String("role_name", updated.RoleName),
		zap.Int64("employees_touched", touched))
	return updated, nil
}

// Delete removes a role that no active employee references. System roles are not exempt.
func (s *RoleService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.authz.Require(ctx, actor, domain.ModuleTicketSettings, domain.OpDelete); err != nil {
		return err
	}

	var deleted *domain.Role
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		role, err := repos.Roles.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, roleNotFound(id))
		}
		inUse, err := repos.Employees.CountActiveByCustomRole(ctx, id)
		if err != nil {
			return storageErr(err, nil)
		}
		if inUse > 0 {
			return apperrors.NewConflict("ROLE_IN_USE", "role is assigned to active employees",
				map[string]any{"role_id": id, "employees": inUse})
		}
		if err := repos.Roles.Delete(ctx, id); err != nil {
			return storageErr(err, roleNotFound(id))
		}
		deleted = role
		return nil
	})
	if err != nil {
		return err
	}

	s.authz.Invalidate(ctx, deleted)
	s.logger.Info("role deleted", zap.String("role_id", deleted.ID), zap.String("role_name", deleted.RoleName))
	return nil
}

// Get returns one role.
func (s *RoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	role, err := s.store.Repos().Roles.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, roleNotFound(id))
	}
	return role, nil
}

// List returns system roles first, then custom roles by name.
func (s *RoleService) List(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.store.Repos().Roles.List(ctx)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return roles, nil
}

// Modules returns the static module/operation label catalog.
func (s *RoleService) Modules() []domain.ModuleInfo {
	return domain.ModuleCatalog()
}

// MyPermissions resolves the caller's effective matrix.
func (s *RoleService) MyPermissions(ctx context.Context, actor domain.Actor) (*EffectivePermissions, error) {
	if actor.IsStudent() {
		return &EffectivePermissions{RoleName: actor.Role, Permissions: domain.EmptyPermissions()}, nil
	}
	res, err := s.authz.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	out := &EffectivePermissions{RoleName: actor.Role, Unrestricted: res.Unrestricted, Permissions: res.Effective()}
	if res.Role != nil {
		out.RoleName = res.Role.RoleName
	}
	return out, nil
}

// SeedSystemRoles installs missing system roles and leaves existing ones untouched.
func (s *RoleService) SeedSystemRoles(ctx context.Context) (int, error) {
	created := 0
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		for _, role := range domain.SystemRoles() {
			role := role
			if _, err := repos.Roles.GetByName(ctx, role.RoleName); err == nil {
				continue
			} else if !isNotFound(err) {
				return storageErr(err, nil)
			}
			role.Permissions = role.Permissions.WithOverrides(nil)
			if err := repos.Roles.Create(ctx, &role); err != nil {
				return storageErr(err, nil)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("system roles seeded", zap.Int("created", created))
	return created, nil
}
