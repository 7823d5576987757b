package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// EmployeeService manages managers (identity-linked) and standalone workers.
type EmployeeService struct {
	store      repository.Store
	authz      Authorizer
	logger     *zap.Logger
	bcryptCost int
}

// EmployeeDependencies bundles collaborators for the employee service.
type EmployeeDependencies struct {
	Store      repository.Store
	Authz      Authorizer
	Logger     *zap.Logger
	BcryptCost int
}

// ManagerInput describes wrapping an identity-store account.
type ManagerInput struct {
	IdentityRef    string
	CustomRoleID   *string
	CategoryIDs    []string
	SubCategoryIDs []string
}

// WorkerInput describes a standalone worker with local credentials.
type WorkerInput struct {
	DisplayName    string
	Username       string
	Password       string
	ContactPhone   string
	CustomRoleID   *string
	CategoryIDs    []string
	SubCategoryIDs []string
}

// NewEmployeeService constructs the service.
func NewEmployeeService(deps EmployeeDependencies) *EmployeeService {
	return &EmployeeService{
		store:      deps.Store,
		authz:      deps.Authz,
		logger:     orNop(deps.Logger),
		bcryptCost: deps.BcryptCost,
	}
}

func employeeNotFound(id string) error {
	return apperrors.NewNotFound("EMPLOYEE_NOT_FOUND", "employee", map[string]any{"employee_id": id})
}

func usernameTaken(username string) error {
	return apperrors.NewConflict("USERNAME_TAKEN", "username is already in use", map[string]any{"username": username})
}

func alreadyAssigned(identityRef string) error {
	return apperrors.NewConflict("ALREADY_ASSIGNED", "identity is already an active employee",
		map[string]any{"identity_ref": identityRef})
}

// CreateManager wraps an existing identity as an employee.
func (s *EmployeeService) CreateManager(ctx context.Context, actor domain.Actor, input ManagerInput) (*domain.Manager, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpWrite); err != nil {
		return nil, err
	}
	ref := strings.TrimSpace(input.IdentityRef)
	if ref == "" {
		return nil, apperrors.NewValidationError("IDENTITY_REQUIRED", "identity reference is required", nil)
	}
	categoryIDs, subCategoryIDs := dedupe(input.CategoryIDs), dedupe(input.SubCategoryIDs)

	var manager *domain.Manager
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		identity, err := repos.Identities.GetByID(ctx, ref)
		if err != nil {
			return storageErr(err, apperrors.NewNotFound("IDENTITY_NOT_FOUND", "identity", map[string]any{"identity_ref": ref}))
		}
		if _, err := repos.Employees.GetActiveByIdentityRef(ctx, ref); err == nil {
			return alreadyAssigned(ref)
		} else if !isNotFound(err) {
			return storageErr(err, nil)
		}
		if err := validateScope(ctx, repos, categoryIDs, subCategoryIDs); err != nil {
			return err
		}
		if err := validateRoleRef(ctx, repos, input.CustomRoleID); err != nil {
			return err
		}

		manager = &domain.Manager{
			EmployeeProfile: domain.EmployeeProfile{
				DisplayName:    identity.DisplayName,
				Username:       identity.Username,
				CustomRoleID:   input.CustomRoleID,
				CategoryIDs:    categoryIDs,
				SubCategoryIDs: subCategoryIDs,
				IsActive:       true,
			},
			IdentityRef: identity.ID,
		}
		if err := repos.Employees.Create(ctx, manager); err != nil {
			if isDuplicate(err) {
				return alreadyAssigned(ref)
			}
			return storageErr(err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("manager created", zap.String("employee_id", manager.ID), zap.String("identity_ref", manager.IdentityRef))
	return manager, nil
}

// CreateWorker registers a standalone worker. The username must be free across active
// employees and the identity store.
func (s *EmployeeService) CreateWorker(ctx context.Context, actor domain.Actor, input WorkerInput) (*domain.Worker, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpWrite); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	displayName := strings.TrimSpace(input.DisplayName)
	switch {
	case username == "":
		return nil, apperrors.NewValidationError("USERNAME_REQUIRED", "username is required", nil)
	case displayName == "":
		return nil, apperrors.NewValidationError("EMPTY_NAME", "display name is required", nil)
	case len(input.Password) < auth.MinPasswordLength:
		return nil, apperrors.NewValidationError("WEAK_PASSWORD", "password must be at least 8 characters", nil)
	case len(input.Password) > auth.MaxPasswordBytes:
		return nil, apperrors.NewValidationError("PASSWORD_TOO_LONG", "password must be at most 72 bytes", nil)
	}
	categoryIDs, subCategoryIDs := dedupe(input.CategoryIDs), dedupe(input.SubCategoryIDs)

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	var worker *domain.Worker
	err = s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := checkWorkerUsernameFree(ctx, repos, username); err != nil {
			return err
		}
		if err := validateScope(ctx, repos, categoryIDs, subCategoryIDs); err != nil {
			return err
		}
		if err := validateRoleRef(ctx, repos, input.CustomRoleID); err != nil {
			return err
		}

		worker = &domain.Worker{
			EmployeeProfile: domain.EmployeeProfile{
				DisplayName:    displayName,
				Username:       username,
				CustomRoleID:   input.CustomRoleID,
				CategoryIDs:    categoryIDs,
				SubCategoryIDs: subCategoryIDs,
				IsActive:       true,
			},
			PasswordHash: hash,
			ContactPhone: strings.TrimSpace(input.ContactPhone),
		}
		if err := repos.Employees.Create(ctx, worker); err != nil {
			if isDuplicate(err) {
				return usernameTaken(username)
			}
			return storageErr(err, nil)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("worker created", zap.String("employee_id", worker.ID), zap.String("username", worker.Username))
	return worker, nil
}

// Update applies a partial change to either employee shape.
func (s *EmployeeService) Update(ctx context.Context, actor domain.Actor, id string, patch domain.EmployeePatch) (domain.Employee, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpUpdate); err != nil {
		return nil, err
	}
	if patch.DisplayName != nil && strings.TrimSpace(*patch.DisplayName) == "" {
		return nil, apperrors.NewValidationError("EMPTY_NAME", "display name is required", nil)
	}
	if patch.CategoryIDs != nil {
		ids := dedupe(*patch.CategoryIDs)
		patch.CategoryIDs = &ids
	}
	if patch.SubCategoryIDs != nil {
		ids := dedupe(*patch.SubCategoryIDs)
		patch.SubCategoryIDs = &ids
	}

	var updated domain.Employee
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		employee, err := repos.Employees.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, employeeNotFound(id))
		}
		profile := employee.Profile()
		wasActive := profile.Active()
		patch.Apply(profile)
		profile.DisplayName = strings.TrimSpace(profile.DisplayName)

		if _, isWorker := employee.(*domain.Worker); isWorker && !wasActive && profile.Active() {
			if err := checkWorkerUsernameFree(ctx, repos, profile.Username); err != nil {
				return err
			}
		}

		if patch.CategoryIDs != nil || patch.SubCategoryIDs != nil {
			if err := validateScope(ctx, repos, profile.CategoryIDs, profile.SubCategoryIDs); err != nil {
				return err
			}
		}
		if !patch.ClearCustomRole && patch.CustomRoleID != nil {
			if err := validateRoleRef(ctx, repos, patch.CustomRoleID); err != nil {
				return err
			}
		}

		if err := repos.Employees.Update(ctx, employee); err != nil {
			if isDuplicate(err) {
				if manager, ok := employee.(*domain.Manager); ok {
					return alreadyAssigned(manager.IdentityRef)
				}
				return usernameTaken(profile.Username)
			}
			return storageErr(err, employeeNotFound(id))
		}
		updated = employee
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// checkWorkerUsernameFree fails with USERNAME_TAKEN when an identity or an active employee
// already uses username.
func checkWorkerUsernameFree(ctx context.Context, repos repository.Repositories, username string) error {
	taken, err := repos.Identities.UsernameExists(ctx, username)
	if err != nil {
		return storageErr(err, nil)
	}
	if taken {
		return usernameTaken(username)
	}
	if _, err := repos.Employees.GetActiveByUsername(ctx, username); err == nil {
		return usernameTaken(username)
	} else if !isNotFound(err) {
		return storageErr(err, nil)
	}
	return nil
}

// Deactivate soft-deletes an employee; assignments and history stay attributable.
func (s *EmployeeService) Deactivate(ctx context.Context, actor domain.Actor, id string) error {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpDelete); err != nil {
		return err
	}
	var deactivated domain.Employee
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		employee, err := repos.Employees.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, employeeNotFound(id))
		}
		if !employee.Active() {
			return nil
		}
		employee.Profile().IsActive = false
		if err := repos.Employees.Update(ctx, employee); err != nil {
			return storageErr(err, employeeNotFound(id))
		}
		deactivated = employee
		return nil
	})
	if err != nil || deactivated == nil {
		return err
	}
	s.logger.Info("employee deactivated", zap.String("employee_id", id), zap.String("kind", string(deactivated.Kind())))
	return nil
}

// Get returns one employee.
func (s *EmployeeService) Get(ctx context.Context, actor domain.Actor, id string) (domain.Employee, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpRead); err != nil {
		return nil, err
	}
	employee, err := s.store.Repos().Employees.GetByID(ctx, id)
	if err != nil {
		return nil, storageErr(err, employeeNotFound(id))
	}
	return employee, nil
}

// List returns employees matching filter.
func (s *EmployeeService) List(ctx context.Context, actor domain.Actor, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpRead); err != nil {
		return nil, err
	}
	employees, err := s.store.Repos().Employees.List(ctx, filter)
	if err != nil {
		return nil, storageErr(err, nil)
	}
	return employees, nil
}

// AvailableUsers lists active non-student identities not yet wrapped by an active employee.
func (s *EmployeeService) AvailableUsers(ctx context.Context, actor domain.Actor) ([]domain.Identity, error) {
	if err := s.authz.Require(ctx, actor, domain.ModuleEmployeeManagement, domain.OpRead); err != nil {
		return nil, err
	}
	repos := s.store.Repos()
	identities, err := repos.Identities.ListActive(ctx)
	if err != nil {
		return nil, storageErr(err, nil)
	}

	available := make([]domain.Identity, 0, len(identities))
	for _, identity := range identities {
		_, err := repos.Employees.GetActiveByIdentityRef(ctx, identity.ID)
		switch {
		case isNotFound(err):
			available = append(available, identity)
		case err != nil:
			return nil, storageErr(err, nil)
		}
	}
	return available, nil
}

// validateScope checks that category ids are roots and sub-category ids are children.
func validateScope(ctx context.Context, repos repository.Repositories, categoryIDs, subCategoryIDs []string) error {
	for _, id := range categoryIDs {
		category, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, invalidCategory("assigned category does not exist", id))
		}
		if !category.IsRoot() {
			return invalidCategory("assigned category is a sub-category", id)
		}
	}
	for _, id := range subCategoryIDs {
		category, err := repos.Categories.GetByID(ctx, id)
		if err != nil {
			return storageErr(err, invalidCategory("assigned sub-category does not exist", id))
		}
		if category.IsRoot() {
			return invalidCategory("assigned sub-category is a main category", id)
		}
	}
	return nil
}

func validateRoleRef(ctx context.Context, repos repository.Repositories, roleID *string) error {
	if roleID == nil {
		return nil
	}
	if _, err := repos.Roles.GetByID(ctx, *roleID); err != nil {
		return storageErr(err, roleNotFound(*roleID))
	}
	return nil
}

func invalidCategory(message, id string) error {
	return apperrors.NewValidationError("INVALID_CATEGORY", message, map[string]any{"category_id": id})
}
