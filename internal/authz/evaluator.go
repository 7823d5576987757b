// Package authz resolves an actor's effective permission matrix and answers module/operation checks.
package authz

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// EvaluatorDependencies wires the evaluator.
type EvaluatorDependencies struct {
	Store  repository.Store
	Cache  RoleCache
	Logger *zap.Logger
}

// Evaluator is the single authorization chokepoint for staff operations.
type Evaluator struct {
	store  repository.Store
	cache  RoleCache
	logger *zap.Logger
}

// NewEvaluator builds the evaluator; a nil cache disables caching.
func NewEvaluator(deps EvaluatorDependencies) *Evaluator {
	cache := deps.Cache
	if cache == nil {
		cache = NoopCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{store: deps.Store, cache: cache, logger: logger}
}

// Resolution is the outcome of permission resolution for one actor.
type Resolution struct {
	Role         *domain.Role
	Employee     domain.Employee
	Unrestricted bool
	Permissions  domain.PermissionMatrix
}

// Allows answers a module/operation check against the resolved matrix.
func (r *Resolution) Allows(module domain.Module, op domain.Operation) bool {
	if r == nil {
		return false
	}
	if r.Unrestricted {
		return true
	}
	return r.Permissions.Allows(module, op)
}

// Effective returns the matrix to display; unrestricted actors see every grant.
func (r *Resolution) Effective() domain.PermissionMatrix {
	if r.Unrestricted {
		all := domain.OperationSet{Read: true, Write: true, Update: true, Delete: true}
		matrix := domain.EmptyPermissions()
		for module := range matrix {
			matrix[module] = all
		}
		return matrix
	}
	return r.Permissions.WithOverrides(nil)
}

// Resolve computes the actor's matrix. Order: a super_admin or admin token short-circuits
// whatever its stored row says; otherwise an active employee wrapper's custom role replaces
// the token role; identity overrides are merged last. Inactive workers and unknown roles resolve to empty grants.
func (e *Evaluator) Resolve(ctx context.Context, actor domain.Actor) (*Resolution, error) {
	res := &Resolution{Permissions: domain.EmptyPermissions()}
	repos := e.store.Repos()

	employee, err := e.employeeFor(ctx, repos, actor)
	if err != nil {
		return nil, err
	}
	res.Employee = employee
	if actor.Kind == domain.ActorKindWorker && (employee == nil || !employee.Active()) {
		return res, nil
	}

	tokenRole, err := e.role(ctx, ByName(actor.Role), func() (*domain.Role, error) {
		return repos.Roles.GetByName(ctx, actor.Role)
	})
	if err != nil {
		return nil, err
	}
	if actor.Kind != domain.ActorKindWorker && domain.IsUnrestrictedRoleName(actor.Role) {
		res.Role = tokenRole
		res.Unrestricted = true
		return res, nil
	}

	effective := tokenRole
	if employee != nil && employee.Profile().CustomRoleID != nil {
		roleID := *employee.Profile().CustomRoleID
		custom, err := e.role(ctx, ByID(roleID), func() (*domain.Role, error) {
			return repos.Roles.GetByID(ctx, roleID)
		})
		if err != nil {
			return nil, err
		}
		if custom != nil && custom.IsActive {
			effective = custom
		}
	}

	if effective != nil && effective.IsActive {
		res.Role = effective
		if effective.IsUnrestricted {
			res.Unrestricted = true
			return res, nil
		}
		res.Permissions = effective.Permissions.WithOverrides(nil)
	}

	if actor.Kind != domain.ActorKindWorker {
		overrides, err := repos.Identities.PermissionOverrides(ctx, actor.ID)
		if err != nil {
			return nil, storageError(err)
		}
		res.Permissions = res.Permissions.WithOverrides(overrides)
	}
	return res, nil
}

// Evaluate reports whether actor may perform op on module. Students never pass.
func (e *Evaluator) Evaluate(ctx context.Context, actor domain.Actor, module domain.Module, op domain.Operation) (bool, error) {
	if actor.IsStudent() {
		return false, nil
	}
	res, err := e.Resolve(ctx, actor)
	if err != nil {
		return false, err
	}
	allowed := res.Allows(module, op)
	if !allowed {
		e.logger.Debug("permission denied",
			zap.String("actor_id", actor.ID),
			zap.String("role", actor.Role),
			zap.String("module", string(module)),
			zap.String("operation", string(op)))
	}
	return allowed, nil
}

// Require is Evaluate that turns a denial into an AccessDenied error.
func (e *Evaluator) Require(ctx context.Context, actor domain.Actor, module domain.Module, op domain.Operation) error {
	allowed, err := e.Evaluate(ctx, actor, module, op)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.NewAccessDenied("ACCESS_DENIED", fmt.Sprintf("%s permission required on %s", op, module))
	}
	return nil
}

// Invalidate drops the cached copy of role.
func (e *Evaluator) Invalidate(ctx context.Context, role *domain.Role) {
	e.cache.Invalidate(ctx, role)
}

func (e *Evaluator) employeeFor(ctx context.Context, repos repository.Repositories, actor domain.Actor) (domain.Employee, error) {
	var (
		employee domain.Employee
		err      error
	)
	switch actor.Kind {
	case domain.ActorKindWorker:
		employee, err = repos.Employees.GetByID(ctx, actor.ID)
	default:
		employee, err = repos.Employees.GetActiveByIdentityRef(ctx, actor.ID)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	return employee, nil
}

func (e *Evaluator) role(ctx context.Context, key string, load func() (*domain.Role, error)) (*domain.Role, error) {
	if cached, ok := e.cache.Get(ctx, key); ok {
		return cached, nil
	}
	role, err := load()
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(err)
	}
	e.cache.Set(ctx, role)
	return role, nil
}

func storageError(err error) error {
	if errors.Is(err, repository.ErrTransient) {
		return apperrors.NewTransientStorage("", err)
	}
	return apperrors.NewInternalError(err)
}
