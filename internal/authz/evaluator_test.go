package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository/memory"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

func seededStore(t *testing.T) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	for _, role := range domain.SystemRoles() {
		role := role
		require.NoError(t, store.Repos().Roles.Create(ctx, &role))
	}
	return store
}

func boolPtr(v bool) *bool { return &v }

func TestEvaluateUnrestrictedRoles(t *testing.T) {
	evaluator := NewEvaluator(EvaluatorDependencies{Store: seededStore(t)})
	ctx := context.Background()

	for _, roleName := range []string{domain.RoleSuperAdmin, domain.RoleAdmin} {
		actor := domain.Actor{ID: "u-" + roleName, Role: roleName, Kind: domain.ActorKindIdentity}
		for _, module := range domain.Modules {
			for _, op := range domain.Operations {
				allowed, err := evaluator.Evaluate(ctx, actor, module, op)
				require.NoError(t, err)
				assert.True(t, allowed, "%s %s %s", roleName, module, op)
			}
		}
	}
}

func TestEvaluateDefaultDeny(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	matrix, _, ok := domain.NormalizePermissions(map[string]domain.OperationSet{
		string(domain.ModuleTicketManagement): {Read: true},
	})
	require.True(t, ok)
	require.NoError(t, store.Repos().Roles.Create(ctx, &domain.Role{RoleName: "auditor", Permissions: matrix, IsActive: true}))

	evaluator := NewEvaluator(EvaluatorDependencies{Store: store})
	actor := domain.Actor{ID: "u1", Role: "auditor", Kind: domain.ActorKindIdentity}

	tests := []struct {
		module domain.Module
		op     domain.Operation
		want   bool
	}{
		{domain.ModuleTicketManagement, domain.OpRead, true},
		{domain.ModuleTicketManagement, domain.OpWrite, false},
		{domain.ModuleEmployeeManagement, domain.OpRead, false},
		{domain.Module("unknown_module"), domain.OpRead, false},
	}
	for _, tt := range tests {
		allowed, err := evaluator.Evaluate(ctx, actor, tt.module, tt.op)
		require.NoError(t, err)
		assert.Equal(t, tt.want, allowed, "%s %s", tt.module, tt.op)
	}
}

func TestEvaluateUnknownRoleDenied(t *testing.T) {
	evaluator := NewEvaluator(EvaluatorDependencies{Store: seededStore(t)})

	allowed, err := evaluator.Evaluate(context.Background(),
		domain.Actor{ID: "u1", Role: "ghost", Kind: domain.ActorKindIdentity},
		domain.ModuleTicketManagement, domain.OpRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestEvaluateStudentsNeverPass(t *testing.T) {
	evaluator := NewEvaluator(EvaluatorDependencies{Store: seededStore(t)})

	allowed, err := evaluator.Evaluate(context.Background(),
		domain.Actor{ID: "s1", Role: domain.RoleStudent, Kind: domain.ActorKindIdentity},
		domain.ModuleTicketManagement, domain.OpRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCustomRoleReplacesTokenRole(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	repos := store.Repos()

	custom := &domain.Role{RoleName: "head_warden", IsActive: true, Permissions: domain.PermissionMatrix{
		domain.ModuleTicketManagement:   {Read: true, Write: true, Update: true},
		domain.ModuleEmployeeManagement: {Read: true, Write: true},
	}}
	require.NoError(t, repos.Roles.Create(ctx, custom))
	manager := &domain.Manager{
		EmployeeProfile: domain.EmployeeProfile{DisplayName: "Warden", Username: "warden", CustomRoleID: &custom.ID, IsActive: true},
		IdentityRef:     "u9",
	}
	require.NoError(t, repos.Employees.Create(ctx, manager))

	evaluator := NewEvaluator(EvaluatorDependencies{Store: store})
	actor := domain.Actor{ID: "u9", Role: domain.RoleStaff, Kind: domain.ActorKindIdentity}

	allowed, err := evaluator.Evaluate(ctx, actor, domain.ModuleEmployeeManagement, domain.OpWrite)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = evaluator.Evaluate(ctx, actor, domain.ModuleCategoryManagement, domain.OpRead)
	require.NoError(t, err)
	assert.False(t, allowed, "staff grants no longer apply once the custom role takes over")
}

func TestOverridesMergeOnTop(t *testing.T) {
	store := seededStore(t)
	store.SetPermissionOverrides("u2", map[domain.Module]domain.OperationOverride{
		domain.ModuleTicketManagement:   {Update: boolPtr(false)},
		domain.ModuleCategoryManagement: {Write: boolPtr(true)},
	})
	evaluator := NewEvaluator(EvaluatorDependencies{Store: store})
	actor := domain.Actor{ID: "u2", Role: domain.RoleStaff, Kind: domain.ActorKindIdentity}
	ctx := context.Background()

	res, err := evaluator.Resolve(ctx, actor)
	require.NoError(t, err)
	assert.True(t, res.Allows(domain.ModuleTicketManagement, domain.OpRead))
	assert.False(t, res.Allows(domain.ModuleTicketManagement, domain.OpUpdate))
	assert.True(t, res.Allows(domain.ModuleCategoryManagement, domain.OpWrite))
}

func TestInactiveWorkerDenied(t *testing.T) {
	store := seededStore(t)
	ctx := context.Background()
	worker := &domain.Worker{EmployeeProfile: domain.EmployeeProfile{DisplayName: "Fixer", Username: "fixer", IsActive: true}}
	require.NoError(t, store.Repos().Employees.Create(ctx, worker))

	evaluator := NewEvaluator(EvaluatorDependencies{Store: store})
	actor := domain.Actor{ID: worker.ID, Role: domain.RoleWorker, Kind: domain.ActorKindWorker}

	require.NoError(t, evaluator.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpUpdate))

	worker.IsActive = false
	require.NoError(t, store.Repos().Employees.Update(ctx, worker))

	err := evaluator.Require(ctx, actor, domain.ModuleTicketManagement, domain.OpUpdate)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAccessDenied, apperrors.KindOf(err))
}

func TestEffectiveForUnrestricted(t *testing.T) {
	evaluator := NewEvaluator(EvaluatorDependencies{Store: seededStore(t)})

	res, err := evaluator.Resolve(context.Background(), domain.Actor{ID: "a", Role: domain.RoleAdmin, Kind: domain.ActorKindIdentity})
	require.NoError(t, err)
	for _, module := range domain.Modules {
		assert.Equal(t, domain.OperationSet{Read: true, Write: true, Update: true, Delete: true}, res.Effective()[module])
	}
}

func TestUnrestrictedRoleNeedsNoStoredRow(t *testing.T) {
	evaluator := NewEvaluator(EvaluatorDependencies{Store: memory.NewStore()})
	actor := domain.Actor{ID: "u-root", Role: domain.RoleSuperAdmin, Kind: domain.ActorKindIdentity}

	allowed, err := evaluator.Evaluate(context.Background(), actor, domain.ModuleTicketSettings, domain.OpDelete)
	require.NoError(t, err)
	assert.True(t, allowed)

	worker := domain.Actor{ID: "w-1", Role: domain.RoleSuperAdmin, Kind: domain.ActorKindWorker}
	allowed, err = evaluator.Evaluate(context.Background(), worker, domain.ModuleTicketSettings, domain.OpDelete)
	require.NoError(t, err)
	assert.False(t, allowed, "worker tokens never carry the bypass")
}
