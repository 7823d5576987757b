package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePermissions_FillsEveryModule(t *testing.T) {
	matrix, unknown, ok := NormalizePermissions(map[string]OperationSet{
		"ticket_management": {Read: true, Update: true},
	})
	require.True(t, ok)
	assert.Empty(t, unknown)
	require.Len(t, matrix, len(Modules))

	assert.True(t, matrix.Allows(ModuleTicketManagement, OpRead))
	assert.False(t, matrix.Allows(ModuleTicketManagement, OpDelete))
	for _, module := range Modules[1:] {
		for _, op := range Operations {
			assert.False(t, matrix.Allows(module, op), "%s.%s", module, op)
		}
	}
}

func TestNormalizePermissions_RejectsUnknownModule(t *testing.T) {
	_, unknown, ok := NormalizePermissions(map[string]OperationSet{"attendance": {Read: true}})
	assert.False(t, ok)
	assert.Equal(t, "attendance", unknown)
}

func TestPermissionMatrix_DefaultDeny(t *testing.T) {
	var nilMatrix PermissionMatrix
	assert.False(t, nilMatrix.Allows(ModuleTicketManagement, OpRead))

	sparse := PermissionMatrix{ModuleCategoryManagement: {Read: true}}
	assert.False(t, sparse.Allows(ModuleTicketManagement, OpRead))
	assert.False(t, sparse.Allows(ModuleCategoryManagement, Operation("approve")))
}

func TestPermissionMatrix_WithOverrides(t *testing.T) {
	yes, no := true, false
	base := PermissionMatrix{ModuleTicketManagement: {Read: true, Update: true}}

	merged := base.WithOverrides(map[Module]OperationOverride{
		ModuleTicketManagement:   {Update: &no, Write: &yes},
		ModuleEmployeeManagement: {Read: &yes},
		Module("bogus"):          {Read: &yes},
	})

	assert.True(t, merged.Allows(ModuleTicketManagement, OpRead))
	assert.True(t, merged.Allows(ModuleTicketManagement, OpWrite))
	assert.False(t, merged.Allows(ModuleTicketManagement, OpUpdate))
	assert.True(t, merged.Allows(ModuleEmployeeManagement, OpRead))
	assert.NotContains(t, merged, Module("bogus"))
	assert.True(t, base.Allows(ModuleTicketManagement, OpUpdate), "base must not be mutated")
}

func TestValidRoleName(t *testing.T) {
	cases := map[string]bool{
		"hostel_warden": true,
		"staff":         true,
		"Staff":         false,
		"staff-1":       false,
		"":              false,
		"two words":     false,
	}
	for name, want := range cases {
		assert.Equal(t, want, ValidRoleName(name), name)
	}
}

func TestSystemRoles(t *testing.T) {
	roles := SystemRoles()
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.RoleName)
		assert.True(t, role.IsSystemRole)
		assert.Equal(t, role.RoleName == RoleSuperAdmin || role.RoleName == RoleAdmin, role.IsUnrestricted)
	}
	assert.ElementsMatch(t, []string{RoleSuperAdmin, RoleAdmin, RoleManager, RoleStaff, RoleWorker}, names)
}

func TestModuleCatalog(t *testing.T) {
	catalog := ModuleCatalog()
	require.Len(t, catalog, len(Modules))
	assert.Equal(t, ModuleTicketManagement, catalog[0].Key)
	assert.Len(t, catalog[0].Operations, 4)
	assert.Equal(t, "View", catalog[0].Operations[OpRead])
}
