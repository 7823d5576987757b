package domain

import (
	"regexp"
	"time"
)

// Module is a permission-controlled area of the helpdesk.
type Module string

const (
	ModuleTicketManagement   Module = "ticket_management"
	ModuleEmployeeManagement Module = "employee_management"
	ModuleCategoryManagement Module = "category_management"
	ModuleTicketSettings     Module = "ticket_settings"
)

// Modules lists every recognized module in catalog order.
var Modules = []Module{
	ModuleTicketManagement,
	ModuleEmployeeManagement,
	ModuleCategoryManagement,
	ModuleTicketSettings,
}

// IsValid reports whether m is a recognized module.
func (m Module) IsValid() bool {
	for _, known := range Modules {
		if m == known {
			return true
		}
	}
	return false
}

// Operation is one of the four CRUD-style grants.
type Operation string

const (
	OpRead   Operation = "read"
	OpWrite  Operation = "write"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Operations lists the grants in catalog order.
var Operations = []Operation{OpRead, OpWrite, OpUpdate, OpDelete}

// IsValid reports whether op is a recognized operation.
func (op Operation) IsValid() bool {
	switch op {
	case OpRead, OpWrite, OpUpdate, OpDelete:
		return true
	}
	return false
}

// OperationSet is the grant row for one module.
type OperationSet struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Allows reports whether op is granted. Unknown operations are denied.
func (s OperationSet) Allows(op Operation) bool {
	switch op {
	case OpRead:
		return s.Read
	case OpWrite:
		return s.Write
	case OpUpdate:
		return s.Update
	case OpDelete:
		return s.Delete
	}
	return false
}

// Merge overlays the non-nil grants of o onto s.
func (s OperationSet) Merge(o OperationOverride) OperationSet {
	if o.Read != nil {
		s.Read = *o.Read
	}
	if o.Write != nil {
		s.Write = *o.Write
	}
	if o.Update != nil {
		s.Update = *o.Update
	}
	if o.Delete != nil {
		s.Delete = *o.Delete
	}
	return s
}

// OperationOverride is a sparse per-identity grant row; nil leaves the role value untouched.
type OperationOverride struct {
	Read   *bool `json:"read,omitempty"`
	Write  *bool `json:"write,omitempty"`
	Update *bool `json:"update,omitempty"`
	Delete *bool `json:"delete,omitempty"`
}

// PermissionMatrix maps every recognized module to its grants.
type PermissionMatrix map[Module]OperationSet

// Allows looks up the grant; a missing module resolves to false.
func (m PermissionMatrix) Allows(module Module, op Operation) bool {
	if m == nil {
		return false
	}
	set, ok := m[module]
	if !ok {
		return false
	}
	return set.Allows(op)
}

// EmptyPermissions returns a matrix with every module present and every grant false.
func EmptyPermissions() PermissionMatrix {
	matrix := make(PermissionMatrix, len(Modules))
	for _, module := range Modules {
		matrix[module] = OperationSet{}
	}
	return matrix
}

// NormalizePermissions validates module keys and fills every absent module with false grants.
// It returns the first unknown module key, if any.
func NormalizePermissions(input map[string]OperationSet) (PermissionMatrix, string, bool) {
	matrix := EmptyPermissions()
	for key, set := range input {
		module := Module(key)
		if !module.IsValid() {
			return nil, key, false
		}
		matrix[module] = set
	}
	return matrix, "", true
}

// WithOverrides returns a copy of m with the overrides merged on top.
func (m PermissionMatrix) WithOverrides(overrides map[Module]OperationOverride) PermissionMatrix {
	merged := EmptyPermissions()
	for module, set := range m {
		merged[module] = set
	}
	for module, override := range overrides {
		if !module.IsValid() {
			continue
		}
		merged[module] = merged[module].Merge(override)
	}
	return merged
}

// System role names seeded at install time.
const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleStaff      = "staff"
	RoleWorker     = "worker"
	RoleStudent    = "student"
)

var roleNamePattern = regexp.MustCompile(`^[a-z_]+$`)

// ValidRoleName reports whether name matches the lowercase+underscore format.
func ValidRoleName(name string) bool {
	return roleNamePattern.MatchString(name)
}

// IsUnrestrictedRoleName reports whether tokens carrying name bypass every
// permission check. It does not depend on the stored role row.
func IsUnrestrictedRoleName(name string) bool {
	return name == RoleSuperAdmin || name == RoleAdmin
}

// Role is a named permission bundle. Unrestricted roles pass every check.
type Role struct {
	ID             string
	RoleName       string
	DisplayName    string
	Description    string
	Permissions    PermissionMatrix
	IsSystemRole   bool
	IsUnrestricted bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ModuleInfo describes one module for the static label catalog.
type ModuleInfo struct {
	Key        Module               `json:"key"`
	Label      string               `json:"label"`
	Operations map[Operation]string `json:"operations"`
}

// ModuleCatalog returns the module/operation labels served to role editors.
func ModuleCatalog() []ModuleInfo {
	labels := map[Module]string{
		ModuleTicketManagement:   "Ticket Management",
		ModuleEmployeeManagement: "Employee Management",
		ModuleCategoryManagement: "Category Management",
		ModuleTicketSettings:     "Ticket Settings",
	}
	ops := map[Operation]string{
		OpRead:   "View",
		OpWrite:  "Create",
		OpUpdate: "Edit",
		OpDelete: "Delete",
	}
	catalog := make([]ModuleInfo, 0, len(Modules))
	for _, module := range Modules {
		opLabels := make(map[Operation]string, len(ops))
		for op, label := range ops {
			opLabels[op] = label
		}
		catalog = append(catalog, ModuleInfo{Key: module, Label: labels[module], Operations: opLabels})
	}
	return catalog
}

// SystemRoles returns the seed roles installed on a fresh database.
func SystemRoles() []Role {
	all := OperationSet{Read: true, Write: true, Update: true, Delete: true}
	readOnly := OperationSet{Read: true}
	work := OperationSet{Read: true, Update: true}

	return []Role{
		{
			RoleName:       RoleSuperAdmin,
			DisplayName:    "Super Admin",
			Description:    "Full access to every module",
			Permissions:    PermissionMatrix{ModuleTicketManagement: all, ModuleEmployeeManagement: all, ModuleCategoryManagement: all, ModuleTicketSettings: all},
			IsSystemRole:   true,
			IsUnrestricted: true,
			IsActive:       true,
		},
		{
			RoleName:       RoleAdmin,
			DisplayName:    "Admin",
			Description:    "Administrative access to every module",
			Permissions:    PermissionMatrix{ModuleTicketManagement: all, ModuleEmployeeManagement: all, ModuleCategoryManagement: all, ModuleTicketSettings: all},
			IsSystemRole:   true,
			IsUnrestricted: true,
			IsActive:       true,
		},
		{
			RoleName:     RoleManager,
			DisplayName:  "Manager",
			Description:  "Triages and assigns tickets within assigned categories",
			Permissions:  PermissionMatrix{ModuleTicketManagement: {Read: true, Write: true, Update: true}, ModuleEmployeeManagement: readOnly, ModuleCategoryManagement: readOnly, ModuleTicketSettings: OperationSet{}},
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			RoleName:     RoleStaff,
			DisplayName:  "Staff",
			Description:  "Works assigned tickets",
			Permissions:  PermissionMatrix{ModuleTicketManagement: work, ModuleEmployeeManagement: OperationSet{}, ModuleCategoryManagement: readOnly, ModuleTicketSettings: OperationSet{}},
			IsSystemRole: true,
			IsActive:     true,
		},
		{
			RoleName:     RoleWorker,
			DisplayName:  "Worker",
			Description:  "Executes field work on assigned tickets",
			Permissions:  PermissionMatrix{ModuleTicketManagement: work, ModuleEmployeeManagement: OperationSet{}, ModuleCategoryManagement: OperationSet{}, ModuleTicketSettings: OperationSet{}},
			IsSystemRole: true,
			IsActive:     true,
		},
	}
}
