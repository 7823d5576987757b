package domain

import "time"

// EmployeeKind discriminates the two employee shapes.
type EmployeeKind string

const (
	EmployeeKindManager EmployeeKind = "manager"
	EmployeeKindWorker  EmployeeKind = "worker"
)

// Employee is an identity entitled to work tickets. Concrete values are *Manager or *Worker.
type Employee interface {
	EmployeeID() string
	Kind() EmployeeKind
	Name() string
	Active() bool
	Profile() *EmployeeProfile
}

// EmployeeProfile holds the fields shared by both employee shapes.
type EmployeeProfile struct {
	ID             string
	DisplayName    string
	Username       string
	CustomRoleID   *string
	CategoryIDs    []string
	SubCategoryIDs []string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (p *EmployeeProfile) EmployeeID() string        { return p.ID }
func (p *EmployeeProfile) Name() string              { return p.DisplayName }
func (p *EmployeeProfile) Active() bool              { return p.IsActive }
func (p *EmployeeProfile) Profile() *EmployeeProfile { return p }

// Covers reports whether the category scope admits a ticket. An empty scope admits everything.
func (p *EmployeeProfile) Covers(categoryID string, subCategoryID *string) bool {
	if len(p.CategoryIDs) == 0 && len(p.SubCategoryIDs) == 0 {
		return true
	}
	for _, id := range p.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	if subCategoryID != nil {
		for _, id := range p.SubCategoryIDs {
			if id == *subCategoryID {
				return true
			}
		}
	}
	return false
}

// Manager wraps an existing account of the shared identity store.
type Manager struct {
	EmployeeProfile
	IdentityRef string
}

func (m *Manager) Kind() EmployeeKind { return EmployeeKindManager }

// Worker is a standalone identity with locally owned credentials.
type Worker struct {
	EmployeeProfile
	PasswordHash string
	ContactPhone string
}

func (w *Worker) Kind() EmployeeKind { return EmployeeKindWorker }

// EmployeePatch carries partial employee updates.
type EmployeePatch struct {
	DisplayName     *string
	CustomRoleID    *string
	ClearCustomRole bool
	CategoryIDs     *[]string
	SubCategoryIDs  *[]string
	IsActive        *bool
}

// Apply writes the patch onto the shared profile.
func (p EmployeePatch) Apply(profile *EmployeeProfile) {
	if p.DisplayName != nil {
		profile.DisplayName = *p.DisplayName
	}
	if p.ClearCustomRole {
		profile.CustomRoleID = nil
	} else if p.CustomRoleID != nil {
		roleID := *p.CustomRoleID
		profile.CustomRoleID = &roleID
	}
	if p.CategoryIDs != nil {
		profile.CategoryIDs = append([]string{}, (*p.CategoryIDs)...)
	}
	if p.SubCategoryIDs != nil {
		profile.SubCategoryIDs = append([]string{}, (*p.SubCategoryIDs)...)
	}
	if p.IsActive != nil {
		profile.IsActive = *p.IsActive
	}
}
