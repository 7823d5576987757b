package memory

import "github.com/spec-kit/helpdesk/internal/domain"

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneCategory(c domain.Category) domain.Category {
	c.ParentID = cloneString(c.ParentID)
	return c
}

func cloneRole(r domain.Role) domain.Role {
	permissions := make(domain.PermissionMatrix, len(r.Permissions))
	for module, set := range r.Permissions {
		permissions[module] = set
	}
	r.Permissions = permissions
	return r
}

func cloneProfile(p domain.EmployeeProfile) domain.EmployeeProfile {
	p.CustomRoleID = cloneString(p.CustomRoleID)
	p.CategoryIDs = append([]string{}, p.CategoryIDs...)
	p.SubCategoryIDs = append([]string{}, p.SubCategoryIDs...)
	return p
}

func cloneEmployee(e domain.Employee) domain.Employee {
	switch v := e.(type) {
	case *domain.Manager:
		out := *v
		out.EmployeeProfile = cloneProfile(v.EmployeeProfile)
		return &out
	case *domain.Worker:
		out := *v
		out.EmployeeProfile = cloneProfile(v.EmployeeProfile)
		return &out
	}
	return e
}

func cloneTicket(t domain.Ticket) domain.Ticket {
	t.SubCategoryID = cloneString(t.SubCategoryID)
	t.PhotoRef = cloneString(t.PhotoRef)
	if t.ResolvedAt != nil {
		v := *t.ResolvedAt
		t.ResolvedAt = &v
	}
	if t.ClosedAt != nil {
		v := *t.ClosedAt
		t.ClosedAt = &v
	}
	return t
}

func cloneOverrides(in map[domain.Module]domain.OperationOverride) map[domain.Module]domain.OperationOverride {
	out := make(map[domain.Module]domain.OperationOverride, len(in))
	for module, override := range in {
		out[module] = override
	}
	return out
}
